package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/ccsync/internal/config"
	"github.com/steveyegge/ccsync/internal/llm"
	"github.com/steveyegge/ccsync/internal/logging"
	"github.com/steveyegge/ccsync/internal/matcher"
	"github.com/steveyegge/ccsync/internal/processor"
	"github.com/steveyegge/ccsync/internal/queue"
	"github.com/steveyegge/ccsync/internal/session"
	"github.com/steveyegge/ccsync/internal/tracker"
)

func newRunCmd() *cobra.Command {
	var trackerName string

	cmd := &cobra.Command{
		Use:           "run",
		Short:         "Run the Queue Processor daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			logging.Setup(os.Stderr, logging.Level(cfg.LogLevel))
			return runDaemon(cmd.Context(), cfg, trackerName)
		},
	}
	cmd.Flags().StringVar(&trackerName, "tracker", "linear", "issue tracker adapter to use")
	_ = cmd.Flags().MarkHidden("tracker")
	return cmd
}

func runDaemon(ctx context.Context, cfg *config.Config, trackerName string) error {
	release, err := acquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer release()

	if trackerName == "" {
		trackerName = "linear"
	}
	factory := tracker.Get(trackerName)
	if factory == nil {
		return fmt.Errorf("ccsyncd: unknown tracker %q", trackerName)
	}
	t := factory()

	logging.Info("starting tracker",
		"tracker", trackerName,
		"endpoint", cfg.TrackerEndpoint,
		"token", logging.MaskSensitive(cfg.TrackerToken),
		"llm_command", logging.MaskSensitive(cfg.LLMCommand),
	)

	trackerCfg := tracker.NewConfig(trackerName, map[string]string{
		"token":    cfg.TrackerToken,
		"endpoint": cfg.TrackerEndpoint,
		"team_id":  cfg.TrackerTeamID,
	})
	if err := t.Init(ctx, trackerCfg); err != nil {
		return fmt.Errorf("ccsyncd: init tracker: %w", err)
	}

	var llmTransport llm.Transport
	if cfg.LLMCommand != "" {
		sub := llm.NewSubprocessTransport(cfg.LLMCommand)
		sub.Timeout = cfg.LLMTimeout
		llmTransport = sub
	}

	matcherCfg := matcher.Config{
		BranchPattern:        cfg.BranchPattern,
		KeywordWeight:        cfg.KeywordWeight,
		SemanticWeight:       cfg.SemanticWeight,
		ConfidenceThreshold:  cfg.ConfidenceThreshold,
		MaxCandidates:        cfg.MaxCandidates,
		EnableSemantic:       cfg.EnableSemantic,
		MaxAPICallsPerMinute: cfg.MaxAPICallsPerMinute,
	}
	m, err := matcher.New(t, llmTransport, matcherCfg)
	if err != nil {
		return fmt.Errorf("ccsyncd: build matcher: %w", err)
	}

	caches, err := processor.WarmCaches(ctx, t)
	if err != nil {
		return fmt.Errorf("ccsyncd: warm caches: %w", err)
	}
	logging.Info("caches warmed", "team", caches.Team != nil, "labels", len(caches.Labels), "states", len(caches.States))

	sessionProc := session.New(t, m, llmTransport, caches)
	dispatcher := processor.NewDispatcher(sessionProc)

	q := queue.New(cfg.QueuePath())
	drainer := processor.NewDrainer(q, dispatcher, cfg.MaxRetries)

	loop := processor.NewLoop(q, cfg.QueuePath(), drainer, processor.LoopConfig{})
	return loop.Run(ctx)
}
