// Package config loads the daemon's typed configuration, layering (in
// increasing precedence) defaults, an optional YAML file, environment
// variables, and command-line flags — viper's own documented precedence
// order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full set of tunables named across the external-interfaces
// and matcher sections: queue location, tracker/LLM credentials, the
// branch pattern, and the Hybrid Issue Matcher's weights and limits.
type Config struct {
	DataHome string `mapstructure:"data_home"`

	TrackerToken    string `mapstructure:"tracker_token"`
	TrackerEndpoint string `mapstructure:"tracker_endpoint"`
	TrackerTeamID   string `mapstructure:"tracker_team_id"`

	LLMCommand string        `mapstructure:"llm_command"`
	LLMTimeout time.Duration `mapstructure:"llm_timeout"`

	BranchPattern        string  `mapstructure:"branch_pattern"`
	KeywordWeight        float64 `mapstructure:"keyword_weight"`
	SemanticWeight       float64 `mapstructure:"semantic_weight"`
	ConfidenceThreshold  float64 `mapstructure:"confidence_threshold"`
	MaxCandidates        int     `mapstructure:"max_candidates"`
	EnableSemantic       bool    `mapstructure:"enable_semantic"`
	MaxAPICallsPerMinute int     `mapstructure:"max_api_calls_per_minute"`

	MaxRetries int `mapstructure:"max_retries"`

	LogLevel string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_home", "~/.ccsync")
	v.SetDefault("tracker_token", "")
	v.SetDefault("tracker_endpoint", "")
	v.SetDefault("tracker_team_id", "")
	v.SetDefault("llm_command", "")
	v.SetDefault("llm_timeout", 60*time.Second)
	v.SetDefault("branch_pattern", `([A-Z]+-\d+)`)
	v.SetDefault("keyword_weight", 0.6)
	v.SetDefault("semantic_weight", 0.4)
	v.SetDefault("confidence_threshold", 0.7)
	v.SetDefault("max_candidates", 10)
	v.SetDefault("enable_semantic", true)
	v.SetDefault("max_api_calls_per_minute", 30)
	v.SetDefault("max_retries", 3)
	v.SetDefault("log_level", "info")
}

// Load builds a Config from defaults, an optional --config YAML file,
// CCSYNC_-prefixed environment variables, and flags already bound to fs
// (flags take precedence). fs may be nil when no command-line flags apply
// (e.g. the hook binary).
func Load(configFile string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CCSYNC")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// QueuePath returns the durable queue file location under DataHome,
// expanding a leading "~" the way the teacher's own CLI resolves
// user-relative paths (os.UserHomeDir, no shell involved).
func (c *Config) QueuePath() string {
	return filepath.Join(c.expandedDataHome(), "queue.jsonl")
}

// LockPath returns the advisory single-consumer lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.expandedDataHome(), "queue.lock")
}

func (c *Config) expandedDataHome() string {
	if !strings.HasPrefix(c.DataHome, "~") {
		return c.DataHome
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.DataHome
	}
	return filepath.Join(home, strings.TrimPrefix(c.DataHome, "~"))
}
