package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, `([A-Z]+-\d+)`, cfg.BranchPattern)
	assert.Equal(t, 0.6, cfg.KeywordWeight)
	assert.Equal(t, 0.7, cfg.ConfidenceThreshold)
	assert.Equal(t, 10, cfg.MaxCandidates)
	assert.True(t, cfg.EnableSemantic)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("CCSYNC_TRACKER_TOKEN", "secret-token")
	t.Setenv("CCSYNC_CONFIDENCE_THRESHOLD", "0.85")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.TrackerToken)
	assert.Equal(t, 0.85, cfg.ConfidenceThreshold)
}

func TestLoadFileOverridesDefaultButNotEnv(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("max_candidates: 25\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxCandidates)

	t.Setenv("CCSYNC_MAX_CANDIDATES", "40")
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.MaxCandidates)
}
