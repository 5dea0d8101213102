package tracker

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the settings a tracker adapter's Init needs: an API
// credential and whatever else the adapter requires, each resolvable from
// either an explicit value or an environment variable fallback.
type Config struct {
	// Prefix is the config key prefix for this tracker (e.g. "linear").
	Prefix string

	// Values holds explicit key/value overrides (e.g. from a config file
	// or flags), keyed without the prefix.
	Values map[string]string
}

// NewConfig creates a tracker config with the given prefix.
func NewConfig(prefix string, values map[string]string) *Config {
	if values == nil {
		values = map[string]string{}
	}
	return &Config{Prefix: prefix, Values: values}
}

// Get retrieves a config value by key, checking explicit values first and
// falling back to an environment variable. Example: cfg.Get("token") for
// prefix "linear" looks up Values["token"] then "LINEAR_TOKEN".
func (c *Config) Get(key string) string {
	if v, ok := c.Values[key]; ok && v != "" {
		return v
	}
	if v := os.Getenv(c.envVarName(key)); v != "" {
		return v
	}
	return ""
}

// GetRequired is like Get but returns an error if the value is empty.
func (c *Config) GetRequired(key string) (string, error) {
	v := c.Get(key)
	if v == "" {
		return "", fmt.Errorf("%s.%s not configured (set %s)", c.Prefix, key, c.envVarName(key))
	}
	return v, nil
}

func (c *Config) envVarName(key string) string {
	envKey := strings.ToUpper(c.Prefix + "_" + key)
	return strings.ReplaceAll(envKey, ".", "_")
}
