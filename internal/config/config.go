// Package config loads teamctl's daemon-level settings from a TOML file
// under the root directory. Per-team state stays JSON (a wire-format
// invariant); this file only carries knobs for the daemon itself: the root
// directory override, relay timing, and a default backend name (parsed
// only; spawning does not consult it).
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/agentteams/teamctl/internal/util"
)

// DefaultRootDir is the root directory used when no override is configured.
const DefaultRootDir = "~/.claude"

// RelayConfig holds the one-shot relay task's timing and size bounds.
// Duration fields are strings ("500ms", "900s") parsed with
// ParseDurationOrDefault so a malformed value degrades to the default
// instead of failing startup.
type RelayConfig struct {
	PollInterval string `toml:"poll_interval"`
	Timeout      string `toml:"timeout"`
	MaxResultLen int    `toml:"max_result_len"`
}

// Settings is the parsed contents of config.toml.
type Settings struct {
	Root string `toml:"root"`
	// DefaultBackend is read from config.toml but nothing consults it;
	// spawns without an explicit backend use the registry's own default.
	DefaultBackend string      `toml:"default_backend"`
	Relay          RelayConfig `toml:"relay"`
}

// DefaultSettings returns the settings used when no config.toml exists.
func DefaultSettings() Settings {
	return Settings{
		Root: DefaultRootDir,
		Relay: RelayConfig{
			PollInterval: "500ms",
			Timeout:      "900s",
			MaxResultLen: 12000,
		},
	}
}

// Load reads config.toml from rootDir, falling back to defaults for any
// missing file or field. A root set inside the file overrides rootDir for
// subsequent path resolution; callers should use the returned
// Settings.RootDir.
func Load(rootDir string) (Settings, error) {
	s := DefaultSettings()
	s.Root = rootDir
	path := filepath.Join(util.ExpandHome(rootDir), "config.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, err
	}
	if s.Root == "" {
		s.Root = rootDir
	}
	if s.Relay.MaxResultLen <= 0 {
		s.Relay.MaxResultLen = 12000
	}
	return s, nil
}

// RootDir returns the expanded root directory every path derives from.
func (s Settings) RootDir() string {
	return util.ExpandHome(s.Root)
}

// RelayPollInterval returns the relay task's poll cadence.
func (s Settings) RelayPollInterval() time.Duration {
	return ParseDurationOrDefault(s.Relay.PollInterval, 500*time.Millisecond)
}

// RelayTimeout returns the relay task's overall deadline.
func (s Settings) RelayTimeout() time.Duration {
	return ParseDurationOrDefault(s.Relay.Timeout, 900*time.Second)
}

// ParseDurationOrDefault parses s as a time.Duration, returning fallback if
// s is empty or malformed.
func ParseDurationOrDefault(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
