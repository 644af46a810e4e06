// Package config reads process-lifetime defaults for the engine from an
// optional TOML file, modeled on frankkopp-FrankyGo's Setup()/Settings
// global-struct pattern. Every value here is just a starting point: UCI
// setoption always wins once the protocol loop is running.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings holds the process defaults loaded at startup.
type Settings struct {
	HashMB         int    `toml:"hash_mb"`
	Threads        int    `toml:"threads"`
	SyzygyPath     string `toml:"syzygy_path"`
	MoveOverheadMS int    `toml:"move_overhead_ms"`
	LogLvl         string `toml:"log_level"`
	SearchLogLvl   string `toml:"search_log_level"`
}

func defaults() Settings {
	return Settings{
		HashMB:         64,
		Threads:        1,
		MoveOverheadMS: 30,
		LogLvl:         "info",
		SearchLogLvl:   "warning",
	}
}

// Load reads enginecore.toml from the working directory or
// $XDG_CONFIG_HOME/enginecore/enginecore.toml, falling back silently to
// compiled-in defaults when no file is found or it fails to parse.
func Load() Settings {
	s := defaults()

	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(path, &s); err != nil {
			continue
		}
		break
	}

	if s.Threads < 1 {
		s.Threads = 1
	}
	if s.HashMB < 1 {
		s.HashMB = 64
	}
	return s
}

func searchPaths() []string {
	paths := []string{"enginecore.toml"}
	if cfgHome := os.Getenv("XDG_CONFIG_HOME"); cfgHome != "" {
		paths = append(paths, filepath.Join(cfgHome, "enginecore", "enginecore.toml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "enginecore", "enginecore.toml"))
	}
	return paths
}
