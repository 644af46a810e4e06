// Package xlog provides the engine's two module loggers, built on
// github.com/op/go-logging the way frankkopp-FrankyGo's franky_logging
// package wires it up.
//
// Engine carries process-lifetime diagnostics (startup, option changes,
// NNUE/tablebase loading). Search carries per-iteration search chatter that
// would otherwise flood stdout, which the UCI protocol owns exclusively.
// Both write to stderr only, never stdout, so a GUI reading UCI replies on
// stdout never sees a stray log line.
package xlog

import (
	"os"

	logging "github.com/op/go-logging"
)

const (
	engineModule = "engine"
	searchModule = "search"
)

var (
	Engine *logging.Logger
	Search *logging.Logger

	leveled logging.LeveledBackend
)

func init() {
	Engine = logging.MustGetLogger(engineModule)
	Search = logging.MustGetLogger(searchModule)

	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(
		`%{time:15:04:05.000} %{module} %{level:.4s} %{message}`,
	)
	leveled = logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	leveled.SetLevel(logging.INFO, engineModule)
	leveled.SetLevel(logging.WARNING, searchModule)
	logging.SetBackend(leveled)
}

var levelsByName = map[string]logging.Level{
	"off":      logging.CRITICAL + 1,
	"critical": logging.CRITICAL,
	"error":    logging.ERROR,
	"warning":  logging.WARNING,
	"notice":   logging.NOTICE,
	"info":     logging.INFO,
	"debug":    logging.DEBUG,
}

// SetEngineLevel sets the Engine logger's level from a config string
// ("off", "critical", "error", "warning", "notice", "info", "debug").
func SetEngineLevel(name string) { setLevel(engineModule, name) }

// SetSearchLevel sets the Search logger's level, independently of Engine's.
func SetSearchLevel(name string) { setLevel(searchModule, name) }

func setLevel(module, name string) {
	lvl, ok := levelsByName[name]
	if !ok {
		return
	}
	leveled.SetLevel(lvl, module)
}
