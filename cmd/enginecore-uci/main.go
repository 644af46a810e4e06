package main

import (
	"flag"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/veyronchess/enginecore/internal/config"
	"github.com/veyronchess/enginecore/internal/engine"
	"github.com/veyronchess/enginecore/internal/storage"
	"github.com/veyronchess/enginecore/internal/uci"
	"github.com/veyronchess/enginecore/internal/xlog"
)

// defaultNet is the NNUE file name searched for at the standard install
// locations.
const defaultNet = "nn-default.nnue"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()
	cfg := config.Load()
	xlog.SetEngineLevel(cfg.LogLvl)
	xlog.SetSearchLevel(cfg.SearchLogLvl)

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			xlog.Engine.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			xlog.Engine.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
		xlog.Engine.Infof("cpu profiling enabled: path=%s", profilePath)
	}

	eng := engine.NewEngine(cfg.HashMB)
	eng.SetThreads(cfg.Threads)

	if err := autoLoadNNUE(eng); err != nil {
		xlog.Engine.Warningf("NNUE not loaded, using classical evaluation: %v", err)
	}

	protocol := uci.New(eng)
	protocol.SetDefaultSyzygyPath(cfg.SyzygyPath)
	protocol.Run()
}

// autoLoadNNUE searches standard install locations for the NNUE network
// file and loads the first match.
func autoLoadNNUE(eng *engine.Engine) error {
	searchPaths := []string{"./nnue", "."}
	if dir, err := storage.GetNNUEDir(); err == nil {
		searchPaths = append([]string{dir}, searchPaths...)
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".veyron", "nnue"))
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, defaultNet)

		if fileExists(path) {
			if err := eng.LoadNNUE(path); err != nil {
				xlog.Engine.Warningf("failed to load NNUE from %s: %v", dir, err)
				continue
			}
			eng.SetUseNNUE(true)
			xlog.Engine.Infof("NNUE loaded from %s", dir)
			return nil
		}
	}

	return os.ErrNotExist
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
