package tablebase

import (
	"github.com/veyronchess/enginecore/internal/board"
	"github.com/veyronchess/enginecore/internal/storage"
)

// PersistentCache wraps a Prober with an on-disk cache (BadgerDB via
// internal/storage) keyed by Zobrist hash, so repeated probes against the
// same endgames survive engine restarts instead of re-hitting the
// filesystem prober every time.
type PersistentCache struct {
	inner Prober
	store *storage.Store
}

// NewPersistentCache opens the on-disk cache and wraps inner with it.
func NewPersistentCache(inner Prober) (*PersistentCache, error) {
	store, err := storage.Open()
	if err != nil {
		return nil, err
	}
	return &PersistentCache{inner: inner, store: store}, nil
}

func (pc *PersistentCache) Probe(pos *board.Position) ProbeResult {
	if wdl, dtz, found := pc.store.GetProbeResult(pos.Hash); found {
		return ProbeResult{Found: true, WDL: WDL(wdl), DTZ: int(dtz)}
	}

	result := pc.inner.Probe(pos)
	if result.Found {
		pc.store.PutProbeResult(pos.Hash, int8(result.WDL), int16(result.DTZ))
	}
	return result
}

func (pc *PersistentCache) ProbeRoot(pos *board.Position) RootResult {
	return pc.inner.ProbeRoot(pos)
}

func (pc *PersistentCache) MaxPieces() int {
	return pc.inner.MaxPieces()
}

func (pc *PersistentCache) Available() bool {
	return pc.inner.Available()
}

// Close releases the on-disk store.
func (pc *PersistentCache) Close() error {
	return pc.store.Close()
}
