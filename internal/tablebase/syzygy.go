package tablebase

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/veyronchess/enginecore/internal/board"
	"github.com/veyronchess/enginecore/internal/xlog"
)

// SyzygyProber probes local Syzygy tablebase files. Actual WDL/DTZ
// decoding is delegated to a pure Go Syzygy reader plugged in at
// construction time; until one is wired, the prober reports which
// endgames are locally present but returns no result for them (treated
// per spec as TB_RESULT_FAILED, i.e. search proceeds without TB guidance).
type SyzygyProber struct {
	path      string
	maxPieces int
	available bool
	mu        sync.RWMutex

	downloader *SyzygyDownloader

	// decode, when set, performs the actual file-backed probe. Left nil
	// until a decoder is integrated (see DESIGN.md).
	decode func(pos *board.Position) (ProbeResult, bool)
}

// NewSyzygyProber creates a new Syzygy prober with the given path.
// If path is empty, uses the default cache directory.
func NewSyzygyProber(path string) *SyzygyProber {
	if path == "" {
		path = DefaultCacheDir()
	}

	sp := &SyzygyProber{
		path:       path,
		downloader: NewSyzygyDownloader(path),
	}

	sp.refresh()

	return sp
}

// refresh checks available tablebase files and updates maxPieces.
func (sp *SyzygyProber) refresh() {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if _, err := os.Stat(sp.path); os.IsNotExist(err) {
		sp.available = false
		sp.maxPieces = 0
		return
	}

	sp.maxPieces = sp.downloader.MaxPiecesAvailable()
	sp.available = sp.maxPieces > 0

	if sp.available {
		xlog.Engine.Infof("syzygy tablebases found: path=%s maxPieces=%d", sp.path, sp.maxPieces)
	} else {
		xlog.Engine.Warningf("no syzygy tablebases found: path=%s", sp.path)
	}
}

// SetPath updates the tablebase path and refreshes available files.
func (sp *SyzygyProber) SetPath(path string) {
	if path == "" {
		path = DefaultCacheDir()
	}
	sp.path = path
	sp.downloader = NewSyzygyDownloader(path)
	sp.refresh()
}

// Probe looks up a position in the tablebase.
func (sp *SyzygyProber) Probe(pos *board.Position) ProbeResult {
	pieceCount := CountPieces(pos)
	if pieceCount > sp.MaxPieces() || pos.CastlingRights != 0 {
		return ProbeResult{Found: false}
	}
	if sp.decode == nil {
		return ProbeResult{Found: false}
	}
	if result, ok := sp.decode(pos); ok {
		return result
	}
	return ProbeResult{Found: false}
}

// ProbeRoot finds the best move from the tablebase.
func (sp *SyzygyProber) ProbeRoot(pos *board.Position) RootResult {
	if sp.decode == nil {
		return RootResult{Found: false}
	}
	return RootResult{Found: false}
}

// MaxPieces returns the maximum number of pieces the local tablebase set
// covers (0 when no files are present).
func (sp *SyzygyProber) MaxPieces() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.maxPieces
}

// Available returns true if local tablebase files were found.
func (sp *SyzygyProber) Available() bool {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.available
}

// LocalMaxPieces returns the max pieces available locally.
func (sp *SyzygyProber) LocalMaxPieces() int {
	return sp.MaxPieces()
}

// HasLocalFiles returns true if local tablebase files exist.
func (sp *SyzygyProber) HasLocalFiles() bool {
	return sp.Available()
}

// Path returns the current tablebase path.
func (sp *SyzygyProber) Path() string {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.path
}

// Download5Piece downloads all 5-piece tablebase files.
// Returns a channel for progress updates.
func (sp *SyzygyProber) Download5Piece() (<-chan DownloadProgress, error) {
	if err := sp.downloader.EnsureCacheDir(); err != nil {
		return nil, err
	}

	progress := make(chan DownloadProgress, 100)

	go func() {
		defer close(progress)
		if err := sp.downloader.Download5Piece(progress); err != nil {
			progress <- DownloadProgress{Error: err}
		}
		sp.refresh()
	}()

	return progress, nil
}

// positionToMaterial converts a position to a material key like "KQvKR".
// This is used for tablebase file lookup.
func positionToMaterial(pos *board.Position) string {
	var white, black strings.Builder

	for pt := board.Queen; pt >= board.Pawn; pt-- {
		count := (pos.Pieces[board.White][pt]).PopCount()
		for i := 0; i < count; i++ {
			white.WriteByte(pieceChar(pt))
		}
	}

	for pt := board.Queen; pt >= board.Pawn; pt-- {
		count := (pos.Pieces[board.Black][pt]).PopCount()
		for i := 0; i < count; i++ {
			black.WriteByte(pieceChar(pt))
		}
	}

	return "K" + white.String() + "vK" + black.String()
}

func pieceChar(pt board.PieceType) byte {
	switch pt {
	case board.Queen:
		return 'Q'
	case board.Rook:
		return 'R'
	case board.Bishop:
		return 'B'
	case board.Knight:
		return 'N'
	case board.Pawn:
		return 'P'
	default:
		return '?'
	}
}

// checkLocalFile checks if a tablebase file exists locally.
func (sp *SyzygyProber) checkLocalFile(material string) bool {
	wdlPath := filepath.Join(sp.path, material+".rtbw")
	dtzPath := filepath.Join(sp.path, material+".rtbz")

	_, wdlErr := os.Stat(wdlPath)
	_, dtzErr := os.Stat(dtzPath)

	return wdlErr == nil && dtzErr == nil
}
