package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProbeResultRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "veyron-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbDir := filepath.Join(tmpDir, "db")
	s, err := OpenAt(dbDir)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	defer s.Close()

	const hash = 0x1234567890abcdef

	if _, _, found := s.GetProbeResult(hash); found {
		t.Fatalf("expected no entry before Put")
	}

	if err := s.PutProbeResult(hash, 2, -7); err != nil {
		t.Fatalf("PutProbeResult failed: %v", err)
	}

	wdl, dtz, found := s.GetProbeResult(hash)
	if !found {
		t.Fatalf("expected entry after Put")
	}
	if wdl != 2 || dtz != -7 {
		t.Errorf("got wdl=%d dtz=%d, want wdl=2 dtz=-7", wdl, dtz)
	}
}

func TestDataPaths(t *testing.T) {
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}
}
