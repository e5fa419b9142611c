package metacache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrParseCachesAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "metadata.txt")
	if err := os.WriteFile(metaPath, []byte("BALL,1,4\nPLAYER,A,John Smith,5,0,0,0\n"), 0o644); err != nil {
		t.Fatalf("write metadata fixture: %v", err)
	}

	cache, err := Open(filepath.Join(dir, "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	reg1, err := cache.LoadOrParse(metaPath)
	if err != nil {
		t.Fatalf("LoadOrParse (miss): %v", err)
	}
	if len(reg1.Players) != 1 || reg1.Players[0].Name != "John Smith" {
		t.Fatalf("reg1.Players = %+v", reg1.Players)
	}
	if len(reg1.BallSids) != 1 || reg1.BallSids[0] != 4 {
		t.Fatalf("reg1.BallSids = %v", reg1.BallSids)
	}

	reg2, err := cache.LoadOrParse(metaPath)
	if err != nil {
		t.Fatalf("LoadOrParse (hit): %v", err)
	}
	if len(reg2.Players) != 1 || reg2.Players[0].Name != "John Smith" {
		t.Fatalf("reg2.Players = %+v", reg2.Players)
	}
}

func TestLoadOrParseMissingFileIsNotFoundError(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(filepath.Join(dir, "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	if _, err := cache.LoadOrParse(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatalf("expected error for missing metadata file")
	}
}
