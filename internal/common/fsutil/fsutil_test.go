package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandHomeNoTilde(t *testing.T) {
	p, err := ExpandHome("/tmp/models")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if p != "/tmp/models" {
		t.Fatalf("expected unchanged path, got %q", p)
	}
}

func TestExpandHomeTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	p, err := ExpandHome("~/models/sd")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !strings.HasPrefix(p, home) {
		t.Fatalf("expected %q under %q", p, home)
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if !PathExists(dir) {
		t.Fatalf("expected temp dir to exist")
	}
	if PathExists(filepath.Join(dir, "nope")) {
		t.Fatalf("expected missing path to not exist")
	}
}

func TestShortFileHash(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "model.safetensors")
	if err := os.WriteFile(p, []byte("checkpoint weights"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	h1, err := ShortFileHash(p)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(h1) != shortHashLen {
		t.Fatalf("expected %d chars, got %d", shortHashLen, len(h1))
	}
	h2, err := ShortFileHash(p)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("hash not stable: %q vs %q", h1, h2)
	}
}

func TestShortFileHashMissing(t *testing.T) {
	if _, err := ShortFileHash(filepath.Join(t.TempDir(), "missing.ckpt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
