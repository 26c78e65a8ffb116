package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cfg.yaml", "addr: \":7860\"\nmodels_dir: /opt/models\noffload_below_free_gb: 6.0\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7860" || cfg.ModelsDir != "/opt/models" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.OffloadBelowFreeGB != 6.0 {
		t.Fatalf("expected offload threshold 6.0, got %v", cfg.OffloadBelowFreeGB)
	}
}

func TestLoadJSON(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cfg.json", `{"addr": ":7860", "default_model": "sdxl-turbo", "system_min_free_gb": 2}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultModel != "sdxl-turbo" || cfg.SystemMinFreeGB != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cfg.toml", "addr = \":7860\"\nlarge_load_min_free_gb = 3.0\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7860" || cfg.LargeLoadMinFreeGB != 3.0 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cfg.ini", "addr=:7860")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
