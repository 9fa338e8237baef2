package scenery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRendererConfigMissingFileDefaults(t *testing.T) {
	cfg, err := LoadRendererConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg != DefaultRendererConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadRendererConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renderer.toml")
	if err := os.WriteFile(path, []byte("max_offscreen_depth = 4\ndebug = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadRendererConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxOffscreenDepth != 4 || !cfg.Debug {
		t.Fatalf("cfg = %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.TexturePoolCap != DefaultRendererConfig().TexturePoolCap {
		t.Fatalf("pool cap = %d, want default", cfg.TexturePoolCap)
	}
}

func TestSaveRendererConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renderer.toml")
	want := RendererConfig{TexturePoolCap: 7, ShapeCacheCap: 9, MaxOffscreenDepth: 3, Debug: true}
	if err := SaveRendererConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadRendererConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}
