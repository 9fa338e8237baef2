package scenery

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// RendererConfig tunes the executor's pools, caches, and limits. The zero
// value is not usable; start from DefaultRendererConfig.
type RendererConfig struct {
	// TexturePoolCap bounds the number of pooled offscreen size classes.
	// Least-recently-used classes are deallocated once the cap is reached.
	TexturePoolCap int `toml:"texture_pool_cap"`
	// ShapeCacheCap bounds the number of paths whose vertex buffers are
	// cached (one entry per path, least-recently-used evicted first).
	ShapeCacheCap int `toml:"shape_cache_cap"`
	// MaxOffscreenDepth bounds nested mask/matte offscreen passes.
	// Exceeding it aborts the draw with INVALID_COMMAND_STACK.
	MaxOffscreenDepth int `toml:"max_offscreen_depth"`
	// Debug enables stderr logging of skipped subtrees and per-draw stats.
	Debug bool `toml:"debug"`
}

// DefaultRendererConfig returns the tuning used when no config file exists.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		TexturePoolCap:    32,
		ShapeCacheCap:     256,
		MaxOffscreenDepth: 8,
	}
}

// LoadRendererConfig reads a TOML config file, filling absent keys from the
// defaults. A missing file returns the defaults without error.
func LoadRendererConfig(path string) (RendererConfig, error) {
	cfg := DefaultRendererConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("scenery: failed to load renderer config: %w", err)
	}
	if cfg.MaxOffscreenDepth <= 0 {
		cfg.MaxOffscreenDepth = DefaultRendererConfig().MaxOffscreenDepth
	}
	return cfg, nil
}

// SaveRendererConfig writes the config as TOML.
func SaveRendererConfig(path string, cfg RendererConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scenery: failed to write renderer config: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
