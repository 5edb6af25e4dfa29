// Package config loads the sieve/sequence-file geometry defaults from a
// JSON-with-comments config file, merging global, project-local, and
// explicit sources with CLI overrides winning last.
package config

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds the tunables that govern how new sequence files are laid
// out and how large a single in-memory sieve run is allowed to grow.
type Config struct {
	BitsPerOffsetEntry uint8  `json:"bits_per_offset_entry,omitempty"`
	OffsetsPerFrame    uint16 `json:"offsets_per_frame,omitempty"`
	BatchThreshold     int64  `json:"batch_threshold,omitempty"`
	SyncWrites         bool   `json:"sync_writes,omitempty"`
}

// FileName is the default project-local config file name.
const FileName = ".primes.json"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BitsPerOffsetEntry: 11,
		OffsetsPerFrame:    300,
		BatchThreshold:     10_000_000,
		SyncWrites:         false,
	}
}

// BitsPerFullEntry derives the full-entry field width needed to hold every
// value up to max, per the encoding's halving scheme: a full entry stores
// (v-1)/2 for the largest odd v it will ever see.
func BitsPerFullEntry(max int64) uint8 {
	if max <= 2 {
		return 1
	}
	largest := uint64(max-1) / 2
	n := uint8(bits.Len64(largest))
	if n == 0 {
		n = 1
	}
	return n
}

// Load resolves Config with the following precedence (highest wins):
//  1. Default()
//  2. the global user config (~/.config/primes/config.json or
//     $XDG_CONFIG_HOME/primes/config.json)
//  3. the project-local config at workDir/FileName, if present
//  4. an explicit config file at explicitPath, if non-empty
//  5. command-line flags, which take the loaded values as their defaults
func Load(workDir, explicitPath string) (Config, error) {
	cfg := Default()

	if globalPath := globalConfigPath(); globalPath != "" {
		loaded, ok, err := loadFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}
		if ok {
			cfg = merge(cfg, loaded)
		}
	}

	projectPath := filepath.Join(workDir, FileName)
	loaded, ok, err := loadFile(projectPath, false)
	if err != nil {
		return Config{}, err
	}
	if ok {
		cfg = merge(cfg, loaded)
	}

	if explicitPath != "" {
		loaded, _, err := loadFile(explicitPath, true)
		if err != nil {
			return Config{}, err
		}
		cfg = merge(cfg, loaded)
	}

	return cfg, nil
}

func globalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "primes", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "primes", "config.json")
}

func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("config: reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("config: %s is not valid JSONC: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("config: %s is not valid JSON: %w", path, err)
	}
	return cfg, true, nil
}

// merge overlays the non-zero fields of override onto base.
func merge(base, override Config) Config {
	if override.BitsPerOffsetEntry != 0 {
		base.BitsPerOffsetEntry = override.BitsPerOffsetEntry
	}
	if override.OffsetsPerFrame != 0 {
		base.OffsetsPerFrame = override.OffsetsPerFrame
	}
	if override.BatchThreshold != 0 {
		base.BatchThreshold = override.BatchThreshold
	}
	if override.SyncWrites {
		base.SyncWrites = override.SyncWrites
	}
	return base
}
