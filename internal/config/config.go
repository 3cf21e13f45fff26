// Package config loads the optional per-invocation TOML configuration
// file for both pipelines, following the same "manifest with sane
// zero-value defaults" shape project_manifest.go uses for surge.toml:
// decode into a struct, then patch in defaults for anything the file
// left unset.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the knobs both cmd/regexdfa and cmd/kalcc read before
// building their respective pipelines.
type Config struct {
	Automaton AutomatonConfig `toml:"automaton"`
	Codegen   CodegenConfig   `toml:"codegen"`
}

// AutomatonConfig controls Pipeline A (regex → NFA → DFA).
type AutomatonConfig struct {
	// EpsilonGlyph overrides the ε rendering used in Graphviz output
	// (default "ε"). Some terminals/fonts render the Greek letter
	// poorly, so this is left overridable rather than hardcoded.
	EpsilonGlyph string `toml:"epsilon_glyph"`

	// GraphvizRankDir sets the "rankdir" attribute of emitted .dot
	// files (default "LR", matching automaton.cpp's left-to-right
	// layout).
	GraphvizRankDir string `toml:"graphviz_rankdir"`

	// CacheEnabled turns on the msgpack DFA disk cache.
	CacheEnabled bool `toml:"cache_enabled"`
}

// CodegenConfig controls Pipeline B (source → IR).
type CodegenConfig struct {
	// EntryAllocaPrefix overrides the naming scheme for entry-block
	// allocations (default "tmp", producing %tmp1, %tmp2, ...); threaded into
	// codegen.NewContextWithAllocaPrefix by cmd/kalcc.
	EntryAllocaPrefix string `toml:"entry_alloca_prefix"`

	// DumpIR requests a textual IR dump alongside the compiled module.
	DumpIR bool `toml:"dump_ir"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Automaton: AutomatonConfig{
			EpsilonGlyph:    "ε",
			GraphvizRankDir: "LR",
			CacheEnabled:    false,
		},
		Codegen: CodegenConfig{
			EntryAllocaPrefix: "tmp",
			DumpIR:            false,
		},
	}
}

// Load reads and decodes the TOML file at path over the defaults,
// mirroring loadProjectConfig's decode-then-validate shape.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		return Config{}, fmt.Errorf("%s: unknown config key %q", path, key)
	}
	if cfg.Automaton.EpsilonGlyph == "" {
		cfg.Automaton.EpsilonGlyph = "ε"
	}
	if cfg.Automaton.GraphvizRankDir == "" {
		cfg.Automaton.GraphvizRankDir = "LR"
	}
	return cfg, nil
}
