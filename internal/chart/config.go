package chart

import (
	"fmt"
	"strings"

	"ziwei/pkg/utils"
)

// FromConfig builds the provider selected by cfg.Kind: "node" (default) or
// "file".
func FromConfig(cfg utils.ProviderConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "node":
		return NewNodeProvider(cfg.NodeBinary, cfg.ModuleDir, cfg.Timeout), nil
	case "file":
		if cfg.FixtureDir == "" {
			return nil, fmt.Errorf("provider.fixture_dir is required for the file provider")
		}
		return &FileProvider{Dir: cfg.FixtureDir, Fallback: cfg.Fallback}, nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
