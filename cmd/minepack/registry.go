package main

import (
	"fmt"
	"log/slog"

	"github.com/codewithboateng/minepack/internal/rules"
	"github.com/codewithboateng/minepack/internal/rulesdsl"
	"github.com/codewithboateng/minepack/internal/shared"
)

// buildRegistry assembles the registry once per process: built-in rules,
// then custom rule packs, minus disabled keys.
func buildRegistry(cfg shared.Config, extraPacks []string, log *slog.Logger) (*rules.Registry, error) {
	versions := rules.DefaultFormatVersions().Merge(cfg.Rules.FormatVersions)
	reg := rules.NewDefaultRegistry(versions)

	packs := append(append([]string(nil), cfg.Rules.Packs...), extraPacks...)
	for _, p := range packs {
		n, err := rulesdsl.LoadInto(p, reg)
		if err != nil {
			return nil, fmt.Errorf("rules pack %s: %w", p, err)
		}
		log.Debug("rules pack loaded", "path", p, "rules", n)
	}
	for _, key := range cfg.Rules.Disabled {
		if !reg.Remove(key) {
			log.Warn("disabled rule is not registered", "rule", key)
		}
	}
	return reg, nil
}
