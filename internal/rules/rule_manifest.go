package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/codewithboateng/minepack/internal/addon"
)

type loadedManifest struct {
	Package
	Path     string
	Manifest *addon.Manifest
}

// loadManifests decodes the manifest of every present package. Missing or
// malformed manifests are skipped; has-modules reports them. Only I/O
// failures are returned.
func loadManifests(ctx Context) ([]loadedManifest, error) {
	var out []loadedManifest
	for _, p := range ctx.Packages() {
		m, path, err := addon.LoadManifest(p.Root)
		if err != nil {
			if manifestProblem(err) {
				continue
			}
			return out, err
		}
		out = append(out, loadedManifest{Package: p, Path: path, Manifest: m})
	}
	return out, nil
}

func manifestProblem(err error) bool {
	var derr *addon.DecodeError
	return errors.Is(err, addon.ErrNoManifest) || errors.As(err, &derr)
}

func evalManifestHasModules(ctx Context) ([]Finding, error) {
	var out []Finding
	for _, p := range ctx.Packages() {
		m, path, err := addon.LoadManifest(p.Root)
		var derr *addon.DecodeError
		switch {
		case errors.Is(err, addon.ErrNoManifest):
			out = append(out, findingf(path, "%s package has no manifest.json", p.Side))
			continue
		case errors.As(err, &derr):
			out = append(out, findingf(path, "manifest.json could not be parsed: %v", derr.Err))
			continue
		case err != nil:
			return out, err
		}
		if len(m.Modules) == 0 {
			out = append(out, findingf(path, `manifest must declare at least one entry in "modules"`))
		}
	}
	return out, nil
}

func evalManifestHasDescription(ctx Context) ([]Finding, error) {
	ms, err := loadManifests(ctx)
	var out []Finding
	for _, lm := range ms {
		switch d := lm.Manifest.Header.Description.(type) {
		case nil:
			out = append(out, findingf(lm.Path, `manifest header is missing "description"`))
		case string:
			if strings.TrimSpace(d) == "" {
				out = append(out, findingf(lm.Path, `manifest header "description" is blank`))
			}
		default:
			out = append(out, findingf(lm.Path, `manifest header "description" must be a string, got %s`, jsonKind(d)))
		}
	}
	return out, err
}

func jsonKind(v any) string {
	switch v.(type) {
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func evalManifestDependencies(ctx Context) ([]Finding, error) {
	ms, err := loadManifests(ctx)
	if err != nil {
		return nil, err
	}
	var known []string
	for _, lm := range ms {
		if u := strings.TrimSpace(lm.Manifest.Header.UUID); u != "" {
			known = append(known, u)
		}
	}
	declared := func(u string) bool {
		for _, k := range known {
			if addon.SameUUID(k, u) {
				return true
			}
		}
		return false
	}

	var out []Finding
	for _, lm := range ms {
		for i, dep := range lm.Manifest.Dependencies {
			label := fmt.Sprintf("dependency #%d", i+1)
			switch {
			case dep.UUID == "" && dep.ModuleName != "":
				// script module dependency, resolved by the runtime
			case dep.UUID == "":
				out = append(out, findingf(lm.Path, `%s declares neither "uuid" nor "module_name"`, label))
			case !addon.ValidUUID(dep.UUID):
				out = append(out, findingf(lm.Path, "%s has malformed uuid %q", label, dep.UUID))
			case !declared(dep.UUID):
				out = append(out, findingf(lm.Path, "%s %s does not match any package in the inspected trees", label, dep.UUID))
			}
		}
	}
	return out, nil
}
