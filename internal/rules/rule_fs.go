package rules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/codewithboateng/minepack/internal/addon"
)

var commonTopLevel = []string{
	"manifest.json", "pack_icon.png", "texts", "subpacks", "contents.json",
	"readme.md", "readme.txt", "license", "license.md", "license.txt", "changelog.md",
}

var behaviorTopLevel = []string{
	"animation_controllers", "animations", "biomes", "blocks", "cameras", "dialogue",
	"entities", "feature_rules", "features", "functions", "item_catalog", "items",
	"loot_tables", "recipes", "scripts", "spawn_rules", "structures", "trading", "volumes",
}

var resourceTopLevel = []string{
	"animation_controllers", "animations", "attachables", "biomes_client.json", "blocks.json",
	"entity", "fogs", "font", "items", "materials", "models", "particles", "render_controllers",
	"sounds", "sounds.json", "textures", "ui", "splashes.json", "loading_messages.json",
}

func recognizedTopLevel(side addon.Side) map[string]bool {
	set := map[string]bool{}
	for _, n := range commonTopLevel {
		set[n] = true
	}
	extra := behaviorTopLevel
	if side == addon.Resource {
		extra = resourceTopLevel
	}
	for _, n := range extra {
		set[n] = true
	}
	return set
}

func evalNoJunkFiles(ctx Context) ([]Finding, error) {
	var out []Finding
	for _, p := range ctx.Packages() {
		entries, err := os.ReadDir(p.Root)
		if err != nil {
			return out, err
		}
		for _, e := range entries {
			if addon.IsJunk(e.Name()) {
				out = append(out, findingf(filepath.Join(p.Root, e.Name()),
					"%s package root contains system artifact %q", p.Side, e.Name()))
			}
		}
	}
	return out, nil
}

func evalUnexpectedTopLevel(ctx Context) ([]Finding, error) {
	var out []Finding
	for _, p := range ctx.Packages() {
		entries, err := os.ReadDir(p.Root)
		if err != nil {
			return out, err
		}
		known := recognizedTopLevel(p.Side)
		for _, e := range entries {
			name := e.Name()
			if addon.IsJunk(name) || known[strings.ToLower(name)] {
				continue
			}
			kind := "file"
			if e.IsDir() {
				kind = "folder"
			}
			out = append(out, findingf(filepath.Join(p.Root, name),
				"unexpected top-level %s %q in %s package; review before packaging", kind, name, p.Side))
		}
	}
	return out, nil
}
