package rules

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/codewithboateng/minepack/internal/addon"
)

const (
	itemAtlasFile    = "textures/item_texture.json"
	terrainAtlasFile = "textures/terrain_texture.json"
	flipbookFile     = "textures/flipbook_textures.json"
)

// Bedrock texture paths omit the extension.
var textureExts = []string{".png", ".tga", ".jpg", ".jpeg"}

type atlas struct {
	path  string
	names map[string]bool
}

func evalTextureReferences(ctx Context) ([]Finding, error) {
	rp := ctx.ResourceRoot
	if rp == "" {
		return nil, nil
	}
	var out []Finding
	checkPath := func(file, ref string) {
		if !textureExists(rp, ref) {
			out = append(out, findingf(file, "texture %q does not resolve to a file under textures/", ref))
		}
	}

	items, f, err := loadAtlas(rp, itemAtlasFile, checkPath)
	out = append(out, f...)
	if err != nil {
		return out, err
	}
	terrain, f, err := loadAtlas(rp, terrainAtlasFile, checkPath)
	out = append(out, f...)
	if err != nil {
		return out, err
	}
	f, err = flipbookRefs(rp, checkPath)
	out = append(out, f...)
	if err != nil {
		return out, err
	}

	docs, err := addon.Documents(rp, addon.Resource)
	if err != nil {
		return out, err
	}
	for _, d := range docs {
		if !d.Usable() {
			continue
		}
		switch d.Type.Folder {
		case "entity":
			_, body, _ := d.Body()
			descriptionTextures(d.Path, body, checkPath)
		case "render_controllers":
			_, body, _ := d.Body()
			renderControllerTextures(d.Path, body, checkPath)
		}
	}

	attachables, err := addon.JSONFiles(filepath.Join(rp, "attachables"))
	if err != nil {
		return out, err
	}
	for _, p := range attachables {
		data, err := addon.LoadJSON(p)
		if err != nil {
			var derr *addon.DecodeError
			if errors.As(err, &derr) {
				continue
			}
			return out, err
		}
		body, _ := addon.LookupObject(data, "minecraft:attachable")
		descriptionTextures(p, body, checkPath)
	}

	if ctx.BehaviorRoot != "" {
		f, err := behaviorTextureNames(ctx.BehaviorRoot, items, terrain)
		out = append(out, f...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// loadAtlas reads an atlas file, checks the paths it lists and returns its
// short names. A missing atlas yields nil without findings.
func loadAtlas(rp, rel string, checkPath func(file, ref string)) (*atlas, []Finding, error) {
	p := filepath.Join(rp, filepath.FromSlash(rel))
	data, err := addon.LoadJSON(p)
	if err != nil {
		var derr *addon.DecodeError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, nil, nil
		case errors.As(err, &derr):
			return nil, []Finding{findingf(p, "texture atlas could not be parsed: %v", derr.Err)}, nil
		}
		return nil, nil, err
	}
	a := &atlas{path: rel, names: map[string]bool{}}
	entries, _ := addon.LookupObject(data, "texture_data")
	for _, name := range addon.SortedKeys(entries) {
		a.names[name] = true
		entry, ok := entries[name].(map[string]any)
		if !ok {
			continue
		}
		for _, ref := range texturePaths(entry["textures"]) {
			checkPath(p, ref)
		}
	}
	return a, nil, nil
}

// texturePaths flattens the shapes an atlas "textures" value can take:
// a string, a list of strings or {path} objects, a {path} object, or an
// object with "variations".
func texturePaths(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, e := range t {
			out = append(out, texturePaths(e)...)
		}
		return out
	case map[string]any:
		if s, ok := t["path"].(string); ok {
			return []string{s}
		}
		if vs, ok := t["variations"]; ok {
			return texturePaths(vs)
		}
	}
	return nil
}

func flipbookRefs(rp string, checkPath func(file, ref string)) ([]Finding, error) {
	p := filepath.Join(rp, filepath.FromSlash(flipbookFile))
	v, err := addon.LoadJSONValue(p)
	if err != nil {
		var derr *addon.DecodeError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, nil
		case errors.As(err, &derr):
			return []Finding{findingf(p, "flipbook texture list could not be parsed: %v", derr.Err)}, nil
		}
		return nil, err
	}
	list, _ := v.([]any)
	for _, e := range list {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if ref, ok := entry["flipbook_texture"].(string); ok {
			checkPath(p, ref)
		}
	}
	return nil, nil
}

func descriptionTextures(file string, body map[string]any, checkPath func(file, ref string)) {
	textures, ok := addon.LookupObject(body, "description", "textures")
	if !ok {
		return
	}
	for _, k := range addon.SortedKeys(textures) {
		if ref, ok := textures[k].(string); ok {
			checkPath(file, ref)
		}
	}
}

// renderControllerTextures checks literal paths only; most entries are
// Molang references such as "Texture.default".
func renderControllerTextures(file string, body map[string]any, checkPath func(file, ref string)) {
	for _, name := range addon.SortedKeys(body) {
		rc, ok := body[name].(map[string]any)
		if !ok {
			continue
		}
		var refs []string
		refs = append(refs, stringList(rc["textures"])...)
		if arrays, ok := addon.LookupObject(rc, "arrays", "textures"); ok {
			for _, k := range addon.SortedKeys(arrays) {
				refs = append(refs, stringList(arrays[k])...)
			}
		}
		for _, ref := range refs {
			if strings.HasPrefix(slashed(ref), "textures/") {
				checkPath(file, ref)
			}
		}
	}
}

// behaviorTextureNames resolves atlas short names used by item icons and
// block material instances.
func behaviorTextureNames(bp string, items, terrain *atlas) ([]Finding, error) {
	docs, err := addon.Documents(bp, addon.Behavior)
	if err != nil {
		return nil, err
	}
	var out []Finding
	resolve := func(file, name string, a *atlas, atlasFile string) {
		switch {
		case a == nil:
			out = append(out, findingf(file, "texture %q cannot be resolved: %s not found", name, atlasFile))
		case !a.names[name]:
			out = append(out, findingf(file, "texture %q is not defined in %s", name, atlasFile))
		}
	}
	for _, d := range docs {
		if !d.Usable() {
			continue
		}
		_, body, _ := d.Body()
		switch d.Type.Name {
		case "item":
			for _, name := range iconNames(body) {
				resolve(d.Path, name, items, itemAtlasFile)
			}
		case "block":
			mi, _ := addon.LookupObject(body, "components", "minecraft:material_instances")
			for _, face := range addon.SortedKeys(mi) {
				inst, ok := mi[face].(map[string]any)
				if !ok {
					continue
				}
				if name, ok := inst["texture"].(string); ok {
					resolve(d.Path, name, terrain, terrainAtlasFile)
				}
			}
		}
	}
	return out, nil
}

func iconNames(body map[string]any) []string {
	v, ok := addon.Lookup(body, "components", "minecraft:icon")
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case map[string]any:
		if s, ok := t["texture"].(string); ok {
			return []string{s}
		}
		if m, ok := t["textures"].(map[string]any); ok {
			var out []string
			for _, k := range addon.SortedKeys(m) {
				if s, ok := m[k].(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return nil
}

func textureExists(rp, ref string) bool {
	rel := path.Clean(strings.TrimPrefix(slashed(ref), "./"))
	if !strings.HasPrefix(rel, "textures/") {
		return false
	}
	base := filepath.Join(rp, filepath.FromSlash(rel))
	if isFile(base) {
		return true
	}
	for _, ext := range textureExts {
		if isFile(base + ext) {
			return true
		}
	}
	return false
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func slashed(p string) string { return strings.ReplaceAll(p, `\`, "/") }

func stringList(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
