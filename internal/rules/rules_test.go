package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	bpUUID = "6f1b1c8e-3a4d-4e5f-9a6b-7c8d9e0f1a2b"
	rpUUID = "0c9d8e7f-6a5b-4c3d-8e2f-1a0b9c8d7e6f"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func manifest(uuid, description, modules, deps string) string {
	return `{
  "format_version": 2,
  "header": {"name": "T", "description": ` + description + `, "uuid": "` + uuid + `", "version": [1, 0, 0]},
  "modules": ` + modules + `,
  "dependencies": ` + deps + `
}`
}

const dataModule = `[{"type": "data", "uuid": "11111111-2222-4333-8444-555555555555", "version": [1, 0, 0]}]`

// project creates BP/RP roots holding the given files, keyed "BP/..." or "RP/...".
func project(t *testing.T, files map[string]string) Context {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, files)
	var ctx Context
	if st, err := os.Stat(filepath.Join(root, "BP")); err == nil && st.IsDir() {
		ctx.BehaviorRoot = filepath.Join(root, "BP")
	}
	if st, err := os.Stat(filepath.Join(root, "RP")); err == nil && st.IsDir() {
		ctx.ResourceRoot = filepath.Join(root, "RP")
	}
	return ctx
}

func apply(t *testing.T, key string, ctx Context) []Finding {
	t.Helper()
	r, ok := NewDefaultRegistry(nil).Get(key)
	require.True(t, ok, key)
	f, err := r.Apply(ctx)
	require.NoError(t, err)
	return f
}

func TestManifestHasModules(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/manifest.json": manifest(bpUUID, `"d"`, `[]`, `[]`),
		"RP/manifest.json": manifest(rpUUID, `"d"`, dataModule, `[]`),
	})
	f := apply(t, "manifest/has-modules", ctx)
	require.Len(t, f, 1)
	require.Equal(t, filepath.Join(ctx.BehaviorRoot, "manifest.json"), f[0].File)
	require.Contains(t, f[0].Message, `"modules"`)
}

func TestManifestHasModules_MissingAndBroken(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/readme.md":     "x",
		"RP/manifest.json": `{"header": `,
	})
	f := apply(t, "manifest/has-modules", ctx)
	require.Len(t, f, 2)
	require.Equal(t, "behavior package has no manifest.json", f[0].Message)
	require.True(t, strings.HasPrefix(f[1].Message, "manifest.json could not be parsed"), f[1].Message)
}

func TestManifestHasDescription(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{`"fine"`, ""},
		{`"  "`, `manifest header "description" is blank`},
		{`null`, `manifest header is missing "description"`},
		{`42`, `manifest header "description" must be a string, got number`},
		{`["a"]`, `manifest header "description" must be a string, got array`},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			ctx := project(t, map[string]string{"BP/manifest.json": manifest(bpUUID, tt.desc, dataModule, `[]`)})
			f := apply(t, "manifest/has-description", ctx)
			if tt.want == "" {
				require.Empty(t, f)
				return
			}
			require.Len(t, f, 1)
			require.Equal(t, tt.want, f[0].Message)
		})
	}
}

func TestManifestLooseFieldsStillChecked(t *testing.T) {
	// Wrong types in fields no rule reads must not turn into a parse failure.
	ctx := project(t, map[string]string{"BP/manifest.json": `{
  "format_version": 2,
  "header": {"name": 7, "uuid": "` + bpUUID + `", "version": [1, 0, 0]},
  "modules": ` + dataModule + `,
  "metadata": {"authors": "Some Author"}
}`})
	require.Empty(t, apply(t, "manifest/has-modules", ctx))
	f := apply(t, "manifest/has-description", ctx)
	require.Len(t, f, 1)
	require.Equal(t, `manifest header is missing "description"`, f[0].Message)
}

func TestManifestDependenciesExist(t *testing.T) {
	deps := `[
  {"uuid": "` + rpUUID + `", "version": [1, 0, 0]},
  {"module_name": "@minecraft/server", "version": "1.11.0"},
  {"uuid": "not-a-uuid"},
  {"uuid": "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"},
  {"version": [1, 0, 0]}
]`
	ctx := project(t, map[string]string{
		"BP/manifest.json": manifest(bpUUID, `"d"`, dataModule, deps),
		"RP/manifest.json": manifest(strings.ToUpper(rpUUID), `"d"`, dataModule, `[]`),
	})
	f := apply(t, "manifest/dependencies-exist", ctx)
	var msgs []string
	for _, x := range f {
		msgs = append(msgs, x.Message)
		require.Equal(t, filepath.Join(ctx.BehaviorRoot, "manifest.json"), x.File)
	}
	require.Equal(t, []string{
		`dependency #3 has malformed uuid "not-a-uuid"`,
		`dependency #4 aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee does not match any package in the inspected trees`,
		`dependency #5 declares neither "uuid" nor "module_name"`,
	}, msgs)
}

func TestFormatVersionChecks(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/items/known.json":     `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": "t:a"}}}`,
		"BP/items/unknown.json":   `{"format_version": "9.9.9", "minecraft:item": {"description": {"identifier": "t:b"}}}`,
		"BP/items/missing.json":   `{"minecraft:item": {"description": {"identifier": "t:c"}}}`,
		"BP/items/numeric.json":   `{"format_version": 1.10, "minecraft:item": {}}`,
		"BP/recipes/r.json":       `{"format_version": "1.12", "minecraft:recipe_shaped": {}}`,
		"BP/items/zz_broken.json": `{"format_version": `,
	})
	has := apply(t, "json/has-format-version", ctx)
	require.Len(t, has, 1)
	require.Equal(t, filepath.Join(ctx.BehaviorRoot, "items", "missing.json"), has[0].File)

	valid := apply(t, "json/valid-format-version", ctx)
	require.Len(t, valid, 2)
	require.Equal(t, filepath.Join(ctx.BehaviorRoot, "items", "numeric.json"), valid[0].File)
	require.Contains(t, valid[0].Message, `"1.10"`)
	require.Equal(t, filepath.Join(ctx.BehaviorRoot, "items", "unknown.json"), valid[1].File)
	require.Contains(t, valid[1].Message, `"9.9.9"`)
}

func TestFormatVersionUnknownIsOnlyAWarning(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/items/x.json": `{"format_version": "0.0.1", "minecraft:item": {"description": {"identifier": "t:x"}}}`,
	})
	require.Empty(t, apply(t, "json/has-format-version", ctx))
	require.Empty(t, apply(t, "json/valid-top-level-key", ctx))
	require.Len(t, apply(t, "json/valid-format-version", ctx), 1)

	r, _ := NewDefaultRegistry(nil).Get("json/valid-format-version")
	require.Equal(t, SeverityWarning, r.Severity)
}

func TestTopLevelKey(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/entities/ok.json":  `{"format_version": "1.10.0", "minecraft:entity": {}}`,
		"BP/entities/bad.json": `{"format_version": "1.10.0", "minecraft:item": {}}`,
		"BP/recipes/r.json":    `{"format_version": "1.12", "minecraft:recipe_furnace": {}}`,
		"BP/recipes/bad.json":  `{"format_version": "1.12", "minecraft:recipe": {}}`,
		"RP/entity/str.json":   `{"format_version": "1.10.0", "minecraft:client_entity": "nope"}`,
	})
	f := apply(t, "json/valid-top-level-key", ctx)
	require.Len(t, f, 3)
	require.Equal(t, `recipe document is missing a top-level key (one of minecraft:recipe_shaped, minecraft:recipe_shapeless, minecraft:recipe_furnace, minecraft:recipe_brewing_mix, minecraft:recipe_brewing_container, minecraft:recipe_smithing_transform, minecraft:recipe_smithing_trim)`, f[0].Message)
	require.Equal(t, `entity document is missing top-level key "minecraft:entity"`, f[1].Message)
	require.Equal(t, `entity top-level key "minecraft:client_entity" must hold an object`, f[2].Message)
}

func TestNotEmptyOrCorrupt_DistinctMessages(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/blocks/a_empty.json":   "{}",
		"BP/blocks/b_corrupt.json": `{"format_version": "1.20.0",`,
		"BP/blocks/c_array.json":   `[1, 2]`,
		"BP/blocks/d_fine.json":    `{"format_version": "1.20.0", "minecraft:block": {}}`,
	})
	f := apply(t, "json/not-empty-or-corrupt", ctx)
	require.Len(t, f, 3)
	require.Equal(t, "block document is an empty object", f[0].Message)
	require.True(t, strings.HasPrefix(f[1].Message, "block document is not valid JSON: "), f[1].Message)
	require.Equal(t, "block document is not a JSON object", f[2].Message)
	require.NotEqual(t, f[0].Message, f[1].Message)
}

func TestIdentifierRules(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/items/a.json": `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": "demo:ruby_gem"}}}`,
		"BP/items/b.json": `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": "Demo:Ruby"}}}`,
		"BP/items/c.json": `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": "no_namespace"}}}`,
		"BP/items/d.json": `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": 7}}}`,
		"BP/items/e.json": `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": "other:thing"}}}`,
		"BP/items/f.json": `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": "minecraft:stick"}}}`,
	})
	names := apply(t, "id/valid-names", ctx)
	require.Len(t, names, 3)
	require.Contains(t, names[0].Message, `"Demo:Ruby"`)
	require.Contains(t, names[1].Message, `"no_namespace"`)
	require.Equal(t, "item identifier must be a string", names[2].Message)

	require.Empty(t, apply(t, "id/namespace-whitelist", ctx), "no namespace configured")

	ctx.Namespace = "demo"
	ctx.AllowNamespaces = []string{"minecraft"}
	ns := apply(t, "id/namespace-whitelist", ctx)
	require.Len(t, ns, 1)
	require.Equal(t, filepath.Join(ctx.BehaviorRoot, "items", "e.json"), ns[0].File)
}

func TestNoDuplicateFilenames(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/manifest.json":      manifest(bpUUID, `"d"`, dataModule, `[]`),
		"BP/items/Foo.json":     `{}`,
		"BP/items/foo.json":     `{}`,
		"BP/items/bar.json":     `{}`,
		"RP/textures/a.png":     "",
		"RP/textures/sub/a.png": "",
	})
	entries, err := os.ReadDir(filepath.Join(ctx.BehaviorRoot, "items"))
	require.NoError(t, err)
	if len(entries) < 3 {
		t.Skip("case-insensitive filesystem")
	}
	f := apply(t, "id/no-duplicate-filenames", ctx)
	require.Len(t, f, 1)
	require.Equal(t, filepath.Join(ctx.BehaviorRoot, "items", "Foo.json"), f[0].File)
	require.Contains(t, f[0].Message, "Foo.json, foo.json")
}

func TestTextureExists(t *testing.T) {
	ctx := project(t, map[string]string{
		"RP/textures/item_texture.json": `{"texture_data": {
  "gem": {"textures": "textures/items/gem"},
  "ore": {"textures": ["textures/items/ore", {"path": "textures/items/missing_path"}]}
}}`,
		"RP/textures/terrain_texture.json":   `{"texture_data": {"stone": {"textures": {"variations": [{"path": "textures/blocks/stone"}]}}}}`,
		"RP/textures/flipbook_textures.json": `[{"flipbook_texture": "textures/blocks/lava_flow", "atlas_tile": "lava"}]`,
		"RP/textures/items/gem.png":          "",
		"RP/textures/items/ore.tga":          "",
		"RP/textures/blocks/stone.jpg":       "",
		"RP/entity/e.json": `{"format_version": "1.10.0", "minecraft:client_entity": {"description": {"identifier": "t:e",
  "textures": {"default": "textures/entity/e"}}}}`,
		"RP/render_controllers/rc.json": `{"format_version": "1.8.0", "render_controllers": {"controller.render.e": {
  "textures": ["Texture.default", "textures/entity/e_overlay"]}}}`,
		"BP/items/gem.json": `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": "t:gem"},
  "components": {"minecraft:icon": {"texture": "gem"}}}}`,
		"BP/items/nope.json": `{"format_version": "1.20.0", "minecraft:item": {"description": {"identifier": "t:nope"},
  "components": {"minecraft:icon": "not_in_atlas"}}}`,
		"BP/blocks/b.json": `{"format_version": "1.20.0", "minecraft:block": {"description": {"identifier": "t:b"},
  "components": {"minecraft:material_instances": {"*": {"texture": "stone"}, "up": {"texture": "grass"}}}}}`,
	})
	f := apply(t, "texture/exists", ctx)
	var got []string
	for _, x := range f {
		rel, err := filepath.Rel(filepath.Dir(ctx.ResourceRoot), x.File)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel)+": "+x.Message)
	}
	require.Equal(t, []string{
		`RP/textures/item_texture.json: texture "textures/items/missing_path" does not resolve to a file under textures/`,
		`RP/textures/flipbook_textures.json: texture "textures/blocks/lava_flow" does not resolve to a file under textures/`,
		`RP/entity/e.json: texture "textures/entity/e" does not resolve to a file under textures/`,
		`RP/render_controllers/rc.json: texture "textures/entity/e_overlay" does not resolve to a file under textures/`,
		`BP/items/nope.json: texture "not_in_atlas" is not defined in textures/item_texture.json`,
		`BP/blocks/b.json: texture "grass" is not defined in textures/terrain_texture.json`,
	}, got)
}

func TestFilesystemHygiene(t *testing.T) {
	ctx := project(t, map[string]string{
		"BP/manifest.json":   manifest(bpUUID, `"d"`, dataModule, `[]`),
		"BP/.DS_Store":       "",
		"BP/._items":         "",
		"BP/Thumbs.db":       "",
		"BP/items/a.json":    `{}`,
		"BP/build.log":       "",
		"BP/node_modules/x":  "",
		"RP/manifest.json":   manifest(rpUUID, `"d"`, dataModule, `[]`),
		"RP/Textures/a.png":  "",
		"RP/items/.DS_Store": "",
	})
	junk := apply(t, "fs/no-junk-root-files", ctx)
	require.Len(t, junk, 3, "only package roots are inspected")

	unexpected := apply(t, "fs/unexpected-top-level-files", ctx)
	require.Len(t, unexpected, 2)
	require.Equal(t, `unexpected top-level file "build.log" in behavior package; review before packaging`, unexpected[0].Message)
	require.Equal(t, `unexpected top-level folder "node_modules" in behavior package; review before packaging`, unexpected[1].Message)
}

func TestScriptEntryNotEmpty(t *testing.T) {
	scriptManifest := manifest(bpUUID, `"d"`, `[
  {"type": "script", "uuid": "22222222-3333-4444-9555-666666666666", "version": [1, 0, 0], "entry": "scripts/main.js"},
  {"type": "script", "uuid": "22222222-3333-4444-9555-777777777777", "version": [1, 0, 0], "entry": "scripts\\other.js"},
  {"type": "script", "uuid": "22222222-3333-4444-9555-888888888888", "version": [1, 0, 0], "entry": "scripts/gone.js"}
]`, `[]`)
	ctx := project(t, map[string]string{
		"BP/manifest.json":    scriptManifest,
		"BP/scripts/main.js":  "// nothing\n/* still\nnothing */\n",
		"BP/scripts/other.js": "import { world } from \"@minecraft/server\";\n",
	})
	f := apply(t, "script/entry-not-empty", ctx)
	require.Len(t, f, 2)
	require.Equal(t, filepath.Join(ctx.BehaviorRoot, "scripts", "main.js"), f[0].File)
	require.Contains(t, f[0].Message, "only whitespace or comments")
	require.Contains(t, f[1].Message, "does not exist")
}

func TestRulesIgnoreAbsentPackages(t *testing.T) {
	ctx := project(t, map[string]string{"RP/manifest.json": manifest(rpUUID, `"d"`, dataModule, `[]`)})
	require.Empty(t, ctx.BehaviorRoot)
	for _, r := range NewDefaultRegistry(nil).Rules() {
		f, err := r.Apply(ctx)
		require.NoError(t, err, r.Key)
		require.Empty(t, f, r.Key)
	}
}
