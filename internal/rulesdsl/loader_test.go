package rulesdsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/minepack/internal/rules"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const pack = `rules:
  - key: custom/item-has-components
    severity: warning
    where:
      package: behavior
      glob: "items/**/*.json"
    require:
      key: minecraft:item/components
  - key: custom/no-console
    severity: error
    description: Scripts must not log to the console
    message: remove console calls before release
    where:
      glob: "scripts/**/*.js"
    require:
      forbid_regex: 'console\.(log|warn)'
  - key: custom/small-textures
    severity: info
    where:
      package: rp
      glob: "textures/**/*.png"
    require:
      max_bytes: 4
`

func TestLoadInto_AppendsAfterBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeFile(t, path, pack)

	reg := rules.NewDefaultRegistry(nil)
	builtins := reg.Len()
	n, err := LoadInto(path, reg)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	keys := reg.Keys()
	require.Equal(t, []string{"custom/item-has-components", "custom/no-console", "custom/small-textures"}, keys[builtins:])

	r, _ := reg.Get("custom/no-console")
	require.Equal(t, rules.SeverityError, r.Severity)
	require.Equal(t, "Scripts must not log to the console", r.Description)
	r, _ = reg.Get("custom/small-textures")
	require.Equal(t, rules.SeverityInfo, r.Severity)
	require.Contains(t, r.Description, "textures/**/*.png")
}

func TestLoadInto_RulesApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeFile(t, path, pack)
	bp := filepath.Join(dir, "BP")
	rp := filepath.Join(dir, "RP")
	writeFile(t, filepath.Join(bp, "items", "a.json"), `{"minecraft:item": {"components": {}}}`)
	writeFile(t, filepath.Join(bp, "items", "deep", "b.json"), `{"minecraft:item": {}}`)
	writeFile(t, filepath.Join(bp, "items", "c.json"), `{"minecraft:item": `)
	writeFile(t, filepath.Join(bp, "scripts", "main.js"), "console.log('hi')\n")
	writeFile(t, filepath.Join(bp, "scripts", "ok.js"), "export {}\n")
	writeFile(t, filepath.Join(rp, "textures", "big.png"), "123456")
	writeFile(t, filepath.Join(rp, "textures", "tiny.png"), "1")
	writeFile(t, filepath.Join(rp, "items", "x.json"), `{}`)

	reg := rules.NewRegistry()
	_, err := LoadInto(path, reg)
	require.NoError(t, err)
	ctx := rules.Context{BehaviorRoot: bp, ResourceRoot: rp}

	r, _ := reg.Get("custom/item-has-components")
	f, err := r.Apply(ctx)
	require.NoError(t, err)
	require.Len(t, f, 2)
	require.Equal(t, filepath.Join(bp, "items", "c.json"), f[0].File)
	require.Contains(t, f[0].Message, "cannot check key")
	require.Equal(t, filepath.Join(bp, "items", "deep", "b.json"), f[1].File)
	require.Equal(t, `missing required key "minecraft:item/components"`, f[1].Message)

	r, _ = reg.Get("custom/no-console")
	f, err = r.Apply(ctx)
	require.NoError(t, err)
	require.Equal(t, []rules.Finding{{File: filepath.Join(bp, "scripts", "main.js"), Message: "remove console calls before release"}}, f)

	r, _ = reg.Get("custom/small-textures")
	f, err = r.Apply(ctx)
	require.NoError(t, err)
	require.Len(t, f, 1)
	require.Equal(t, "file is 6 bytes, limit is 4", f[0].Message)
}

func TestLoadInto_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "rules: [", "parse yaml"},
		{"missing glob", "rules:\n  - key: a/b\n    severity: error\n    require: {max_bytes: 1}\n", "missing required fields"},
		{"bad severity", "rules:\n  - key: a/b\n    severity: fatal\n    where: {glob: '*'}\n    require: {max_bytes: 1}\n", "unknown severity"},
		{"bad glob", "rules:\n  - key: a/b\n    severity: error\n    where: {glob: 'a/[b'}\n    require: {max_bytes: 1}\n", "invalid glob"},
		{"bad package", "rules:\n  - key: a/b\n    severity: error\n    where: {glob: '*', package: skin}\n    require: {max_bytes: 1}\n", "unknown package"},
		{"bad regex", "rules:\n  - key: a/b\n    severity: error\n    where: {glob: '*'}\n    require: {forbid_regex: '('}\n", "forbid_regex"},
		{"no require", "rules:\n  - key: a/b\n    severity: error\n    where: {glob: '*'}\n", "no require clause"},
		{"bad key", "rules:\n  - key: nokey\n    severity: error\n    where: {glob: '*'}\n    require: {max_bytes: 1}\n", "<category>/<name>"},
		{"duplicate builtin", "rules:\n  - key: manifest/has-modules\n    severity: error\n    where: {glob: '*'}\n    require: {max_bytes: 1}\n", "already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			writeFile(t, path, tt.yaml)
			_, err := LoadInto(path, rules.NewDefaultRegistry(nil))
			require.ErrorContains(t, err, tt.want)
		})
	}

	_, err := LoadInto(filepath.Join(t.TempDir(), "missing.yaml"), rules.NewRegistry())
	require.ErrorContains(t, err, "read rules pack")
}
