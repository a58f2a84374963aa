package scaffold

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/minepack/internal/addon"
	"github.com/codewithboateng/minepack/internal/rules"
	"github.com/codewithboateng/minepack/internal/validate"
)

func TestCreate_ValidatesClean(t *testing.T) {
	res, err := Create(Options{Name: "Ruby Tools", Dir: t.TempDir(), Author: "Sam"})
	require.NoError(t, err)
	require.Equal(t, "Ruby_Tools", filepath.Base(res.Root))
	require.DirExists(t, filepath.Join(res.ResourceRoot, "textures"))
	require.FileExists(t, filepath.Join(res.Root, "README.md"))
	require.FileExists(t, filepath.Join(res.Root, ".gitignore"))

	proj, _, err := addon.FindProject(res.BehaviorRoot)
	require.NoError(t, err)
	require.Equal(t, "ruby_tools", proj.Namespace)

	bp, _, err := addon.LoadManifest(res.BehaviorRoot)
	require.NoError(t, err)
	rp, _, err := addon.LoadManifest(res.ResourceRoot)
	require.NoError(t, err)
	require.True(t, addon.ValidUUID(bp.Header.UUID))
	require.Equal(t, []string{"scripts/main.js"}, bp.ScriptEntries())
	require.Len(t, bp.Dependencies, 2)
	require.Equal(t, ScriptModule, bp.Dependencies[0].ModuleName)
	require.Equal(t, rp.Header.UUID, bp.Dependencies[1].UUID)
	require.Equal(t, []any{json.Number("1"), json.Number("20"), json.Number("81")}, bp.Header.MinEngineVersion)

	vres, err := validate.Run(context.Background(), rules.NewDefaultRegistry(nil), validate.Options{
		BehaviorPath: res.BehaviorRoot,
		ResourcePath: res.ResourceRoot,
		Silent:       true,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, io.Discard)
	require.NoError(t, err)
	require.Empty(t, vres.Report.Errors)
	require.Empty(t, vres.Report.Warnings)
	require.Equal(t, 0, vres.ExitCode)
}

func TestCreate_SinglePackage(t *testing.T) {
	res, err := Create(Options{Name: "solo", Dir: t.TempDir(), BPOnly: true, NoReadme: true, NoGitignore: true})
	require.NoError(t, err)
	require.Empty(t, res.ResourceRoot)
	require.NoDirExists(t, filepath.Join(res.Root, "RP"))
	require.NoFileExists(t, filepath.Join(res.Root, "README.md"))

	bp, _, err := addon.LoadManifest(res.BehaviorRoot)
	require.NoError(t, err)
	require.Len(t, bp.Dependencies, 1, "no resource package to depend on")

	res, err = Create(Options{Name: "skins", Dir: t.TempDir(), RPOnly: true, MinEngine: "1.21.0"})
	require.NoError(t, err)
	require.Empty(t, res.BehaviorRoot)
	b, err := os.ReadFile(filepath.Join(res.Root, addon.ProjectFile))
	require.NoError(t, err)
	var proj addon.Project
	require.NoError(t, json.Unmarshal(b, &proj))
	require.Equal(t, "1.21.0", proj.Version)
}

func TestCreate_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"no name", Options{Name: "  "}, "name is required"},
		{"both only flags", Options{Name: "x", BPOnly: true, RPOnly: true}, "mutually exclusive"},
		{"bad namespace", Options{Name: "x", Namespace: "Bad-NS"}, "namespace"},
		{"bad engine", Options{Name: "x", MinEngine: "1.20"}, "min engine version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Dir = dir
			_, err := Create(tt.opts)
			require.ErrorContains(t, err, tt.want)
		})
	}

	_, err := Create(Options{Name: "taken", Dir: dir})
	require.NoError(t, err)
	_, err = Create(Options{Name: "taken", Dir: dir})
	require.ErrorContains(t, err, "not empty")
}

func TestDefaultNamespace(t *testing.T) {
	for in, want := range map[string]string{
		"Ruby Tools":    "ruby_tools",
		"  My--Pack 2 ": "my_pack_2",
		"!!!":           "addon",
		"already_ok":    "already_ok",
	} {
		require.Equal(t, want, defaultNamespace(in), in)
	}
}
