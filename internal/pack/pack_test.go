package pack

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/minepack/internal/rules"
	"github.com/codewithboateng/minepack/internal/scaffold"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newProject(t *testing.T) *scaffold.Result {
	t.Helper()
	res, err := scaffold.Create(scaffold.Options{Name: "Gem Pack", Dir: t.TempDir()})
	require.NoError(t, err)
	return res
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestBuild_Addon(t *testing.T) {
	proj := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(proj.BehaviorRoot, ".DS_Store"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(proj.ResourceRoot, "textures", "items"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(proj.ResourceRoot, "textures", "items", "gem.png"), []byte("png"), 0o644))

	out := filepath.Join(t.TempDir(), "dist", "gem.mcaddon")
	res, err := Build(context.Background(), rules.NewDefaultRegistry(nil), Options{
		BehaviorPath: proj.BehaviorRoot,
		ResourcePath: proj.ResourceRoot,
		Output:       out,
		Logger:       quiet(),
	})
	require.NoError(t, err)
	require.Equal(t, out, res.Output)
	require.Equal(t, 4, res.Files)
	require.Equal(t, []string{
		"behavior_pack/manifest.json",
		"behavior_pack/scripts/main.js",
		"resource_pack/manifest.json",
		"resource_pack/textures/items/gem.png",
	}, zipNames(t, out))
}

func TestBuild_AddonRootsWithSameBasename(t *testing.T) {
	proj := newProject(t)
	base := t.TempDir()
	bp := filepath.Join(base, "behavior", "pack")
	rp := filepath.Join(base, "resource", "pack")
	require.NoError(t, os.CopyFS(bp, os.DirFS(proj.BehaviorRoot)))
	require.NoError(t, os.CopyFS(rp, os.DirFS(proj.ResourceRoot)))

	out := filepath.Join(base, "gem.mcaddon")
	res, err := Build(context.Background(), rules.NewDefaultRegistry(nil), Options{
		BehaviorPath: bp,
		ResourcePath: rp,
		Output:       out,
		Logger:       quiet(),
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Files)
	require.Equal(t, []string{
		"behavior_pack/manifest.json",
		"behavior_pack/scripts/main.js",
		"resource_pack/manifest.json",
	}, zipNames(t, out))
}

func TestBuild_SinglePackageDefaultsName(t *testing.T) {
	proj := newProject(t)
	t.Chdir(t.TempDir())

	res, err := Build(context.Background(), rules.NewDefaultRegistry(nil), Options{
		BehaviorPath: proj.BehaviorRoot,
		ResourcePath: proj.ResourceRoot,
		BPOnly:       true,
		Logger:       quiet(),
	})
	require.NoError(t, err)
	require.Equal(t, "Gem_Pack.mcpack", filepath.Base(res.Output))
	require.Equal(t, []string{"manifest.json", "scripts/main.js"}, zipNames(t, res.Output))

	res, err = Build(context.Background(), rules.NewDefaultRegistry(nil), Options{
		ResourcePath: proj.ResourceRoot,
		Zip:          true,
		Logger:       quiet(),
	})
	require.NoError(t, err)
	require.Equal(t, "Gem_Pack.zip", filepath.Base(res.Output))
}

func TestBuild_RefusesOnErrorsUnlessForced(t *testing.T) {
	proj := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(proj.BehaviorRoot, "manifest.json"), []byte(`{"header": {}}`), 0o644))
	out := filepath.Join(t.TempDir(), "broken.mcaddon")
	opts := Options{
		BehaviorPath: proj.BehaviorRoot,
		ResourcePath: proj.ResourceRoot,
		Output:       out,
		Logger:       quiet(),
	}

	res, err := Build(context.Background(), rules.NewDefaultRegistry(nil), opts)
	require.True(t, errors.Is(err, ErrValidationFailed))
	require.NotEmpty(t, res.Validation.Report.Errors)
	require.NoFileExists(t, out)

	opts.Force = true
	res, err = Build(context.Background(), rules.NewDefaultRegistry(nil), opts)
	require.NoError(t, err)
	require.FileExists(t, res.Output)
	require.Equal(t, 1, res.Validation.ExitCode)
}

func TestBuild_ConflictingFlags(t *testing.T) {
	_, err := Build(context.Background(), rules.NewRegistry(), Options{BPOnly: true, RPOnly: true})
	require.ErrorContains(t, err, "mutually exclusive")
}

func TestBuild_OutputInsidePackageIsSkipped(t *testing.T) {
	proj := newProject(t)
	out := filepath.Join(proj.BehaviorRoot, "self.mcpack")
	res, err := Build(context.Background(), rules.NewDefaultRegistry(nil), Options{
		BehaviorPath: proj.BehaviorRoot,
		BPOnly:       true,
		Output:       out,
		Logger:       quiet(),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"manifest.json", "scripts/main.js"}, zipNames(t, res.Output))
}
