// Package pack validates a project and zips its packages for distribution.
package pack

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/codewithboateng/minepack/internal/addon"
	"github.com/codewithboateng/minepack/internal/rules"
	"github.com/codewithboateng/minepack/internal/validate"
)

// ErrValidationFailed is returned when validation leaves errors and the
// build was not forced.
var ErrValidationFailed = errors.New("validation failed")

type Options struct {
	BehaviorPath string
	ResourcePath string

	// Output is the archive path. Empty derives "<name>.<ext>" in the
	// current directory from the project file or package folder name.
	Output string
	Zip    bool // write .zip instead of .mcaddon/.mcpack
	Force  bool

	BPOnly bool
	RPOnly bool

	Validate validate.Options
	Logger   *slog.Logger
}

type Result struct {
	Output     string
	Files      int
	Validation *validate.Result
}

// Build validates the selected packages silently, then writes one archive.
// Both packages go into an .mcaddon with one folder each; a single package
// becomes an .mcpack holding the package contents at its root.
func Build(ctx context.Context, reg *rules.Registry, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.BPOnly && opts.RPOnly {
		return nil, errors.New("--bp-only and --rp-only are mutually exclusive")
	}
	bpPath, rpPath := opts.BehaviorPath, opts.ResourcePath
	if opts.RPOnly {
		bpPath = ""
	}
	if opts.BPOnly {
		rpPath = ""
	}

	vopts := opts.Validate
	vopts.BehaviorPath, vopts.ResourcePath = bpPath, rpPath
	vopts.Silent, vopts.Verbose = true, false
	vopts.ReportPath = ""
	vopts.Logger = log

	vres, err := validate.Run(ctx, reg, vopts, io.Discard)
	if err != nil {
		return nil, err
	}
	res := &Result{Validation: vres}
	if vres.ExitCode != 0 {
		if !opts.Force {
			return res, fmt.Errorf("%w: %d error(s)", ErrValidationFailed, len(vres.Report.Errors))
		}
		log.Warn("building despite validation errors", "errors", len(vres.Report.Errors))
	}

	type source struct {
		root, prefix string
	}
	var sources []source
	bp, rp := vres.Context.BehaviorRoot, vres.Context.ResourceRoot
	switch {
	case bp != "" && rp != "":
		sources = []source{{bp, "behavior_pack/"}, {rp, "resource_pack/"}}
	case bp != "":
		sources = []source{{bp, ""}}
	case rp != "":
		sources = []source{{rp, ""}}
	}

	both := bp != "" && rp != ""
	out := opts.Output
	if out == "" {
		ext := ".mcpack"
		if both {
			ext = ".mcaddon"
		}
		if opts.Zip {
			ext = ".zip"
		}
		out = archiveName(bp, rp) + ext
	}
	out, err = filepath.Abs(out)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return res, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(out), "."+filepath.Base(out)+".tmp-*")
	if err != nil {
		return res, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	zw := zip.NewWriter(tmp)
	for _, s := range sources {
		n, err := addTree(zw, s.root, s.prefix, out, tmp.Name())
		if err != nil {
			return res, fmt.Errorf("archive %s: %w", s.root, err)
		}
		res.Files += n
	}
	if err := zw.Close(); err != nil {
		return res, err
	}
	if err := tmp.Close(); err != nil {
		return res, err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return res, err
	}
	res.Output = out
	log.Info("build complete", "output", out, "files", res.Files)
	return res, nil
}

// addTree adds every regular file under root, skipping junk files and the
// paths in skip.
func addTree(zw *zip.Writer, root, prefix string, skip ...string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if addon.IsJunk(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || slices.Contains(skip, path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, prefix+filepath.ToSlash(rel)); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// archiveName picks the project name from minepack.json, falling back to
// the folder holding the packages.
func archiveName(bp, rp string) string {
	if proj, _, err := addon.FindProject(bp, rp); err == nil && proj != nil && proj.Name != "" {
		return strings.Join(strings.Fields(proj.Name), "_")
	}
	root := bp
	if root == "" {
		root = rp
	}
	return filepath.Base(filepath.Dir(root))
}
