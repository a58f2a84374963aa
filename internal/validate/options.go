package validate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codewithboateng/minepack/internal/addon"
	"github.com/codewithboateng/minepack/internal/ir"
	"github.com/codewithboateng/minepack/internal/rules"
)

// ReportFile is the name given to a report written into a directory.
const ReportFile = "report.json"

const reportExt = ".json"

// Options are the inputs of one validation invocation.
type Options struct {
	BehaviorPath string
	ResourcePath string

	Silent  bool
	Verbose bool

	WarningsAsErrors bool
	ErrorsAsWarnings bool

	// ReportPath is the requested report destination; empty writes no report.
	ReportPath string

	Namespace       string
	AllowNamespaces []string

	// Jobs > 1 evaluates rules concurrently.
	Jobs int

	Waivers []ir.Waiver

	Now    func() time.Time
	Logger *slog.Logger
}

// ConfigError is a fatal input problem detected before any rule runs.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(err error, format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsConfigError reports whether err carries a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

type prepared struct {
	ctx        rules.Context
	reportPath string
}

// prepare checks every precondition and resolves the inputs. Nothing is
// evaluated when it fails.
func prepare(opts Options, log *slog.Logger) (prepared, error) {
	var p prepared
	if opts.Silent && opts.Verbose {
		return p, configErrorf(nil, "--silent and --verbose are mutually exclusive")
	}

	bp, bpOK := addon.ResolveRoot(opts.BehaviorPath)
	rp, rpOK := addon.ResolveRoot(opts.ResourcePath)
	if opts.BehaviorPath != "" && !bpOK {
		log.Warn("behavior path is not a directory, ignoring", "path", opts.BehaviorPath)
	}
	if opts.ResourcePath != "" && !rpOK {
		log.Warn("resource path is not a directory, ignoring", "path", opts.ResourcePath)
	}
	if !bpOK && !rpOK {
		return p, configErrorf(nil, "no valid package directory: pass --behavior and/or --resource")
	}

	p.ctx = rules.Context{
		BehaviorRoot:    bp,
		ResourceRoot:    rp,
		Namespace:       strings.TrimSpace(opts.Namespace),
		AllowNamespaces: opts.AllowNamespaces,
	}
	if p.ctx.Namespace == "" {
		proj, path, err := addon.FindProject(bp, rp)
		switch {
		case err != nil:
			log.Warn("ignoring project file", "path", path, "err", err)
		case proj != nil:
			p.ctx.Namespace = proj.Namespace
			log.Debug("namespace from project file", "path", path, "namespace", proj.Namespace)
		}
	}

	if opts.ReportPath != "" {
		rpath, err := ResolveReportPath(opts.ReportPath)
		if err != nil {
			return p, err
		}
		p.reportPath = rpath
	}
	return p, nil
}

// ResolveReportPath turns a requested destination into a concrete report
// file path, creating directories as needed.
//
//   - existing directory: <dir>/report.json
//   - existing file: must end in .json
//   - missing, no extension: created as a directory, <dir>/report.json
//   - missing, other extension than .json: rejected
//   - missing .json path: used as is, parent directories created
func ResolveReportPath(dest string) (string, error) {
	dest = addon.NormalizePath(dest)
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", configErrorf(err, "report path %q", dest)
	}
	ext := filepath.Ext(abs)

	st, err := os.Stat(abs)
	switch {
	case err == nil && st.IsDir():
		return filepath.Join(abs, ReportFile), nil
	case err == nil:
		if !strings.EqualFold(ext, reportExt) {
			return "", configErrorf(nil, "report file %q must have a %s extension", abs, reportExt)
		}
		return abs, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", configErrorf(err, "report path %q", abs)
	}

	if ext == "" {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return "", configErrorf(err, "create report directory %q", abs)
		}
		return filepath.Join(abs, ReportFile), nil
	}
	if !strings.EqualFold(ext, reportExt) {
		return "", configErrorf(nil, "report path %q: unsupported extension %q, expected %s", abs, ext, reportExt)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", configErrorf(err, "create report directory %q", filepath.Dir(abs))
	}
	return abs, nil
}
