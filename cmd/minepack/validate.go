package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/minepack/internal/addon"
	"github.com/codewithboateng/minepack/internal/ir"
	"github.com/codewithboateng/minepack/internal/storage"
	"github.com/codewithboateng/minepack/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate behavior and resource packages",
	Long: `Run every registered rule against the given behavior and/or resource
package and print the classified findings. Exits 1 when the final errors
bucket is non-empty or the inputs are invalid.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var validateFlags struct {
	behavior         string
	resource         string
	silent           bool
	verbose          bool
	warningsAsErrors bool
	errorsAsWarnings bool
	report           string
	namespace        string
	allowNamespaces  []string
	jobs             int
	rulesPacks       []string
	db               string
	noHistory        bool
}

func init() {
	f := validateCmd.Flags()
	f.StringVarP(&validateFlags.behavior, "behavior", "b", "", "behavior package directory")
	f.StringVarP(&validateFlags.resource, "resource", "r", "", "resource package directory")
	f.BoolVarP(&validateFlags.silent, "silent", "s", false, "print nothing; rely on the exit code and report")
	f.BoolVarP(&validateFlags.verbose, "verbose", "v", false, "also print info findings")
	f.BoolVar(&validateFlags.warningsAsErrors, "warnings-as-errors", false, "classify warnings as errors")
	f.BoolVar(&validateFlags.errorsAsWarnings, "errors-as-warnings", false, "classify errors as warnings")
	f.StringVar(&validateFlags.report, "report", "", "write a JSON report to this file or directory")
	f.StringVar(&validateFlags.namespace, "namespace", "", "project identifier namespace")
	f.StringSliceVar(&validateFlags.allowNamespaces, "allow-namespace", nil, "accept this namespace in addition to the configured ones (repeatable)")
	f.IntVarP(&validateFlags.jobs, "jobs", "j", 0, "evaluate rules concurrently with this many workers")
	f.StringSliceVar(&validateFlags.rulesPacks, "rules-pack", nil, "YAML custom rules pack (repeatable)")
	f.StringVar(&validateFlags.db, "db", "", "SQLite history database")
	f.BoolVar(&validateFlags.noHistory, "no-history", false, "do not record the run in the history database")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	fl := validateFlags

	// precedence: flags > env/config > defaults
	opts := validate.Options{
		BehaviorPath:     firstNonEmpty(fl.behavior, cfg.Validate.Behavior),
		ResourcePath:     firstNonEmpty(fl.resource, cfg.Validate.Resource),
		Silent:           fl.silent,
		Verbose:          fl.verbose,
		WarningsAsErrors: fl.warningsAsErrors,
		ErrorsAsWarnings: fl.errorsAsWarnings,
		ReportPath:       firstNonEmpty(fl.report, cfg.Validate.Report),
		Namespace:        firstNonEmpty(fl.namespace, cfg.Project.Namespace),
		AllowNamespaces:  append(slices.Clone(cfg.Project.AllowNamespaces), fl.allowNamespaces...),
		Jobs:             cfg.Validate.Jobs,
		Logger:           log,
	}
	if cmd.Flags().Changed("jobs") {
		opts.Jobs = fl.jobs
	}

	reg, err := buildRegistry(cfg, fl.rulesPacks, log)
	if err != nil {
		return err
	}

	var db *storage.DB
	dsn := firstNonEmpty(fl.db, cfg.Database.DSN)
	if root := enclosingPackage(dsn, opts.BehaviorPath, opts.ResourcePath); root != "" {
		log.Warn("history disabled: database would be written inside an inspected package", "db", dsn, "package", root)
		dsn = ""
	}
	if dsn != "" && !fl.noHistory {
		db, err = storage.Open(dsn)
		if err != nil {
			log.Warn("history disabled", "err", err)
			db = nil
		} else {
			defer db.Close()
			ws, err := db.ListWaivers(true, timeNow())
			if err != nil {
				log.Warn("cannot load waivers", "err", err)
			}
			opts.Waivers = ws
		}
	}

	res, err := validate.Run(cmd.Context(), reg, opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if res.ReportPath != "" && !opts.Silent {
		fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", res.ReportPath)
	}
	if db != nil {
		recordRun(db, res, log)
	}
	if res.ExitCode != 0 {
		return &exitError{code: res.ExitCode}
	}
	return nil
}

// recordRun stores the run in history. Failures are logged, not fatal.
func recordRun(db *storage.DB, res *validate.Result, log *slog.Logger) {
	run := ir.Run{
		ID:           storage.NewRunID(res.StartedAt),
		StartedAt:    res.StartedAt,
		IRVersion:    ir.Version,
		BehaviorRoot: res.Context.BehaviorRoot,
		ResourceRoot: res.Context.ResourceRoot,
		ExitCode:     res.ExitCode,
		Waived:       res.Waived,
		Report:       res.Report,
	}
	if err := db.SaveRun(&run); err != nil {
		log.Warn("cannot record run", "err", err)
		return
	}
	log.Info("run recorded", "run", run.ID)
}

// enclosingPackage returns the package root among roots that contains the
// database file at dsn, or "" when none does.
func enclosingPackage(dsn string, roots ...string) string {
	if dsn == "" {
		return ""
	}
	abs, err := filepath.Abs(addon.NormalizePath(dsn))
	if err != nil {
		return ""
	}
	for _, r := range roots {
		root, ok := addon.ResolveRoot(r)
		if !ok {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
