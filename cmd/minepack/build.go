package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codewithboateng/minepack/internal/pack"
	"github.com/codewithboateng/minepack/internal/validate"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Validate and package into .mcaddon/.mcpack",
	Long: `Validate the packages silently and, unless errors remain, write an
archive: .mcaddon for a behavior+resource pair, .mcpack for a single
package, or .zip with --zip. --force builds despite errors.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var buildFlags struct {
	behavior string
	resource string
	output   string
	zip      bool
	force    bool
	bpOnly   bool
	rpOnly   bool
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildFlags.behavior, "behavior", "b", "", "behavior package directory")
	f.StringVarP(&buildFlags.resource, "resource", "r", "", "resource package directory")
	f.StringVarP(&buildFlags.output, "output", "o", "", "archive path")
	f.BoolVar(&buildFlags.zip, "zip", false, "write a .zip archive")
	f.BoolVar(&buildFlags.force, "force", false, "build even when validation reports errors")
	f.BoolVar(&buildFlags.bpOnly, "bp-only", false, "package only the behavior package")
	f.BoolVar(&buildFlags.rpOnly, "rp-only", false, "package only the resource package")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg, nil, log)
	if err != nil {
		return err
	}
	fl := buildFlags
	res, err := pack.Build(cmd.Context(), reg, pack.Options{
		BehaviorPath: firstNonEmpty(fl.behavior, cfg.Validate.Behavior),
		ResourcePath: firstNonEmpty(fl.resource, cfg.Validate.Resource),
		Output:       fl.output,
		Zip:          fl.zip,
		Force:        fl.force,
		BPOnly:       fl.bpOnly,
		RPOnly:       fl.rpOnly,
		Validate: validate.Options{
			Namespace:       cfg.Project.Namespace,
			AllowNamespaces: cfg.Project.AllowNamespaces,
			Jobs:            cfg.Validate.Jobs,
		},
		Logger: log,
	})
	out := cmd.OutOrStdout()
	if errors.Is(err, pack.ErrValidationFailed) {
		validate.Render(out, res.Validation.Report, false)
		color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), "✖ Validation failed. Fix errors or use --force.")
		return &exitError{code: 1}
	}
	if err != nil {
		return err
	}
	color.New(color.FgGreen, color.Bold).Fprintf(out, "✔ Built %s (%d files)\n", res.Output, res.Files)
	if n := len(res.Validation.Report.Warnings); n > 0 {
		fmt.Fprintf(out, "  %d warning(s); run minepack validate for details\n", n)
	}
	return nil
}
