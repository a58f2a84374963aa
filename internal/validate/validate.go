// Package validate runs a rule registry against a behavior/resource pair
// and turns the findings into a classified report and an exit decision.
package validate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/codewithboateng/minepack/internal/ir"
	"github.com/codewithboateng/minepack/internal/reporting"
	"github.com/codewithboateng/minepack/internal/rules"
)

// TimestampFormat is the report timestamp layout (UTC, millisecond precision).
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Result describes one completed invocation.
type Result struct {
	Report     ir.Report
	ExitCode   int
	RulesRun   int
	Faults     int
	Waived     int
	ReportPath string
	Context    rules.Context
	StartedAt  time.Time
}

// Run validates the packages named by opts with every rule in reg, renders
// to out unless silent, writes the report when one was requested and
// computes the exit code. A *ConfigError means no rule was run.
func Run(ctx context.Context, reg *rules.Registry, opts Options, out io.Writer) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	p, err := prepare(opts, log)
	if err != nil {
		return nil, err
	}

	started := now().UTC()
	list := reg.Rules()
	log.Debug("validation start",
		"behavior", p.ctx.BehaviorRoot,
		"resource", p.ctx.ResourceRoot,
		"namespace", p.ctx.Namespace,
		"rules", len(list),
		"jobs", opts.Jobs,
	)

	slots, err := execute(ctx, list, p.ctx, opts.Jobs, log)
	if err != nil {
		return nil, fmt.Errorf("run rules: %w", err)
	}
	entries, faults := collect(list, slots, p.ctx)
	entries, waived := ApplyWaivers(entries, opts.Waivers, p.ctx, started)

	rep := ApplyOverrides(classify(entries), opts.WarningsAsErrors, opts.ErrorsAsWarnings)
	rep.Timestamp = started.Format(TimestampFormat)
	rep = rep.Normalized()

	res := &Result{
		Report:     rep,
		ExitCode:   ExitCode(rep),
		RulesRun:   len(list),
		Faults:     faults,
		Waived:     waived,
		ReportPath: p.reportPath,
		Context:    p.ctx,
		StartedAt:  started,
	}

	if !opts.Silent {
		Render(out, rep, opts.Verbose)
	}
	if p.reportPath != "" {
		if err := reporting.WriteReport(p.reportPath, rep); err != nil {
			return res, fmt.Errorf("write report: %w", err)
		}
		log.Debug("report written", "path", p.reportPath)
	}

	log.Info("validation complete",
		"errors", len(rep.Errors),
		"warnings", len(rep.Warnings),
		"info", len(rep.Info),
		"faults", faults,
		"waived", waived,
		"exit", res.ExitCode,
	)
	return res, nil
}

// ExitCode is 1 when the final errors bucket is non-empty, 0 otherwise.
func ExitCode(rep ir.Report) int {
	if len(rep.Errors) > 0 {
		return 1
	}
	return 0
}
