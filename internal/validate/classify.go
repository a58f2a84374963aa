package validate

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codewithboateng/minepack/internal/ir"
	"github.com/codewithboateng/minepack/internal/rules"
)

// collect flattens the slots into entries in registry order, then
// within-rule order. A faulted rule contributes one synthetic entry.
func collect(list []rules.Rule, slots []slot, rctx rules.Context) ([]ir.Entry, int) {
	var (
		out    []ir.Entry
		faults int
	)
	for i, r := range list {
		s := slots[i]
		if s.fault != nil {
			faults++
			out = append(out, ir.Entry{
				Rule:     r.Key,
				File:     rctx.AnyRoot(),
				Message:  faultMessage(s.fault),
				Severity: string(r.Severity),
				Seq:      len(out),
			})
			continue
		}
		for _, f := range s.findings {
			out = append(out, ir.Entry{
				Rule:     r.Key,
				File:     f.File,
				Message:  f.Message,
				Severity: string(r.Severity),
				Seq:      len(out),
			})
		}
	}
	return out, faults
}

// classify buckets entries by their rule severity, keeping order.
func classify(entries []ir.Entry) ir.Report {
	var rep ir.Report
	for _, e := range entries {
		switch rules.Severity(e.Severity) {
		case rules.SeverityError:
			rep.Errors = append(rep.Errors, e)
		case rules.SeverityWarning:
			rep.Warnings = append(rep.Warnings, e)
		default:
			rep.Info = append(rep.Info, e)
		}
	}
	return rep
}

// ApplyOverrides reclassifies the errors and warnings buckets. Both flags
// read the buckets as given, so setting both swaps them.
func ApplyOverrides(rep ir.Report, warningsAsErrors, errorsAsWarnings bool) ir.Report {
	origErrors, origWarnings := rep.Errors, rep.Warnings

	var errs, warns []ir.Entry
	if errorsAsWarnings {
		warns = append(warns, origErrors...)
	} else {
		errs = append(errs, origErrors...)
	}
	if warningsAsErrors {
		errs = append(errs, origWarnings...)
	} else {
		warns = append(warns, origWarnings...)
	}
	sortBySeq(errs)
	sortBySeq(warns)

	rep.Errors, rep.Warnings = errs, warns
	return rep
}

func sortBySeq(es []ir.Entry) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].Seq < es[j].Seq })
}

// ApplyWaivers drops entries covered by an active waiver and returns the
// remaining entries with the number dropped.
func ApplyWaivers(entries []ir.Entry, waivers []ir.Waiver, rctx rules.Context, now time.Time) ([]ir.Entry, int) {
	var active []ir.Waiver
	for _, w := range waivers {
		if w.Active(now) {
			active = append(active, w)
		}
	}
	if len(active) == 0 {
		return entries, 0
	}
	out := make([]ir.Entry, 0, len(entries))
	waived := 0
	for _, e := range entries {
		if waivedBy(e, active, rctx) {
			waived++
			continue
		}
		out = append(out, e)
	}
	return out, waived
}

func waivedBy(e ir.Entry, ws []ir.Waiver, rctx rules.Context) bool {
	for _, w := range ws {
		if w.Rule != e.Rule && w.Rule != "*" {
			continue
		}
		if w.PathPattern == "" || matchPath(w.PathPattern, e.File, rctx) {
			return true
		}
	}
	return false
}

// matchPath matches pattern against the absolute file path and against the
// path relative to the package root holding it.
func matchPath(pattern, file string, rctx rules.Context) bool {
	candidates := []string{filepath.ToSlash(file)}
	for _, p := range rctx.Packages() {
		if rel, err := filepath.Rel(p.Root, file); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, filepath.ToSlash(rel))
		}
	}
	for _, c := range candidates {
		if ok, err := doublestar.Match(pattern, c); err == nil && ok {
			return true
		}
	}
	return false
}
