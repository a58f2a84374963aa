package validate

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/codewithboateng/minepack/internal/ir"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	okColor      = color.New(color.FgGreen, color.Bold)
	ruleColor    = color.New(color.Faint)
)

// Render prints the final classification. Info entries are printed only
// when verbose.
func Render(w io.Writer, rep ir.Report, verbose bool) {
	if len(rep.Errors) == 0 && len(rep.Warnings) == 0 {
		okColor.Fprintln(w, "✔ Validation passed: no errors or warnings.")
		if verbose {
			renderBucket(w, infoColor, "info", rep.Info)
		}
		return
	}
	renderBucket(w, errorColor, "error(s)", rep.Errors)
	renderBucket(w, warningColor, "warning(s)", rep.Warnings)
	if verbose {
		renderBucket(w, infoColor, "info", rep.Info)
	}
}

func renderBucket(w io.Writer, c *color.Color, label string, entries []ir.Entry) {
	c.Fprintf(w, "%d %s\n", len(entries), label)
	for _, e := range entries {
		fmt.Fprintf(w, "  %s %s\n    %s\n", ruleColor.Sprintf("[%s]", e.Rule), e.File, e.Message)
	}
}
