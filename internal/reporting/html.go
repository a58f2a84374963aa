package reporting

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/codewithboateng/minepack/internal/ir"
)

// WriteHTML renders a stored run as <outDir>/<runID>.html.
func WriteHTML(outDir string, run *ir.Run) (string, error) {
	path := filepath.Join(outDir, run.ID+".html")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	var sb strings.Builder
	renderHTML(&sb, run)
	return path, WriteFileAtomic(path, []byte(sb.String()), 0o644)
}

func renderHTML(w io.Writer, run *ir.Run) {
	rep := run.Report
	fmt.Fprintf(w, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(run.ID))
	fmt.Fprint(w, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px;text-align:left} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .errors{color:#b00020} .warnings{color:#a66300} .info{color:#1d5fa8}</style>")
	fmt.Fprint(w, "</head><body>")

	fmt.Fprintf(w, "<h1>minepack validation – <span class='mono'>%s</span></h1>", html.EscapeString(run.ID))
	fmt.Fprintf(w, "<p>Errors: %d &nbsp; Warnings: %d &nbsp; Info: %d</p>", len(rep.Errors), len(rep.Warnings), len(rep.Info))
	fmt.Fprintf(w, "<p class='dim'>Timestamp: %s", html.EscapeString(rep.Timestamp))
	if run.Waived > 0 {
		fmt.Fprintf(w, " &nbsp; Waived: %d", run.Waived)
	}
	fmt.Fprint(w, "</p>")
	if run.BehaviorRoot != "" {
		fmt.Fprintf(w, "<p class='dim'>Behavior: <span class='mono'>%s</span></p>", html.EscapeString(run.BehaviorRoot))
	}
	if run.ResourceRoot != "" {
		fmt.Fprintf(w, "<p class='dim'>Resource: <span class='mono'>%s</span></p>", html.EscapeString(run.ResourceRoot))
	}

	if rep.Len() == 0 {
		fmt.Fprint(w, "<h2>Findings</h2><p class='dim'>No findings.</p></body></html>")
		return
	}
	for _, b := range ir.Buckets {
		entries := rep.Bucket(b)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(w, "<h2 class='%s'>%s (%d)</h2>", b, strings.ToUpper(string(b[:1]))+string(b[1:]), len(entries))
		fmt.Fprint(w, "<table><tr><th>Rule</th><th>File</th><th>Message</th></tr>")
		for _, e := range entries {
			fmt.Fprintf(w, "<tr><td class='mono'>%s</td><td class='mono'>%s</td><td>%s</td></tr>",
				html.EscapeString(e.Rule),
				html.EscapeString(e.File),
				html.EscapeString(e.Message),
			)
		}
		fmt.Fprint(w, "</table>")
	}
	fmt.Fprint(w, "</body></html>")
}
