package rules

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/codewithboateng/minepack/internal/addon"
)

func evalScriptNotEmpty(ctx Context) ([]Finding, error) {
	if ctx.BehaviorRoot == "" {
		return nil, nil
	}
	m, _, err := addon.LoadManifest(ctx.BehaviorRoot)
	if err != nil {
		if manifestProblem(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Finding
	for _, entry := range m.ScriptEntries() {
		p := filepath.Join(ctx.BehaviorRoot, addon.NormalizePath(entry))
		src, err := os.ReadFile(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			out = append(out, findingf(p, "script entry %q declared in manifest does not exist", entry))
			continue
		case err != nil:
			return out, err
		}
		if !HasStatement(src) {
			out = append(out, findingf(p, "script entry %q contains only whitespace or comments", entry))
		}
	}
	return out, nil
}

// HasStatement reports whether src holds anything besides whitespace,
// line comments, block comments, a byte order mark and a leading #! line.
func HasStatement(src []byte) bool {
	const (
		code = iota
		line
		block
	)
	i := 0
	if len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF {
		i = 3
	}
	if len(src) >= i+2 && src[i] == '#' && src[i+1] == '!' {
		for i < len(src) && src[i] != '\n' {
			i++
		}
	}
	state := code
	for ; i < len(src); i++ {
		c := src[i]
		switch state {
		case line:
			if c == '\n' || c == '\r' {
				state = code
			}
		case block:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				state = code
				i++
			}
		default:
			switch {
			case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state = line
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = block
				i++
			default:
				return true
			}
		}
	}
	return false
}
