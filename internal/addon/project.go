package addon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ProjectFile is written by the scaffolder next to the package roots.
const ProjectFile = "minepack.json"

type Project struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Template  string `json:"template,omitempty"`
	Version   string `json:"version,omitempty"`
}

// FindProject looks for a project file in the parent directory of each
// given package root, in order, and returns the first one found.
func FindProject(roots ...string) (*Project, string, error) {
	seen := map[string]bool{}
	for _, r := range roots {
		if r == "" {
			continue
		}
		dir := filepath.Dir(r)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		p := filepath.Join(dir, ProjectFile)
		b, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, p, fmt.Errorf("read project file: %w", err)
		}
		var proj Project
		if err := json.Unmarshal(b, &proj); err != nil {
			return nil, p, &DecodeError{Path: p, Err: err}
		}
		return &proj, p, nil
	}
	return nil, "", nil
}
