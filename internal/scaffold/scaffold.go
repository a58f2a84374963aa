// Package scaffold creates a new behavior/resource project on disk.
package scaffold

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/codewithboateng/minepack/internal/addon"
)

// DefaultMinEngine is the min_engine_version written when none is given.
const DefaultMinEngine = "1.20.81"

// ScriptModule is the script API module the starter entry imports.
const ScriptModule = "@minecraft/server"

var (
	namespaceRe = regexp.MustCompile(`^[a-z0-9_]+$`)
	versionRe   = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

type Options struct {
	Name        string
	Dir         string // parent directory; default "."
	Description string
	Author      string
	Namespace   string
	MinEngine   string

	BPOnly bool
	RPOnly bool

	NoReadme    bool
	NoGitignore bool
}

// Result lists what was created.
type Result struct {
	Root         string
	BehaviorRoot string
	ResourceRoot string
	Files        []string
}

func (o *Options) normalize() error {
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return errors.New("project name is required")
	}
	if o.BPOnly && o.RPOnly {
		return errors.New("--bp-only and --rp-only are mutually exclusive")
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Description == "" {
		o.Description = "Created with minepack"
	}
	if o.Author == "" {
		o.Author = "Anonymous"
	}
	if o.Namespace == "" {
		o.Namespace = defaultNamespace(o.Name)
	}
	if !namespaceRe.MatchString(o.Namespace) {
		return fmt.Errorf("namespace %q must be lowercase letters, digits or underscore", o.Namespace)
	}
	if o.MinEngine == "" {
		o.MinEngine = DefaultMinEngine
	}
	if !versionRe.MatchString(o.MinEngine) {
		return fmt.Errorf("min engine version %q must look like 1.20.81", o.MinEngine)
	}
	return nil
}

// defaultNamespace derives a namespace from a project name: lowercased,
// runs of other characters collapsed to "_".
func defaultNamespace(name string) string {
	var sb strings.Builder
	under := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			under = false
			continue
		}
		if !under && sb.Len() > 0 {
			sb.WriteByte('_')
			under = true
		}
	}
	ns := strings.TrimSuffix(sb.String(), "_")
	if ns == "" {
		return "addon"
	}
	return ns
}

// DirName is the directory created for a project name.
func DirName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// Create writes a new project. The target directory must not exist or be empty.
func Create(opts Options) (*Result, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(filepath.Join(opts.Dir, DirName(opts.Name)))
	if err != nil {
		return nil, err
	}
	if entries, err := os.ReadDir(root); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("%s already exists and is not empty", root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	res := &Result{Root: root}
	w := writer{res: res}
	engine := parseVersion(opts.MinEngine)

	var rpUUID string
	if !opts.BPOnly {
		res.ResourceRoot = filepath.Join(root, "RP")
		rpUUID = uuid.NewString()
		m := addon.Manifest{
			FormatVersion: 2,
			Header: addon.Header{
				Name:             opts.Name + " RP",
				Description:      opts.Description,
				UUID:             rpUUID,
				Version:          []int{1, 0, 0},
				MinEngineVersion: engine,
			},
			Modules: []addon.Module{
				{Type: "resources", UUID: uuid.NewString(), Version: []int{1, 0, 0}},
			},
			Metadata: &addon.Metadata{Authors: []string{opts.Author}, GeneratedWith: "minepack"},
		}
		w.json(addon.ManifestPath(res.ResourceRoot), m)
		w.mkdir(filepath.Join(res.ResourceRoot, "textures"))
	}

	if !opts.RPOnly {
		res.BehaviorRoot = filepath.Join(root, "BP")
		deps := []addon.Dependency{{ModuleName: ScriptModule, Version: "1.11.0"}}
		if rpUUID != "" {
			deps = append(deps, addon.Dependency{UUID: rpUUID, Version: []int{1, 0, 0}})
		}
		m := addon.Manifest{
			FormatVersion: 2,
			Header: addon.Header{
				Name:             opts.Name + " BP",
				Description:      opts.Description,
				UUID:             uuid.NewString(),
				Version:          []int{1, 0, 0},
				MinEngineVersion: engine,
			},
			Modules: []addon.Module{
				{Type: "data", UUID: uuid.NewString(), Version: []int{1, 0, 0}},
				{Type: "script", UUID: uuid.NewString(), Version: []int{1, 0, 0}, Entry: "scripts/main.js", Language: "javascript"},
			},
			Dependencies: deps,
			Metadata:     &addon.Metadata{Authors: []string{opts.Author}, GeneratedWith: "minepack"},
		}
		w.json(addon.ManifestPath(res.BehaviorRoot), m)
		w.file(filepath.Join(res.BehaviorRoot, "scripts", "main.js"), starterScript(opts.Name))
	}

	if !opts.NoReadme {
		w.file(filepath.Join(root, "README.md"),
			fmt.Sprintf("# %s\n\n%s\n\nCreated by %s using minepack.\n", opts.Name, opts.Description, opts.Author))
	}
	if !opts.NoGitignore {
		w.file(filepath.Join(root, ".gitignore"),
			"node_modules/\n.DS_Store\n.vscode/\n*.mcaddon\n*.mcpack\nBP/scripts/*.js.map\nreport.json\n")
	}
	w.json(filepath.Join(root, addon.ProjectFile), addon.Project{
		Name:      opts.Name,
		Namespace: opts.Namespace,
		Version:   opts.MinEngine,
	})

	if w.err != nil {
		return nil, w.err
	}
	return res, nil
}

func starterScript(name string) string {
	return fmt.Sprintf(`import { world } from "%s";

// Entry point for behavior scripts.
world.afterEvents.playerSpawn.subscribe(({ player, initialSpawn }) => {
  if (initialSpawn) {
    player.sendMessage(%s);
  }
});
`, ScriptModule, strconv.Quote(name+" loaded"))
}

func parseVersion(v string) []int {
	var out []int
	for _, p := range strings.Split(v, ".") {
		n, _ := strconv.Atoi(p)
		out = append(out, n)
	}
	return out
}

// writer records created files and keeps the first error.
type writer struct {
	res *Result
	err error
}

func (w *writer) mkdir(dir string) {
	if w.err != nil {
		return
	}
	w.err = os.MkdirAll(dir, 0o755)
}

func (w *writer) file(path, content string) {
	w.mkdir(filepath.Dir(path))
	if w.err != nil {
		return
	}
	if w.err = os.WriteFile(path, []byte(content), 0o644); w.err == nil {
		w.res.Files = append(w.res.Files, path)
	}
}

func (w *writer) json(path string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.err = err
		return
	}
	w.file(path, string(b)+"\n")
}
