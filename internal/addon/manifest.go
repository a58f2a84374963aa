package addon

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// ManifestFile is the descriptor every package root carries.
const ManifestFile = "manifest.json"

// ErrNoManifest is returned when a package root has no manifest.json.
var ErrNoManifest = errors.New("manifest.json not found")

// DecodeError reports a file that exists but is not valid JSON for its role.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Path, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

type Manifest struct {
	FormatVersion any          `json:"format_version"`
	Header        Header       `json:"header"`
	Modules       []Module     `json:"modules"`
	Dependencies  []Dependency `json:"dependencies,omitempty"`
	Metadata      *Metadata    `json:"metadata,omitempty"`
}

// Header identifies the package. Description and Version are left untyped:
// manifests in the wild use both strings and arrays for versions, and the
// description check needs to tell a missing value from a non-string one.
type Header struct {
	Name             string `json:"name"`
	Description      any    `json:"description,omitempty"`
	UUID             string `json:"uuid"`
	Version          any    `json:"version"`
	MinEngineVersion any    `json:"min_engine_version,omitempty"`
}

type Module struct {
	Type     string `json:"type"`
	UUID     string `json:"uuid"`
	Version  any    `json:"version"`
	Entry    string `json:"entry,omitempty"`
	Language string `json:"language,omitempty"`
}

// Dependency references another package by uuid or a script module by name.
type Dependency struct {
	UUID       string `json:"uuid,omitempty"`
	ModuleName string `json:"module_name,omitempty"`
	Version    any    `json:"version,omitempty"`
}

type Metadata struct {
	Authors       []string `json:"authors,omitempty"`
	GeneratedWith any      `json:"generated_with,omitempty"`
}

// ManifestPath returns the manifest location for a package root.
func ManifestPath(root string) string { return filepath.Join(root, ManifestFile) }

// LoadManifest reads root/manifest.json. The returned path is always set so
// callers can report against it. A missing file yields ErrNoManifest; a
// file that is not a JSON object yields a *DecodeError. Fields of an
// unexpected type are dropped rather than failing the whole manifest.
func LoadManifest(root string) (*Manifest, string, error) {
	path := ManifestPath(root)
	data, err := LoadJSON(path)
	if err != nil {
		var derr *DecodeError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, path, ErrNoManifest
		case errors.As(err, &derr):
			return nil, path, err
		}
		return nil, path, fmt.Errorf("read manifest: %w", err)
	}
	return manifestFrom(data), path, nil
}

// manifestFrom picks the manifest fields out of a decoded object. Strings
// and numbers are kept as text; anything else in a string field reads as "".
func manifestFrom(data map[string]any) *Manifest {
	m := &Manifest{FormatVersion: data["format_version"]}
	if h, ok := data["header"].(map[string]any); ok {
		m.Header = Header{
			Name:             text(h["name"]),
			Description:      h["description"],
			UUID:             text(h["uuid"]),
			Version:          h["version"],
			MinEngineVersion: h["min_engine_version"],
		}
	}
	for _, v := range items(data["modules"]) {
		mod, ok := v.(map[string]any)
		if !ok {
			continue
		}
		m.Modules = append(m.Modules, Module{
			Type:     text(mod["type"]),
			UUID:     text(mod["uuid"]),
			Version:  mod["version"],
			Entry:    text(mod["entry"]),
			Language: text(mod["language"]),
		})
	}
	for _, v := range items(data["dependencies"]) {
		dep, ok := v.(map[string]any)
		if !ok {
			m.Dependencies = append(m.Dependencies, Dependency{})
			continue
		}
		m.Dependencies = append(m.Dependencies, Dependency{
			UUID:       text(dep["uuid"]),
			ModuleName: text(dep["module_name"]),
			Version:    dep["version"],
		})
	}
	if md, ok := data["metadata"].(map[string]any); ok {
		m.Metadata = &Metadata{GeneratedWith: md["generated_with"]}
		switch a := md["authors"].(type) {
		case string:
			m.Metadata.Authors = []string{a}
		case []any:
			for _, v := range a {
				if s, ok := v.(string); ok {
					m.Metadata.Authors = append(m.Metadata.Authors, s)
				}
			}
		}
	}
	return m
}

func text(v any) string {
	s, _ := ScalarString(v)
	return s
}

func items(v any) []any {
	list, _ := v.([]any)
	return list
}

// ScriptEntries returns the entry paths of script modules in declaration order.
func (m *Manifest) ScriptEntries() []string {
	var out []string
	for _, mod := range m.Modules {
		if mod.Type == "script" && mod.Entry != "" {
			out = append(out, mod.Entry)
		}
	}
	return out
}
