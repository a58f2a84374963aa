package addon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotObject marks a document that parsed but is not a JSON object.
var ErrNotObject = errors.New("document is not a JSON object")

// Document is one content JSON file. Data is nil when Err is set.
type Document struct {
	Type ContentType
	Path string
	Data map[string]any
	Err  error
}

// Usable reports whether the document parsed to a non-empty object.
func (d Document) Usable() bool { return d.Err == nil && len(d.Data) > 0 }

// Body returns the object under the first top-level key of the document's
// type that is present.
func (d Document) Body() (string, map[string]any, bool) {
	for _, k := range d.Type.TopLevelKeys {
		if v, ok := d.Data[k]; ok {
			m, isObj := v.(map[string]any)
			return k, m, isObj
		}
	}
	return "", nil, false
}

// Identifier returns description.identifier of an identified document.
// present is true whenever the field exists, even if it is not a string.
func (d Document) Identifier() (id string, isString, present bool) {
	if !d.Type.Identified {
		return "", false, false
	}
	_, body, ok := d.Body()
	if !ok {
		return "", false, false
	}
	raw, ok := Lookup(body, "description", "identifier")
	if !ok {
		return "", false, false
	}
	s, isStr := raw.(string)
	return s, isStr, true
}

// Documents loads every content document of the given side below root, in
// ContentTypes order and lexical path order within a folder. Parse failures
// are recorded on the document, not returned.
func Documents(root string, side Side) ([]Document, error) {
	var out []Document
	for _, ct := range ContentTypesFor(side) {
		files, err := JSONFiles(filepath.Join(root, ct.Folder))
		if err != nil {
			return out, err
		}
		for _, p := range files {
			data, err := LoadJSON(p)
			var derr *DecodeError
			if err != nil && !errors.As(err, &derr) {
				return out, err
			}
			doc := Document{Type: ct, Path: p, Data: data}
			if derr != nil {
				doc.Err = derr.Err
			}
			out = append(out, doc)
		}
	}
	return out, nil
}

// JSONFiles lists *.json files below dir recursively, sorted. A missing dir
// yields no files.
func JSONFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadJSON reads a JSON object from path. Numbers are kept as json.Number
// so version strings written as numbers survive intact. Malformed content
// yields a *DecodeError; I/O problems are returned as is.
func LoadJSON(path string) (map[string]any, error) {
	v, err := LoadJSONValue(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{Path: path, Err: ErrNotObject}
	}
	return m, nil
}

// LoadJSONValue reads a single JSON value of any shape from path.
func LoadJSONValue(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Path: path, Err: errors.New("unexpected data after top-level value")}
	}
	return v, nil
}

// Lookup walks nested objects by key.
func Lookup(m map[string]any, keys ...string) (any, bool) {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupObject is Lookup restricted to object results.
func LookupObject(m map[string]any, keys ...string) (map[string]any, bool) {
	v, ok := Lookup(m, keys...)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ScalarString renders strings and json.Numbers as text.
func ScalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	}
	return "", false
}
