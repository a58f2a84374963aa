package rules

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/codewithboateng/minepack/internal/addon"
)

var identifierRe = regexp.MustCompile(`^[a-z0-9_]+:[a-z0-9_]+$`)

func evalIdentifierFormat(ctx Context) ([]Finding, error) {
	return eachUsable(ctx, func(d addon.Document) []Finding {
		id, isString, present := d.Identifier()
		switch {
		case !present:
			return nil
		case !isString:
			return []Finding{findingf(d.Path, "%s identifier must be a string", d.Type.Name)}
		case !identifierRe.MatchString(id):
			return []Finding{findingf(d.Path, `identifier %q must match "namespace:name" using lowercase letters, digits and underscores`, id)}
		}
		return nil
	})
}

func evalNamespaceWhitelist(ctx Context) ([]Finding, error) {
	if ctx.Namespace == "" {
		return nil, nil
	}
	return eachUsable(ctx, func(d addon.Document) []Finding {
		id, isString, present := d.Identifier()
		if !present || !isString || !identifierRe.MatchString(id) {
			return nil
		}
		ns, _, _ := strings.Cut(id, ":")
		if ns == ctx.Namespace || slices.Contains(ctx.AllowNamespaces, ns) {
			return nil
		}
		return []Finding{findingf(d.Path, "identifier %q uses namespace %q instead of project namespace %q", id, ns, ctx.Namespace)}
	})
}

func evalNoDuplicateFilenames(ctx Context) ([]Finding, error) {
	var out []Finding
	for _, p := range ctx.Packages() {
		err := filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			entries, err := os.ReadDir(path)
			if err != nil {
				return err
			}
			out = append(out, collisions(path, entries)...)
			return nil
		})
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// collisions groups the entries of one directory by lowercased name and
// reports each group with more than one member once, against its first
// member in lexical order.
func collisions(dir string, entries []fs.DirEntry) []Finding {
	groups := map[string][]string{}
	var order []string
	for _, e := range entries { // os.ReadDir sorts by name
		k := strings.ToLower(e.Name())
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e.Name())
	}
	var out []Finding
	for _, k := range order {
		names := groups[k]
		if len(names) < 2 {
			continue
		}
		out = append(out, findingf(filepath.Join(dir, names[0]),
			"filenames collide on case-insensitive storage: %s", strings.Join(names, ", ")))
	}
	return out
}
