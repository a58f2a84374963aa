package rules

import (
	"errors"
	"strings"

	"github.com/codewithboateng/minepack/internal/addon"
)

// documents loads the content documents of every present package.
func documents(ctx Context) ([]addon.Document, error) {
	var out []addon.Document
	for _, p := range ctx.Packages() {
		docs, err := addon.Documents(p.Root, p.Side)
		out = append(out, docs...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// eachUsable runs fn over documents that parsed to a non-empty object.
// Broken documents belong to json/not-empty-or-corrupt alone.
func eachUsable(ctx Context, fn func(d addon.Document) []Finding) ([]Finding, error) {
	docs, err := documents(ctx)
	if err != nil {
		return nil, err
	}
	var out []Finding
	for _, d := range docs {
		if d.Usable() {
			out = append(out, fn(d)...)
		}
	}
	return out, nil
}

func evalHasFormatVersion(ctx Context) ([]Finding, error) {
	return eachUsable(ctx, func(d addon.Document) []Finding {
		v, ok := d.Data["format_version"]
		if !ok || v == nil {
			return []Finding{findingf(d.Path, `%s document is missing "format_version"`, d.Type.Name)}
		}
		if s, isScalar := addon.ScalarString(v); isScalar && strings.TrimSpace(s) == "" {
			return []Finding{findingf(d.Path, `%s document has an empty "format_version"`, d.Type.Name)}
		}
		return nil
	})
}

func formatVersionKnown(versions FormatVersions) func(Context) ([]Finding, error) {
	return func(ctx Context) ([]Finding, error) {
		return eachUsable(ctx, func(d addon.Document) []Finding {
			v, ok := d.Data["format_version"]
			if !ok || v == nil {
				return nil
			}
			s, isScalar := addon.ScalarString(v)
			if !isScalar {
				return []Finding{findingf(d.Path, `%s "format_version" is not a version string`, d.Type.Name)}
			}
			if strings.TrimSpace(s) == "" || versions.Known(d.Type.Name, s) {
				return nil
			}
			known := strings.Join(versions[d.Type.Name], ", ")
			if known == "" {
				known = "none recorded"
			}
			return []Finding{findingf(d.Path, `%s "format_version" %q is not a known safe version (known: %s)`, d.Type.Name, s, known)}
		})
	}
}

func evalTopLevelKey(ctx Context) ([]Finding, error) {
	return eachUsable(ctx, func(d addon.Document) []Finding {
		if key, _, isObj := d.Body(); key != "" {
			if !isObj {
				return []Finding{findingf(d.Path, "%s top-level key %q must hold an object", d.Type.Name, key)}
			}
			return nil
		}
		keys := d.Type.TopLevelKeys
		if len(keys) == 1 {
			return []Finding{findingf(d.Path, "%s document is missing top-level key %q", d.Type.Name, keys[0])}
		}
		return []Finding{findingf(d.Path, "%s document is missing a top-level key (one of %s)", d.Type.Name, strings.Join(keys, ", "))}
	})
}

func evalNotEmptyOrCorrupt(ctx Context) ([]Finding, error) {
	docs, err := documents(ctx)
	if err != nil {
		return nil, err
	}
	var out []Finding
	for _, d := range docs {
		switch {
		case errors.Is(d.Err, addon.ErrNotObject):
			out = append(out, findingf(d.Path, "%s document is not a JSON object", d.Type.Name))
		case d.Err != nil:
			out = append(out, findingf(d.Path, "%s document is not valid JSON: %v", d.Type.Name, d.Err))
		case len(d.Data) == 0:
			out = append(out, findingf(d.Path, "%s document is an empty object", d.Type.Name))
		}
	}
	return out, nil
}
