package rules

import (
	"slices"
	"sort"
)

// FormatVersions maps a content type to the format_version values known to
// be safe for it. The runtime may accept newer values, so a miss only warns.
type FormatVersions map[string][]string

// DefaultFormatVersions is the documented, production-safe table.
// Reference: https://learn.microsoft.com/minecraft/creator/reference/content/versioning
func DefaultFormatVersions() FormatVersions {
	return FormatVersions{
		"item":              {"1.16.100", "1.20.0"},
		"block":             {"1.16.100", "1.20.0"},
		"recipe":            {"1.12", "1.13.0", "1.16.100", "1.17.0"},
		"entity":            {"1.8.0", "1.10.0"},
		"animation":         {"1.8.0", "1.10.0"},
		"render_controller": {"1.8.0"},
	}
}

// Merge returns a new table holding fv plus extra, without duplicates.
func (fv FormatVersions) Merge(extra map[string][]string) FormatVersions {
	out := FormatVersions{}
	for k, vs := range fv {
		out[k] = append([]string(nil), vs...)
	}
	for _, k := range sortedTypeNames(extra) {
		for _, v := range extra[k] {
			if !slices.Contains(out[k], v) {
				out[k] = append(out[k], v)
			}
		}
	}
	return out
}

func (fv FormatVersions) Known(contentType, version string) bool {
	return slices.Contains(fv[contentType], version)
}

func sortedTypeNames(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
