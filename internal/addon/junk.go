package addon

import "strings"

var junkFiles = map[string]bool{
	".ds_store":       true,
	"thumbs.db":       true,
	"ehthumbs.db":     true,
	"desktop.ini":     true,
	".spotlight-v100": true,
	".trashes":        true,
	".fseventsd":      true,
}

// IsJunk matches OS and editor artifacts, including AppleDouble "._" files.
func IsJunk(name string) bool {
	return junkFiles[strings.ToLower(name)] || strings.HasPrefix(name, "._")
}
