// Package addon reads behavior and resource package trees: manifests,
// content documents, texture atlases and the project file written by the
// scaffolder. Everything here is read-only.
package addon
