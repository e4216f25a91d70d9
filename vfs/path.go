package vfs

import "strings"

// Clean normalizes path to the canonical form used throughout rgssfs:
// forward slashes, no leading or trailing separator, empty string for the
// root. Backslashes are treated as separators because RPG Maker archives
// store Windows-style paths.
func Clean(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.Trim(path, "/")
}

// Split breaks a cleaned path into its components. The root splits into
// no components.
func Split(path string) []string {
	path = Clean(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Join joins path components, skipping empty ones.
func Join(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}

// Base returns the last component of path, or "" for the root.
func Base(path string) string {
	path = Clean(path)
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Dir returns path without its last component, or "" if there is none.
func Dir(path string) string {
	path = Clean(path)
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

// Ext returns the extension of the last component of path, without the
// dot. A name with no dot, or a leading dot only, has no extension.
func Ext(path string) string {
	name := Base(path)
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i+1:]
	}
	return ""
}

// TrimExt returns path without the extension of its last component.
func TrimExt(path string) string {
	path = Clean(path)
	ext := Ext(path)
	if ext == "" {
		return path
	}
	return path[:len(path)-len(ext)-1]
}
