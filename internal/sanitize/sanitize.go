// Package sanitize cleans display strings and builds safe filenames.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// MaxFilenameLength is the maximum allowed length for the filename base.
	MaxFilenameLength = 120
	// DefaultExt is the default extension used when none is provided.
	DefaultExt = "mp4"
	// DefaultName is the replacement name when the title is empty.
	DefaultName = "video"
)

var (
	unsafeChars  = regexp.MustCompile(`[\\/:*?"<>|]+`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]+`)
)

// Clean strips characters that are unsafe in tags and filenames and trims
// surrounding whitespace. Unlike ToSafeFilename it removes rather than
// replaces, keeping display strings readable.
func Clean(s string) string {
	s = unsafeChars.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ToSafeFilename builds a cross-platform safe filename from title and
// extension (without dot in ext).
func ToSafeFilename(title, ext string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = DefaultName
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)
	if len(name) > MaxFilenameLength {
		name = name[:MaxFilenameLength]
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = DefaultExt
	}
	return filepath.Clean(name + "." + ext)
}
