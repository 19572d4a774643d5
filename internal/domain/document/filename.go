// Package document holds the rules for uploaded CV documents: storage-safe
// filenames, accepted extensions, S3 locators and the knowledge base sidecar.
package document

import (
	"regexp"
	"strings"
)

// AllowedExtensions lists the file extensions accepted for upload, in display order
var AllowedExtensions = []string{".pdf", ".docx", ".txt", ".doc"}

var stemDisallowed = regexp.MustCompile(`[^a-z0-9_]`)

// NormalizeFilename turns a user supplied filename into a storage-safe key.
//
// The name is split on its last dot. The stem is lower-cased, spaces become
// underscores and anything outside [a-z0-9_] is dropped. The extension is only
// lower-cased. Different inputs may normalize to the same key and the stem may
// end up empty; callers must tolerate overwrites.
func NormalizeFilename(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return normalizeStem(name)
	}
	stem := normalizeStem(name[:idx])
	ext := strings.ToLower(name[idx+1:])
	return stem + "." + ext
}

func normalizeStem(stem string) string {
	stem = strings.ToLower(stem)
	stem = strings.ReplaceAll(stem, " ", "_")
	return stemDisallowed.ReplaceAllString(stem, "")
}

// HasAllowedExtension reports whether name ends in one of AllowedExtensions, ignoring case
func HasAllowedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range AllowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// AllowedExtensionsMessage is the human readable rejection message for disallowed uploads
func AllowedExtensionsMessage() string {
	return "Allowed file types: " + strings.Join(AllowedExtensions, ", ")
}
