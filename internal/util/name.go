// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

const maxSanitizedNameLength = 100

var (
	// Matches any run of characters not allowed in storage object names.
	disallowedRunRe = regexp.MustCompile(`[^a-z0-9._-]+`)
	// Matches multiple consecutive hyphens.
	multipleHyphenRe = regexp.MustCompile(`-+`)
)

// SanitizeImageName converts an uploaded file name into a storage-safe name.
// The result is used to build object keys of the form
// {owner}/{timestamp}-{name}.jpg, so it must survive URL paths and
// filesystem paths unescaped.
//
// Rules:
//  1. Strip the extension
//  2. Lowercase
//  3. Collapse any run outside [a-z0-9._-] into a single hyphen
//  4. Collapse multiple hyphens
//  5. Trim leading/trailing hyphens
//  6. Truncate to 100 characters
//
// Examples:
//
//	"My Photo!!.PNG"  → "my-photo"
//	"pasted-1712.png" → "pasted-1712"
//	"über café.jpg"   → "ber-caf"
func SanitizeImageName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	// Strip the extension, keeping names like "archive.tar" intact only up
	// to the final dot.
	if i := strings.LastIndex(s, "."); i > 0 {
		s = s[:i]
	}

	s = disallowedRunRe.ReplaceAllString(s, "-")
	s = multipleHyphenRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > maxSanitizedNameLength {
		s = s[:maxSanitizedNameLength]
		s = strings.TrimRight(s, "-")
	}

	return s
}
