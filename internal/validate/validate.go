// Package validate canonicalizes model-proposed filenames into
// filesystem-safe names.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Accepted canonical names are between MinLength and MaxLength characters.
const (
	MinLength = 15
	MaxLength = 100
)

// ErrRejected marks a proposal that cannot be canonicalized.
var ErrRejected = errors.New("proposed filename rejected")

var (
	nonAlnumSpace = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
)

// extensionTokens are trailing tokens treated as a leftover file
// extension and stripped from the cleaned name.
var extensionTokens = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"tif":  true,
	"tiff": true,
	"txt":  true,
	"doc":  true,
	"docx": true,
}

// Normalize cleans a raw proposal into the canonical form. The steps are
// order-sensitive: characters outside [A-Za-z0-9 ] become spaces first,
// whitespace runs collapse and trim, camel-case boundaries get a space,
// and finally any trailing extension-like tokens are stripped.
func Normalize(raw string) string {
	s := nonAlnumSpace.ReplaceAllString(raw, " ")
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	return stripExtensionTokens(s)
}

// Validate canonicalizes raw and accepts the result only when its length
// falls within [MinLength, MaxLength]. A rejection carries no output.
func Validate(raw string) (string, error) {
	name := Normalize(raw)
	if n := len(name); n < MinLength || n > MaxLength {
		return "", fmt.Errorf("%w: cleaned name is %d characters, want %d-%d", ErrRejected, n, MinLength, MaxLength)
	}
	return name, nil
}

// stripExtensionTokens removes trailing space-delimited tokens that look
// like file extensions, e.g. the "pdf" left over from a proposal that
// included the full filename.
func stripExtensionTokens(s string) string {
	for {
		i := strings.LastIndexByte(s, ' ')
		if i < 0 || !extensionTokens[strings.ToLower(s[i+1:])] {
			return s
		}
		s = s[:i]
	}
}
