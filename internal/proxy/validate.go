// Package proxy validates and forwards browser API calls to the backend,
// attaching a minted bearer assertion when the caller has a session.
package proxy

import (
	"net/url"
	"regexp"
	"strings"
)

// pathAllowed matches letters, digits, hyphens, underscores, periods and
// forward slashes. The set deliberately admits UUID-shaped identifiers and
// filenames with extensions; everything else is rejected.
var pathAllowed = regexp.MustCompile(`^[a-zA-Z0-9\-_./]+$`)

// ValidatePath reports whether a proxy path is safe to splice into the
// backend URL. Traversal sequences, doubled separators, control characters
// and characters outside the allowlist are all rejected.
func ValidatePath(path string) bool {
	if path == "" {
		return false
	}
	if strings.Contains(path, "..") || strings.Contains(path, "//") {
		return false
	}
	for _, r := range path {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return pathAllowed.MatchString(path)
}

// CanonicalQuery parses a raw query string and re-encodes it canonically.
// An unparseable query is dropped entirely rather than forwarded as-is.
// The returned string includes the leading "?" when non-empty.
func CanonicalQuery(raw string) string {
	if raw == "" {
		return ""
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}

	encoded := values.Encode()
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}
