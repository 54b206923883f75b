package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
)

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// pathToURI converts an absolute filesystem path to a file:// URI.
func pathToURI(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// utf16Len returns the length of s in UTF-16 code units, the unit LSP
// positions count in.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
