package state

import (
	"net/url"
	"strings"
)

// TrimURL removes one trailing component from u: the fragment if there is
// one, else the query, else the last path segment. A bare origin or a string
// that does not parse as an absolute URL is returned unchanged.
func TrimURL(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}

	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return u
	}
	path := parsed.EscapedPath()
	if path == "" || path == "/" || !strings.HasSuffix(u, path) {
		return u
	}
	origin := u[:len(u)-len(path)]
	trimmed := strings.TrimSuffix(path, "/")
	return origin + trimmed[:strings.LastIndexByte(trimmed, '/')+1]
}
