package seo

import (
	"net/url"
	"strings"
)

// shimAmpersand is how the static-host routing shim escapes "&" inside the
// encoded path.
const shimAmpersand = "~and~"

// ShimPath decodes a query string produced by the static-host routing shim
// ("?/pricing" arrives here as "/pricing"). It reports false when rawQuery
// does not carry a shim path.
func ShimPath(rawQuery string) (string, bool) {
	if !strings.HasPrefix(rawQuery, "/") {
		return "", false
	}
	p := strings.ReplaceAll(rawQuery[1:], shimAmpersand, "&")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p, true
}

// NormalizeCanonical turns raw into an absolute origin+path+hash URL,
// unwrapping shim-encoded paths. Input that does not parse as an absolute
// URL is returned unchanged.
func NormalizeCanonical(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	if p, ok := ShimPath(u.RawQuery); ok {
		if unescaped, err := url.PathUnescape(p); err == nil {
			u.Path = unescaped
			u.RawPath = p
		} else {
			u.Path = p
			u.RawPath = ""
		}
	}
	u.RawQuery = ""
	u.ForceQuery = false

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	out := origin(u) + path
	if u.Fragment != "" {
		out += "#" + u.EscapedFragment()
	}
	return out
}

// origin returns scheme://host with default ports removed.
func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && !isDefaultPort(scheme, port) {
		host += ":" + port
	}
	return scheme + "://" + host
}

func isDefaultPort(scheme, port string) bool {
	switch scheme {
	case "http", "ws":
		return port == "80"
	case "https", "wss":
		return port == "443"
	case "ftp":
		return port == "21"
	}
	return false
}

// originOf parses raw and returns its origin, or "" when raw is not an
// absolute URL.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return origin(u)
}
