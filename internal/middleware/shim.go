package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"reachright.co.za/web/internal/seo"
)

// LegacyShim redirects links in the static-host form "/?/about" to "/about".
// Those links were produced by the single-page build's 404 fallback and are
// still indexed.
func LegacyShim(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
			next.ServeHTTP(w, r)
			return
		}
		if target, ok := seo.ShimPath(r.URL.RawQuery); ok {
			http.Redirect(w, r, shimTarget(target), http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// shimTarget splits the unwrapped path from its query, keeps the result on
// this host and re-escapes both halves for the Location header.
func shimTarget(p string) string {
	rawPath, rawQuery, _ := strings.Cut(p, "&")
	if unescaped, err := url.PathUnescape(rawPath); err == nil {
		rawPath = unescaped
	}
	target := url.URL{Path: "/" + strings.TrimLeft(rawPath, "/\\")}
	if rawQuery != "" {
		// ParseQuery keeps the pairs it could decode even when it reports an error.
		values, _ := url.ParseQuery(rawQuery)
		target.RawQuery = values.Encode()
	}
	return target.String()
}
