package main

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"reachright.co.za/web/internal/nav"
	"reachright.co.za/web/internal/observability"
)

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// sitemapHandler lists the navigable pages with lastmod taken from their copy.
func (a *app) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	set := urlset{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, item := range nav.Main {
		p, ok := lookupPage(item.Path)
		if !ok {
			continue
		}
		u := sitemapURL{
			Loc:        a.cfg.Site.BaseURL + canonicalPath(item.Path),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		}
		if item.Path == "/" {
			u.Priority = "1.0"
		}
		if page, err := a.content.GetPage(r.Context(), p.Slug); err == nil && !page.UpdatedAt.IsZero() {
			u.LastMod = page.UpdatedAt.UTC().Format(time.DateOnly)
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		observability.FromContext(r.Context()).Error("sitemap encode failed", zap.Error(err))
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

// robotsHandler allows crawling in production only.
func (a *app) robotsHandler(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if a.cfg.Server.Production() {
		b.WriteString("Allow: /\n")
		b.WriteString("Disallow: /thank-you\n")
	} else {
		b.WriteString("Disallow: /\n")
	}
	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", a.cfg.Site.BaseURL)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// canonicalPath keeps the root as "/" and drops trailing slashes elsewhere.
func canonicalPath(p string) string {
	if p == "/" {
		return "/"
	}
	return "/" + strings.Trim(p, "/")
}
