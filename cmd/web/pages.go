package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"reachright.co.za/web/internal/cms"
	"reachright.co.za/web/internal/handlers"
	"reachright.co.za/web/internal/observability"
	"reachright.co.za/web/internal/seo"
)

// staticPage describes one GET-only page: where its copy lives, which
// template renders it and how its view model and JSON-LD are built.
type staticPage struct {
	Path     string
	Slug     string
	Template string
	Label    string

	View       func(r *http.Request) any
	Structured func(ld handlers.StructuredData, pageURL string) any
}

var staticPages = []staticPage{
	{
		Path: "/", Slug: "home", Template: "home", Label: "Home",
		View:       func(*http.Request) any { return handlers.BuildHomeView() },
		Structured: func(ld handlers.StructuredData, _ string) any { return ld.Home() },
	},
	{
		Path: "/about", Slug: "about", Template: "about", Label: "About",
		View:       func(*http.Request) any { return handlers.BuildAboutView() },
		Structured: handlers.StructuredData.About,
	},
	{
		Path: "/services", Slug: "services", Template: "services", Label: "Services",
		View:       func(*http.Request) any { return handlers.BuildServicesView() },
		Structured: handlers.StructuredData.Services,
	},
	{
		Path: "/pricing", Slug: "pricing", Template: "pricing", Label: "Pricing",
		View:       func(*http.Request) any { return handlers.BuildPricingView() },
		Structured: handlers.StructuredData.Pricing,
	},
	{
		Path: "/testimonials", Slug: "testimonials", Template: "testimonials", Label: "Testimonials",
		View:       func(*http.Request) any { return handlers.BuildTestimonialsView() },
		Structured: handlers.StructuredData.Testimonials,
	},
	{
		Path: "/thank-you", Slug: "thank-you", Template: "thank-you", Label: "Thank You",
		View: func(r *http.Request) any { return handlers.BuildThankYouView(r.URL.Query().Get("plan")) },
	},
}

var contactPageDef = staticPage{
	Path: "/contact", Slug: "contact", Template: "contact", Label: "Contact",
	Structured: handlers.StructuredData.Contact,
}

const (
	notFoundTitle       = "404 — Page Not Found | ReachRight Marketing"
	notFoundDescription = "Oops! The page you are looking for doesn’t exist. Return to ReachRight Marketing home to explore our digital marketing solutions."
)

func lookupPage(path string) (staticPage, bool) {
	path = "/" + strings.Trim(path, "/")
	if path == contactPageDef.Path {
		return contactPageDef, true
	}
	for _, p := range staticPages {
		if p.Path == path {
			return p, true
		}
	}
	return staticPage{}, false
}

// checkContent warms the copy cache from disk and returns the slugs of routed
// pages that have no copy. Those pages still render with their label as title.
func (a *app) checkContent(ctx context.Context) []string {
	slugs, err := a.content.Slugs()
	if err != nil {
		a.logger.Warn("content directory unreadable", zap.String("dir", a.cfg.Paths.Content), zap.Error(err))
		return nil
	}
	onDisk := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		onDisk[slug] = true
		if _, err := a.content.GetPage(ctx, slug); err != nil {
			a.logger.Warn("page copy failed to load", zap.String("slug", slug), zap.Error(err))
		}
	}

	var missing []string
	for _, p := range append([]staticPage{contactPageDef}, staticPages...) {
		if !onDisk[p.Slug] {
			missing = append(missing, p.Slug)
		}
	}
	if len(missing) > 0 {
		a.logger.Warn("routed pages have no copy", zap.Strings("slugs", missing))
	}
	return missing
}

func (a *app) pageHandler(p staticPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := a.pageData(r, p, a.absoluteURL(r))
		if p.View != nil {
			data.Page = p.View(r)
		}
		a.render(w, r, http.StatusOK, p.Template, data)
	}
}

// pageData loads p's copy and resolves its metadata for currentLocation.
func (a *app) pageData(r *http.Request, p staticPage, currentLocation string) handlers.PageData {
	page := a.loadContent(r.Context(), p)
	resolved := a.resolvePage(p, page, currentLocation)
	data := handlers.NewPageData(a.site, a.analytics, p.Path, resolved)
	data.Content = page
	return data
}

func (a *app) loadContent(ctx context.Context, p staticPage) cms.Page {
	page, err := a.content.GetPage(ctx, p.Slug)
	if err != nil {
		logger := observability.FromContext(ctx)
		if errors.Is(err, cms.ErrNotFound) {
			logger.Warn("page copy missing", zap.String("slug", p.Slug))
		} else {
			logger.Error("page copy failed to load", zap.String("slug", p.Slug), zap.Error(err))
		}
		return cms.Page{Slug: p.Slug, Title: p.Label}
	}
	return page
}

// resolvePage builds the resolver request for p from its copy and JSON-LD.
func (a *app) resolvePage(p staticPage, page cms.Page, currentLocation string) seo.Resolved {
	req := seo.Request{
		Title:       page.SEO.Title,
		Description: page.SEO.Description,
	}
	if req.Title == "" {
		req.Title = p.Label + " — " + a.cfg.Site.Name
	}
	if req.Description == "" {
		req.Description = page.Summary
	}
	if img := page.SEO.OGImage; img != "" {
		req.PreviewImageURL = a.absolute(img)
	}
	if p.Structured != nil {
		req.StructuredData = p.Structured(a.ld, a.cfg.Site.BaseURL+p.Path)
	}
	return a.resolver.Resolve(req, currentLocation)
}

func (a *app) notFound(w http.ResponseWriter, r *http.Request) {
	resolved := a.resolver.Resolve(seo.Request{
		Title:          notFoundTitle,
		Description:    notFoundDescription,
		CanonicalURL:   a.cfg.Site.BaseURL + "/404",
		Robots:         "noindex, follow",
		StructuredData: a.ld.NotFound(notFoundTitle, notFoundDescription),
	}, a.absoluteURL(r))
	data := handlers.NewPageData(a.site, a.analytics, r.URL.Path, resolved)
	a.render(w, r, http.StatusNotFound, "404", data)
}

// absoluteURL is the public URL of the current request on the configured base.
func (a *app) absoluteURL(r *http.Request) string {
	return a.cfg.Site.BaseURL + r.URL.RequestURI()
}

// absolute resolves a site-relative reference against the base URL.
func (a *app) absolute(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return a.cfg.Site.BaseURL + "/" + strings.TrimLeft(ref, "/")
}
