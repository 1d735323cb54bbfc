package handlers

import (
	"time"

	"reachright.co.za/web/internal/cms"
	"reachright.co.za/web/internal/nav"
	"reachright.co.za/web/internal/seo"
)

// PageData is the view model every page renders through the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Resolved
	Analytics Analytics
	Site      Site

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	CSRFToken   string
	Year        int

	// Content is the markdown copy for the page, when one exists.
	Content cms.Page
	// Page carries the per-page view model (HomeView, PricingView, ...).
	Page any
}

// Site is the business contact block shared by the footer and contact page.
type Site struct {
	Name         string
	BaseURL      string
	Email        string
	Phone        string
	PhoneDisplay string
	WhatsApp     string
	Blurb        string
	Hours        []cms.Hours
	QuickLinks   []nav.Item
	Services     []string
}

const (
	contactEmail        = "hello@reachrightmarketing.com"
	contactPhone        = "+27822227457"
	contactPhoneDisplay = "+27 82 222 7457"
	contactWhatsApp     = "https://wa.me/27765864469"
	footerBlurb         = "Empowering businesses with innovative digital marketing solutions. Founded in 2023, we specialize in helping SMEs and growing businesses reach their full potential."
)

// NewSite returns the site block for name and baseURL.
func NewSite(name, baseURL string) Site {
	var services []string
	for _, s := range cms.Services() {
		services = append(services, s.Title)
	}
	if len(services) > 5 {
		services = services[:5]
	}
	return Site{
		Name:         name,
		BaseURL:      baseURL,
		Email:        contactEmail,
		Phone:        contactPhone,
		PhoneDisplay: contactPhoneDisplay,
		WhatsApp:     contactWhatsApp,
		Blurb:        footerBlurb,
		Hours:        cms.BusinessHours(),
		QuickLinks:   append([]nav.Item(nil), nav.Main...),
		Services:     services,
	}
}

// NewPageData fills the layout fields shared by every page.
func NewPageData(site Site, analytics Analytics, path string, resolved seo.Resolved) PageData {
	return PageData{
		Title:       resolved.Title,
		Lang:        "en",
		SEO:         resolved,
		Analytics:   analytics,
		Site:        site,
		Path:        path,
		Nav:         nav.Build(path),
		Breadcrumbs: nav.Breadcrumbs(path),
		Year:        time.Now().Year(),
	}
}
