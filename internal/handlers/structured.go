package handlers

import (
	"reachright.co.za/web/internal/cms"
	"reachright.co.za/web/internal/nav"
	"reachright.co.za/web/internal/seo"
)

const logoPath = "/assets/img/branding/android-chrome-512x512.png"

// StructuredData builds the JSON-LD payloads for each page. Its zero value is
// not usable; construct it with NewStructuredData.
type StructuredData struct {
	siteName string
	baseURL  string
}

func NewStructuredData(siteName, baseURL string) StructuredData {
	return StructuredData{siteName: siteName, baseURL: baseURL}
}

func (s StructuredData) home() string { return s.baseURL + "/" }

// Home describes the business and the site it publishes, in that order.
func (s StructuredData) Home() any {
	org := seo.OrganizationDetail(seo.OrganizationInfo{
		Name:         s.siteName,
		URL:          s.home(),
		LogoURL:      s.baseURL + logoPath,
		FoundingDate: "2023",
		Founder:      "Jonathan Avis",
		Address: &seo.PostalAddress{
			Locality: "Cape Town",
			Region:   "Western Cape",
			Country:  "ZA",
		},
		Contact: &seo.ContactPoint{
			Telephone:   "+27-82-222-7457",
			ContactType: "customer service",
			AreaServed:  "ZA",
			Languages:   []string{"en"},
		},
	})
	return []any{org, seo.WebSite(s.siteName, s.home(), s.siteName)}
}

func (s StructuredData) About(pageURL string) any {
	return []any{
		seo.AboutPage("About — "+s.siteName, pageURL, s.siteName, s.home()),
		s.breadcrumbs("/about"),
	}
}

func (s StructuredData) Services(pageURL string) any {
	var items []seo.ServiceItem
	for _, svc := range cms.Services() {
		items = append(items, seo.ServiceItem{Name: svc.Title, Description: svc.Description})
	}
	return []any{
		seo.ServiceCatalog("Digital Marketing Services", s.siteName, s.home(), "Marketing Services", items),
		s.breadcrumbs("/services"),
	}
}

func (s StructuredData) Pricing(pageURL string) any {
	var offers []seo.Offer
	for _, p := range cms.Plans() {
		offers = append(offers, seo.Offer{Name: p.Name, Price: p.Price, Currency: p.Currency, URL: p.PaymentURL})
	}
	return []any{
		seo.ProductCollection(s.siteName+" Packages", pageURL, "Monthly Packages", offers),
		s.breadcrumbs("/pricing"),
	}
}

func (s StructuredData) Testimonials(pageURL string) any {
	testimonials := cms.Testimonials()
	reviews := make([]seo.Review, 0, len(testimonials))
	for _, t := range testimonials {
		reviews = append(reviews, seo.Review{Author: t.Name, Body: t.Text, Rating: t.Rating})
	}
	org := seo.AggregateRating(seo.Organization(s.siteName, s.home(), s.baseURL+logoPath), cms.AverageRating(), len(testimonials))
	return []any{
		org,
		seo.ReviewCollection("Client Testimonials — "+s.siteName, pageURL, s.siteName, s.home(), reviews),
	}
}

func (s StructuredData) Contact(pageURL string) any {
	return []any{
		seo.WebPage("ContactPage", "Contact — "+s.siteName, pageURL, ""),
		s.breadcrumbs("/contact"),
	}
}

func (s StructuredData) NotFound(title, description string) any {
	return seo.WebPage("WebPage", title, s.baseURL+"/404", description)
}

func (s StructuredData) breadcrumbs(path string) map[string]any {
	crumbs := nav.Breadcrumbs(path)
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		items = append(items, seo.BreadcrumbItem{Name: c.Label, Item: s.baseURL + c.Href})
	}
	return seo.BreadcrumbList(items)
}
