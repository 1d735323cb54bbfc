package seo

import (
	"encoding/json"
	"strconv"
)

const schemaContext = "https://schema.org"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// PostalAddress maps to schema.org PostalAddress.
type PostalAddress struct {
	Locality string
	Region   string
	Country  string
}

// ContactPoint maps to schema.org ContactPoint.
type ContactPoint struct {
	Telephone   string
	ContactType string
	AreaServed  string
	Languages   []string
}

// OrganizationInfo describes the business behind the site.
type OrganizationInfo struct {
	Name         string
	URL          string
	LogoURL      string
	FoundingDate string
	Founder      string
	Address      *PostalAddress
	Contact      *ContactPoint
	SameAs       []string
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// OrganizationDetail expands Organization with founder, address and contact point.
func OrganizationDetail(info OrganizationInfo) map[string]any {
	m := Organization(info.Name, info.URL, info.LogoURL)
	if info.FoundingDate != "" {
		m["foundingDate"] = info.FoundingDate
	}
	if info.Founder != "" {
		m["founder"] = map[string]any{"@type": "Person", "name": info.Founder}
	}
	if a := info.Address; a != nil {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": a.Locality,
			"addressRegion":   a.Region,
			"addressCountry":  a.Country,
		}
	}
	if c := info.Contact; c != nil {
		cp := map[string]any{
			"@type":       "ContactPoint",
			"telephone":   c.Telephone,
			"contactType": c.ContactType,
		}
		if c.AreaServed != "" {
			cp["areaServed"] = c.AreaServed
		}
		if len(c.Languages) > 0 {
			cp["availableLanguage"] = c.Languages
		}
		m["contactPoint"] = cp
	}
	if len(info.SameAs) > 0 {
		m["sameAs"] = info.SameAs
	}
	return m
}

// WebSite returns a minimal WebSite schema. publisher, when set, names the
// Organization that owns the site.
func WebSite(name, url, publisher string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if publisher != "" {
		m["publisher"] = map[string]any{
			"@type": "Organization",
			"name":  publisher,
		}
	}
	return m
}

// WebPage returns a WebPage (or subtype such as AboutPage) schema.
func WebPage(pageType, name, url, description string) map[string]any {
	if pageType == "" {
		pageType = "WebPage"
	}
	m := map[string]any{
		"@context": schemaContext,
		"@type":    pageType,
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if description != "" {
		m["description"] = description
	}
	return m
}

// AboutPage returns an AboutPage that is part of the named site.
func AboutPage(name, url, siteName, siteURL string) map[string]any {
	m := WebPage("AboutPage", name, url, "")
	m["isPartOf"] = map[string]any{
		"@type": "WebSite",
		"name":  siteName,
		"url":   siteURL,
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// ServiceItem is one entry of a service catalog.
type ServiceItem struct {
	Name        string
	Description string
}

// ServiceCatalog returns a Service whose offer catalog lists items.
func ServiceCatalog(name, providerName, providerURL, catalogName string, items []ServiceItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for _, it := range items {
		el = append(el, map[string]any{
			"@type":       "Service",
			"name":        it.Name,
			"description": it.Description,
		})
	}
	return map[string]any{
		"@context": schemaContext,
		"@type":    "Service",
		"name":     name,
		"provider": map[string]any{
			"@type": "Organization",
			"name":  providerName,
			"url":   providerURL,
		},
		"hasOfferCatalog": map[string]any{
			"@type":           "OfferCatalog",
			"name":            catalogName,
			"itemListElement": el,
		},
	}
}

// Offer is a priced, monthly-billed package.
type Offer struct {
	Name     string
	Price    int64
	Currency string
	URL      string
}

// ProductCollection lists monthly offers under an OfferCatalog.
func ProductCollection(name, url, catalogName string, offers []Offer) map[string]any {
	el := make([]map[string]any, 0, len(offers))
	for _, o := range offers {
		el = append(el, map[string]any{
			"@type":         "Offer",
			"name":          o.Name,
			"price":         strconv.FormatInt(o.Price, 10),
			"priceCurrency": o.Currency,
			"availability":  "https://schema.org/InStock",
			"category":      "https://schema.org/BusinessService",
			"url":           o.URL,
			"eligibleQuantity": map[string]any{
				"@type":    "QuantitativeValue",
				"unitCode": "MON",
				"value":    1,
			},
		})
	}
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "ProductCollection",
		"name":     name,
		"hasOfferCatalog": map[string]any{
			"@type":           "OfferCatalog",
			"name":            catalogName,
			"itemListElement": el,
		},
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// Review is a single rated client review.
type Review struct {
	Author string
	Body   string
	Rating int
}

// AggregateRating attaches an AggregateRating (1..5 scale) to org.
func AggregateRating(org map[string]any, average float64, count int) map[string]any {
	org["aggregateRating"] = map[string]any{
		"@type":       "AggregateRating",
		"ratingValue": strconv.FormatFloat(average, 'f', 2, 64),
		"reviewCount": count,
		"bestRating":  5,
		"worstRating": 1,
	}
	return org
}

// ReviewCollection returns a CollectionPage whose main entity lists reviews
// of the named organization.
func ReviewCollection(name, url, orgName, orgURL string, reviews []Review) map[string]any {
	el := make([]map[string]any, 0, len(reviews))
	for i, r := range reviews {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item": map[string]any{
				"@type":      "Review",
				"author":     map[string]any{"@type": "Person", "name": r.Author},
				"reviewBody": r.Body,
				"reviewRating": map[string]any{
					"@type":       "Rating",
					"ratingValue": r.Rating,
					"bestRating":  5,
					"worstRating": 1,
				},
				"itemReviewed": map[string]any{
					"@type": "Organization",
					"name":  orgName,
					"url":   orgURL,
				},
			},
		})
	}
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "CollectionPage",
		"name":     name,
		"mainEntity": map[string]any{
			"@type":           "ItemList",
			"itemListElement": el,
		},
	}
	if url != "" {
		m["url"] = url
	}
	return m
}
