package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path  string // e.g. "/pricing"
	Label string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition. The footer's quick links use
// the same list.
var Main = []Item{
	{Path: "/", Label: "Home"},
	{Path: "/about", Label: "About Us"},
	{Path: "/services", Label: "Services"},
	{Path: "/pricing", Label: "Pricing"},
	{Path: "/testimonials", Label: "Testimonials"},
	{Path: "/contact", Label: "Contact"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	current := cleanPath(currentPath)
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  it.Label,
			Active: it.Path == current,
		})
	}
	return items
}

// Label returns the navigation label for a top-level path.
func Label(p string) (string, bool) {
	p = cleanPath(p)
	for _, it := range Main {
		if it.Path == p {
			return it.Label, true
		}
	}
	return "", false
}

// Breadcrumbs builds breadcrumb entries from the current path.
// Rules:
// - Always start with Home
// - Known sections use their navigation label
// - Other segments use a prettified segment label
func Breadcrumbs(currentPath string) []Crumb {
	current := cleanPath(currentPath)
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: current == "/"}}
	if current == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(current, "/"), "/")
	href := ""
	for i, seg := range parts {
		href += "/" + seg
		label, ok := Label(href)
		if !ok {
			label = titleFromSegment(seg)
		}
		crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: i == len(parts)-1})
	}
	return crumbs
}

// cleanPath normalises p so "/about/" and "/about" compare equal.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean("/" + strings.TrimPrefix(p, "/"))
	if clean == "." {
		return "/"
	}
	return clean
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
