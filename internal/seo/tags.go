package seo

import (
	"html"
	"html/template"
	"strconv"
	"strings"
)

// TagKind identifies the head element a Tag renders to.
type TagKind string

const (
	KindTitle  TagKind = "title"
	KindMeta   TagKind = "meta"
	KindLink   TagKind = "link"
	KindScript TagKind = "script"
)

// Tag is one head element. Attr names the key attribute ("name", "property"
// or "rel"), Key its value, and Value the content, href or body.
type Tag struct {
	Kind  TagKind
	Attr  string
	Key   string
	Value string
}

func meta(attr, key, value string) Tag {
	return Tag{Kind: KindMeta, Attr: attr, Key: key, Value: value}
}

// Tags lists the head elements for m in a stable order.
func (m Resolved) Tags() []Tag {
	tags := []Tag{
		{Kind: KindTitle, Value: m.Title},
		meta("name", "description", m.Description),
	}
	if m.Robots != "" {
		tags = append(tags, meta("name", "robots", m.Robots))
	}
	if m.CanonicalURL != "" {
		tags = append(tags, Tag{Kind: KindLink, Attr: "rel", Key: "canonical", Value: m.CanonicalURL})
	}

	tags = append(tags,
		meta("property", "og:type", ogType),
		meta("property", "og:title", m.Title),
		meta("property", "og:description", m.Description),
	)
	if m.CanonicalURL != "" {
		tags = append(tags, meta("property", "og:url", m.CanonicalURL))
	}
	if m.SiteName != "" {
		tags = append(tags, meta("property", "og:site_name", m.SiteName))
	}
	if m.Locale != "" {
		tags = append(tags, meta("property", "og:locale", m.Locale))
	}
	if m.OGImage != "" {
		tags = append(tags, meta("property", "og:image", m.OGImage))
		if im := m.OGImageMeta; im != nil {
			if strings.HasPrefix(strings.ToLower(m.OGImage), "https://") {
				tags = append(tags, meta("property", "og:image:secure_url", m.OGImage))
			}
			if im.Type != "" {
				tags = append(tags, meta("property", "og:image:type", im.Type))
			}
			if im.Width > 0 {
				tags = append(tags, meta("property", "og:image:width", strconv.Itoa(im.Width)))
			}
			if im.Height > 0 {
				tags = append(tags, meta("property", "og:image:height", strconv.Itoa(im.Height)))
			}
		}
	}

	tags = append(tags, meta("name", "twitter:card", twitterCard))
	if m.TwitterSite != "" {
		tags = append(tags, meta("name", "twitter:site", m.TwitterSite))
	}
	tags = append(tags,
		meta("name", "twitter:title", m.Title),
		meta("name", "twitter:description", m.Description),
	)
	if m.OGImage != "" {
		tags = append(tags, meta("name", "twitter:image", m.OGImage))
	}

	for _, block := range m.StructuredData {
		tags = append(tags, Tag{Kind: KindScript, Attr: "type", Key: "application/ld+json", Value: block})
	}
	return tags
}

// Lookup returns the value of the first tag with the given key, e.g.
// "og:image" or "canonical".
func (m Resolved) Lookup(key string) (string, bool) {
	for _, t := range m.Tags() {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// HTML renders the tags as head markup. JSON-LD bodies are emitted verbatim;
// JSON() escapes '<', '>' and '&' so they cannot close the script element.
func (m Resolved) HTML() template.HTML {
	var sb strings.Builder
	for _, t := range m.Tags() {
		switch t.Kind {
		case KindTitle:
			sb.WriteString("<title>" + html.EscapeString(t.Value) + "</title>\n")
		case KindMeta:
			sb.WriteString(`<meta ` + t.Attr + `="` + html.EscapeString(t.Key) + `" content="` + html.EscapeString(t.Value) + `">` + "\n")
		case KindLink:
			sb.WriteString(`<link rel="` + html.EscapeString(t.Key) + `" href="` + html.EscapeString(t.Value) + `">` + "\n")
		case KindScript:
			sb.WriteString(`<script type="` + html.EscapeString(t.Key) + `">` + t.Value + "</script>\n")
		}
	}
	return template.HTML(sb.String())
}
