package seo

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Resolver computes Resolved metadata from a Request. It only holds
// configuration and may be shared across goroutines.
type Resolver struct {
	cfg Config
}

// NewResolver returns a Resolver for the given site configuration.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve builds the metadata for one render. currentLocation is the absolute
// URL of the page being rendered, or "" when unknown.
func (r *Resolver) Resolve(req Request, currentLocation string) Resolved {
	out := Resolved{
		Title:       req.Title,
		Description: req.Description,
		Robots:      strings.TrimSpace(req.Robots),
		SiteName:    r.cfg.SiteName,
		Locale:      r.cfg.Locale,
		TwitterSite: r.cfg.TwitterSite,
	}

	candidate := req.CanonicalURL
	if candidate == "" {
		candidate = currentLocation
	}
	if candidate != "" {
		out.CanonicalURL = NormalizeCanonical(candidate)
	}

	out.OGImage, out.OGImageMeta = r.previewImage(req, currentLocation)
	out.StructuredData = structuredBlocks(req.StructuredData)
	return out
}

func (r *Resolver) previewImage(req Request, currentLocation string) (string, *ImageMeta) {
	if req.PreviewImageURL != "" {
		return req.PreviewImageURL, cloneMeta(req.PreviewImage)
	}
	def := r.cfg.DefaultImage
	if def.URL != "" {
		return def.URL, cloneMeta(def.Meta)
	}
	if def.Filename == "" || currentLocation == "" {
		return "", nil
	}
	o := originOf(currentLocation)
	if o == "" {
		return "", nil
	}
	base := strings.Trim(def.BasePath, "/")
	file := strings.TrimLeft(def.Filename, "/")
	if base == "" {
		return o + "/" + file, cloneMeta(def.Meta)
	}
	return o + "/" + base + "/" + file, cloneMeta(def.Meta)
}

func cloneMeta(m *ImageMeta) *ImageMeta {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

// structuredBlocks serialises v into one JSON string per entry. Slices and
// arrays yield one block per element; anything else is a single block.
// Entries that fail to marshal are skipped.
func structuredBlocks(v any) []string {
	if v == nil {
		return nil
	}
	var entries []any
	switch t := v.(type) {
	case json.RawMessage:
		entries = []any{t}
	case []byte:
		entries = []any{json.RawMessage(t)}
	case []any:
		entries = t
	case []map[string]any:
		for _, m := range t {
			entries = append(entries, m)
		}
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				entries = append(entries, rv.Index(i).Interface())
			}
		default:
			entries = []any{v}
		}
	}

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		if isNil(e) {
			continue
		}
		if s := JSON(e); s != "" {
			blocks = append(blocks, s)
		}
	}
	if len(blocks) == 0 {
		return nil
	}
	return blocks
}

// isNil reports whether v is nil or a typed nil pointer, map, slice or
// interface. Those marshal to "null" and never become a block.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
