// Package seo resolves per-page document metadata: title, description,
// canonical link, Open Graph and Twitter Card tags, and JSON-LD blocks.
package seo

// Request is the per-render metadata input for a page. Title and Description
// are always emitted; every other field is optional and empty means absent.
type Request struct {
	Title       string
	Description string
	// CanonicalURL overrides the current location as the canonical source.
	CanonicalURL string
	// PreviewImageURL is the social preview image. When empty the configured
	// default image strategy applies.
	PreviewImageURL string
	// PreviewImage carries known dimensions for PreviewImageURL. Companion
	// og:image tags are only emitted when this is set.
	PreviewImage *ImageMeta
	// StructuredData is a single JSON-serialisable value or a slice of them.
	StructuredData any
	Robots         string
}

// ImageMeta describes an image whose dimensions and media type are known.
type ImageMeta struct {
	Width  int
	Height int
	Type   string
}

// DefaultImage configures the fallback social preview image. URL wins when
// set; otherwise the image is derived from the current origin, BasePath and
// Filename.
type DefaultImage struct {
	URL      string
	BasePath string
	Filename string
	Meta     *ImageMeta
}

// Config is the deployment-time configuration shared by all renders.
type Config struct {
	SiteName     string
	Locale       string
	TwitterSite  string
	DefaultImage DefaultImage
}

// Resolved is the final metadata for one render. It is recomputed on every
// request and never shared.
type Resolved struct {
	Title        string
	Description  string
	CanonicalURL string
	Robots       string
	OGImage      string
	OGImageMeta  *ImageMeta
	SiteName     string
	Locale       string
	TwitterSite  string
	// StructuredData holds serialised JSON-LD blocks in input order.
	StructuredData []string
}

const (
	ogType      = "website"
	twitterCard = "summary_large_image"
)
