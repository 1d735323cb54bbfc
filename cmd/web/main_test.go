package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"reachright.co.za/web/internal/config"
	"reachright.co.za/web/internal/seo"
)

const testBaseURL = "https://reachrightmarketing.com"

func newTestApp(t *testing.T, overrides map[string]string) *app {
	t.Helper()
	env := map[string]string{
		"REACHRIGHT_WEB_TEMPLATES_DIR":       "../../templates",
		"REACHRIGHT_WEB_PUBLIC_DIR":          "../../public",
		"REACHRIGHT_WEB_CONTENT_DIR":         "../../content",
		"REACHRIGHT_WEB_DEV":                 "true",
		"REACHRIGHT_WEB_BASE_URL":            testBaseURL,
		"REACHRIGHT_WEB_SESSION_SIGNING_KEY": "test-signing-key",
	}
	for k, v := range overrides {
		env[k] = v
	}
	cfg, err := config.Load(config.WithoutSystemEnv(), config.WithEnvFile(""), config.WithEnvMap(env))
	require.NoError(t, err)

	a, err := newApp(t.Context(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseDoc(t *testing.T, body io.Reader) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(body)
	require.NoError(t, err)
	return doc
}

func metaContent(doc *goquery.Document, attr, key string) string {
	v, _ := doc.Find(`meta[` + attr + `="` + key + `"]`).Attr("content")
	return v
}

func TestHealthz(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestHomeHeadMetadata(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	rec := get(t, h, "/?utm_source=newsletter")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc := parseDoc(t, rec.Body)
	require.Equal(t, "ReachRight Marketing — Digital Marketing for SMEs", doc.Find("head title").Text())

	canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href")
	require.True(t, ok)
	require.Equal(t, testBaseURL+"/", canonical)
	require.Equal(t, testBaseURL+"/", metaContent(doc, "property", "og:url"))
	require.Equal(t, "ReachRight Marketing", metaContent(doc, "property", "og:site_name"))
	require.Equal(t, "en_ZA", metaContent(doc, "property", "og:locale"))
	require.Equal(t, testBaseURL+"/assets/img/branding/og-image.png", metaContent(doc, "property", "og:image"))
	require.Equal(t, "summary_large_image", metaContent(doc, "name", "twitter:card"))
	require.Empty(t, metaContent(doc, "name", "robots"))

	scripts := doc.Find(`script[type="application/ld+json"]`)
	require.Equal(t, 2, scripts.Length())
	var org, site map[string]any
	require.NoError(t, json.Unmarshal([]byte(scripts.Eq(0).Text()), &org))
	require.Equal(t, "Organization", org["@type"])
	require.Equal(t, "ReachRight Marketing", org["name"])
	require.NoError(t, json.Unmarshal([]byte(scripts.Eq(1).Text()), &site))
	require.Equal(t, "WebSite", site["@type"])

	// No measurement ID configured.
	require.Zero(t, doc.Find(`script[src*="googletagmanager"]`).Length())
}

func TestDisabledDefaultImageDerivesFromOrigin(t *testing.T) {
	h := newRouter(newTestApp(t, map[string]string{
		"REACHRIGHT_WEB_BASE_URL":     "https://staging.reachrightmarketing.com",
		"REACHRIGHT_WEB_OG_IMAGE_URL": "none",
	}))
	doc := parseDoc(t, get(t, h, "/about").Body)
	want := "https://staging.reachrightmarketing.com/assets/img/branding/og-image.png"
	require.Equal(t, want, metaContent(doc, "property", "og:image"))
	require.Equal(t, want, metaContent(doc, "name", "twitter:image"))
	require.Equal(t, "image/png", metaContent(doc, "property", "og:image:type"))
}

func TestBrandingAssetsAreServed(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	for _, path := range []string{
		"/assets/img/branding/og-image.png",
		"/assets/img/branding/android-chrome-512x512.png",
		"/assets/img/branding/logo.svg",
	} {
		rec := get(t, h, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.NotZero(t, rec.Body.Len(), path)
	}

	home := parseDoc(t, get(t, h, "/").Body)
	var org map[string]any
	require.NoError(t, json.Unmarshal([]byte(home.Find(`script[type="application/ld+json"]`).First().Text()), &org))
	logo, err := url.Parse(org["logo"].(string))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, get(t, h, logo.Path).Code)

	image, err := url.Parse(metaContent(home, "property", "og:image"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, get(t, h, image.Path).Code)
}

func TestCheckContentReportsMissingCopy(t *testing.T) {
	require.Empty(t, newTestApp(t, nil).checkContent(t.Context()))

	a := newTestApp(t, map[string]string{"REACHRIGHT_WEB_CONTENT_DIR": t.TempDir()})
	missing := a.checkContent(t.Context())
	require.Len(t, missing, len(staticPages)+1)
	require.Equal(t, "contact", missing[0])
}

func TestNavMarksActivePage(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	doc := parseDoc(t, get(t, h, "/services").Body)

	active := doc.Find("[data-nav-item].active")
	require.Equal(t, 1, active.Length())
	require.Equal(t, "Services", strings.TrimSpace(active.Text()))
	aria, _ := active.Attr("aria-current")
	require.Equal(t, "page", aria)

	crumbs := doc.Find(".breadcrumbs li")
	require.Equal(t, 2, crumbs.Length())
	require.Equal(t, "Services", strings.TrimSpace(crumbs.Last().Text()))
}

func TestLegacyShimRedirects(t *testing.T) {
	h := newRouter(newTestApp(t, nil))

	rec := get(t, h, "/?/pricing")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/pricing", rec.Header().Get("Location"))

	rec = get(t, h, "/?/contact&package=Basic%20Package")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/contact?package=Basic+Package", rec.Header().Get("Location"))
}

func TestNotFoundPage(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	rec := get(t, h, "/does-not-exist")
	require.Equal(t, http.StatusNotFound, rec.Code)

	doc := parseDoc(t, rec.Body)
	require.Equal(t, notFoundTitle, doc.Find("head title").Text())
	require.Equal(t, "noindex, follow", metaContent(doc, "name", "robots"))
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	require.Equal(t, testBaseURL+"/404", canonical)
	require.Equal(t, "Page Not Found", doc.Find(".not-found h2").Text())
}

func TestPricingPage(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	rec := get(t, h, "/pricing")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseDoc(t, rec.Body)
	require.Equal(t, "R2,999", doc.Find(`[data-plan="basic"] [data-price]`).Text())
	require.Equal(t, 1, doc.Find(".plan-popular").Length())
	require.Greater(t, doc.Find("[data-faq]").Length(), 0)

	var found bool
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var block map[string]any
		require.NoError(t, json.Unmarshal([]byte(s.Text()), &block))
		if block["@type"] == "ProductCollection" || block["@type"] == "CollectionPage" || block["@type"] == "OfferCatalog" {
			found = true
		}
	})
	require.True(t, found)
}

func TestTestimonialsRating(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	doc := parseDoc(t, get(t, h, "/testimonials").Body)
	require.Contains(t, doc.Find("[data-rating]").Text(), "4.8")
	require.Equal(t, 6, doc.Find("[data-testimonial]").Length())
}

func TestThankYouNamesPlan(t *testing.T) {
	h := newRouter(newTestApp(t, nil))

	doc := parseDoc(t, get(t, h, "/thank-you?plan=premium").Body)
	require.Equal(t, "Premium Package", doc.Find("[data-plan-name]").Text())

	doc = parseDoc(t, get(t, h, "/thank-you").Body)
	require.Equal(t, "your selected package", doc.Find("[data-plan-name]").Text())
}

func TestContactPrefill(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	rec := get(t, h, "/contact?package=Standard%20Package")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseDoc(t, rec.Body)
	selected, _ := doc.Find(`select[name="package"] option[selected]`).Attr("value")
	require.Equal(t, "Standard Package", selected)
	require.Contains(t, doc.Find(`textarea[name="message"]`).Text(), "Standard Package")

	token, ok := doc.Find(`input[name="csrf_token"]`).Attr("value")
	require.True(t, ok)
	require.NotEmpty(t, token)

	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	require.Equal(t, testBaseURL+"/contact", canonical)
}

func TestContactSentBanner(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	doc := parseDoc(t, get(t, h, "/contact?sent=1").Body)
	require.Equal(t, 1, doc.Find(`[data-alert="success"]`).Length())
}

// contactClient drives the contact form through a real server so cookies
// round-trip the way a browser would send them.
type contactClient struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newContactClient(t *testing.T, a *app) *contactClient {
	t.Helper()
	srv := httptest.NewServer(newRouter(a))
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &contactClient{
		t:   t,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *contactClient) token() string {
	c.t.Helper()
	resp, err := c.client.Get(c.srv.URL + "/contact")
	require.NoError(c.t, err)
	defer resp.Body.Close()
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	doc := parseDoc(c.t, resp.Body)
	token, _ := doc.Find(`input[name="csrf_token"]`).Attr("value")
	require.NotEmpty(c.t, token)
	return token
}

func (c *contactClient) post(form url.Values) (*http.Response, *goquery.Document) {
	c.t.Helper()
	resp, err := c.client.PostForm(c.srv.URL+"/contact", form)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, parseDoc(c.t, bytes.NewReader(body))
}

func validForm(token string) url.Values {
	return url.Values{
		"csrf_token": {token},
		"name":       {"Thandi Nkosi"},
		"email":      {"thandi@example.co.za"},
		"phone":      {"+27 82 000 0000"},
		"package":    {"Basic Package"},
		"message":    {"We need help with our social media."},
	}
}

func TestContactSubmitFakeMode(t *testing.T) {
	c := newContactClient(t, newTestApp(t, nil))
	resp, _ := c.post(validForm(c.token()))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, contactSentLocation, resp.Header.Get("Location"))
}

func TestContactSubmitDeliversToEndpoint(t *testing.T) {
	var got map[string]string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(upstream.Close)

	c := newContactClient(t, newTestApp(t, map[string]string{"REACHRIGHT_WEB_CONTACT_ENDPOINT": upstream.URL}))
	resp, _ := c.post(validForm(c.token()))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "thandi@example.co.za", got["email"])
	require.Equal(t, "Basic Package", got["package"])
	require.Equal(t, "New ReachRight inquiry — Basic Package", got["_subject"])
}

func TestContactSubmitValidation(t *testing.T) {
	c := newContactClient(t, newTestApp(t, nil))
	form := validForm(c.token())
	form.Set("name", "  ")
	form.Set("email", "not-an-email")

	resp, doc := c.post(form)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, 1, doc.Find(`[data-alert="error"]`).Length())

	invalid, _ := doc.Find(`input[name="email"]`).Attr("aria-invalid")
	require.Equal(t, "true", invalid)
	_, nameInvalid := doc.Find(`input[name="name"]`).Attr("aria-invalid")
	require.True(t, nameInvalid)
	_, msgInvalid := doc.Find(`textarea[name="message"]`).Attr("aria-invalid")
	require.False(t, msgInvalid)

	value, _ := doc.Find(`input[name="email"]`).Attr("value")
	require.Equal(t, "not-an-email", value)
}

func TestContactSubmitHoneypot(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(upstream.Close)

	c := newContactClient(t, newTestApp(t, map[string]string{"REACHRIGHT_WEB_CONTACT_ENDPOINT": upstream.URL}))
	form := validForm(c.token())
	form.Set("company", "Spam Co")

	resp, _ := c.post(form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, contactSentLocation, resp.Header.Get("Location"))
	require.Zero(t, calls.Load())
}

func TestContactSubmitRequiresCSRF(t *testing.T) {
	c := newContactClient(t, newTestApp(t, nil))
	c.token()
	resp, _ := c.post(validForm("forged"))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestContactSubmitUpstreamRejection(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"message":"should be an email"}]}`))
	}))
	t.Cleanup(upstream.Close)

	c := newContactClient(t, newTestApp(t, map[string]string{"REACHRIGHT_WEB_CONTACT_ENDPOINT": upstream.URL}))
	resp, doc := c.post(validForm(c.token()))
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Contains(t, doc.Find(`[data-alert="error"]`).Text(), "should be an email")

	name, _ := doc.Find(`input[name="name"]`).Attr("value")
	require.Equal(t, "Thandi Nkosi", name)
}

func TestContactSubmitRateLimited(t *testing.T) {
	c := newContactClient(t, newTestApp(t, map[string]string{
		"REACHRIGHT_WEB_CONTACT_RATE_PER_SECOND": "0.001",
		"REACHRIGHT_WEB_CONTACT_RATE_BURST":      "1",
	}))
	token := c.token()

	resp, _ := c.post(validForm(token))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, doc := c.post(validForm(token))
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	require.Contains(t, doc.Find(`[data-alert="error"]`).Text(), "wait a moment")
	msg := doc.Find(`textarea[name="message"]`).Text()
	require.Contains(t, msg, "social media")
}

func TestSitemap(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	rec := get(t, h, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	body := rec.Body.String()
	require.Contains(t, body, "<loc>"+testBaseURL+"/</loc>")
	require.Contains(t, body, "<loc>"+testBaseURL+"/pricing</loc>")
	require.Contains(t, body, "<loc>"+testBaseURL+"/contact</loc>")
	require.Contains(t, body, "<lastmod>2024-03-01</lastmod>")
	require.NotContains(t, body, "/thank-you")
}

func TestRobots(t *testing.T) {
	parse := func(a *app) *robotstxt.RobotsData {
		rec := get(t, newRouter(a), "/robots.txt")
		require.Equal(t, http.StatusOK, rec.Code)
		robots, err := robotstxt.FromBytes(rec.Body.Bytes())
		require.NoError(t, err)
		return robots
	}

	dev := parse(newTestApp(t, nil))
	require.False(t, dev.TestAgent("/", "Googlebot"))
	require.False(t, dev.TestAgent("/pricing", "Googlebot"))
	require.Equal(t, []string{testBaseURL + "/sitemap.xml"}, dev.Sitemaps)

	prod := parse(newTestApp(t, map[string]string{"REACHRIGHT_WEB_ENV": "production"}))
	group := prod.FindGroup("*")
	require.True(t, group.Test("/"))
	require.True(t, group.Test("/pricing"))
	require.False(t, group.Test("/thank-you"))
	require.Equal(t, []string{testBaseURL + "/sitemap.xml"}, prod.Sitemaps)
}

func TestAnalyticsSnippet(t *testing.T) {
	h := newRouter(newTestApp(t, map[string]string{"REACHRIGHT_WEB_GA_MEASUREMENT_ID": "G-TEST123"}))
	body := get(t, h, "/about").Body.String()
	require.Contains(t, body, "googletagmanager.com/gtag/js?id=G-TEST123")
	require.Contains(t, body, "debug_mode")
}

func TestAssetsServed(t *testing.T) {
	h := newRouter(newTestApp(t, nil))
	rec := get(t, h, "/assets/css/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))

	rec = get(t, h, "/assets/css/")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInspect(t *testing.T) {
	a := newTestApp(t, nil)

	resolved, err := a.inspect("/?/pricing", "")
	require.NoError(t, err)
	require.Equal(t, "Pricing — ReachRight Marketing", resolved.Title)
	canonical, ok := resolved.Lookup("canonical")
	require.True(t, ok)
	require.Equal(t, testBaseURL+"/pricing", canonical)

	resolved, err = a.inspect("/about", "https://staging.reachrightmarketing.com/about?ref=x")
	require.NoError(t, err)
	canonical, _ = resolved.Lookup("canonical")
	require.Equal(t, "https://staging.reachrightmarketing.com/about", canonical)

	_, err = a.inspect("/nope", "")
	require.Error(t, err)
}

func TestPrintTags(t *testing.T) {
	a := newTestApp(t, nil)
	resolved, err := a.inspect("/", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	printTags(&buf, resolved, false)
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, resolved.Title, lines[0])
	require.Contains(t, out, "canonical")
	require.Contains(t, out, "og:image")
	require.Contains(t, out, "application/ld+json")
	require.Equal(t, "title", tagLabel(seo.Tag{Kind: seo.KindTitle}))
}
