package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"reachright.co.za/web/internal/observability"
)

func TestResponseRecorderRunsHookOnce(t *testing.T) {
	calls := 0
	rec := httptest.NewRecorder()
	rw := NewResponseRecorder(rec)
	rw.SetBeforeWrite(func(w http.ResponseWriter) {
		calls++
		w.Header().Set("X-Hook", "1")
	})

	_, _ = rw.Write([]byte("hello"))
	rw.WriteHeader(http.StatusTeapot)

	require.Equal(t, 1, calls)
	require.True(t, rw.Wrote())
	require.Equal(t, http.StatusOK, rw.Status())
	require.Equal(t, "1", rec.Header().Get("X-Hook"))
}

func TestSessionCookieRoundTrip(t *testing.T) {
	var firstID string
	h := Session(SessionOptions{SigningKey: []byte("test-key")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstID = GetSession(r).ID
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sessionCookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.NotEmpty(t, firstID)

	var secondID string
	h2 := Session(SessionOptions{SigningKey: []byte("test-key")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondID = GetSession(r).ID
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	h2.ServeHTTP(rec2, req)
	require.Equal(t, firstID, secondID)
	require.Empty(t, rec2.Result().Cookies(), "unchanged session must not be rewritten")
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	var id string
	h := Session(SessionOptions{SigningKey: []byte("key-a")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = GetSession(r).ID
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	original := id
	cookie := rec.Result().Cookies()[0]

	other := Session(SessionOptions{SigningKey: []byte("key-b")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = GetSession(r).ID
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	other.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, original, id)
}

func TestSessionCookieIsSecureCookieEncoded(t *testing.T) {
	key := []byte("shared-key")
	var issued *SessionData
	h := Session(SessionOptions{SigningKey: key})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issued = GetSession(r)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := rec.Result().Cookies()[0]

	codec := securecookie.New(key, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	var decoded SessionData
	require.NoError(t, codec.Decode(sessionCookieName, cookie.Value, &decoded))
	require.Equal(t, issued.ID, decoded.ID)
	require.Equal(t, issued.CSRFToken, decoded.CSRFToken)

	// A forged value signed with another key is replaced by a fresh session.
	forger := securecookie.New([]byte("other-key"), nil)
	forger.SetSerializer(securecookie.JSONEncoder{})
	forged, err := forger.Encode(sessionCookieName, SessionData{ID: "attacker", CSRFToken: "known"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: forged})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, "attacker", issued.ID)
	require.NotEqual(t, "known", issued.CSRFToken)
}

func csrfStack(next http.Handler) http.Handler {
	return Session(SessionOptions{SigningKey: []byte("k")})(CSRF(next))
}

func TestCSRFIssuesTokenAndVerifiesForm(t *testing.T) {
	var token string
	h := csrfStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = CSRFToken(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact", nil))
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	post := func(form url.Values, withCookies bool) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if withCookies {
			for _, c := range cookies {
				req.AddCookie(c)
			}
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, post(url.Values{CSRFFormField: {token}}, true))
	require.Equal(t, http.StatusForbidden, post(url.Values{CSRFFormField: {"wrong"}}, true))
	require.Equal(t, http.StatusForbidden, post(url.Values{}, true))
	require.Equal(t, http.StatusForbidden, post(url.Values{CSRFFormField: {token}}, false))
}

func TestCSRFAcceptsHeader(t *testing.T) {
	var token string
	h := csrfStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = CSRFToken(r)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-CSRF-Token", token)
	req.Header.Set("HX-Request", "true")
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	HTMX(h).ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	lim := NewMemoryLimiter(0.2, 3)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		dec, err := lim.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, dec.Allowed, "attempt %d", i)
	}
	dec, err := lim.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, dec.Allowed)
	require.InDelta(t, float64(5*time.Second), float64(dec.RetryAfter), float64(10*time.Millisecond))

	other, _ := lim.Allow(ctx, "5.6.7.8")
	require.True(t, other.Allowed, "keys must not share a bucket")

	now = now.Add(5 * time.Second)
	dec, _ = lim.Allow(ctx, "1.2.3.4")
	require.True(t, dec.Allowed)

	now = now.Add(time.Hour)
	lim.Cleanup()
	require.Equal(t, 0, lim.size())
}

type stubLimiter struct {
	dec Decision
	err error
}

func (s stubLimiter) Allow(context.Context, string) (Decision, error) { return s.dec, s.err }

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })

	denied := RateLimit(RateLimitOptions{Limiter: stubLimiter{dec: Decision{RetryAfter: 1500 * time.Millisecond}}})(ok)
	rec := httptest.NewRecorder()
	denied.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "2", rec.Header().Get("Retry-After"))

	core, logs := observer.New(zap.WarnLevel)
	failing := RateLimit(RateLimitOptions{Limiter: stubLimiter{dec: Decision{Allowed: true}, err: errors.New("boom")}})(ok)
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req = req.WithContext(observability.WithLogger(req.Context(), zap.New(core)))
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("rate limit check failed").Len())

	custom := RateLimit(RateLimitOptions{
		Limiter: stubLimiter{},
		OnLimited: func(w http.ResponseWriter, r *http.Request, _ time.Duration) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("slow down"))
		},
	})(ok)
	rec = httptest.NewRecorder()
	custom.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))
	require.Equal(t, "slow down", rec.Body.String())
}

func TestRedisLimiterBucket(t *testing.T) {
	lim := NewRedisLimiter(nil, 5, time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 45, 0, time.UTC)
	key, left := lim.bucket("1.2.3.4", now)
	require.Equal(t, "reachright:ratelimit:1.2.3.4:1709294400", key)
	require.Equal(t, 15*time.Second, left)
}

func TestRedisLimiterAgainstServer(t *testing.T) {
	addr := os.Getenv("REACHRIGHT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REACHRIGHT_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	lim := NewRedisLimiter(rdb, 2, time.Minute)
	lim.prefix = "reachright:test:" + time.Now().Format("150405.000000")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		dec, err := lim.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, dec.Allowed)
	}
	dec, err := lim.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, dec.Allowed)
	require.Greater(t, dec.RetryAfter, time.Duration(0))
}

func TestLegacyShim(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := LegacyShim(next)

	cases := map[string]string{
		"/?/about":                 "/about",
		"/?/contact&package=Basic": "/contact?package=Basic",
		"/?//evil.example":         "/evil.example",
		"/?/%2F%2Fevil.example":    "/evil.example",
		"/?/our%20work":            "/our%20work",

		"/?/contact&package=Basic%20Package&ref=ad": "/contact?package=Basic+Package&ref=ad",
	}
	for target, want := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusMovedPermanently, rec.Code, target)
		require.Equal(t, want, rec.Header().Get("Location"), target)
	}

	// Legacy links sometimes carry unescaped spaces in the query.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.RawQuery = "/contact&package=Basic Package"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/contact?package=Basic+Package", rec.Header().Get("Location"))
	require.NotContains(t, rec.Header().Get("Location"), " ")

	for _, target := range []string{"/", "/?package=Basic", "/about?/x"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestAssetsWithCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o644))

	h := AssetsWithCache("/assets", dir)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.True(t, strings.HasPrefix(etag, `W/"`))
	require.Equal(t, assetCacheControl, rec.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoggerWritesOneEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := observability.InjectLogger(zap.New(core))(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 203.0.113.9")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "/contact", fields["path"])
	require.EqualValues(t, http.StatusCreated, fields["status"])
	require.Equal(t, "203.0.113.9", fields["remoteIp"])
}
