package main

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"reachright.co.za/web/internal/cms"
	"reachright.co.za/web/internal/config"
	"reachright.co.za/web/internal/contact"
	"reachright.co.za/web/internal/handlers"
	mw "reachright.co.za/web/internal/middleware"
	"reachright.co.za/web/internal/observability"
	"reachright.co.za/web/internal/seo"
)

// app holds the dependencies shared by every handler.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	resolver  *seo.Resolver
	content   *cms.Client
	contact   *contact.Client
	limiter   mw.Limiter
	templates *templateSet
	site      handlers.Site
	analytics handlers.Analytics
	ld        handlers.StructuredData

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		resolver:  seo.NewResolver(resolverConfig(cfg.Site)),
		content:   cms.NewClient(cfg.Paths.Content, cfg.Paths.ContentCacheTTL),
		contact:   contact.NewClient(cfg.Contact.Endpoint, contact.WithTimeout(cfg.Contact.Timeout)),
		templates: newTemplateSet(cfg.Paths.Templates, cfg.Server.Dev),
		site:      handlers.NewSite(cfg.Site.Name, cfg.Site.BaseURL),
		analytics: handlers.AnalyticsFromConfig(cfg),
		ld:        handlers.NewStructuredData(cfg.Site.Name, cfg.Site.BaseURL),
	}

	if cfg.RateLimit.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, contact rate limit checks will fail open", zap.String("addr", cfg.RateLimit.RedisAddr), zap.Error(err))
		}
		a.limiter = mw.NewRedisLimiter(rdb, cfg.RateLimit.WindowLimit, cfg.RateLimit.Window)
		a.closers = append(a.closers, rdb.Close)
	} else {
		mem := mw.NewMemoryLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
		mem.StartJanitor(ctx)
		a.limiter = mem
	}

	if !cfg.Server.Dev {
		if err := a.templates.preload(); err != nil {
			return nil, err
		}
	}
	a.checkContent(ctx)
	if cfg.Contact.Endpoint == "" {
		logger.Warn("contact endpoint not configured; submissions are accepted without being delivered")
	}
	return a, nil
}

// Close releases external connections.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close", zap.Error(err))
		}
	}
}

func resolverConfig(site config.SiteConfig) seo.Config {
	def := seo.DefaultImage{
		URL:      site.DefaultImageURL,
		BasePath: site.DefaultImageBase,
		Filename: site.DefaultImageFile,
	}
	if site.DefaultImageW > 0 && site.DefaultImageH > 0 {
		def.Meta = &seo.ImageMeta{Width: site.DefaultImageW, Height: site.DefaultImageH, Type: site.DefaultImageType}
	}
	return seo.Config{
		SiteName:     site.Name,
		Locale:       site.Locale,
		TwitterSite:  site.TwitterSite,
		DefaultImage: def,
	}
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLogger(a.logger))
	r.Use(observability.Trace)
	r.Use(mw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(mw.LegacyShim)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(mw.HTMX)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/robots.txt", a.robotsHandler)
	r.Get("/sitemap.xml", a.sitemapHandler)
	r.Handle("/assets/*", mw.AssetsWithCache("/assets", filepath.Join(a.cfg.Paths.Public, "assets")))

	for _, p := range staticPages {
		r.Get(p.Path, a.pageHandler(p))
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.Session(mw.SessionOptions{
			SigningKey: []byte(a.cfg.Session.SigningKey),
			Secure:     a.cfg.Server.Production(),
		}))
		r.Use(mw.CSRF)
		r.Get("/contact", a.contactPage)
		r.With(mw.RateLimit(mw.RateLimitOptions{
			Limiter:   a.limiter,
			OnLimited: a.contactRateLimited,
		})).Post("/contact", a.contactSubmit)
	})

	r.NotFound(a.notFound)
	return r
}
