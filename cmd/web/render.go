package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"reachright.co.za/web/internal/format"
	"reachright.co.za/web/internal/observability"
)

// templateSet parses layouts and partials once per page so each page can
// define its own "content" block. In dev mode it reparses on every render.
type templateSet struct {
	dir string
	dev bool

	mu    sync.RWMutex
	pages map[string]*template.Template
}

func newTemplateSet(dir string, dev bool) *templateSet {
	return &templateSet{dir: dir, dev: dev, pages: map[string]*template.Template{}}
}

var funcMap = template.FuncMap{
	"now": time.Now,
	"formatPrice": func(amount int64, currency string) string {
		return format.FmtCurrency(amount, currency, "en-ZA")
	},
	"formatDate": func(t time.Time) string { return format.FmtDate(t, "en") },
	"stars":      format.Stars,
	"rating":     format.Rating,
	"hasError": func(fields map[string]string, name string) bool {
		_, ok := fields[name]
		return ok
	},
}

// preload parses every page template, failing on the first error.
func (s *templateSet) preload() error {
	names, err := s.pageNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no page templates found under %s", filepath.Join(s.dir, "pages"))
	}
	for _, name := range names {
		t, err := s.parse(name)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.pages[name] = t
		s.mu.Unlock()
	}
	return nil
}

func (s *templateSet) lookup(name string) (*template.Template, error) {
	if !s.dev {
		s.mu.RLock()
		t, ok := s.pages[name]
		s.mu.RUnlock()
		if ok {
			return t, nil
		}
	}
	t, err := s.parse(name)
	if err != nil {
		return nil, err
	}
	if !s.dev {
		s.mu.Lock()
		s.pages[name] = t
		s.mu.Unlock()
	}
	return t, nil
}

func (s *templateSet) parse(name string) (*template.Template, error) {
	var files []string
	for _, sub := range []string{"layouts", "partials"} {
		matches, err := filepath.Glob(filepath.Join(s.dir, sub, "*.tmpl"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	files = append(files, filepath.Join(s.dir, "pages", name+".tmpl"))
	t, err := template.New(name).Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return t, nil
}

func (s *templateSet) pageNames() ([]string, error) {
	var names []string
	root := filepath.Join(s.dir, "pages")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		names = append(names, strings.TrimSuffix(d.Name(), ".tmpl"))
		return nil
	})
	return names, err
}

// render executes the base layout for page into a buffer, then writes it with
// status. Template failures become a plain 500.
func (a *app) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	logger := observability.FromContext(r.Context())
	t, err := a.templates.lookup(page)
	if err != nil {
		logger.Error("template lookup failed", zap.String("template", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Error("template exec failed", zap.String("template", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
