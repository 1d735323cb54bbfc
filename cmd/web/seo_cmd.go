package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"reachright.co.za/web/internal/seo"
)

var (
	colorCyan    = lipgloss.Color("14")
	colorDimGray = lipgloss.Color("240")
	colorRed     = lipgloss.Color("204")

	styleKey    = lipgloss.NewStyle().Foreground(colorCyan)
	styleKind   = lipgloss.NewStyle().Foreground(colorDimGray)
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleError  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

func newSEOCmd() *cobra.Command {
	var (
		location string
		asHTML   bool
	)
	cmd := &cobra.Command{
		Use:   "seo <path>",
		Short: "Print the resolved head metadata for a page",
		Long: `Resolves the metadata a page would render with, without starting the server.

The path may carry the legacy "/?/about" form; --location overrides the URL the
page is treated as being served from.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Server.Dev = true
			a, err := newApp(context.Background(), cfg, zap.NewNop())
			if err != nil {
				return err
			}
			defer a.Close()

			resolved, err := a.inspect(args[0], location)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asHTML {
				_, err := io.WriteString(out, string(resolved.HTML())+"\n")
				return err
			}
			printTags(out, resolved, isTerminal(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "Absolute URL to treat as the current location")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the rendered head elements instead of a table")
	return cmd
}

// inspect resolves metadata for path the same way the page handler does.
func (a *app) inspect(path, location string) (seo.Resolved, error) {
	target := path
	if q, ok := strings.CutPrefix(path, "/?"); ok {
		if shim, ok := seo.ShimPath(q); ok {
			target, _, _ = strings.Cut(shim, "&")
		}
	}
	if location == "" {
		location = a.cfg.Site.BaseURL + path
	}
	p, ok := lookupPage(target)
	if !ok {
		return seo.Resolved{}, fmt.Errorf("no page at %s", target)
	}
	page := a.loadContent(context.Background(), p)
	return a.resolvePage(p, page, location), nil
}

func printTags(w io.Writer, resolved seo.Resolved, styled bool) {
	render := func(s lipgloss.Style, v string) string {
		if !styled {
			return v
		}
		return s.Render(v)
	}
	width := 0
	tags := resolved.Tags()
	for _, t := range tags {
		if n := len(tagLabel(t)); n > width {
			width = n
		}
	}
	fmt.Fprintln(w, render(styleHeader, resolved.Title))
	for _, t := range tags {
		label := tagLabel(t)
		pad := strings.Repeat(" ", width-len(label))
		value := t.Value
		if t.Kind == seo.KindScript && len(value) > 80 {
			value = value[:77] + "..."
		}
		fmt.Fprintf(w, "%s %s%s  %s\n", render(styleKind, fmt.Sprintf("%-6s", t.Kind)), render(styleKey, label), pad, value)
	}
}

func tagLabel(t seo.Tag) string {
	switch t.Kind {
	case seo.KindTitle:
		return "title"
	case seo.KindScript:
		return "application/ld+json"
	}
	return t.Key
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
