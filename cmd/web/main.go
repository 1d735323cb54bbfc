package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reachright.co.za/web/internal/config"
	"reachright.co.za/web/internal/observability"
)

var (
	envFileFlag   string
	templatesFlag string
	publicFlag    string
	contentFlag   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "web",
		Short:         "ReachRight Marketing website",
		Long:          `Serves the ReachRight Marketing brochure site and inspects its page metadata.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "Path to a .env file (optional)")
	root.PersistentFlags().StringVar(&templatesFlag, "templates", "", "Templates directory (env: REACHRIGHT_WEB_TEMPLATES_DIR)")
	root.PersistentFlags().StringVar(&publicFlag, "public", "", "Public assets directory (env: REACHRIGHT_WEB_PUBLIC_DIR)")
	root.PersistentFlags().StringVar(&contentFlag, "content", "", "Markdown content directory (env: REACHRIGHT_WEB_CONTENT_DIR)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newSEOCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// loadConfig reads configuration and applies directory flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.WithEnvFile(envFileFlag))
	if err != nil {
		return config.Config{}, err
	}
	if templatesFlag != "" {
		cfg.Paths.Templates = templatesFlag
	}
	if publicFlag != "" {
		cfg.Paths.Public = publicFlag
	}
	if contentFlag != "" {
		cfg.Paths.Content = contentFlag
	}
	return cfg, nil
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if ratio := cfg.Log.TraceSampleRatio; ratio > 0 {
		shutdownTracing, err := observability.SetupTracing(logger, "reachright-web", ratio)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.Warn("trace flush failed", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Server.Environment),
			zap.Bool("devMode", cfg.Server.Dev),
			zap.Bool("contactFake", a.contact.Fake()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
