package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"articlesearch/internal/bootstrap"
	"articlesearch/internal/config"
	"articlesearch/internal/console"
	"articlesearch/internal/pkg/jwtutil"
	httptransport "articlesearch/internal/transport/http"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "articlesearch",
		Usage: "Store articles and query them through a search agent",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Action: menuCommand,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the JSON API",
				Action: serveCommand,
			},
			{
				Name:   "import",
				Usage:  "Add the text of a PDF or text file as an article",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a .pdf, .txt or .md file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Article source (defaults to the file name)",
					},
				},
			},
			{
				Name:   "token",
				Usage:  "Mint a bearer token for the JSON API",
				Action: tokenCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime (defaults to auth.jwt_expire_minute)",
					},
					&cli.StringFlag{
						Name:  "subject",
						Usage: "Name of the API client",
						Value: "articlesearch",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Create the Articles and Memory tables if missing",
				Action: migrateCommand,
			},
		},
	}
}

func menuCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := start(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	menu := console.NewMenu(a.Articles, a.Chat, os.Stdin, c.App.Writer)
	if err := menu.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	a, err := start(c.Context)
	if err != nil {
		return err
	}
	defer closeApp(a)

	server := &http.Server{
		Addr:              a.Config.HTTPAddr(),
		Handler:           httptransport.NewRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", server.Addr, "auth", a.Config.Auth.Enabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(server, errCh)
}

func importCommand(c *cli.Context) error {
	a, err := start(c.Context)
	if err != nil {
		return err
	}
	defer closeApp(a)

	article, err := a.Articles.ImportFile(c.Context, c.String("file"), c.String("source"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Article %d added from %s.\n", article.ID, article.Source)
	return nil
}

func tokenCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ttl := c.Duration("ttl")
	if ttl <= 0 {
		ttl = time.Duration(cfg.Auth.JWTExpireMinute) * time.Minute
	}
	token, err := jwtutil.GenerateToken(cfg.Auth.JWTSecret, ttl, c.String("subject"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}

func migrateCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := bootstrap.OpenDatabase(c.Context, cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	fmt.Fprintln(c.App.Writer, "Database initialized successfully.")
	return nil
}

func start(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}
	return a, nil
}

func closeApp(a *bootstrap.App) {
	if err := a.Close(); err != nil {
		slog.Warn("close resources failed", "err", err)
	}
}

func waitForShutdown(server *http.Server, errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch levelStr := strings.ToLower(c.String("log-level")); levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}
