package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/cache"
	"tangled.org/repobrowser/appview/config"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/appview/session"
	"tangled.org/repobrowser/appview/source"
	"tangled.org/repobrowser/appview/source/github"
	"tangled.org/repobrowser/appview/web"
	tlog "tangled.org/repobrowser/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := tlog.New("appview")
	ctx = tlog.IntoContext(ctx, logger)

	c, err := config.LoadConfig(ctx)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	if lvl, err := tlog.ParseLevel(c.Core.LogLevel); err != nil {
		logger.Warn("ignoring log level", "level", c.Core.LogLevel, "err", err)
	} else {
		tlog.SetLevel(lvl)
		logger = tlog.New("appview")
	}

	if err := run(ctx, c, logger); err != nil {
		logger.Error("failed to start appview", "err", err)
		os.Exit(-1)
	}
}

func run(ctx context.Context, c *config.Config, logger *slog.Logger) error {
	store, err := newStore(ctx, c, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close cache", "err", err)
			}
		}()
	}

	gh, err := github.New(github.Config{
		BaseURL: c.GitHub.BaseURL,
		Token:   c.GitHub.Token,
		PerPage: c.GitHub.PerPage,
		Timeout: c.GitHub.Timeout,
	})
	if err != nil {
		return err
	}
	src := source.NewCached(gh, store, c.Cache.TTL, tlog.SubLogger(logger, "cache"))

	browserLogger := tlog.SubLogger(logger, "browser")
	registry := session.NewRegistry(func() *browser.Controller {
		return browser.New(src, browser.WithStrictPaging(), browser.WithLogger(browserLogger))
	}, c.Core.SessionTTL, tlog.SubLogger(logger, "sessions"))
	go registry.Run(ctx, time.Minute)

	p, err := pages.NewPages(c.Core.Dev, tlog.SubLogger(logger, "pages"))
	if err != nil {
		return err
	}
	cookies := session.NewCookies(c.Core.CookieSecret, c.Core.Dev)

	var examples []models.RepoIdentifier
	for _, raw := range c.Core.Examples {
		id, err := models.ParseRepoIdentifier(raw)
		if err != nil {
			logger.Warn("skipping example repository", "repository", raw, "err", err)
			continue
		}
		examples = append(examples, id)
	}

	server := &http.Server{
		Addr:              c.Core.ListenAddr,
		Handler:           web.Router(logger, p, cookies, registry, examples),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdown); err != nil {
			logger.Error("failed to shut down", "err", err)
		}
	}()

	logger.Info("starting server", "address", c.Core.ListenAddr, "cache", c.Cache.Backend)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newStore(ctx context.Context, c *config.Config, logger *slog.Logger) (cache.Store, error) {
	switch c.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemory(c.Cache.MaxCost)
	case config.CacheRedis:
		opts, err := redis.ParseURL(c.Redis.ToURL())
		if err != nil {
			return nil, err
		}
		rdb := cache.NewWithOptions(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// lookups fail soft, so keep going without a warm cache
			logger.Warn("redis unreachable", "addr", c.Redis.Addr, "err", err)
		}
		return rdb, nil
	}
	return nil, nil
}
