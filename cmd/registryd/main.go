package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"

	"github.com/feckmell/instanceregistry/adapters/asgstatic"
	"github.com/feckmell/instanceregistry/adapters/httpremote"
	"github.com/feckmell/instanceregistry/adapters/rediscache"
	"github.com/feckmell/instanceregistry/interfaces"
	"github.com/feckmell/instanceregistry/registry"
)

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	logger = log.WithPrefix(logger, "caller", log.DefaultCaller)

	level.Info(logger).Log("msg", "Starting registryd")

	cfg, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load configuration", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log(
		"msg", "Configuration loaded",
		"service_port_http", cfg.HTTPPort,
		"redis_addr", cfg.RedisAddr,
		"region", cfg.Region,
	)

	redisClient := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.RedisAddr}})
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			level.Error(logger).Log("msg", "Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "Connected to Redis")
	}

	cache := rediscache.New(redisClient, context.Background(), logger)
	asg := asgstatic.New(nil)

	remotes := map[string]interfaces.RemoteRegionRegistry{}
	for region, url := range cfg.Registry.RemoteRegionURLsWithName {
		remotes[region] = httpremote.New(url, &http.Client{Timeout: 10 * time.Second})
	}

	reg := registry.New(cfg.Registry, cache, asg, remotes, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reg.RunEvictionSweeper(ctx)
	go reg.RunChangeLogPruner(ctx)

	e := echo.New()
	e.HideBanner = true
	registerErrorHandler(e, logger)
	registerDebugRoutes(e, reg)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		level.Info(logger).Log("msg", "Starting HTTP server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			level.Error(logger).Log("msg", "HTTP server error", "err", err)
		}
	}()

	<-ctx.Done()
	level.Info(logger).Log("msg", "Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "Error during server shutdown", "err", err)
	}
	if err := redisClient.Close(); err != nil {
		level.Error(logger).Log("msg", "Error closing Redis client", "err", err)
	}

	level.Info(logger).Log("msg", "Server stopped")
}
