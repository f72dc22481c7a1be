package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/feckmell/instanceregistry/registry"
)

// RegistrydConfig is the process-level configuration: the registry.Config
// the core consumes plus the adapter wiring (Redis address, HTTP port,
// region peer URLs) that is this binary's own concern.
type RegistrydConfig struct {
	Registry registry.Config

	HTTPPort  int
	RedisAddr string

	Region string
}

// LoadConfig loads configuration from environment variables.
// SERVICE_PORT_HTTP and REDIS_ADDR are required; everything else has a
// default drawn from registry.DefaultConfig.
func LoadConfig() (*RegistrydConfig, error) {
	httpPortStr := os.Getenv("SERVICE_PORT_HTTP")
	if httpPortStr == "" {
		return nil, fmt.Errorf("SERVICE_PORT_HTTP is required")
	}
	httpPort, err := strconv.Atoi(httpPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVICE_PORT_HTTP: %w", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}

	cfg := registry.DefaultConfig()

	if v := os.Getenv("RENEWAL_PERCENT_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RENEWAL_PERCENT_THRESHOLD: %w", err)
		}
		cfg.RenewalPercentThreshold = f
	}
	if v := os.Getenv("EVICTION_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EVICTION_INTERVAL_MS: %w", err)
		}
		cfg.EvictionInterval = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("DELTA_RETENTION_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DELTA_RETENTION_INTERVAL_MS: %w", err)
		}
		cfg.DeltaRetentionPruneInterval = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("RETENTION_TIME_IN_MS_IN_DELTA_QUEUE"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RETENTION_TIME_IN_MS_IN_DELTA_QUEUE: %w", err)
		}
		cfg.RetentionTimeInDeltaQueue = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("DISABLE_TRANSPARENT_FALLBACK_TO_OTHER_REGION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DISABLE_TRANSPARENT_FALLBACK_TO_OTHER_REGION: %w", err)
		}
		cfg.DisableTransparentFallbackToOtherRegion = b
	}

	cfg.RemoteRegionURLsWithName = parseRegionURLs(os.Getenv("REMOTE_REGION_URLS_WITH_NAME"))
	cfg.RemoteRegionAppWhitelist = parseWhitelists(os.Getenv("REMOTE_REGION_APP_WHITELIST"))

	return &RegistrydConfig{
		Registry:  cfg,
		HTTPPort:  httpPort,
		RedisAddr: redisAddr,
		Region:    os.Getenv("REGION"),
	}, nil
}

// parseRegionURLs parses "us-east=http://host:port,eu-west=http://host2:port"
// into a region-name-to-URL map.
func parseRegionURLs(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		name, url, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(url)
	}
	return out
}

// parseWhitelists parses "us-east=appA|appB;=appC|appD" into a map from
// region name (empty string for the global entry) to the set of allowed
// app names. Regions joined by ";" separate entries; app names within a
// region are "|"-separated. An entry without "=" is skipped.
func parseWhitelists(raw string) map[string]map[string]struct{} {
	if raw == "" {
		return nil
	}
	out := map[string]map[string]struct{}{}
	for _, entry := range strings.Split(raw, ";") {
		if entry == "" {
			continue
		}
		region, apps, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		set := map[string]struct{}{}
		for _, app := range strings.Split(apps, "|") {
			if app = strings.TrimSpace(app); app != "" {
				set[app] = struct{}{}
			}
		}
		out[strings.TrimSpace(region)] = set
	}
	return out
}
