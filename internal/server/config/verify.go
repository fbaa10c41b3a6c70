package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/yndnr/sigstream/internal/telemetry/logger"
)

// Verify validates the configuration and collects every problem found.
func Verify(cfg *ServerConfig) error {
	var errs []error
	errs = append(errs, verifyServer(&cfg.Server)...)
	errs = append(errs, verifyStorage(&cfg.Storage)...)
	errs = append(errs, verifyStream(&cfg.Stream)...)
	errs = append(errs, verifyLog(&cfg.Log)...)
	return errors.Join(errs...)
}

func verifyServer(cfg *ServerSection) []error {
	var errs []error
	if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
		errs = append(errs, err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			errs = append(errs, fmt.Errorf("server.http tls file: %w", err))
		}
	}
	if cfg.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("server.http.rate_limit must not be negative"))
	}
	for _, p := range cfg.HTTP.TrustedProxies {
		if err := verifyProxy(p); err != nil {
			errs = append(errs, fmt.Errorf("server.http.trusted_proxies: %w", err))
		}
	}

	if cfg.Redis.Enabled {
		if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
			errs = append(errs, err)
		}
		if cfg.Redis.Addr == cfg.HTTP.Addr {
			errs = append(errs, fmt.Errorf("server.redis.addr conflicts with server.http.addr (%s)", cfg.Redis.Addr))
		}
	}
	if cfg.Redis.RateLimit < 0 {
		errs = append(errs, errors.New("server.redis.rate_limit must not be negative"))
	}
	return errs
}

func verifyStorage(cfg *StorageSection) []error {
	var errs []error
	switch cfg.Backend {
	case BackendMemory:
	case BackendBadger:
		if cfg.DataDir == "" {
			errs = append(errs, errors.New("storage.data_dir is required for the badger backend"))
		}
		if cfg.Badger.GCInterval != "" {
			if _, err := time.ParseDuration(cfg.Badger.GCInterval); err != nil {
				errs = append(errs, fmt.Errorf("storage.badger.gc_interval: %w", err))
			}
		}
		if cfg.Badger.CacheSize < 0 {
			errs = append(errs, errors.New("storage.badger.cache_size must not be negative"))
		}
	case BackendRedis:
		if err := verifyAddr("storage.redis.addr", cfg.Redis.Addr); err != nil {
			errs = append(errs, err)
		}
		if cfg.Redis.DB < 0 {
			errs = append(errs, errors.New("storage.redis.db must not be negative"))
		}
		if cfg.Redis.PoolSize < 0 {
			errs = append(errs, errors.New("storage.redis.pool_size must not be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of %s",
			cfg.Backend, strings.Join([]string{BackendMemory, BackendBadger, BackendRedis}, ", ")))
	}
	return errs
}

func verifyStream(cfg *StreamSection) []error {
	if cfg.DefaultLimit < 0 || cfg.DefaultLimit > math.MaxUint8 {
		return []error{fmt.Errorf("stream.default_limit must be between 0 and %d", math.MaxUint8)}
	}
	return nil
}

func verifyLog(cfg *LogSection) []error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is invalid", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid", cfg.Format))
	}
	return errs
}

func verifyProxy(entry string) error {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err
	}
	_, err := netip.ParseAddr(entry)
	return err
}

func verifyAddr(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}
