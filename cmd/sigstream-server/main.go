package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sigstream/internal/core/service"
	"github.com/yndnr/sigstream/internal/infra/buildinfo"
	"github.com/yndnr/sigstream/internal/infra/confloader"
	"github.com/yndnr/sigstream/internal/infra/shutdown"
	"github.com/yndnr/sigstream/internal/server/config"
	"github.com/yndnr/sigstream/internal/server/httpserver"
	"github.com/yndnr/sigstream/internal/server/redisserver"
	"github.com/yndnr/sigstream/internal/storage"
	"github.com/yndnr/sigstream/internal/storage/memory"
	"github.com/yndnr/sigstream/internal/storage/redislog"
	"github.com/yndnr/sigstream/internal/telemetry/logger"
	"github.com/yndnr/sigstream/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sigstream-server",
		Usage:   "Signed message stream server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"SIGSTREAM_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "HTTP listen address (overrides server.http.addr)",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend: memory, badger or redis (overrides storage.backend)",
			},
			&cli.PathFlag{
				Name:  "data-dir",
				Usage: "Data directory for the badger backend (overrides storage.data_dir)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides log.level)",
			},
		},
		Action: run,
	}
}

// flagOverrides maps explicitly set flags onto config keys.
func flagOverrides(c *cli.Context) map[string]any {
	keys := map[string]string{
		"http-addr": "server.http.addr",
		"backend":   "storage.backend",
		"data-dir":  "storage.data_dir",
		"log-level": "log.level",
	}
	overrides := make(map[string]any)
	for flag, key := range keys {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	return overrides
}

func run(c *cli.Context) error {
	configFile := c.Path("config")
	overrides := flagOverrides(c)

	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting sigstream-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)
	log.Debug("configuration loaded", "config", config.Sanitize(cfg))

	reg := metric.NewRegistry()

	store, err := initStorage(cfg, reg, slogLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	messages := service.NewMessageService(store,
		service.WithMetrics(reg),
		service.WithDefaultLimit(uint8(cfg.Stream.DefaultLimit)))

	// Hooks run in reverse order: listeners stop before the store closes.
	shutdownHandler := shutdown.NewHandler(shutdownTimeout, slogLogger)
	shutdownHandler.OnShutdown("storage", func(ctx context.Context) error {
		return store.Close()
	})

	proxies, err := httpserver.ParseTrustedProxies(cfg.Server.HTTP.TrustedProxies)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("trusted proxies: %w", err)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Messages:           messages,
		Store:              store,
		Metrics:            reg,
		Logger:             slogLogger,
		CORSAllowedOrigins: cfg.Server.HTTP.CORSAllowedOrigins,
		RateLimit:          cfg.Server.HTTP.RateLimit,
		TrustedProxies:     proxies,
		EnableAccessLog:    cfg.Server.HTTP.EnableAccessLog,
	})

	httpCfg := httpserver.DefaultConfig()
	httpCfg.Addr = cfg.Server.HTTP.Addr
	httpCfg.TLSCertFile = cfg.Server.HTTP.TLSCertFile
	httpCfg.TLSKeyFile = cfg.Server.HTTP.TLSKeyFile

	httpSrv := httpserver.New(httpCfg, router, slogLogger)
	if err := httpSrv.Start(); err != nil {
		_ = store.Close()
		return fmt.Errorf("start http server: %w", err)
	}
	shutdownHandler.OnShutdown("http", httpSrv.Shutdown)

	if cfg.Server.Redis.Enabled {
		redisCfg := redisserver.DefaultConfig()
		redisCfg.Addr = cfg.Server.Redis.Addr
		redisCfg.RateLimit = cfg.Server.Redis.RateLimit

		redisSrv := redisserver.New(redisCfg, store, slogLogger).WithMetrics(reg)
		if err := redisSrv.Start(c.Context); err != nil {
			shutdownHandler.Trigger()
			return errors.Join(fmt.Errorf("start redis server: %w", err), shutdownHandler.Wait(c.Context))
		}
		shutdownHandler.OnShutdown("redis", redisSrv.Shutdown)
	}

	if configFile != "" {
		watcher, err := watchLogLevel(configFile, overrides, slogLogger)
		if err != nil {
			log.Warn("config file watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(c.Context); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, the config file, SIGSTREAM_* variables and
// flag overrides, then validates the result.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger installs the process-wide logger.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.SetDefault(log)
	slog.SetDefault(log.Slog())

	return log, log.Slog(), nil
}

// initStorage opens the configured message log and registers its metrics.
func initStorage(cfg *config.ServerConfig, reg *metric.Registry, log *slog.Logger) (storage.MessageLog, error) {
	var store storage.MessageLog

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store = memory.New()

	case config.BackendBadger:
		bc := storage.DefaultBadgerConfig()
		if cfg.Storage.Badger.GCInterval != "" {
			bc.GCInterval = cfg.Storage.Badger.GCInterval
		}
		if cfg.Storage.Badger.CacheSize > 0 {
			bc.CacheSize = cfg.Storage.Badger.CacheSize
		}
		bc.SyncWrites = cfg.Storage.Badger.SyncWrites

		bl, err := storage.OpenBadger(cfg.Storage.DataDir, bc, log)
		if err != nil {
			return nil, err
		}
		store = bl.RegisterMetrics(reg.Registerer())

	case config.BackendRedis:
		rc := redislog.DefaultConfig()
		rc.Addr = cfg.Storage.Redis.Addr
		rc.Password = cfg.Storage.Redis.Password
		rc.DB = cfg.Storage.Redis.DB
		if cfg.Storage.Redis.PoolSize > 0 {
			rc.PoolSize = cfg.Storage.Redis.PoolSize
		}
		rl := redislog.New(rc, log)

		ctx, cancel := context.WithTimeout(context.Background(), rc.DialTimeout)
		defer cancel()
		if err := rl.Ping(ctx); err != nil {
			log.Warn("redis backend not reachable yet", "addr", rc.Addr, "error", err)
		}
		store = rl

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	reg.RegisterStore(store, cfg.Storage.Backend)
	log.Info("storage initialized", "backend", cfg.Storage.Backend)
	return store, nil
}

// watchLogLevel reapplies log.level whenever the config file changes.
// Other settings need a restart.
func watchLogLevel(configFile string, overrides map[string]any, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(path, overrides)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()

	return watcher, nil
}
