package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/server/config"
	"github.com/yndnr/sigstream/internal/telemetry/logger"
	"github.com/yndnr/sigstream/internal/telemetry/metric"
)

func TestFlagOverrides(t *testing.T) {
	var got map[string]any
	app := newApp()
	app.Action = func(c *cli.Context) error {
		got = flagOverrides(c)
		return nil
	}

	if err := app.Run([]string{"sigstream-server", "--backend", "badger", "--data-dir", "/tmp/ss"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]any{"storage.backend": "badger", "storage.data_dir": "/tmp/ss"}
	if len(got) != len(want) {
		t.Fatalf("overrides = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("overrides[%s] = %v, want %v", k, got[k], v)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  http:\n    addr: \"127.0.0.1:9000\"\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, map[string]any{"log.level": "warn"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.HTTP.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q, want 127.0.0.1:9000", cfg.Server.HTTP.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("level = %q, want the flag override", cfg.Log.Level)
	}
	if cfg.Stream.DefaultLimit != config.Default().Stream.DefaultLimit {
		t.Errorf("default_limit = %d, want the built-in default", cfg.Stream.DefaultLimit)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig("", map[string]any{"storage.backend": "nope"})
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("err = %v, want invalid configuration", err)
	}
}

func TestInitStorage(t *testing.T) {
	log := logger.NewSlog(logger.Config{Level: "error", Output: os.Stderr})

	backends := []struct {
		name    string
		backend string
	}{
		{"memory", config.BackendMemory},
		{"badger", config.BackendBadger},
	}

	for _, tt := range backends {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage.Backend = tt.backend
			cfg.Storage.DataDir = t.TempDir()

			store, err := initStorage(cfg, metric.NewRegistry(), log)
			if err != nil {
				t.Fatalf("initStorage: %v", err)
			}
			defer store.Close()

			key, err := domain.NewStreamAddress([]byte("abcdefgh"))
			if err != nil {
				t.Fatal(err)
			}
			n, err := store.Append(context.Background(), key, make([]byte, domain.PackedSize))
			if err != nil || n != 1 {
				t.Fatalf("Append = %d, %v; want 1, nil", n, err)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Backend = "tape"
		if _, err := initStorage(cfg, metric.NewRegistry(), log); err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})
}
