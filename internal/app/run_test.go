package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"powertrack/internal/config"
	"powertrack/internal/modules/records/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		AppEnv:             "dev",
		LogLevel:           slog.LevelInfo,
		HTTPAddr:           pickFreeAddr(t),
		ShutdownTimeout:    5 * time.Second,
		StoreDriver:        driver,
		DataFile:           filepath.Join(dir, "data.json"),
		SQLitePath:         filepath.Join(dir, "powertrack.db"),
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
	}
}

func pickFreeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestOpenStore(t *testing.T) {
	for _, driver := range []string{config.StoreDriverFile, config.StoreDriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			s, closeStore, err := openStore(ctx, testConfig(t, driver), discardLogger())
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			defer closeStore()

			want := types.Collection{{ID: "a", Date: "2024-01-01", Reading: 1}}
			if err := s.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got) != 1 || got[0] != want[0] {
				t.Fatalf("Load = %+v; want %+v", got, want)
			}
			if err := s.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
		})
	}

	t.Run("unknown driver", func(t *testing.T) {
		if _, _, err := openStore(context.Background(), testConfig(t, "postgres"), discardLogger()); err == nil {
			t.Fatal("openStore err = nil; want error")
		}
	})
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	cfg := testConfig(t, config.StoreDriverFile)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, discardLogger()) }()

	url := "http://" + cfg.HTTPAddr + "/healthz"
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server not healthy: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run err = %v; want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestOpenStore_LogsEachMigrationOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	prev := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, closeStore, err := openStore(context.Background(), testConfig(t, config.StoreDriverSQLite), logger)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer closeStore()

	if n := strings.Count(buf.String(), "migration applied"); n != 1 {
		t.Fatalf("migration applied logged %d times; want 1\n%s", n, buf.String())
	}
}
