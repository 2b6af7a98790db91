package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"powertrack/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "explicit DSN wins",
			cfg:  config.Config{SQLiteDSN: "file:custom.db?mode=ro", SQLitePath: "ignored.db"},
			want: "file:custom.db?mode=ro",
		},
		{
			name: "memory",
			cfg:  config.Config{SQLitePath: ":memory:"},
			want: ":memory:",
		},
		{
			name: "plain path",
			cfg:  config.Config{SQLitePath: filepath.Join(dir, "a.db")},
			want: "file:" + filepath.Join(dir, "a.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "file prefix with query",
			cfg:  config.Config{SQLitePath: "file:" + filepath.Join(dir, "b.db") + "?cache=shared"},
			want: "file:" + filepath.Join(dir, "b.db") + "?cache=shared&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("buildDSN() err = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildDSN() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDSN_EmptyPath(t *testing.T) {
	if _, err := buildDSN(config.Config{}); err == nil {
		t.Fatal("buildDSN() err = nil; want non-nil")
	}
}

func TestBuildDSN_CreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deeper")
	if _, err := buildDSN(config.Config{SQLitePath: filepath.Join(dir, "x.db")}); err != nil {
		t.Fatalf("buildDSN() err = %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("parent dir not created: %v", err)
	}
}

func TestOpen_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powertrack.db")
	cfg := config.Config{
		SQLitePath:         path,
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
	}

	conn, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	defer func() {
		if err := Close(conn); err != nil {
			t.Errorf("Close() err = %v", err)
		}
	}()

	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q; want wal", mode)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("db file not created: %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v; want nil", err)
	}
}
