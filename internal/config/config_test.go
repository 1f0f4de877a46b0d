package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestForRoot(t *testing.T) {
	root := t.TempDir()
	cfg := ForRoot(root)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"apps", cfg.AppsDir, filepath.Join(root, "apps")},
		{"icons", cfg.IconsDir, filepath.Join(root, "icons")},
		{"logs", cfg.LogsDir, filepath.Join(root, "logs")},
		{"db", cfg.DBPath, filepath.Join(root, "db.json")},
		{"settings", cfg.SettingsPath, filepath.Join(root, "settings.json")},
		{"state", cfg.StatePath, filepath.Join(root, "postinstall.json")},
		{"metrics", cfg.MetricsPath, filepath.Join(root, "metrics.prom")},
		{"icon", cfg.DefaultIconPath, filepath.Join(root, "favicon.ico")},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	if cfg.Endpoints.LatestVersion != DefaultAPIURL+"/getlastest" {
		t.Errorf("LatestVersion = %q", cfg.Endpoints.LatestVersion)
	}
}

func TestDefault_HonorsEnv(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvHome, root)
	t.Setenv(EnvAPIURL, "http://127.0.0.1:9999/api/")

	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if cfg.ConfigDir != root {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, root)
	}
	if cfg.Endpoints.Reports != "http://127.0.0.1:9999/api/reports" {
		t.Errorf("Reports = %q", cfg.Endpoints.Reports)
	}
	if cfg.HomeDir == filepath.Join(root, "home") {
		t.Error("Default should use the real home directory")
	}
}

func TestSetup(t *testing.T) {
	cfg := ForRoot(filepath.Join(t.TempDir(), "u2a"))

	if err := cfg.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	for _, dir := range []string{cfg.ConfigDir, cfg.AppsDir, cfg.IconsDir, cfg.LogsDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s should be a directory", dir)
		}
	}

	data, err := os.ReadFile(cfg.DBPath)
	if err != nil {
		t.Fatalf("registry not created: %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("registry = %q, want empty object", data)
	}

	// A second Setup must not clobber an existing registry.
	if err := os.WriteFile(cfg.DBPath, []byte(`{"a":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Setup(); err != nil {
		t.Fatalf("second Setup() error = %v", err)
	}
	data, _ = os.ReadFile(cfg.DBPath)
	if string(data) != `{"a":{}}` {
		t.Errorf("Setup overwrote registry: %q", data)
	}
}

func TestOwnsIcon(t *testing.T) {
	cfg := ForRoot("/tmp/u2a")

	tests := []struct {
		name string
		icon string
		want bool
	}{
		{"github.com", "/tmp/u2a/icons/github.com.ico", true},
		{"github.com", "/tmp/u2a/icons/github.com.png", true},
		{"github.com", "/tmp/u2a/apps/github.com.ico", false},
		{"github.com", "/tmp/u2a/favicon.ico", false},
		{"github.com", "/tmp/u2a/icons/gitlab.com.ico", false},
		{"github.com", "/home/me/icons/github.com.ico", false},
		{"github.com", "", false},
	}

	for _, tt := range tests {
		if got := cfg.OwnsIcon(tt.name, tt.icon); got != tt.want {
			t.Errorf("OwnsIcon(%q, %q) = %v, want %v", tt.name, tt.icon, got, tt.want)
		}
	}
}

func TestAppDir(t *testing.T) {
	cfg := ForRoot("/tmp/u2a")
	if got := cfg.AppDir("example.com"); got != filepath.Join("/tmp/u2a", "apps", "example.com") {
		t.Errorf("AppDir = %q", got)
	}
}
