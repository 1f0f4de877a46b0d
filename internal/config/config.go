package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/url2app/u2a/internal/errors"
)

const (
	// DirName is the per-user configuration directory under $HOME.
	DirName = ".u2a"

	// DBFileName is the registry file name.
	DBFileName = "db.json"

	// SettingsFileName is the settings file name.
	SettingsFileName = "settings.json"

	// StateFileName records the last installed tool version.
	StateFileName = "postinstall.json"

	// MetricsFileName is the prometheus textfile written after each command.
	MetricsFileName = "metrics.prom"

	// DefaultIconName is the shared fallback icon written at setup.
	DefaultIconName = "favicon.ico"

	// DefaultAPIURL is the base URL of the u2a web API.
	DefaultAPIURL = "https://urltoapp.xyz/api/v1"

	// EnvHome overrides the configuration directory.
	EnvHome = "U2A_HOME"

	// EnvAPIURL overrides the API base URL.
	EnvAPIURL = "U2A_API_URL"
)

// Config is the explicit process configuration. It is built once in main
// and passed to every component; nothing reads ambient path globals.
type Config struct {
	// ConfigDir is the root of all u2a state (default ~/.u2a).
	ConfigDir string

	// AppsDir holds one directory per generated app.
	AppsDir string

	// IconsDir holds the per-app icons. It is kept apart from AppsDir so an
	// icon file never occupies an app name.
	IconsDir string

	// LogsDir holds daily log files.
	LogsDir string

	// DBPath is the registry JSON document.
	DBPath string

	// SettingsPath is the settings JSON document.
	SettingsPath string

	// StatePath is the postinstall state document.
	StatePath string

	// MetricsPath is the prometheus textfile.
	MetricsPath string

	// DefaultIconPath is the shared icon used when no favicon is found.
	DefaultIconPath string

	// HomeDir is the user's home, used for desktop integration targets.
	HomeDir string

	// UserConfigDir is the OS application-data root Electron stores
	// per-app user data under.
	UserConfigDir string

	// OutputDir receives executable-mode build outputs.
	OutputDir string

	// Endpoints are the remote API URLs.
	Endpoints Endpoints
}

// Endpoints contains the remote API URLs.
type Endpoints struct {
	// Reports receives the anonymous install/upgrade beacon.
	Reports string

	// LatestVersion returns the latest published version as plain text.
	LatestVersion string
}

// NewEndpoints derives endpoints from an API base URL.
func NewEndpoints(base string) Endpoints {
	base = strings.TrimRight(base, "/")
	return Endpoints{
		Reports:       base + "/reports",
		LatestVersion: base + "/getlastest",
	}
}

// Default returns the configuration for the current user, honoring the
// U2A_HOME and U2A_API_URL environment overrides.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New("E500").
			WithDetail("cannot determine the home directory").
			Wrap(err)
	}

	root := os.Getenv(EnvHome)
	if root == "" {
		root = filepath.Join(home, DirName)
	}

	cfg := ForRoot(root)
	cfg.HomeDir = home

	if dir, err := os.UserConfigDir(); err == nil {
		cfg.UserConfigDir = dir
	} else {
		cfg.UserConfigDir = filepath.Join(home, ".config")
	}

	if wd, err := os.Getwd(); err == nil {
		cfg.OutputDir = wd
	}

	if api := os.Getenv(EnvAPIURL); api != "" {
		cfg.Endpoints = NewEndpoints(api)
	}

	return cfg, nil
}

// ForRoot returns a configuration with every path under root. HomeDir,
// UserConfigDir and OutputDir also point inside root so tests stay hermetic.
func ForRoot(root string) *Config {
	return &Config{
		ConfigDir:       root,
		AppsDir:         filepath.Join(root, "apps"),
		IconsDir:        filepath.Join(root, "icons"),
		LogsDir:         filepath.Join(root, "logs"),
		DBPath:          filepath.Join(root, DBFileName),
		SettingsPath:    filepath.Join(root, SettingsFileName),
		StatePath:       filepath.Join(root, StateFileName),
		MetricsPath:     filepath.Join(root, MetricsFileName),
		DefaultIconPath: filepath.Join(root, DefaultIconName),
		HomeDir:         filepath.Join(root, "home"),
		UserConfigDir:   filepath.Join(root, "userdata"),
		OutputDir:       filepath.Join(root, "out"),
		Endpoints:       NewEndpoints(DefaultAPIURL),
	}
}

// Setup creates the configuration, apps, icons and logs directories and an empty
// registry document if none exists.
func (c *Config) Setup() error {
	for _, dir := range []string{c.ConfigDir, c.AppsDir, c.IconsDir, c.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.New("E500").
				WithDetailf("cannot create %s", dir).
				Wrap(err)
		}
	}

	if _, err := os.Stat(c.DBPath); os.IsNotExist(err) {
		if err := os.WriteFile(c.DBPath, []byte("{}\n"), 0644); err != nil {
			return errors.New("E502").Wrap(err)
		}
	}

	return nil
}

// AppDir returns the directory a generated app named name lives in.
func (c *Config) AppDir(name string) string {
	return filepath.Join(c.AppsDir, name)
}

// OwnsIcon reports whether icon is a per-app icon stored in IconsDir for
// the app called name, as opposed to the shared default or a
// user-supplied file elsewhere.
func (c *Config) OwnsIcon(name, icon string) bool {
	if icon == "" {
		return false
	}
	if filepath.Dir(filepath.Clean(icon)) != filepath.Clean(c.IconsDir) {
		return false
	}
	base := filepath.Base(icon)
	return strings.TrimSuffix(base, filepath.Ext(base)) == name
}
