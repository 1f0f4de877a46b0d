// Package osint registers generated apps with the desktop environment:
// XDG desktop entries on Linux, .app bundles on macOS and Start Menu
// shortcuts on Windows.
//
// Every platform is implemented in plain Go without build constraints and
// selected by Integrator.Platform, so each rendering can be exercised from
// any host.
package osint

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/config"
	"github.com/url2app/u2a/internal/execx"
)

// App describes a generated app to integrate.
type App struct {
	Name     string
	URL      string
	Dir      string
	IconPath string
}

// Integrator adds and removes desktop integration artifacts.
type Integrator struct {
	// Platform is a GOOS value (default: runtime.GOOS).
	Platform string

	// HomeDir roots the Linux and macOS targets.
	HomeDir string

	// AppDataDir is the Windows roaming application data directory.
	AppDataDir string

	// TempDir receives transient PowerShell scripts.
	TempDir string

	// Runner runs PowerShell on Windows.
	Runner execx.Runner

	Logger *zap.Logger
}

// New returns an Integrator for the current platform.
func New(cfg *config.Config, runner execx.Runner, logger *zap.Logger) *Integrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	appData := os.Getenv("APPDATA")
	if appData == "" {
		appData = filepath.Join(cfg.HomeDir, "AppData", "Roaming")
	}
	return &Integrator{
		Platform:   runtime.GOOS,
		HomeDir:    cfg.HomeDir,
		AppDataDir: appData,
		TempDir:    os.TempDir(),
		Runner:     runner,
		Logger:     logger,
	}
}

// Supported reports whether the platform has a desktop integration.
func (i *Integrator) Supported() bool {
	switch i.Platform {
	case "linux", "darwin", "windows":
		return true
	}
	return false
}

// Path returns where the artifact for the app called name lives, or "" on
// unsupported platforms.
func (i *Integrator) Path(name string) string {
	switch i.Platform {
	case "linux":
		return i.desktopEntryPath(name)
	case "darwin":
		return i.bundlePath(name)
	case "windows":
		return i.shortcutPath(name)
	}
	return ""
}

// Add creates the integration artifact for app and returns its path. On
// unsupported platforms it returns "" and no error.
func (i *Integrator) Add(ctx context.Context, app App) (string, error) {
	log := i.logger().With(zap.String("app", app.Name), zap.String("platform", i.Platform))

	var (
		path string
		err  error
	)
	switch i.Platform {
	case "linux":
		path, err = i.addDesktopEntry(app)
	case "darwin":
		path, err = i.addBundle(app)
	case "windows":
		path, err = i.addShortcut(ctx, app)
	default:
		log.Warn("desktop integration not supported on this platform")
		return "", nil
	}
	if err != nil {
		// Leave nothing half-written behind.
		_ = os.RemoveAll(i.Path(app.Name))
		return "", err
	}

	log.Debug("desktop integration created", zap.String("path", path))
	return path, nil
}

// Remove deletes the integration artifact of the app called name. A missing
// artifact is not an error.
func (i *Integrator) Remove(ctx context.Context, name string) error {
	path := i.Path(name)
	if path == "" {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	i.logger().Debug("desktop integration removed", zap.String("path", path))
	return nil
}

func (i *Integrator) logger() *zap.Logger {
	if i.Logger == nil {
		return zap.NewNop()
	}
	return i.Logger
}

func electronBinary(appDir, platform string) string {
	if platform == "windows" {
		return filepath.Join(appDir, "node_modules", ".bin", "electron.cmd")
	}
	return filepath.Join(appDir, "node_modules", ".bin", "electron")
}
