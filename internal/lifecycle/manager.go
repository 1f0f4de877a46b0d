package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/build"
	"github.com/url2app/u2a/internal/config"
	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/osint"
	"github.com/url2app/u2a/internal/registry"
	"github.com/url2app/u2a/internal/settings"
	"github.com/url2app/u2a/internal/telemetry"
)

// Normalizer turns user input into a URL with a scheme.
type Normalizer interface {
	Normalize(ctx context.Context, raw string) string
}

// IconResolver finds an icon for a site. The returned path is always
// usable; owned reports whether the file belongs to the app.
type IconResolver interface {
	Resolve(ctx context.Context, siteURL, name string) (path string, owned bool)
}

// Runner runs a command line in a directory and returns its output.
type Runner interface {
	Run(ctx context.Context, dir, command string) ([]byte, error)
}

// OSIntegrator adds and removes desktop integration artifacts.
type OSIntegrator interface {
	Add(ctx context.Context, app osint.App) (string, error)
	Remove(ctx context.Context, name string) error
}

// Packager builds standalone executables and installers.
type Packager interface {
	Build(ctx context.Context, appDir, appName, iconPath string, opts build.Options) (*build.Result, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// SettingsReader reads boolean settings.
type SettingsReader interface {
	Bool(key settings.Key) bool
}

// Deps are the collaborators of a Manager. Config, Registry, Normalizer,
// Icons, Runner, OS and Settings are required.
type Deps struct {
	Config     *config.Config
	Registry   *registry.DB
	Normalizer Normalizer
	Icons      IconResolver
	Runner     Runner
	OS         OSIntegrator
	Packager   Packager
	Confirmer  Confirmer
	Settings   SettingsReader
	Metrics    *telemetry.Metrics
	Logger     *zap.Logger

	// Version is stamped into generated manifests.
	Version string

	// OnProgress receives user-facing progress lines.
	OnProgress func(step string)

	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager runs the create, remove and upgrade operations.
type Manager struct {
	cfg        *config.Config
	db         *registry.DB
	normalizer Normalizer
	icons      IconResolver
	runner     Runner
	os         OSIntegrator
	packager   Packager
	confirmer  Confirmer
	settings   SettingsReader
	metrics    *telemetry.Metrics
	logger     *zap.Logger
	version    string
	onProgress func(step string)
	now        func() time.Time
}

// New returns a Manager wired to d.
func New(d Deps) *Manager {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Manager{
		cfg:        d.Config,
		db:         d.Registry,
		normalizer: d.Normalizer,
		icons:      d.Icons,
		runner:     d.Runner,
		os:         d.OS,
		packager:   d.Packager,
		confirmer:  d.Confirmer,
		settings:   d.Settings,
		metrics:    d.Metrics,
		logger:     d.Logger,
		version:    d.Version,
		onProgress: d.OnProgress,
		now:        d.Now,
	}
}

// Entry is one registered app as returned by List.
type Entry struct {
	Name   string
	Record *registry.Record
}

// List returns the registered apps in name order.
func (m *Manager) List() ([]Entry, error) {
	apps, err := m.db.Read()
	if err != nil {
		return nil, err
	}
	m.metrics.SetRegisteredApps(len(apps))

	entries := make([]Entry, 0, len(apps))
	for _, name := range apps.Names() {
		entries = append(entries, Entry{Name: name, Record: apps[name]})
	}
	return entries, nil
}

func (m *Manager) opLogger(op string) *zap.Logger {
	return m.logger.Named(op).With(zap.String("op", uuid.NewString()))
}

func (m *Manager) progress(step string) {
	if m.onProgress != nil {
		m.onProgress(step)
	}
}

// validateName rejects names that cannot be a single directory under the
// apps root.
func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return errors.New("E203").
			WithDetail("the application name is empty").
			WithSuggestion("Pass a name with --name")
	case trimmed == "." || trimmed == "..":
		return errors.New("E203").
			WithDetailf("%q is not a valid application name", name).
			WithSuggestion("Pass a name with --name")
	case strings.ContainsAny(name, `/\`):
		return errors.New("E203").
			WithDetailf("%q contains a path separator", name).
			WithSuggestion("Pass a name without '/' with --name")
	}
	return nil
}

// within reports whether path is strictly inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// removeFile deletes path, treating a missing file as success.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New("E500").
			WithDetailf("cannot remove %s", path).
			Wrap(err)
	}
	return nil
}

// removeTree deletes dir and everything under it.
func removeTree(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.New("E500").
			WithDetailf("cannot remove %s", dir).
			Wrap(err)
	}
	return nil
}
