package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/build"
	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/osint"
	"github.com/url2app/u2a/internal/registry"
	"github.com/url2app/u2a/internal/sanitize"
	"github.com/url2app/u2a/internal/telemetry"
	"github.com/url2app/u2a/internal/templates"
	"github.com/url2app/u2a/internal/urlutil"
)

// IconExtensions are the accepted extensions of an explicit icon.
var IconExtensions = []string{".ico", ".png", ".jpg", ".jpeg", ".icns"}

// CreateOptions configures Create.
type CreateOptions struct {
	// Name overrides the name derived from the URL's domain.
	Name string

	// Width and Height are the initial window size. Zero uses the defaults.
	Width  int
	Height int

	// Executable is the target platform of a standalone build. Empty
	// creates a registered desktop app instead.
	Executable string

	// Arch is the target architecture of a standalone build.
	Arch string

	// Setup also builds an installer. It requires Executable.
	Setup bool

	// Icon is an explicit icon file.
	Icon string
}

// CreateResult describes a finished create.
type CreateResult struct {
	// Name is the sanitized application name.
	Name string

	// Record describes the app. It is only stored when Persisted is set.
	Record *registry.Record

	// Persisted reports whether the app was registered. Standalone builds
	// never are.
	Persisted bool

	// ExecutablePath is where the packaged app was copied.
	ExecutablePath string

	// InstallerPath is where the installer output was copied.
	InstallerPath string
}

// Create generates the app for rawURL. Desktop apps are registered;
// standalone builds are exported to the output directory and their
// working files discarded. On failure every artifact this call created is
// removed again.
func (m *Manager) Create(ctx context.Context, rawURL string, opts CreateOptions) (res *CreateResult, err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "create",
		attribute.String("u2a.url", rawURL),
		attribute.Bool("u2a.executable", opts.Executable != ""),
	)
	log := m.opLogger("create")
	defer func() {
		telemetry.EndSpan(span, err)
		m.metrics.ObserveOperation("create", start, err)
		if err != nil {
			log.Error("create failed", zap.String("url", rawURL), zap.Error(err))
		}
	}()

	if err := urlutil.Validate(rawURL); err != nil {
		return nil, err
	}

	var buildOpts build.Options
	if opts.Executable != "" {
		buildOpts = build.Options{
			Platform:   opts.Executable,
			Arch:       opts.Arch,
			Setup:      opts.Setup,
			OnProgress: m.onProgress,
		}
		if err := buildOpts.Validate(); err != nil {
			return nil, err
		}
		if m.packager == nil {
			return nil, errors.Newf(errors.CategoryInternal, "no packager configured")
		}
	} else if opts.Setup {
		return nil, errors.New("E207").
			WithDetail("an installer can only be built for an executable").
			WithSuggestion("Add --executable to build a standalone app")
	}

	url := m.normalizer.Normalize(ctx, rawURL)

	raw := opts.Name
	if strings.TrimSpace(raw) == "" {
		raw = urlutil.DomainName(url)
	}
	name := sanitize.Input(raw)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !sanitize.IsSafeInput(raw) {
		log.Warn("application name sanitized", zap.String("requested", raw), zap.String("name", name))
	}
	log = log.With(zap.String("app", name), zap.String("url", url))
	span.SetAttributes(attribute.String("u2a.app", name))

	if _, ok, err := m.db.Get(name); err != nil {
		return nil, err
	} else if ok {
		return nil, existsError(name)
	}

	rb := &rollback{logger: log}
	defer func() {
		if err != nil {
			rb.run()
		}
	}()

	appDir := m.cfg.AppDir(name)
	if err := os.MkdirAll(m.cfg.AppsDir, 0755); err != nil {
		return nil, errors.New("E500").Wrap(err)
	}
	if err := os.Mkdir(appDir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, existsError(name).
				WithDetailf("the directory %s already exists", appDir)
		}
		return nil, errors.New("E500").
			WithDetailf("cannot create %s", appDir).
			Wrap(err)
	}
	rb.add("app directory", func() error { return removeTree(appDir) })

	m.progress("Resolving icon")
	iconPath, owned := m.resolveIcon(ctx, url, name, opts.Icon, log)
	if owned {
		rb.add("icon", func() error { return removeFile(iconPath) })
	}

	tc := templates.Config{
		Name:       name,
		URL:        url,
		IconPath:   iconPath,
		Width:      opts.Width,
		Height:     opts.Height,
		Version:    m.version,
		Executable: opts.Executable != "",
		Setup:      opts.Setup,
	}
	if err := templates.Generate(appDir, tc); err != nil {
		return nil, err
	}

	m.progress("Installing dependencies")
	install := "npm install --omit=dev"
	if opts.Executable != "" {
		install = "npm install"
	}
	if out, err := m.runner.Run(ctx, appDir, install); err != nil {
		e := errors.FromError(err, "E400").WithOutput(out)
		if e.Suggestion == "" {
			e.WithSuggestion("Check your network connection and that npm works")
		}
		return nil, e
	}

	record := &registry.Record{
		URL:     url,
		Created: m.now().UTC(),
		Path:    appDir,
		Icon:    iconPath,
		Width:   opts.Width,
		Height:  opts.Height,
	}
	if strings.TrimSpace(opts.Name) != "" {
		record.Name = name
	}

	if opts.Executable != "" {
		return m.createExecutable(ctx, name, appDir, iconPath, owned, record, buildOpts, log)
	}

	m.progress("Adding desktop integration")
	if desktop, err := m.os.Add(ctx, osint.App{Name: name, URL: url, Dir: appDir, IconPath: iconPath}); err != nil {
		log.Warn("desktop integration failed", zap.Error(err))
	} else if desktop != "" {
		record.DesktopPath = desktop
		rb.add("desktop integration", func() error {
			return m.os.Remove(context.WithoutCancel(ctx), name)
		})
	}

	err = m.db.Update(func(apps registry.Apps) error {
		if _, ok := apps[name]; ok {
			return existsError(name)
		}
		apps[name] = record
		m.metrics.SetRegisteredApps(len(apps))
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("app created", zap.String("path", appDir), zap.String("icon", iconPath))
	return &CreateResult{Name: name, Record: record, Persisted: true}, nil
}

// createExecutable packages the generated app, copies the outputs to the
// output directory and discards the working files.
func (m *Manager) createExecutable(ctx context.Context, name, appDir, iconPath string, ownedIcon bool, record *registry.Record, opts build.Options, log *zap.Logger) (*CreateResult, error) {
	m.progress(fmt.Sprintf("Packaging for %s-%s", opts.Platform, opts.Arch))
	built, err := m.packager.Build(ctx, appDir, name, iconPath, opts)
	if err != nil {
		return nil, err
	}

	res := &CreateResult{Name: name, Record: record}

	res.ExecutablePath = filepath.Join(m.cfg.OutputDir, filepath.Base(built.ExecutableDir))
	if err := build.Export(built.ExecutableDir, res.ExecutablePath); err != nil {
		return nil, err
	}
	record.ExecutablePath = res.ExecutablePath

	if built.InstallerDir != "" {
		res.InstallerPath = filepath.Join(m.cfg.OutputDir, templates.Slug(name)+"-installer")
		if err := build.Export(built.InstallerDir, res.InstallerPath); err != nil {
			os.RemoveAll(res.ExecutablePath)
			return nil, err
		}
	}

	// Standalone builds are never registered, so nothing they leave
	// behind would have a record.
	if err := removeTree(appDir); err != nil {
		log.Warn("cannot remove the working directory", zap.Error(err))
	}
	if ownedIcon {
		if err := removeFile(iconPath); err != nil {
			log.Warn("cannot remove the icon", zap.Error(err))
		}
	}
	if err := m.os.Remove(ctx, name); err != nil {
		log.Warn("cannot remove desktop integration", zap.Error(err))
	}

	log.Info("executable built",
		zap.String("executable", res.ExecutablePath),
		zap.String("installer", res.InstallerPath),
		zap.Duration("duration", built.Duration),
	)
	return res, nil
}

// resolveIcon prefers an explicit icon file and falls back to the site's
// favicon or the default icon.
func (m *Manager) resolveIcon(ctx context.Context, url, name, explicit string, log *zap.Logger) (string, bool) {
	if explicit != "" {
		path, err := checkIcon(explicit)
		if err == nil {
			return path, m.cfg.OwnsIcon(name, path)
		}
		log.Warn("ignoring icon", zap.String("icon", explicit), zap.Error(err))
	}
	return m.icons.Resolve(ctx, url, name)
}

// checkIcon returns the absolute path of icon if it is a regular file with
// an accepted extension.
func checkIcon(icon string) (string, error) {
	ext := strings.ToLower(filepath.Ext(icon))
	accepted := false
	for _, e := range IconExtensions {
		if ext == e {
			accepted = true
			break
		}
	}
	if !accepted {
		return "", errors.New("E206").
			WithDetailf("unsupported icon type %q", ext).
			WithSuggestion("Use one of: " + strings.Join(IconExtensions, ", "))
	}

	info, err := os.Stat(icon)
	if err != nil {
		return "", errors.New("E206").WithDetailf("cannot read %s", icon).Wrap(err)
	}
	if info.IsDir() {
		return "", errors.New("E206").WithDetailf("%s is a directory", icon)
	}

	abs, err := filepath.Abs(icon)
	if err != nil {
		return "", errors.New("E206").Wrap(err)
	}
	return abs, nil
}

func existsError(name string) *errors.Error {
	return errors.New("E200").
		WithDetailf("an application named %q already exists", name).
		WithSuggestion(fmt.Sprintf("Run 'u2a remove %s' first or pick another --name", name))
}
