package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/build"
	"github.com/url2app/u2a/internal/config"
	"github.com/url2app/u2a/internal/execx"
	"github.com/url2app/u2a/internal/favicon"
	"github.com/url2app/u2a/internal/lifecycle"
	"github.com/url2app/u2a/internal/logging"
	"github.com/url2app/u2a/internal/osint"
	"github.com/url2app/u2a/internal/postinstall"
	"github.com/url2app/u2a/internal/privilege"
	"github.com/url2app/u2a/internal/prompt"
	"github.com/url2app/u2a/internal/registry"
	"github.com/url2app/u2a/internal/settings"
	"github.com/url2app/u2a/internal/telemetry"
	"github.com/url2app/u2a/internal/urlutil"
	vers "github.com/url2app/u2a/internal/version"
)

// skipStartup marks commands that run without postinstall and the
// latest-version check.
const skipStartup = "u2a/skip-startup"

// app holds the process-wide components built once before a command runs.
type app struct {
	allowRoot bool
	debug     bool

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
	settings *settings.Store
	metrics  *telemetry.Metrics
	manager  *lifecycle.Manager
	desktop  *osint.Integrator
}

// start wires every component. It runs before each command.
func (a *app) start(cmd *cobra.Command, _ []string) error {
	setupColors()

	elevated, err := privilege.Check(a.allowRoot)
	if err != nil {
		return err
	}
	if elevated {
		warn("Running with elevated privileges. This is not recommended.")
	}

	cfg, err := config.Default()
	if err != nil {
		return err
	}
	if err := cfg.Setup(); err != nil {
		return err
	}
	a.cfg = cfg
	a.settings = settings.Open(cfg.SettingsPath)

	debug := a.debug || logging.DebugFromEnv() || a.settings.Bool(settings.AlwaysShowDebug)
	logger, closeLog, err := logging.New(logging.Options{Dir: cfg.LogsDir, Debug: debug, Console: os.Stderr})
	if err != nil {
		warn("Logging to file is unavailable: %v", err)
		logger, closeLog = logging.Nop(), func() error { return nil }
	}
	a.logger = logger.With(zap.String("version", version))
	a.closeLog = closeLog
	a.logger.Debug("starting", zap.String("command", cmd.CommandPath()), zap.Strings("args", os.Args[1:]))

	if err := favicon.EnsureDefault(cfg.DefaultIconPath); err != nil {
		a.logger.Warn("cannot write the default icon", zap.Error(err))
	}

	a.metrics = telemetry.NewMetrics()

	runner := execx.New(a.logger)
	if debug {
		runner.Stream = os.Stderr
	}

	a.desktop = osint.New(cfg, runner, a.logger)
	a.manager = lifecycle.New(lifecycle.Deps{
		Config:     cfg,
		Registry:   registry.Open(cfg.DBPath),
		Normalizer: urlutil.NewNormalizer(a.logger),
		Icons: &favicon.Resolver{
			IconsDir:        cfg.IconsDir,
			DefaultIconPath: cfg.DefaultIconPath,
			Logger:          a.logger,
		},
		Runner:     runner,
		OS:         a.desktop,
		Packager:   build.New(runner, a.logger),
		Confirmer:  prompt.NewTerminal(),
		Settings:   a.settings,
		Metrics:    a.metrics,
		Logger:     a.logger,
		Version:    version,
		OnProgress: func(step string) { info("%s...", step) },
	})

	if cmd.Annotations[skipStartup] != "" {
		return nil
	}

	a.postinstall(cmd.Context())
	if a.settings.Bool(settings.VersionCheck) {
		a.checkVersion(cmd.Context())
	}
	return nil
}

func (a *app) postinstall(ctx context.Context) {
	r := &postinstall.Runner{
		StatePath:  a.cfg.StatePath,
		ReportsURL: a.cfg.Endpoints.Reports,
		Version:    version,
		Settings:   a.settings,
		Upgrader:   a.manager,
		Out:        os.Stderr,
		Logger:     a.logger,
	}
	if _, err := r.Run(ctx); err != nil {
		a.logger.Error("postinstall failed", zap.Error(err))
	}
}

// checkVersion tells the user about a newer release. It never fails.
func (a *app) checkVersion(ctx context.Context) {
	checker := &vers.Checker{
		URL:     a.cfg.Endpoints.LatestVersion,
		Current: version,
		Logger:  a.logger.Named("version"),
	}
	res, err := checker.Check(ctx)
	if err != nil || !res.NeedsUpdate {
		return
	}

	switch res.Type {
	case vers.UpdateSecurity:
		warn("Security update available: %s → %s. Update as soon as possible.", res.Current, res.Latest)
	case vers.UpdateCore:
		warn("Core update available: %s → %s.", res.Current, res.Latest)
	default:
		info("A new version of u2a is available: %s → %s", res.Current, res.Latest)
	}
	info("Update with: go install github.com/url2app/u2a/cmd/u2a@latest")
}

// close flushes metrics and logs.
func (a *app) close() {
	if a.cfg != nil && a.metrics != nil {
		if err := a.metrics.WriteFile(a.cfg.MetricsPath); err != nil && a.logger != nil {
			a.logger.Warn("cannot write metrics", zap.Error(err))
		}
	}
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}
