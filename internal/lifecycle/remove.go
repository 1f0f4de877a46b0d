package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/registry"
	"github.com/url2app/u2a/internal/telemetry"
	"github.com/url2app/u2a/internal/templates"
)

// RemoveOptions configures Remove.
type RemoveOptions struct {
	// Confirm asks the user before removing anything.
	Confirm bool

	// KeepIcon leaves the per-app icon in place.
	KeepIcon bool
}

// Remove deletes the app called name together with its icon, desktop
// integration, Electron user data and directory. The record goes last:
// an interrupted remove leaves the record behind and running remove again
// finishes the job, since every step tolerates missing artifacts.
func (m *Manager) Remove(ctx context.Context, name string, opts RemoveOptions) (err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "remove", attribute.String("u2a.app", name))
	log := m.opLogger("remove").With(zap.String("app", name))
	defer func() {
		telemetry.EndSpan(span, err)
		m.metrics.ObserveOperation("remove", start, err)
		if err != nil && !errors.HasCode(err, "E202") {
			log.Error("remove failed", zap.Error(err))
		}
	}()

	rec, ok, err := m.db.Get(name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("E201").
			WithDetailf("no application named %q", name).
			WithSuggestion("Run 'u2a list' to see the registered applications")
	}

	if opts.Confirm {
		if m.confirmer == nil {
			return errors.New("E208").WithSuggestion("Pass --yes to remove without confirmation")
		}
		yes, err := m.confirmer.Confirm(ctx, fmt.Sprintf("Remove the application %q?", name))
		if err != nil {
			return err
		}
		if !yes {
			return errors.New("E202").WithDetail("nothing was removed")
		}
	}

	if err := m.os.Remove(ctx, name); err != nil {
		log.Warn("cannot remove desktop integration", zap.Error(err))
	}

	if !opts.KeepIcon && m.cfg.OwnsIcon(name, rec.Icon) {
		if err := removeFile(rec.Icon); err != nil {
			return err
		}
	}

	if m.cfg.UserConfigDir != "" {
		if err := removeTree(filepath.Join(m.cfg.UserConfigDir, templates.PackageName(name))); err != nil {
			return err
		}
	}

	switch {
	case rec.Path == "":
	case within(m.cfg.AppsDir, rec.Path):
		if err := removeTree(rec.Path); err != nil {
			return err
		}
	default:
		log.Warn("app directory is outside the apps root, leaving it in place", zap.String("path", rec.Path))
	}

	err = m.db.Update(func(apps registry.Apps) error {
		delete(apps, name)
		m.metrics.SetRegisteredApps(len(apps))
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("app removed")
	return nil
}
