package lifecycle

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/registry"
	"github.com/url2app/u2a/internal/settings"
	"github.com/url2app/u2a/internal/telemetry"
	"github.com/url2app/u2a/internal/templates"
	"github.com/url2app/u2a/internal/version"
)

// Reasons an upgrade is skipped.
const (
	ReasonNewInstall    = "new-install"
	ReasonDisabled      = "disabled"
	ReasonNotCoreUpdate = "not-core-update"
)

// UpgradeResult summarizes a bulk upgrade.
type UpgradeResult struct {
	// Skipped is set when a gate stopped the upgrade before any change.
	Skipped bool
	Reason  string

	Upgraded int
	Failed   int

	// Missing counts records whose directory no longer exists.
	Missing int

	// Total is Upgraded + Failed: the apps an upgrade was attempted for.
	// Records without a directory are only counted in Missing, so every
	// record is Total + Missing.
	Total int

	// Errors holds the failure of each app that could not be upgraded.
	Errors map[string]error
}

// Upgrade regenerates every registered app after the tool moved from
// current to next. It only runs for core updates of an existing install
// with autoupgrade_localapps enabled. Apps are processed one at a time in
// name order; a failing app is counted and the batch continues.
func (m *Manager) Upgrade(ctx context.Context, current, next string) (res *UpgradeResult, err error) {
	switch {
	case current == version.NewInstall:
		return &UpgradeResult{Skipped: true, Reason: ReasonNewInstall}, nil
	case !m.settings.Bool(settings.AutoUpgradeLocalApps):
		return &UpgradeResult{Skipped: true, Reason: ReasonDisabled}, nil
	case !version.IsCoreUpdate(current, next):
		return &UpgradeResult{Skipped: true, Reason: ReasonNotCoreUpdate}, nil
	}

	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "upgrade",
		attribute.String("u2a.version.current", current),
		attribute.String("u2a.version.next", next),
	)
	log := m.opLogger("upgrade").With(zap.String("from", current), zap.String("to", next))
	defer func() {
		telemetry.EndSpan(span, err)
		m.metrics.ObserveOperation("upgrade", start, err)
	}()

	apps, err := m.db.Read()
	if err != nil {
		return nil, err
	}

	res = &UpgradeResult{Errors: map[string]error{}}
	defer func() {
		res.Total = res.Upgraded + res.Failed
		m.metrics.ObserveUpgrade(res.Upgraded, res.Failed, res.Missing)
		span.SetAttributes(
			attribute.Int("u2a.upgrade.upgraded", res.Upgraded),
			attribute.Int("u2a.upgrade.failed", res.Failed),
			attribute.Int("u2a.upgrade.missing", res.Missing),
		)
	}()

	for _, name := range apps.Names() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec := apps[name]
		if !exists(rec.Path) {
			log.Warn("app directory is missing, skipping", zap.String("app", name), zap.String("path", rec.Path))
			res.Missing++
			continue
		}

		m.progress("Upgrading " + name)
		if err := m.upgradeApp(ctx, name, rec); err != nil {
			log.Error("upgrade failed", zap.String("app", name), zap.Error(err))
			res.Errors[name] = err
			res.Failed++
			continue
		}
		res.Upgraded++
	}

	log.Info("upgrade finished",
		zap.Int("upgraded", res.Upgraded),
		zap.Int("failed", res.Failed),
		zap.Int("missing", res.Missing),
	)
	return res, nil
}

// upgradeApp recreates one app from its record, keeping the window size
// and icon.
func (m *Manager) upgradeApp(ctx context.Context, name string, rec *registry.Record) error {
	width, height := templates.ReadWindowSize(rec.Path)

	opts := CreateOptions{Name: name, Width: width, Height: height}
	if exists(rec.Icon) {
		opts.Icon = rec.Icon
	}

	if err := m.Remove(ctx, name, RemoveOptions{Confirm: false, KeepIcon: true}); err != nil {
		return err
	}
	_, err := m.Create(ctx, rec.URL, opts)
	return err
}
