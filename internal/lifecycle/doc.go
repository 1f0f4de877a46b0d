// Package lifecycle creates, removes and upgrades generated apps.
//
// A Manager owns the pairing between registry records and the artifacts
// they describe: the app directory, the per-app icon, the Electron
// user-data directory and the desktop integration. Every artifact is
// created under a record or rolled back, and removal deletes the record
// last, so re-running remove after an interruption finishes the cleanup.
//
// # Usage
//
//	m := lifecycle.New(lifecycle.Deps{
//	    Config:     cfg,
//	    Registry:   registry.Open(cfg.DBPath),
//	    Normalizer: urlutil.NewNormalizer(logger),
//	    Icons:      resolver,
//	    Runner:     execx.New(logger),
//	    OS:         osint.New(cfg, runner, logger),
//	    Packager:   build.New(runner, logger),
//	    Settings:   settings.Open(cfg.SettingsPath),
//	    Logger:     logger,
//	})
//
//	res, err := m.Create(ctx, "github.com", lifecycle.CreateOptions{})
//
// Collaborators are small interfaces so tests can substitute fakes for
// the network, subprocesses and the desktop.
package lifecycle
