// Package config provides the per-user paths and endpoints of u2a.
//
// All state lives under ~/.u2a unless U2A_HOME says otherwise:
//
//	~/.u2a/
//	├── apps/              # one directory per generated app
//	├── icons/             # downloaded per-app icons
//	├── logs/              # daily JSON log files
//	├── db.json            # registry of generated apps
//	├── settings.json      # boolean settings
//	├── postinstall.json   # last installed tool version
//	├── metrics.prom       # prometheus textfile
//	└── favicon.ico        # shared default icon
//
// # Usage
//
//	cfg, err := config.Default()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Setup(); err != nil {
//	    return err
//	}
//
// Tests build hermetic configurations with config.ForRoot(t.TempDir()).
package config
