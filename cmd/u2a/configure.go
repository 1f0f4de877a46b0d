package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/settings"
)

// categories maps configure categories to settings. "all" is handled
// separately.
var categories = map[string]settings.Key{
	"reports":      settings.SendAnonReports,
	"versioncheck": settings.VersionCheck,
	"debug":        settings.AlwaysShowDebug,
	"autoupgrade":  settings.AutoUpgradeLocalApps,
}

var categoryNames = []string{"reports", "versioncheck", "debug", "autoupgrade", "all"}

func (a *app) configureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure <category> <action>",
		Short: "Show or change settings",
		Long: `Show or change u2a settings.

Categories:
  reports       Anonymous usage reports (default: enabled)
  versioncheck  Check for new versions at startup (default: enabled)
  debug         Always show debug output (default: disabled)
  autoupgrade   Regenerate local apps after a core update (default: disabled)
  all           Every setting (status and reset only)

Actions:
  status, enable, disable, reset

Examples:
  u2a configure reports disable
  u2a configure autoupgrade enable
  u2a configure all status`,
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipStartup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return configure(a.settings, args[0], args[1])
		},
	}
	return cmd
}

func configure(store *settings.Store, category, action string) error {
	if category == "all" {
		switch action {
		case "status":
			all, err := store.All()
			if err != nil {
				return err
			}
			for _, k := range settings.Keys() {
				field(settings.Describe(k), settings.String(all[k]))
			}
			return nil
		case "reset":
			if err := store.ResetAll(); err != nil {
				return err
			}
			success("All settings reset to their defaults")
			return nil
		}
		return unknownOption("action", action, "status, reset")
	}

	key, ok := categories[category]
	if !ok {
		return unknownOption("category", category, strings.Join(categoryNames, ", "))
	}

	switch action {
	case "status":
		v, err := store.Get(key)
		if err != nil {
			return err
		}
		field(settings.Describe(key), settings.String(v))
		return nil
	case "enable", "disable":
		v := action == "enable"
		if err := store.Set(key, v); err != nil {
			return err
		}
		success("%s %s", settings.Describe(key), settings.String(v))
		return nil
	case "reset":
		if err := store.Reset(key); err != nil {
			return err
		}
		success("%s reset to %s", settings.Describe(key), settings.String(settings.Default(key)))
		return nil
	}
	return unknownOption("action", action, "status, enable, disable, reset")
}

func unknownOption(kind, value, valid string) error {
	return errors.New("E205").
		WithDetailf("unknown %s %q", kind, value).
		WithSuggestion("Use one of: " + valid)
}
