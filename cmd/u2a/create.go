package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/url2app/u2a/internal/build"
	"github.com/url2app/u2a/internal/lifecycle"
	"github.com/url2app/u2a/internal/osint"
)

func (a *app) createCmd() *cobra.Command {
	var opts lifecycle.CreateOptions

	cmd := &cobra.Command{
		Use:   "create <url>",
		Short: "Create a desktop app from a URL",
		Long: `Create an Electron desktop app for a website.

The URL may omit its scheme; https is tried first and http is used when
the site does not answer over TLS. The app is named after the domain
unless --name is given.

With --executable the app is packaged as a standalone program for the
given platform (default: this one) and copied into the current
directory instead of being registered. --setup also builds an installer.

Examples:
  u2a create github.com
  u2a create https://mail.example.com --name Mail --width 1400 --height 900
  u2a create example.com --icon ./icon.png
  u2a create example.com --executable=linux --arch=arm64
  u2a create example.com --executable --setup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Application name (default: the domain)")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "Window width (default 1200)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "Window height (default 800)")
	cmd.Flags().StringVar(&opts.Executable, "executable", "", "Build a standalone executable for windows, darwin or linux")
	cmd.Flags().Lookup("executable").NoOptDefVal = build.HostPlatform()
	cmd.Flags().StringVar(&opts.Arch, "arch", build.DefaultArch, "Executable architecture ("+strings.Join(build.Archs, ", ")+")")
	cmd.Flags().BoolVar(&opts.Setup, "setup", false, "Also build an installer (requires --executable)")
	cmd.Flags().StringVar(&opts.Icon, "icon", "", "Icon file (.ico, .png, .jpg, .jpeg or .icns)")

	return cmd
}

func (a *app) runCreate(cmd *cobra.Command, url string, opts lifecycle.CreateOptions) error {
	info("Creating an application for %s...", url)
	res, err := a.manager.Create(cmd.Context(), url, opts)
	if err != nil {
		return err
	}

	if !res.Persisted {
		success("Executable for %s is ready", res.Name)
		field("Executable", res.ExecutablePath)
		if res.InstallerPath != "" {
			field("Installer", res.InstallerPath)
		}
		return nil
	}

	success("Application %s created", res.Name)
	field("URL", res.Record.URL)
	field("Directory", res.Record.Path)
	field("Icon", res.Record.Icon)
	if res.Record.DesktopPath != "" {
		field("Desktop", res.Record.DesktopPath)
	} else {
		warn("%s", integrationHint(a.desktop, res.Record.Path))
	}
	return nil
}

// integrationHint explains why an app was registered without a desktop
// integration.
func integrationHint(desktop *osint.Integrator, dir string) string {
	if desktop != nil && !desktop.Supported() {
		return fmt.Sprintf("Desktop integration is not available on %s; start the app with 'npm start' in %s", desktop.Platform, dir)
	}
	return fmt.Sprintf("Desktop integration failed, see the log for details; start the app with 'npm start' in %s", dir)
}
