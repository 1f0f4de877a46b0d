package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/url2app/u2a/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
   _   _ ____   __ _
  | | | |___ \ / _' |
  | |_| |/ __/| (_| |
   \__,_|_____|\__,_|
`

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	a := &app{}
	err := a.rootCmd().ExecuteContext(ctx)
	a.close()

	if err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "u2a",
		Short: "Turn any website into a desktop app",
		Long: `u2a turns a URL into an Electron desktop application.

Generated apps are registered locally, integrated with your desktop
and regenerated automatically after core updates of u2a (when enabled).

Examples:
  u2a create github.com
  u2a create https://chat.example.com --name Chat --width 1400
  u2a create example.com --executable=windows --setup
  u2a list
  u2a remove github.com`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.start,
	}

	cmd.PersistentFlags().BoolVar(&a.allowRoot, "allowroot", false, "Allow running as root or administrator")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Print debug logs to the terminal")

	cmd.AddCommand(
		a.createCmd(),
		a.listCmd(),
		a.removeCmd(),
		a.configureCmd(),
		versionCmd(),
	)

	return cmd
}
