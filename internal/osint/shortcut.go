package osint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/execx"
)

func (i *Integrator) shortcutPath(name string) string {
	return filepath.Join(i.AppDataDir, "Microsoft", "Windows", "Start Menu", "Programs", "U2A Apps", name+".lnk")
}

// ShortcutScript renders the PowerShell script creating the shortcut at
// path for app.
func ShortcutScript(app App, path string) string {
	var b strings.Builder
	b.WriteString("$WshShell = New-Object -ComObject WScript.Shell\n")
	fmt.Fprintf(&b, "$Shortcut = $WshShell.CreateShortcut(%s)\n", psQuote(path))
	fmt.Fprintf(&b, "$Shortcut.TargetPath = %s\n", psQuote(electronBinary(app.Dir, "windows")))
	b.WriteString("$Shortcut.Arguments = '.'\n")
	fmt.Fprintf(&b, "$Shortcut.WorkingDirectory = %s\n", psQuote(app.Dir))
	fmt.Fprintf(&b, "$Shortcut.IconLocation = %s\n", psQuote(app.IconPath))
	fmt.Fprintf(&b, "$Shortcut.Description = %s\n", psQuote("Web app for "+app.Name))
	b.WriteString("$Shortcut.Save()\n")
	return b.String()
}

func (i *Integrator) addShortcut(ctx context.Context, app App) (string, error) {
	if i.Runner == nil {
		return "", errors.New("E404").WithDetail("no command runner configured")
	}

	path := i.shortcutPath(app.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.New("E500").WithDetailf("cannot create %s", filepath.Dir(path)).Wrap(err)
	}

	script, err := os.CreateTemp(i.TempDir, "u2a-shortcut-*.ps1")
	if err != nil {
		return "", errors.New("E500").WithDetail("cannot create the shortcut script").Wrap(err)
	}
	scriptPath := script.Name()
	defer os.Remove(scriptPath)

	_, err = script.WriteString(ShortcutScript(app, path))
	if cerr := script.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", errors.New("E500").WithDetail("cannot write the shortcut script").Wrap(err)
	}

	command := "powershell -NoProfile -NonInteractive -ExecutionPolicy Bypass -File " + execx.Quote(scriptPath)
	out, err := i.Runner.Run(ctx, i.TempDir, command)
	if err != nil {
		return "", errors.FromError(err, "E404").WithOutput(out)
	}

	if _, err := os.Stat(path); err != nil {
		return "", errors.New("E404").
			WithDetailf("PowerShell did not create %s", path).
			WithOutput(out)
	}
	return path, nil
}

// psQuote single-quotes s for PowerShell.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
