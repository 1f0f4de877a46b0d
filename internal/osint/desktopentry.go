package osint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/url2app/u2a/internal/errors"
)

func (i *Integrator) desktopEntryPath(name string) string {
	return filepath.Join(i.HomeDir, ".local", "share", "applications", "u2a-"+name+".desktop")
}

// DesktopEntry renders a freedesktop.org desktop entry for app.
func DesktopEntry(app App) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", entryValue(app.Name))
	fmt.Fprintf(&b, "Exec=%s %s\n",
		execArg(electronBinary(app.Dir, "linux")),
		execArg(filepath.Join(app.Dir, "main.js")))
	fmt.Fprintf(&b, "Icon=%s\n", entryValue(app.IconPath))
	fmt.Fprintf(&b, "Comment=Web app for %s\n", entryValue(app.URL))
	b.WriteString("Categories=Network;WebBrowser;\n")
	b.WriteString("Terminal=false\n")
	return b.String()
}

func (i *Integrator) addDesktopEntry(app App) (string, error) {
	path := i.desktopEntryPath(app.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.New("E500").WithDetailf("cannot create %s", filepath.Dir(path)).Wrap(err)
	}
	if err := os.WriteFile(path, []byte(DesktopEntry(app)), 0755); err != nil {
		return "", errors.New("E500").WithDetailf("cannot write %s", path).Wrap(err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0755); err != nil {
		return "", errors.New("E500").Wrap(err)
	}
	return path, nil
}

// entryValue escapes a desktop entry string value.
func entryValue(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

// execArg quotes an Exec argument following the freedesktop quoting rules.
func execArg(s string) string {
	r := strings.NewReplacer(`\`, `\\\\`, `"`, `\\"`, "`", "\\\\`", "$", `\\$`)
	return `"` + r.Replace(s) + `"`
}
