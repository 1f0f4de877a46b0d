package osint

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/templates"
)

func (i *Integrator) bundlePath(name string) string {
	return filepath.Join(i.HomeDir, "Applications", "U2A Apps", name+".app")
}

// InfoPlist renders the Info.plist of the bundle for app.
func InfoPlist(app App) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>CFBundleExecutable</key>
    <string>AppRunner</string>
    <key>CFBundleIconFile</key>
    <string>icon.icns</string>
    <key>CFBundleIdentifier</key>
    <string>%s</string>
    <key>CFBundleName</key>
    <string>%s</string>
    <key>CFBundleDisplayName</key>
    <string>%s</string>
    <key>CFBundlePackageType</key>
    <string>APPL</string>
    <key>CFBundleVersion</key>
    <string>1.0</string>
    <key>CFBundleShortVersionString</key>
    <string>1.0</string>
</dict>
</plist>
`, xmlText(templates.AppID(app.Name)), xmlText(app.Name), xmlText(app.Name))
}

// AppRunner renders the launcher script of the bundle for app.
func AppRunner(app App) string {
	return fmt.Sprintf("#!/bin/bash\ncd %s\nexec %s %s\n",
		shellQuote(app.Dir),
		shellQuote(electronBinary(app.Dir, "darwin")),
		shellQuote(filepath.Join(app.Dir, "main.js")))
}

func (i *Integrator) addBundle(app App) (string, error) {
	bundle := i.bundlePath(app.Name)
	macOS := filepath.Join(bundle, "Contents", "MacOS")
	resources := filepath.Join(bundle, "Contents", "Resources")

	for _, dir := range []string{macOS, resources} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", errors.New("E500").WithDetailf("cannot create %s", dir).Wrap(err)
		}
	}

	if err := os.WriteFile(filepath.Join(bundle, "Contents", "Info.plist"), []byte(InfoPlist(app)), 0644); err != nil {
		return "", errors.New("E500").Wrap(err)
	}

	runner := filepath.Join(macOS, "AppRunner")
	if err := os.WriteFile(runner, []byte(AppRunner(app)), 0755); err != nil {
		return "", errors.New("E500").Wrap(err)
	}
	if err := os.Chmod(runner, 0755); err != nil {
		return "", errors.New("E500").Wrap(err)
	}

	if app.IconPath != "" {
		if err := copyFile(app.IconPath, filepath.Join(resources, "icon.icns")); err != nil {
			return "", errors.New("E500").WithDetail("cannot copy the bundle icon").Wrap(err)
		}
	}

	return bundle, nil
}

func xmlText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// shellQuote single-quotes s for bash.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
