package osint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/url2app/u2a/internal/config"
	"github.com/url2app/u2a/internal/errors"
)

// fakeRunner records commands and optionally creates a file, the way
// PowerShell would create the shortcut.
type fakeRunner struct {
	commands []string
	create   string
	err      error
}

func (f *fakeRunner) Run(_ context.Context, _ string, command string) ([]byte, error) {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return []byte("access denied"), f.err
	}
	if f.create != "" {
		if err := os.WriteFile(f.create, []byte("lnk"), 0644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func newIntegrator(t *testing.T, platform string) (*Integrator, App) {
	t.Helper()
	root := t.TempDir()
	icon := filepath.Join(root, "apps", "example.com.png")
	if err := os.MkdirAll(filepath.Dir(icon), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(icon, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	i := &Integrator{
		Platform:   platform,
		HomeDir:    filepath.Join(root, "home"),
		AppDataDir: filepath.Join(root, "appdata"),
		TempDir:    root,
	}
	app := App{
		Name:     "example.com",
		URL:      "https://example.com",
		Dir:      filepath.Join(root, "apps", "example.com"),
		IconPath: icon,
	}
	return i, app
}

func TestNew(t *testing.T) {
	cfg := config.ForRoot(t.TempDir())
	t.Setenv("APPDATA", "")

	i := New(cfg, nil, nil)
	if i.HomeDir != cfg.HomeDir {
		t.Errorf("HomeDir = %q", i.HomeDir)
	}
	if i.AppDataDir != filepath.Join(cfg.HomeDir, "AppData", "Roaming") {
		t.Errorf("AppDataDir = %q", i.AppDataDir)
	}
}

func TestLinux_AddRemove(t *testing.T) {
	i, app := newIntegrator(t, "linux")

	path, err := i.Add(context.Background(), app)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	want := filepath.Join(i.HomeDir, ".local", "share", "applications", "u2a-example.com.desktop")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	for _, line := range []string{
		"[Desktop Entry]",
		"Name=example.com",
		"Icon=" + app.IconPath,
		"Comment=Web app for https://example.com",
		"Terminal=false",
	} {
		if !strings.Contains(string(data), line+"\n") {
			t.Errorf("desktop entry missing %q:\n%s", line, data)
		}
	}

	if err := i.Remove(context.Background(), app.Name); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("desktop entry still exists")
	}

	// Removing again is a no-op.
	if err := i.Remove(context.Background(), app.Name); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestDesktopEntry_Quoting(t *testing.T) {
	entry := DesktopEntry(App{Name: "my app", URL: "https://a.b", Dir: "/home/me/.u2a/apps/my app", IconPath: "/i.png"})

	want := `Exec="/home/me/.u2a/apps/my app/node_modules/.bin/electron" "/home/me/.u2a/apps/my app/main.js"`
	if !strings.Contains(entry, want+"\n") {
		t.Errorf("Exec line not quoted:\n%s", entry)
	}

	entry = DesktopEntry(App{Name: "a\nExec=evil", Dir: "/d"})
	if strings.Contains(entry, "\nExec=evil") {
		t.Error("newline in name injected a key")
	}
}

func TestDarwin_AddRemove(t *testing.T) {
	i, app := newIntegrator(t, "darwin")

	path, err := i.Add(context.Background(), app)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if path != filepath.Join(i.HomeDir, "Applications", "U2A Apps", "example.com.app") {
		t.Errorf("path = %q", path)
	}

	plist, err := os.ReadFile(filepath.Join(path, "Contents", "Info.plist"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(plist), "<string>com.u2a.example.com</string>") {
		t.Errorf("Info.plist missing bundle id:\n%s", plist)
	}

	runner := filepath.Join(path, "Contents", "MacOS", "AppRunner")
	info, err := os.Stat(runner)
	if err != nil || info.Mode().Perm()&0100 == 0 {
		t.Errorf("AppRunner missing or not executable: %v", err)
	}

	icon, err := os.ReadFile(filepath.Join(path, "Contents", "Resources", "icon.icns"))
	if err != nil || string(icon) != "png" {
		t.Errorf("icon not copied: %v", err)
	}

	if err := i.Remove(context.Background(), app.Name); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("bundle still exists")
	}
}

func TestDarwin_FailureLeavesNothing(t *testing.T) {
	i, app := newIntegrator(t, "darwin")
	app.IconPath = filepath.Join(t.TempDir(), "missing.icns")

	if _, err := i.Add(context.Background(), app); err == nil {
		t.Fatal("expected an error for a missing icon")
	}
	if _, err := os.Stat(i.Path(app.Name)); !os.IsNotExist(err) {
		t.Error("partial bundle left behind")
	}
}

func TestInfoPlist_Escapes(t *testing.T) {
	plist := InfoPlist(App{Name: "a<b>&c"})
	if strings.Contains(plist, "a<b>") || !strings.Contains(plist, "a&lt;b&gt;&amp;c") {
		t.Errorf("name not escaped:\n%s", plist)
	}
}

func TestAppRunner(t *testing.T) {
	script := AppRunner(App{Dir: "/Users/me/it's here"})
	if !strings.HasPrefix(script, "#!/bin/bash\n") {
		t.Error("missing shebang")
	}
	if !strings.Contains(script, `cd '/Users/me/it'\''s here'`) {
		t.Errorf("dir not quoted:\n%s", script)
	}
}

func TestWindows_Add(t *testing.T) {
	i, app := newIntegrator(t, "windows")
	runner := &fakeRunner{create: i.shortcutPath(app.Name)}
	i.Runner = runner

	path, err := i.Add(context.Background(), app)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if path != filepath.Join(i.AppDataDir, "Microsoft", "Windows", "Start Menu", "Programs", "U2A Apps", "example.com.lnk") {
		t.Errorf("path = %q", path)
	}

	if len(runner.commands) != 1 || !strings.HasPrefix(runner.commands[0], "powershell ") {
		t.Fatalf("commands = %q", runner.commands)
	}

	// The script is deleted after running.
	matches, _ := filepath.Glob(filepath.Join(i.TempDir, "u2a-shortcut-*.ps1"))
	if len(matches) != 0 {
		t.Errorf("script left behind: %v", matches)
	}

	if err := i.Remove(context.Background(), app.Name); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("shortcut still exists")
	}
}

func TestWindows_RunnerFailure(t *testing.T) {
	i, app := newIntegrator(t, "windows")
	i.Runner = &fakeRunner{err: os.ErrPermission}

	_, err := i.Add(context.Background(), app)
	if !errors.HasCode(err, "E404") {
		t.Errorf("Add error = %v, want E404", err)
	}
}

func TestShortcutScript(t *testing.T) {
	script := ShortcutScript(App{Name: "o'brien", Dir: `C:\apps\o'brien`, IconPath: `C:\i.ico`}, `C:\lnk\o'brien.lnk`)

	for _, want := range []string{
		`$Shortcut = $WshShell.CreateShortcut('C:\lnk\o''brien.lnk')`,
		`$Shortcut.WorkingDirectory = 'C:\apps\o''brien'`,
		`$Shortcut.Save()`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %s:\n%s", want, script)
		}
	}
}

func TestUnsupportedPlatform(t *testing.T) {
	i, app := newIntegrator(t, "plan9")

	if i.Supported() {
		t.Error("plan9 should be unsupported")
	}
	path, err := i.Add(context.Background(), app)
	if path != "" || err != nil {
		t.Errorf("Add = (%q, %v), want empty", path, err)
	}
	if err := i.Remove(context.Background(), app.Name); err != nil {
		t.Errorf("Remove error = %v", err)
	}
}
