package templates

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/url2app/u2a/internal/errors"
)

const (
	// DefaultWidth is the window width when none is given.
	DefaultWidth = 1200

	// DefaultHeight is the window height when none is given.
	DefaultHeight = 800

	// ElectronVersion is the Electron range pinned in generated manifests.
	ElectronVersion = "^22.0.0"

	// MainFile is the generated entry script.
	MainFile = "main.js"

	// ManifestFile is the generated package manifest.
	ManifestFile = "package.json"
)

//go:embed assets/main.js.tmpl
var mainJSSource string

var mainJS = template.Must(template.New(MainFile).Parse(mainJSSource))

// Config contains the values rendered into a generated app.
type Config struct {
	// Name is the sanitized application name.
	Name string

	// URL is the normalized site URL.
	URL string

	// IconPath is the absolute icon path.
	IconPath string

	// Width and Height are the initial window size. Zero uses the defaults.
	Width  int
	Height int

	// Version is the u2a version stamped into package.json.
	Version string

	// Executable adds the packaging toolchain to the manifest.
	Executable bool

	// Setup adds the electron-builder installer configuration. It only
	// applies together with Executable.
	Setup bool
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	return c
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug replaces every whitespace run in name with '-'.
func Slug(name string) string {
	return whitespace.ReplaceAllString(name, "-")
}

// PackageName returns the npm package name of the app called name.
func PackageName(name string) string {
	return "u2a-" + Slug(name)
}

// AppID returns the electron-builder application id of the app called name.
func AppID(name string) string {
	return "com.u2a." + Slug(name)
}

// MainJS renders the Electron entry script.
func MainJS(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := mainJS.Execute(&buf, cfg.withDefaults()); err != nil {
		return nil, errors.Newf(errors.CategoryInternal, "template execute error %s: %v", MainFile, err)
	}
	return buf.Bytes(), nil
}

// Manifest is the generated package.json.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Main            string            `json:"main"`
	Author          string            `json:"author"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	Build           BuildConfig       `json:"build"`
}

// BuildConfig is the electron-builder section of the manifest.
type BuildConfig struct {
	AppID       string            `json:"appId"`
	ProductName string            `json:"productName"`
	Icon        string            `json:"icon"`
	Directories map[string]string `json:"directories,omitempty"`
	Files       []string          `json:"files,omitempty"`
	Win         *TargetConfig     `json:"win,omitempty"`
	Mac         *TargetConfig     `json:"mac,omitempty"`
	Linux       *TargetConfig     `json:"linux,omitempty"`
	NSIS        *NSISConfig       `json:"nsis,omitempty"`
}

// TargetConfig is a per-platform electron-builder target.
type TargetConfig struct {
	Target string `json:"target"`
	Icon   string `json:"icon,omitempty"`
}

// NSISConfig configures the Windows installer.
type NSISConfig struct {
	OneClick                           bool `json:"oneClick"`
	AllowToChangeInstallationDirectory bool `json:"allowToChangeInstallationDirectory"`
}

// installerFiles keeps docs, tests and previous build outputs out of the
// installer.
var installerFiles = []string{
	"**/*",
	"!**/node_modules/*/{CHANGELOG.md,README.md,README,readme.md,readme}",
	"!**/node_modules/*/{test,__tests__,tests,powered-test,example,examples}",
	"!**/node_modules/*.d.ts",
	"!**/node_modules/.bin",
	"!**/.{idea,git,cache,build,dist}",
	"!dist/**/*",
	"!installer/**/*",
}

// NewManifest builds the package manifest for cfg.
func NewManifest(cfg Config) Manifest {
	cfg = cfg.withDefaults()

	m := Manifest{
		Name:         PackageName(cfg.Name),
		Version:      cfg.Version,
		Description:  "Web app for " + cfg.Name,
		Main:         MainFile,
		Author:       cfg.Name,
		Scripts:      map[string]string{"start": "electron ."},
		Dependencies: map[string]string{"electron": ElectronVersion},
		Build: BuildConfig{
			AppID:       AppID(cfg.Name),
			ProductName: cfg.Name,
			Icon:        cfg.IconPath,
		},
	}

	if !cfg.Executable {
		return m
	}

	m.Dependencies = map[string]string{}
	m.DevDependencies = map[string]string{
		"electron-packager": "^17.1.1",
		"electron-builder":  "^24.6.3",
		"electron":          ElectronVersion,
	}
	m.Scripts["package"] = "electron-packager . --overwrite --asar"
	m.Scripts["setup"] = "electron-builder"

	if cfg.Setup {
		m.Build.Directories = map[string]string{"output": "installer"}
		m.Build.Files = installerFiles
		m.Build.Win = &TargetConfig{Target: "nsis", Icon: cfg.IconPath}
		m.Build.Mac = &TargetConfig{Target: "dmg"}
		m.Build.Linux = &TargetConfig{Target: "AppImage", Icon: cfg.IconPath}
		m.Build.NSIS = &NSISConfig{OneClick: false, AllowToChangeInstallationDirectory: true}
	}

	return m
}

// PackageJSON renders the package manifest.
func PackageJSON(cfg Config) ([]byte, error) {
	data, err := json.MarshalIndent(NewManifest(cfg), "", "  ")
	if err != nil {
		return nil, errors.Newf(errors.CategoryInternal, "cannot encode %s: %v", ManifestFile, err)
	}
	return append(data, '\n'), nil
}

// Generate writes main.js and package.json into dir, creating it if
// needed.
func Generate(dir string, cfg Config) error {
	files := make(map[string][]byte, 2)

	js, err := MainJS(cfg)
	if err != nil {
		return err
	}
	files[MainFile] = js

	manifest, err := PackageJSON(cfg)
	if err != nil {
		return err
	}
	files[ManifestFile] = manifest

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E500").WithDetailf("cannot create %s", dir).Wrap(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
			return errors.New("E500").WithDetailf("cannot write %s", name).Wrap(err)
		}
	}
	return nil
}

var (
	widthPattern  = regexp.MustCompile(`const\s+WINDOW_WIDTH\s*=\s*(\d+)`)
	heightPattern = regexp.MustCompile(`const\s+WINDOW_HEIGHT\s*=\s*(\d+)`)
)

// WindowSize extracts the window size from a rendered entry script. Missing
// or unparseable values fall back to the defaults.
func WindowSize(script []byte) (width, height int) {
	return match(widthPattern, script, DefaultWidth), match(heightPattern, script, DefaultHeight)
}

// ReadWindowSize reads main.js from dir and extracts its window size. An
// unreadable script yields the defaults.
func ReadWindowSize(dir string) (width, height int) {
	script, err := os.ReadFile(filepath.Join(dir, MainFile))
	if err != nil {
		return DefaultWidth, DefaultHeight
	}
	return WindowSize(script)
}

func match(re *regexp.Regexp, script []byte, fallback int) int {
	m := re.FindSubmatch(script)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(m[1])))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
