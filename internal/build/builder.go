package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/execx"
)

// Platforms lists the accepted target platforms.
var Platforms = []string{"windows", "darwin", "linux"}

// Archs lists the accepted target architectures.
var Archs = []string{"x64", "armv7l", "arm64", "universal"}

// DefaultArch is used when no architecture is given.
const DefaultArch = "x64"

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// ExecutableDir is the packaged application directory.
	ExecutableDir string

	// InstallerDir is the electron-builder output directory, if built.
	InstallerDir string
}

// Options configures a build.
type Options struct {
	// Platform is the target platform (windows, darwin or linux).
	Platform string

	// Arch is the target architecture (default: x64).
	Arch string

	// Setup also builds an installer with electron-builder.
	Setup bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder packages generated apps with electron-packager and
// electron-builder.
type Builder struct {
	runner execx.Runner
	logger *zap.Logger
}

// New creates a new builder.
func New(runner execx.Runner, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{runner: runner, logger: logger}
}

// HostPlatform returns the host as a target platform name.
func HostPlatform() string {
	return runtime.GOOS
}

// Validate checks the platform and architecture of opts and fills in the
// default architecture.
func (o *Options) Validate() error {
	if !contains(Platforms, o.Platform) {
		return errors.New("E207").
			WithDetailf("unknown platform %q", o.Platform).
			WithSuggestion("Use one of: " + strings.Join(Platforms, ", "))
	}
	if o.Arch == "" {
		o.Arch = DefaultArch
	}
	if !contains(Archs, o.Arch) {
		return errors.New("E207").
			WithDetailf("unknown architecture %q", o.Arch).
			WithSuggestion("Use one of: " + strings.Join(Archs, ", "))
	}
	return nil
}

// PackagerPlatform maps a platform to its electron-packager name.
func PackagerPlatform(platform string) string {
	if platform == "windows" {
		return "win32"
	}
	return platform
}

// Build packages the app in appDir and, with Setup, builds its installer.
func (b *Builder) Build(ctx context.Context, appDir, appName, iconPath string, opts Options) (*Result, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	exe, err := b.BuildExecutable(ctx, appDir, appName, iconPath, opts)
	if err != nil {
		return nil, err
	}
	result.ExecutableDir = exe

	if opts.Setup {
		installer, err := b.BuildSetup(ctx, appDir, opts)
		if err != nil {
			return nil, err
		}
		result.InstallerDir = installer
	}

	result.Duration = time.Since(start)
	return result, nil
}

// BuildExecutable runs electron-packager in appDir and returns the packaged
// directory under dist/.
func (b *Builder) BuildExecutable(ctx context.Context, appDir, appName, iconPath string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	log := b.logger.With(zap.String("app", appName), zap.String("platform", opts.Platform), zap.String("arch", opts.Arch))

	b.progress(opts, fmt.Sprintf("Installing electron-packager for %s...", opts.Platform))
	if out, err := b.runner.Run(ctx, appDir, "npm install --save-dev electron-packager electron"); err != nil {
		return "", errors.FromError(err, "E401").WithOutput(out)
	}

	args := []string{
		"npx electron-packager .",
		execx.Quote(appName),
		"--platform=" + PackagerPlatform(opts.Platform),
		"--arch=" + opts.Arch,
		"--out=dist",
		"--overwrite",
		"--asar",
	}
	if iconPath != "" {
		if opts.Platform == "darwin" && filepath.Ext(iconPath) != ".icns" {
			log.Warn("macOS packages need an .icns icon, building without one", zap.String("icon", iconPath))
		} else {
			args = append(args, "--icon="+execx.Quote(iconPath))
		}
	}
	command := strings.Join(args, " ")
	log.Debug("packaging", zap.String("command", command))

	b.progress(opts, "Packaging executable...")
	if out, err := b.runner.Run(ctx, appDir, command); err != nil {
		return "", errors.FromError(err, "E401").WithOutput(out)
	}

	output, err := packagedDir(appDir, appName, opts)
	if err != nil {
		return "", err
	}
	log.Debug("executable built", zap.String("path", output))
	return output, nil
}

// BuildSetup runs electron-builder in appDir and returns the installer
// directory.
func (b *Builder) BuildSetup(ctx context.Context, appDir string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	b.progress(opts, "Installing electron-builder...")
	if out, err := b.runner.Run(ctx, appDir, "npm install --save-dev electron-builder"); err != nil {
		return "", errors.FromError(err, "E402").WithOutput(out)
	}

	flag := map[string]string{"windows": "--win", "darwin": "--mac", "linux": "--linux"}[opts.Platform]
	command := fmt.Sprintf("npx electron-builder %s --%s", flag, opts.Arch)

	b.progress(opts, "Building installer...")
	if out, err := b.runner.Run(ctx, appDir, command); err != nil {
		return "", errors.FromError(err, "E402").WithOutput(out)
	}

	installer := filepath.Join(appDir, "installer")
	if info, err := os.Stat(installer); err != nil || !info.IsDir() {
		return "", errors.New("E402").WithDetailf("no installer found at %s", installer)
	}
	return installer, nil
}

// packagedDir locates the electron-packager output for opts.
func packagedDir(appDir, appName string, opts Options) (string, error) {
	platform := PackagerPlatform(opts.Platform)
	want := filepath.Join(appDir, "dist", fmt.Sprintf("%s-%s-%s", appName, platform, opts.Arch))
	if info, err := os.Stat(want); err == nil && info.IsDir() {
		return want, nil
	}

	// electron-packager may normalize the name; accept any output for the platform.
	matches, _ := filepath.Glob(filepath.Join(appDir, "dist", "*-"+platform+"-"+opts.Arch))
	if len(matches) == 1 {
		return matches[0], nil
	}

	return "", errors.New("E401").WithDetailf("no packaged executable found at %s", want)
}

// Export copies the directory src to dst, replacing any previous copy.
func Export(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return errors.New("E500").Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.New("E500").Wrap(err)
	}
	if err := copyTree(src, dst); err != nil {
		os.RemoveAll(dst)
		return errors.New("E500").
			WithDetailf("cannot copy %s to %s", src, dst).
			Wrap(err)
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode()&fs.ModeSymlink != 0:
			// macOS bundles rely on framework symlinks.
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

// copyFile copies a file.
func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// progress reports build progress.
func (b *Builder) progress(opts Options, step string) {
	if opts.OnProgress != nil {
		opts.OnProgress(step)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
