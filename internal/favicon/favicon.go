// Package favicon resolves the icon of a generated app: the site's
// /favicon.ico when it can be downloaded, otherwise a bundled default.
package favicon

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds the favicon download.
const DefaultTimeout = 10 * time.Second

// maxIconSize caps the downloaded icon.
const maxIconSize = 4 << 20

//go:embed assets/default.ico
var defaultIcon []byte

// EnsureDefault writes the bundled default icon to path unless a file is
// already there.
func EnsureDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create icon directory: %w", err)
	}
	return writeAtomic(path, defaultIcon)
}

// Resolver downloads site favicons into the icons directory.
type Resolver struct {
	// IconsDir receives downloaded icons as <name><ext>.
	IconsDir string

	// DefaultIconPath is returned when no favicon can be fetched.
	DefaultIconPath string

	// HTTPClient is used for the download. Nil uses a client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds the download (default: DefaultTimeout).
	Timeout time.Duration

	Logger *zap.Logger
}

// Resolve fetches <origin of siteURL>/favicon.ico and stores it as
// IconsDir/<name><ext>, the extension derived from the response content
// type. The returned bool reports whether the icon is a per-app file the
// caller owns. Resolve never fails: any error yields the default icon.
func (r *Resolver) Resolve(ctx context.Context, siteURL, name string) (string, bool) {
	log := r.logger().With(zap.String("app", name))

	path, err := r.download(ctx, siteURL, name)
	if err == nil {
		log.Debug("site icon saved", zap.String("path", path))
		return path, true
	}

	log.Warn("favicon download failed, using the default icon", zap.Error(err))
	if err := EnsureDefault(r.DefaultIconPath); err != nil {
		log.Error("cannot write the default icon", zap.Error(err))
	}
	return r.DefaultIconPath, false
}

func (r *Resolver) download(ctx context.Context, siteURL, name string) (string, error) {
	target, err := faviconURL(siteURL)
	if err != nil {
		return "", err
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	client := r.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d (URL: %s)", resp.StatusCode, target)
	}

	ext, err := Extension(resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read icon: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty icon at %s", target)
	}
	if len(data) > maxIconSize {
		return "", fmt.Errorf("icon at %s exceeds %d bytes", target, maxIconSize)
	}

	if err := os.MkdirAll(r.IconsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create icons directory: %w", err)
	}
	path := filepath.Join(r.IconsDir, name+ext)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Extension maps a response content type to an icon file extension. PNG
// and JPEG keep their type; anything else is stored as .ico. HTML and other
// text responses are rejected since they are error pages, not icons.
func Extension(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case strings.Contains(mediaType, "png"):
		return ".png", nil
	case strings.Contains(mediaType, "jpeg"), strings.Contains(mediaType, "jpg"):
		return ".jpg", nil
	case strings.HasPrefix(mediaType, "text/"):
		return "", fmt.Errorf("unexpected content type %q", contentType)
	}
	return ".ico", nil
}

func faviconURL(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("site URL %q is not absolute", siteURL)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/favicon.ico"}).String(), nil
}

// writeAtomic writes data to a temp file next to path and renames it.
func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to install icon: %w", err)
	}
	return nil
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
