// Package urlutil normalizes user-supplied URLs and derives app names from
// them.
package urlutil

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/errors"
)

// DefaultTimeout bounds the HTTPS probe.
const DefaultTimeout = 10 * time.Second

// Normalizer turns a scheme-less URL into an absolute one by probing HTTPS
// and falling back to HTTP.
type Normalizer struct {
	// HTTPClient is used for the probe. Nil uses a client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds the probe (default: DefaultTimeout).
	Timeout time.Duration

	Logger *zap.Logger
}

// NewNormalizer returns a Normalizer with default settings.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{Timeout: DefaultTimeout, Logger: logger}
}

// HasScheme reports whether raw already starts with http:// or https://.
func HasScheme(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// Normalize returns raw unchanged if it already has an http(s) scheme.
// Otherwise it returns "https://"+raw when a GET to that URL succeeds with
// a 2xx status, and "http://"+raw in every other case. It never fails.
func (n *Normalizer) Normalize(ctx context.Context, raw string) string {
	raw = strings.TrimSpace(raw)
	if HasScheme(raw) {
		return raw
	}

	candidate := "https://" + raw
	if n.probe(ctx, candidate) {
		n.logger().Debug("https probe succeeded", zap.String("url", candidate))
		return candidate
	}

	n.logger().Debug("https probe failed, using http", zap.String("url", raw))
	return "http://" + raw
}

func (n *Normalizer) probe(ctx context.Context, target string) bool {
	timeout := n.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}

	client := n.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (n *Normalizer) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}

// DomainName returns the hostname of u with a leading "www." removed. If u
// cannot be parsed or has no host, u is returned unchanged.
func DomainName(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Hostname() == "" {
		return u
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// Validate rejects input that cannot become an app URL.
func Validate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("E204").WithDetail("the URL is empty")
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return errors.New("E204").
			WithDetailf("%q contains whitespace", raw)
	}

	candidate := raw
	if !HasScheme(candidate) {
		if strings.Contains(candidate, "://") {
			return errors.New("E204").
				WithDetailf("unsupported scheme in %q", raw).
				WithSuggestion("Use an http:// or https:// URL, or omit the scheme")
		}
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return errors.New("E204").WithDetailf("cannot parse %q", raw).Wrap(err)
	}
	if parsed.Hostname() == "" {
		return errors.New("E204").WithDetailf("%q has no host", raw)
	}
	return nil
}
