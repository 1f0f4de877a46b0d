package version

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/errors"
)

// DefaultCheckTimeout bounds the latest-version lookup.
const DefaultCheckTimeout = time.Second

// Result is the outcome of a latest-version lookup.
type Result struct {
	Current     string
	Latest      string
	NeedsUpdate bool
	Type        UpdateType
	Details     *Details
}

// Checker looks up the latest published version.
type Checker struct {
	// URL returns the latest version as plain text.
	URL string

	// Current is the running version.
	Current string

	// HTTPClient is used for the lookup. Nil uses a client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds the lookup (default: DefaultCheckTimeout).
	Timeout time.Duration

	Logger *zap.Logger
}

// Check fetches the latest version and compares it with Current. Failures
// return an E301 error; callers treat them as "no update known".
func (c *Checker) Check(ctx context.Context) (*Result, error) {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("started version check", zap.String("url", c.URL))

	latest, err := c.fetch(ctx)
	if err != nil {
		log.Debug("version check failed", zap.Error(err))
		return nil, errors.New("E301").Wrap(err)
	}
	log.Debug("version retrieved", zap.String("latest", latest))

	if _, err := Parse(latest); err != nil {
		return nil, errors.New("E301").WithDetailf("server returned %q", latest).Wrap(err)
	}

	result := &Result{Current: c.Current, Latest: latest, Type: UpdateNone}
	cmp, err := Compare(c.Current, latest)
	if err != nil {
		// A development build has no comparable version.
		return result, nil
	}
	result.NeedsUpdate = cmp < 0
	if result.NeedsUpdate {
		result.Type = GetUpdateType(c.Current, latest)
		result.Details, _ = GetDetails(c.Current, latest)
	}
	return result, nil
}

func (c *Checker) fetch(ctx context.Context) (string, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return "unexpected status " + http.StatusText(e.code)
}
