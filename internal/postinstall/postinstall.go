// Package postinstall runs once per installed version of u2a: it greets a
// new user, migrates settings after an update, sends the anonymous usage
// beacon and triggers the bulk upgrade of local apps.
package postinstall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/lifecycle"
	"github.com/url2app/u2a/internal/settings"
	"github.com/url2app/u2a/internal/version"
)

// DefaultBeaconTimeout bounds the usage beacon request.
const DefaultBeaconTimeout = 5 * time.Second

// State is the postinstall document.
type State struct {
	Version     string    `json:"version"`
	InstalledAt time.Time `json:"installed_at"`
}

// Kind says what a run did.
type Kind string

const (
	// KindSkipped means the running version cannot be compared, as in
	// development builds.
	KindSkipped Kind = "skipped"

	// KindCurrent means the recorded version is the running one.
	KindCurrent Kind = "current"

	// KindFirstInstall means no previous version was recorded.
	KindFirstInstall Kind = "first-install"

	// KindUpdate means the recorded version differs from the running one.
	KindUpdate Kind = "update"
)

// Outcome describes a finished run.
type Outcome struct {
	Kind     Kind
	Previous string
	Current  string

	// BeaconSent reports whether the usage beacon got a 2xx answer.
	BeaconSent bool

	// Upgrade is the bulk upgrade result after an update.
	Upgrade *lifecycle.UpgradeResult
}

// Upgrader regenerates local apps after a version change.
type Upgrader interface {
	Upgrade(ctx context.Context, current, next string) (*lifecycle.UpgradeResult, error)
}

// Settings is the part of the settings store postinstall needs.
type Settings interface {
	Init(force bool) error
	Bool(key settings.Key) bool
}

// Runner performs the postinstall steps.
type Runner struct {
	// StatePath is the postinstall document.
	StatePath string

	// ReportsURL receives the usage beacon.
	ReportsURL string

	// Version is the running version.
	Version string

	Settings Settings
	Upgrader Upgrader

	// HTTPClient sends the beacon (default: http.DefaultClient).
	HTTPClient *http.Client

	// Timeout bounds the beacon (default: 5s).
	Timeout time.Duration

	// Out receives the notes shown to the user.
	Out io.Writer

	Logger *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// ReadState reads the postinstall document. A missing document yields
// (nil, nil).
func ReadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("E500").WithDetailf("cannot read %s", path).Wrap(err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.New("E500").WithDetailf("%s is not valid JSON", path).Wrap(err)
	}
	return &st, nil
}

// WriteState replaces the postinstall document.
func WriteState(path string, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.New("E500").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New("E500").Wrap(err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.New("E500").WithDetailf("cannot write %s", tmp).Wrap(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.New("E500").WithDetailf("cannot replace %s", path).Wrap(err)
	}
	return nil
}

// Run compares the recorded version with the running one and performs the
// first-install or update steps. Nothing happens when they match. Only a
// failure to record the new state is returned; every other step is best
// effort and logged.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	log := r.logger()

	if _, err := version.Parse(r.Version); err != nil {
		log.Debug("version is not comparable, skipping postinstall", zap.String("version", r.Version))
		return &Outcome{Kind: KindSkipped, Current: r.Version}, nil
	}

	out := &Outcome{Kind: KindFirstInstall, Previous: version.NewInstall, Current: r.Version}

	st, err := ReadState(r.StatePath)
	switch {
	case err != nil:
		log.Error("postinstall state unreadable, treating as a new install", zap.Error(err))
	case st != nil && st.Version == r.Version:
		return &Outcome{Kind: KindCurrent, Previous: st.Version, Current: r.Version}, nil
	case st != nil:
		out.Kind = KindUpdate
		if st.Version != "" {
			out.Previous = st.Version
		}
	}

	if out.Kind == KindUpdate {
		r.note(updateNote(out.Previous, r.Version))
	} else {
		r.note(welcomeNote)
	}
	if err := r.Settings.Init(false); err != nil {
		log.Error("cannot initialize settings", zap.Error(err))
	}

	if r.Settings.Bool(settings.SendAnonReports) {
		out.BeaconSent = r.sendBeacon(ctx, out.Previous)
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	if err := WriteState(r.StatePath, State{Version: r.Version, InstalledAt: now().UTC()}); err != nil {
		return out, err
	}

	if out.Kind != KindUpdate || r.Upgrader == nil {
		return out, nil
	}

	r.printf("Checking for local apps that need upgrading...\n")
	res, err := r.Upgrader.Upgrade(ctx, out.Previous, r.Version)
	if err != nil {
		log.Error("local apps upgrade failed", zap.Error(err))
		return out, nil
	}
	out.Upgrade = res
	r.reportUpgrade(res)
	return out, nil
}

// sendBeacon reports the version change. Failures are only logged.
func (r *Runner) sendBeacon(ctx context.Context, previous string) bool {
	log := r.logger()
	if r.ReportsURL == "" {
		return false
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultBeaconTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := url.Values{}
	q.Set("previousVersion", previous)
	q.Set("newVersion", r.Version)
	target := r.ReportsURL
	if strings.Contains(target, "?") {
		target += "&" + q.Encode()
	} else {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		log.Debug("cannot build usage report", zap.Error(err))
		return false
	}

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Debug("usage report failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug("usage report rejected", zap.Int("status", resp.StatusCode))
		return false
	}
	log.Debug("usage report sent")
	return true
}

func (r *Runner) reportUpgrade(res *lifecycle.UpgradeResult) {
	if res.Skipped {
		switch res.Reason {
		case lifecycle.ReasonDisabled:
			r.printf("Automatic upgrade of local apps is disabled, skipped.\n")
		case lifecycle.ReasonNotCoreUpdate:
			r.printf("Not a core update, local apps are left as they are.\n")
		case lifecycle.ReasonNewInstall:
			r.printf("New installation, no local apps to upgrade.\n")
		}
		return
	}

	r.printf("Local apps upgrade: %d upgraded, %d failed, %d missing\n", res.Upgraded, res.Failed, res.Missing)
	for _, name := range sortedKeys(res.Errors) {
		r.printf("  %s: %s\n", name, describe(res.Errors[name]))
	}
	if res.Upgraded > 0 {
		lines := []string{"Local apps have been updated", fmt.Sprintf("Updated: %d", res.Upgraded)}
		if res.Failed > 0 {
			lines = append(lines, fmt.Sprintf("Skipped: %d", res.Failed))
		}
		r.note(strings.Join(lines, "\n"))
	}
}

// describe renders err on one line, with its code when it has one.
func describe(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.FormatCompact()
	}
	return err.Error()
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const welcomeNote = `Welcome to u2a!
Thanks for downloading this tool.

Create a local web app with
  u2a create <url/domain>

See docs.urltoapp.xyz for more detailed usage.

Anonymous install reports are enabled by default.
To disable them: u2a configure reports disable`

func updateNote(previous, current string) string {
	return fmt.Sprintf("u2a has been updated!\nOld version: %s\nNew version: %s", previous, current)
}

var noteStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("12")).
	Padding(0, 1)

func (r *Runner) note(text string) {
	if r.Out == nil {
		return
	}
	fmt.Fprintln(r.Out, noteStyle.Render(text))
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, format, args...)
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger.Named("postinstall")
}
