// Package settings stores the boolean user settings of u2a in
// ~/.u2a/settings.json.
//
// Unknown keys found in the file are preserved on write so newer and older
// versions of the tool can share one document.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/url2app/u2a/internal/errors"
)

// Key names a setting.
type Key string

const (
	// SendAnonReports enables the anonymous install/upgrade beacon.
	SendAnonReports Key = "send_anon_reports"

	// VersionCheck enables the startup latest-version lookup.
	VersionCheck Key = "version_check"

	// AlwaysShowDebug echoes debug log lines to the terminal.
	AlwaysShowDebug Key = "always_show_debug"

	// AutoUpgradeLocalApps regenerates local apps after a core update.
	AutoUpgradeLocalApps Key = "autoupgrade_localapps"
)

// keys lists every setting in display order.
var keys = []Key{SendAnonReports, VersionCheck, AlwaysShowDebug, AutoUpgradeLocalApps}

var defaults = map[Key]bool{
	SendAnonReports:      true,
	VersionCheck:         true,
	AlwaysShowDebug:      false,
	AutoUpgradeLocalApps: false,
}

// Keys returns every known setting in display order.
func Keys() []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}

// Default returns the default value of key.
func Default(key Key) bool {
	return defaults[key]
}

// ParseKey validates a setting name.
func ParseKey(name string) (Key, error) {
	k := Key(name)
	if _, ok := defaults[k]; !ok {
		return "", errors.New("E120").
			WithDetailf("unknown setting %q", name).
			WithSuggestion("Known settings: send_anon_reports, version_check, always_show_debug, autoupgrade_localapps")
	}
	return k, nil
}

// Store reads and writes the settings document.
type Store struct {
	path string
}

// Open returns a store for the settings document at path. The file is not
// touched until the first read or write.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// load returns the raw document. A missing or empty file is an empty
// document.
func (s *Store) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, errors.New("E121").Wrap(err)
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("E121").
			WithDetailf("%s is not valid JSON", s.path).
			WithSuggestion("Run 'u2a configure all reset' to restore defaults").
			Wrap(err)
	}
	return doc, nil
}

func (s *Store) save(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.New("E121").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.New("E500").Wrap(err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.New("E500").
			WithDetailf("cannot write %s", s.path).
			Wrap(err)
	}
	return nil
}

// Get returns the value of key, or its default when unset or not a bool.
func (s *Store) Get(key Key) (bool, error) {
	if _, err := ParseKey(string(key)); err != nil {
		return false, err
	}
	doc, err := s.load()
	if err != nil {
		return defaults[key], err
	}
	if v, ok := doc[string(key)].(bool); ok {
		return v, nil
	}
	return defaults[key], nil
}

// Bool returns the value of key, falling back to its default on any error.
func (s *Store) Bool(key Key) bool {
	v, err := s.Get(key)
	if err != nil {
		return defaults[key]
	}
	return v
}

// All returns every known setting with defaults applied.
func (s *Store) All() (map[Key]bool, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make(map[Key]bool, len(keys))
	for _, k := range keys {
		if v, ok := doc[string(k)].(bool); ok {
			out[k] = v
		} else {
			out[k] = defaults[k]
		}
	}
	return out, nil
}

// Set stores value under key.
func (s *Store) Set(key Key, value bool) error {
	if _, err := ParseKey(string(key)); err != nil {
		return err
	}
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[string(key)] = value
	return s.save(doc)
}

// Reset restores key to its default.
func (s *Store) Reset(key Key) error {
	return s.Set(key, defaults[key])
}

// ResetAll restores every known setting to its default. Unknown keys are
// kept. A corrupt document is replaced.
func (s *Store) ResetAll() error {
	doc, err := s.load()
	if err != nil {
		doc = map[string]any{}
	}
	for _, k := range keys {
		doc[string(k)] = defaults[k]
	}
	return s.save(doc)
}

// Init fills in missing settings with their defaults. With force every
// known setting is rewritten to its default.
func (s *Store) Init(force bool) error {
	if force {
		return s.ResetAll()
	}
	doc, err := s.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := doc[string(k)].(bool); !ok {
			doc[string(k)] = defaults[k]
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save(doc)
}

// String renders a value as enabled/disabled.
func String(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

// Describe returns a one-line description of key.
func Describe(key Key) string {
	switch key {
	case SendAnonReports:
		return "Anonymous usage reports"
	case VersionCheck:
		return "Check for new versions at startup"
	case AlwaysShowDebug:
		return "Always show debug output"
	case AutoUpgradeLocalApps:
		return "Regenerate local apps after a core update"
	}
	return fmt.Sprintf("Setting %s", string(key))
}
