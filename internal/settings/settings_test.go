package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/url2app/u2a/internal/errors"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "settings.json"))
}

func readDoc(t *testing.T, s *Store) map[string]any {
	t.Helper()
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("settings not JSON: %v", err)
	}
	return doc
}

func TestGet_Defaults(t *testing.T) {
	s := newStore(t)

	tests := []struct {
		key  Key
		want bool
	}{
		{SendAnonReports, true},
		{VersionCheck, true},
		{AlwaysShowDebug, false},
		{AutoUpgradeLocalApps, false},
	}

	for _, tt := range tests {
		got, err := s.Get(tt.key)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("Get(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}

	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("Get should not create the settings file")
	}
}

func TestSetAndReset(t *testing.T) {
	s := newStore(t)

	if err := s.Set(AutoUpgradeLocalApps, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !s.Bool(AutoUpgradeLocalApps) {
		t.Error("AutoUpgradeLocalApps should be true after Set")
	}

	if err := s.Reset(AutoUpgradeLocalApps); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if s.Bool(AutoUpgradeLocalApps) {
		t.Error("AutoUpgradeLocalApps should be false after Reset")
	}

	doc := readDoc(t, s)
	if v, ok := doc["autoupgrade_localapps"].(bool); !ok || v {
		t.Errorf("document value = %v, want false", doc["autoupgrade_localapps"])
	}
}

func TestResetAll_KeepsUnknownKeys(t *testing.T) {
	s := newStore(t)
	if err := os.WriteFile(s.Path(), []byte(`{"version_check": false, "future_flag": "x"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.ResetAll(); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}

	doc := readDoc(t, s)
	if doc["future_flag"] != "x" {
		t.Errorf("unknown key dropped: %v", doc)
	}
	for _, k := range Keys() {
		if doc[string(k)] != Default(k) {
			t.Errorf("%s = %v, want %v", k, doc[string(k)], Default(k))
		}
	}
}

func TestResetAll_ReplacesCorruptFile(t *testing.T) {
	s := newStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(VersionCheck); !errors.HasCode(err, "E121") {
		t.Fatalf("Get on corrupt file error = %v, want E121", err)
	}
	if !s.Bool(VersionCheck) {
		t.Error("Bool should fall back to the default on a corrupt file")
	}

	if err := s.ResetAll(); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if _, err := s.Get(VersionCheck); err != nil {
		t.Errorf("Get after ResetAll error = %v", err)
	}
}

func TestInit(t *testing.T) {
	s := newStore(t)
	if err := os.WriteFile(s.Path(), []byte(`{"send_anon_reports": false}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.Init(false); err != nil {
		t.Fatalf("Init(false) error = %v", err)
	}
	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if all[SendAnonReports] {
		t.Error("Init(false) must keep existing values")
	}
	if len(readDoc(t, s)) != len(Keys()) {
		t.Errorf("Init(false) should fill every key, got %v", readDoc(t, s))
	}

	if err := s.Init(true); err != nil {
		t.Fatalf("Init(true) error = %v", err)
	}
	if !s.Bool(SendAnonReports) {
		t.Error("Init(true) should restore defaults")
	}
}

func TestUnknownKey(t *testing.T) {
	s := newStore(t)

	if _, err := ParseKey("colour"); !errors.HasCode(err, "E120") {
		t.Errorf("ParseKey error = %v, want E120", err)
	}
	if err := s.Set(Key("colour"), true); !errors.HasCode(err, "E120") {
		t.Errorf("Set error = %v, want E120", err)
	}
	if _, err := s.Get(Key("colour")); errors.CategoryOf(err) != errors.CategoryConfig {
		t.Errorf("Get category = %v, want config", errors.CategoryOf(err))
	}
}

func TestNonBoolValueFallsBack(t *testing.T) {
	s := newStore(t)
	if err := os.WriteFile(s.Path(), []byte(`{"version_check": "yes"}`), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(VersionCheck)
	if err != nil {
		t.Fatal(err)
	}
	if got != true {
		t.Error("non-bool value should fall back to the default")
	}
}
