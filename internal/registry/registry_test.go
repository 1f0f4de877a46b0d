package registry

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/url2app/u2a/internal/errors"
)

func newDB(t *testing.T) *DB {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "db.json"))
}

func TestRead_MissingOrEmpty(t *testing.T) {
	db := newDB(t)

	apps, err := db.Read()
	if err != nil || len(apps) != 0 {
		t.Fatalf("Read() on missing file = %v, %v", apps, err)
	}

	if err := os.WriteFile(db.Path(), nil, 0644); err != nil {
		t.Fatal(err)
	}
	apps, err = db.Read()
	if err != nil || len(apps) != 0 {
		t.Fatalf("Read() on empty file = %v, %v", apps, err)
	}

	if err := os.WriteFile(db.Path(), []byte("null\n"), 0644); err != nil {
		t.Fatal(err)
	}
	apps, err = db.Read()
	if err != nil || apps == nil || len(apps) != 0 {
		t.Fatalf("Read() on null document = %v, %v", apps, err)
	}
	apps["x"] = &Record{URL: "https://x"}
}

func TestRead_Corrupt(t *testing.T) {
	db := newDB(t)
	if err := os.WriteFile(db.Path(), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Read(); !errors.HasCode(err, "E501") {
		t.Errorf("Read() error = %v, want E501", err)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	db := newDB(t)
	created := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	want := Apps{
		"github.com": {
			URL:         "https://github.com",
			Created:     created,
			Path:        "/apps/github.com",
			Icon:        "/apps/github.com.ico",
			DesktopPath: "/home/.local/share/applications/u2a-github.com.desktop",
		},
		"my app": {
			URL:     "http://localhost",
			Created: created,
			Path:    "/apps/my app",
			Name:    "my app",
			Width:   1024,
			Height:  768,
		},
	}

	if err := db.Write(want); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := db.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}

	data, _ := os.ReadFile(db.Path())
	if data[len(data)-1] != '\n' {
		t.Error("document should end with a newline")
	}

	// No temp files remain next to the document.
	entries, _ := os.ReadDir(filepath.Dir(db.Path()))
	for _, e := range entries {
		if e.Name() != "db.json" {
			t.Errorf("unexpected file %s", e.Name())
		}
	}
}

func TestRead_Tolerant(t *testing.T) {
	db := newDB(t)
	doc := `{
  "a": {"url": "https://a", "created": "2024-01-01T00:00:00Z", "path": "/a", "desktopPath": null, "future": 1},
  "b": null
}`
	if err := os.WriteFile(db.Path(), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	apps, err := db.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(apps) != 1 || apps["a"].DesktopPath != "" || apps["a"].URL != "https://a" {
		t.Errorf("apps = %+v", apps)
	}
}

func TestUpdate(t *testing.T) {
	db := newDB(t)

	err := db.Update(func(apps Apps) error {
		apps["a"] = &Record{URL: "https://a", Path: "/a"}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	rec, ok, err := db.Get("a")
	if err != nil || !ok || rec.URL != "https://a" {
		t.Fatalf("Get(a) = %+v, %v, %v", rec, ok, err)
	}

	// A failing callback writes nothing.
	abort := errors.New("E200")
	err = db.Update(func(apps Apps) error {
		delete(apps, "a")
		return abort
	})
	if !errors.HasCode(err, "E200") {
		t.Fatalf("Update() error = %v, want callback error", err)
	}
	if _, ok, _ := db.Get("a"); !ok {
		t.Error("aborted Update modified the registry")
	}
}

func TestUpdate_Concurrent(t *testing.T) {
	db := newDB(t)
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := db.Update(func(apps Apps) error {
				apps[string(rune('a'+i))] = &Record{Path: "/x"}
				return nil
			})
			if err != nil {
				t.Errorf("Update() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	names, err := db.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != n {
		t.Errorf("got %d records, want %d: lost updates", len(names), n)
	}
}

func TestNames_Sorted(t *testing.T) {
	apps := Apps{"zeta": {}, "alpha": {}, "Mid": {}}
	want := []string{"Mid", "alpha", "zeta"}
	if got := apps.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestInit(t *testing.T) {
	db := Open(filepath.Join(t.TempDir(), "nested", "db.json"))
	if err := db.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	data, err := os.ReadFile(db.Path())
	if err != nil || string(data) != "{}\n" {
		t.Errorf("Init wrote %q, %v", data, err)
	}
}
