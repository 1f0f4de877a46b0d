package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"github.com/url2app/u2a/internal/errors"
)

// Record describes one generated app.
type Record struct {
	// URL is the normalized site URL.
	URL string `json:"url"`

	// Created is set at creation and never changes.
	Created time.Time `json:"created"`

	// Path is the app directory, owned by the record.
	Path string `json:"path"`

	// Icon is the icon path: a per-app file or the shared default.
	Icon string `json:"icon,omitempty"`

	// DesktopPath is the OS integration artifact, if one was created.
	DesktopPath string `json:"desktopPath,omitempty"`

	// ExecutablePath is a packaged executable directory, if any.
	ExecutablePath string `json:"executablePath,omitempty"`

	// Name, Width and Height echo user overrides for regeneration.
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Apps maps app names to records.
type Apps map[string]*Record

// Names returns the app names in sorted order.
func (a Apps) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DB is the JSON registry document.
type DB struct {
	path string
}

// Open returns the registry stored at path. The file is not touched until
// the first read or write.
func Open(path string) *DB {
	return &DB{path: path}
}

// Path returns the document path.
func (db *DB) Path() string {
	return db.path
}

// Init creates an empty registry if none exists.
func (db *DB) Init() error {
	if _, err := os.Stat(db.path); err == nil {
		return nil
	}
	return db.Write(Apps{})
}

// Read returns every record. A missing or empty file is an empty registry.
func (db *DB) Read() (Apps, error) {
	data, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return Apps{}, nil
	}
	if err != nil {
		return nil, errors.New("E501").Wrap(err)
	}
	if len(data) == 0 {
		return Apps{}, nil
	}

	apps := Apps{}
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, errors.New("E501").
			WithDetailf("%s is not valid JSON", db.path).
			WithSuggestion("Fix or remove the file; generated apps stay in the apps directory").
			Wrap(err)
	}
	if apps == nil {
		// The document was the literal null.
		apps = Apps{}
	}
	for name, rec := range apps {
		if rec == nil {
			delete(apps, name)
		}
	}
	return apps, nil
}

// Write replaces the registry with apps. The document is written to a
// temporary file in the same directory and renamed over the target.
func (db *DB) Write(apps Apps) error {
	if apps == nil {
		apps = Apps{}
	}
	data, err := json.MarshalIndent(apps, "", "  ")
	if err != nil {
		return errors.New("E502").Wrap(err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(db.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E502").Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(db.path)+".*.tmp")
	if err != nil {
		return errors.New("E502").Wrap(err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err != nil {
		os.Remove(tmpPath)
		return errors.New("E502").Wrap(err)
	}

	if err := os.Rename(tmpPath, db.path); err != nil {
		os.Remove(tmpPath)
		return errors.New("E502").Wrap(err)
	}
	return nil
}

// Update runs fn on the current records under an exclusive lock and writes
// the result. An error from fn aborts without writing.
func (db *DB) Update(fn func(Apps) error) error {
	if err := os.MkdirAll(filepath.Dir(db.path), 0755); err != nil {
		return errors.New("E503").Wrap(err)
	}

	lock := flock.New(db.path + ".lock")
	if err := lock.Lock(); err != nil {
		return errors.New("E503").
			WithDetailf("cannot lock %s", db.path).
			Wrap(err)
	}
	defer lock.Unlock()

	apps, err := db.Read()
	if err != nil {
		return err
	}
	if err := fn(apps); err != nil {
		return err
	}
	return db.Write(apps)
}

// Get returns the record of the app called name.
func (db *DB) Get(name string) (*Record, bool, error) {
	apps, err := db.Read()
	if err != nil {
		return nil, false, err
	}
	rec, ok := apps[name]
	return rec, ok, nil
}

// Names returns the registered app names in sorted order.
func (db *DB) Names() ([]string, error) {
	apps, err := db.Read()
	if err != nil {
		return nil, err
	}
	return apps.Names(), nil
}
