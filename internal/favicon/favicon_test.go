package favicon

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

func iconServer(contentType string, status int, body []byte) *httptest.Server {
	r := chi.NewRouter()
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	})
	return httptest.NewServer(r)
}

func newResolver(t *testing.T, client *http.Client) *Resolver {
	t.Helper()
	root := t.TempDir()
	return &Resolver{
		IconsDir:        filepath.Join(root, "icons"),
		DefaultIconPath: filepath.Join(root, "favicon.ico"),
		HTTPClient:      client,
		Timeout:         2 * time.Second,
	}
}

func TestResolve_Downloads(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantExt     string
	}{
		{"png", "image/png", ".png"},
		{"jpeg", "image/jpeg", ".jpg"},
		{"ico", "image/x-icon", ".ico"},
		{"octet stream", "application/octet-stream", ".ico"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := iconServer(tt.contentType, http.StatusOK, pngBytes)
			defer srv.Close()

			r := newResolver(t, srv.Client())
			path, owned := r.Resolve(context.Background(), srv.URL+"/some/page", "example.com")

			want := filepath.Join(r.IconsDir, "example.com"+tt.wantExt)
			if path != want || !owned {
				t.Fatalf("Resolve = (%q, %v), want (%q, true)", path, owned, want)
			}
			data, err := os.ReadFile(path)
			if err != nil || !bytes.Equal(data, pngBytes) {
				t.Errorf("icon content = %q, %v", data, err)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Error("temp file left behind")
			}
		})
	}
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	tests := []struct {
		name   string
		ctype  string
		status int
		body   []byte
	}{
		{"not found", "image/x-icon", http.StatusNotFound, nil},
		{"html page", "text/html; charset=utf-8", http.StatusOK, []byte("<html>")},
		{"empty body", "image/x-icon", http.StatusOK, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := iconServer(tt.ctype, tt.status, tt.body)
			defer srv.Close()

			r := newResolver(t, srv.Client())
			path, owned := r.Resolve(context.Background(), srv.URL, "example.com")

			if path != r.DefaultIconPath || owned {
				t.Fatalf("Resolve = (%q, %v), want default", path, owned)
			}
			data, err := os.ReadFile(path)
			if err != nil || !bytes.Equal(data, defaultIcon) {
				t.Error("default icon not written")
			}
		})
	}
}

func TestResolve_Unreachable(t *testing.T) {
	srv := iconServer("image/png", http.StatusOK, pngBytes)
	url := srv.URL
	srv.Close()

	r := newResolver(t, nil)
	if path, owned := r.Resolve(context.Background(), url, "gone"); path != r.DefaultIconPath || owned {
		t.Errorf("Resolve = (%q, %v), want default", path, owned)
	}
}

func TestEnsureDefault_KeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favicon.ico")
	if err := os.WriteFile(path, []byte("custom"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDefault(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "custom" {
		t.Error("EnsureDefault overwrote an existing icon")
	}
}

func TestDefaultIcon_IsICO(t *testing.T) {
	if len(defaultIcon) < 6 || !bytes.Equal(defaultIcon[:4], []byte{0, 0, 1, 0}) {
		t.Error("default icon has no ICO header")
	}
}

func TestFaviconURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://example.com", "https://example.com/favicon.ico", false},
		{"https://example.com/a/b?q=1", "https://example.com/favicon.ico", false},
		{"http://localhost:3000/", "http://localhost:3000/favicon.ico", false},
		{"example.com", "", true},
	}

	for _, tt := range tests {
		got, err := faviconURL(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("faviconURL(%q) = %q, %v", tt.in, got, err)
		}
	}
}
