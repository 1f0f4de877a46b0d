package urlutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/url2app/u2a/internal/errors"
)

func siteRouter(status int) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("<html></html>"))
	})
	return r
}

func TestNormalize_KeepsScheme(t *testing.T) {
	n := NewNormalizer(nil)
	for _, in := range []string{"https://example.com", "http://example.com/path", "  https://x.io  "} {
		if got := n.Normalize(context.Background(), in); got != strings.TrimSpace(in) {
			t.Errorf("Normalize(%q) = %q", in, got)
		}
	}
}

func TestNormalize_PrefersHTTPS(t *testing.T) {
	srv := httptest.NewTLSServer(siteRouter(http.StatusOK))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "https://")
	n := &Normalizer{HTTPClient: srv.Client(), Timeout: 2 * time.Second}

	if got := n.Normalize(context.Background(), host); got != "https://"+host {
		t.Errorf("Normalize = %q, want https", got)
	}
}

func TestNormalize_FallsBackToHTTP(t *testing.T) {
	tests := []struct {
		name string
		srv  *httptest.Server
	}{
		{"plain http server", httptest.NewServer(siteRouter(http.StatusOK))},
		{"https error status", httptest.NewTLSServer(siteRouter(http.StatusInternalServerError))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.srv.Close()
			host := tt.srv.Listener.Addr().String()
			n := &Normalizer{HTTPClient: tt.srv.Client(), Timeout: 2 * time.Second}

			if got := n.Normalize(context.Background(), host); got != "http://"+host {
				t.Errorf("Normalize = %q, want http fallback", got)
			}
		})
	}
}

func TestNormalize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := NewNormalizer(nil)
	if got := n.Normalize(ctx, "example.invalid"); got != "http://example.invalid" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestDomainName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/path", "example.com"},
		{"http://sub.example.com", "sub.example.com"},
		{"https://github.com:8443/x", "github.com"},
		{"https://wwwexample.com", "wwwexample.com"},
		{"not a url", "not a url"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DomainName(tt.in); got != tt.want {
			t.Errorf("DomainName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"example.com", true},
		{"https://example.com/app", true},
		{"localhost:3000", true},
		{"", false},
		{"   ", false},
		{"ftp://example.com", false},
		{"exa mple.com", false},
		{"https://", false},
	}

	for _, tt := range tests {
		err := Validate(tt.in)
		if tt.ok && err != nil {
			t.Errorf("Validate(%q) error = %v", tt.in, err)
		}
		if !tt.ok && !errors.HasCode(err, "E204") {
			t.Errorf("Validate(%q) error = %v, want E204", tt.in, err)
		}
	}
}
