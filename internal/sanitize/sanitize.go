// Package sanitize strips unsafe characters from user-supplied strings
// before they reach file paths, generated scripts or subprocesses.
//
// Both functions are total and idempotent: every rune outside the
// allow-list is replaced by '_', which is itself allowed.
package sanitize

import "strings"

// Input returns s with every rune outside [A-Za-z0-9_-.:/@%], space and tab
// replaced by '_'. Line breaks are replaced too so a sanitized name can
// never start a new key in a desktop entry or plist.
func Input(s string) string {
	return strings.Map(func(r rune) rune {
		if isAlnum(r) {
			return r
		}
		switch r {
		case '_', '-', '.', ':', '/', '@', '%', ' ', '\t':
			return r
		}
		return '_'
	}, s)
}

// Command returns s with every rune outside [A-Za-z0-9_-.:/@\ ="'] replaced
// by '_'. Shell metacharacters such as ; | & $ ` < > ( ) never survive.
func Command(s string) string {
	return strings.Map(func(r rune) rune {
		if isAlnum(r) {
			return r
		}
		switch r {
		case '_', '-', '.', ':', '/', '@', '\\', ' ', '=', '"', '\'':
			return r
		}
		return '_'
	}, s)
}

// IsSafeInput reports whether s is unchanged by Input.
func IsSafeInput(s string) bool {
	return Input(s) == s
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
