// Package privilege refuses to run u2a as root or as an elevated
// administrator unless the user explicitly allows it.
package privilege

import (
	"runtime"

	"github.com/url2app/u2a/internal/errors"
)

// elevatedFunc reports whether the process runs with elevated privileges.
var elevatedFunc = elevated

// Elevated reports whether the process runs as root or, on Windows, with
// an elevated token.
func Elevated() (bool, error) {
	return elevatedFunc()
}

// Check returns an E600 error when the process is elevated and allow is
// false. The bool reports elevation so callers can warn when it is
// allowed. A failed probe counts as not elevated.
func Check(allow bool) (bool, error) {
	isElevated, err := elevatedFunc()
	if err != nil || !isElevated {
		return false, nil
	}
	if allow {
		return true, nil
	}

	who := "root"
	if runtime.GOOS == "windows" {
		who = "an administrator"
	}
	return true, errors.New("E600").
		WithDetailf("u2a should not be run as %s", who).
		WithSuggestion("Run as a regular user, or pass --allowroot if you really mean it")
}
