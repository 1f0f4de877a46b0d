// Package version implements u2a's security.core.feature versioning: parsing,
// ordering, update classification and the latest-version lookup.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// NewInstall is the version recorded before the first install.
const NewInstall = "0.0.0"

// Version is a security.core.feature triple.
type Version struct {
	Security int
	Core     int
	Feature  int
}

// Parse parses "a.b.c". A leading "v" is accepted and missing trailing
// components are zero.
func Parse(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q: too many components", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: component %q", s, p)
		}
		nums[i] = n
	}
	return Version{Security: nums[0], Core: nums[1], Feature: nums[2]}, nil
}

// String returns "a.b.c".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Security, v.Core, v.Feature)
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	for _, d := range [3]int{v.Security - o.Security, v.Core - o.Core, v.Feature - o.Feature} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// Compare parses and compares two version strings.
func Compare(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// IsCoreUpdate reports whether the security or core component differs
// between current and next. Unparseable versions are never core updates.
func IsCoreUpdate(current, next string) bool {
	c, err := Parse(current)
	if err != nil {
		return false
	}
	n, err := Parse(next)
	if err != nil {
		return false
	}
	return c.Security != n.Security || c.Core != n.Core
}

// UpdateType classifies an available update.
type UpdateType string

const (
	UpdateNone     UpdateType = "none"
	UpdateSecurity UpdateType = "security"
	UpdateCore     UpdateType = "core"
	UpdateFeature  UpdateType = "feature"
)

// GetUpdateType returns the kind of update going from current to latest: the
// most significant component that increases. A latest that is not newer
// than current is UpdateNone.
func GetUpdateType(current, latest string) UpdateType {
	c, err := Parse(current)
	if err != nil {
		return UpdateNone
	}
	l, err := Parse(latest)
	if err != nil {
		return UpdateNone
	}
	if l.Compare(c) <= 0 {
		return UpdateNone
	}

	switch {
	case l.Security != c.Security:
		return UpdateSecurity
	case l.Core != c.Core:
		return UpdateCore
	default:
		return UpdateFeature
	}
}

// Details are the per-component differences of an update.
type Details struct {
	SecurityChanges int
	CoreChanges     int
	FeatureChanges  int
	From            string
	To              string
}

// GetDetails returns the differences between current and latest.
func GetDetails(current, latest string) (*Details, error) {
	c, err := Parse(current)
	if err != nil {
		return nil, err
	}
	l, err := Parse(latest)
	if err != nil {
		return nil, err
	}
	return &Details{
		SecurityChanges: l.Security - c.Security,
		CoreChanges:     l.Core - c.Core,
		FeatureChanges:  l.Feature - c.Feature,
		From:            c.String(),
		To:              l.String(),
	}, nil
}
