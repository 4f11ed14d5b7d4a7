package model

import (
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/lang"
)

// ReleaseType is the semver verdict for a change or a whole report.
type ReleaseType string

const (
	ReleaseForbidden ReleaseType = "forbidden"
	ReleaseMajor     ReleaseType = "major"
	ReleaseMinor     ReleaseType = "minor"
	ReleasePatch     ReleaseType = "patch"
	ReleaseNone      ReleaseType = "none"
)

// AllReleaseTypes lists the release types from most to least severe.
var AllReleaseTypes = []ReleaseType{
	ReleaseForbidden, ReleaseMajor, ReleaseMinor, ReleasePatch, ReleaseNone,
}

// Unknown values get the zero severity, ranking below none.
var releaseTypeSeverity = abstract.NewSafeMap[ReleaseType, int](map[ReleaseType]int{
	ReleaseForbidden: 5,
	ReleaseMajor:     4,
	ReleaseMinor:     3,
	ReleasePatch:     2,
	ReleaseNone:      1,
})

// IsValid reports whether the value is one of the known release types.
func (r ReleaseType) IsValid() bool {
	return releaseTypeSeverity.Get(r) > 0
}

// Severity returns the numeric rank used for aggregation.
func (r ReleaseType) Severity() int {
	return releaseTypeSeverity.Get(r)
}

// Compare orders release types by severity.
func (r ReleaseType) Compare(other ReleaseType) int {
	return lang.If(r == other, 0, lang.If(r.Severity() < other.Severity(), -1, 1))
}

// MaxReleaseType returns the most severe of the given types, or none when
// the list is empty.
func MaxReleaseType(types ...ReleaseType) ReleaseType {
	max := ReleaseNone
	for _, t := range types {
		if t.Severity() > max.Severity() {
			max = t
		}
	}
	return max
}

// ExitCode maps an aggregate verdict to the process exit code contract:
// 0 for none/patch, 1 for minor, 2 for major, 3 for forbidden.
func (r ReleaseType) ExitCode() int {
	switch r {
	case ReleaseForbidden:
		return 3
	case ReleaseMajor:
		return 2
	case ReleaseMinor:
		return 1
	}
	return 0
}
