package model

import "testing"

func TestReleaseTypeSeverityOrder(t *testing.T) {
	order := []ReleaseType{ReleaseNone, ReleasePatch, ReleaseMinor, ReleaseMajor, ReleaseForbidden}
	for i := 1; i < len(order); i++ {
		if order[i].Severity() <= order[i-1].Severity() {
			t.Errorf("Severity(%s) = %d is not above Severity(%s) = %d",
				order[i], order[i].Severity(), order[i-1], order[i-1].Severity())
		}
	}
	if ReleaseType("bogus").Severity() >= ReleaseNone.Severity() {
		t.Error("unknown release type should rank below none")
	}
}

func TestReleaseTypeCompare(t *testing.T) {
	if ReleaseMajor.Compare(ReleaseMinor) != 1 {
		t.Error("major should compare above minor")
	}
	if ReleaseMinor.Compare(ReleaseMajor) != -1 {
		t.Error("minor should compare below major")
	}
	if ReleasePatch.Compare(ReleasePatch) != 0 {
		t.Error("equal types should compare 0")
	}
}

func TestMaxReleaseType(t *testing.T) {
	tests := []struct {
		name     string
		in       []ReleaseType
		expected ReleaseType
	}{
		{"empty", nil, ReleaseNone},
		{"single", []ReleaseType{ReleasePatch}, ReleasePatch},
		{"major wins", []ReleaseType{ReleasePatch, ReleaseMajor, ReleaseMinor}, ReleaseMajor},
		{"forbidden wins", []ReleaseType{ReleaseMajor, ReleaseForbidden}, ReleaseForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxReleaseType(tt.in...); got != tt.expected {
				t.Errorf("MaxReleaseType(%v) = %s, want %s", tt.in, got, tt.expected)
			}
		})
	}
}

func TestReleaseTypeExitCode(t *testing.T) {
	tests := []struct {
		release  ReleaseType
		expected int
	}{
		{ReleaseNone, 0},
		{ReleasePatch, 0},
		{ReleaseMinor, 1},
		{ReleaseMajor, 2},
		{ReleaseForbidden, 3},
	}
	for _, tt := range tests {
		if got := tt.release.ExitCode(); got != tt.expected {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.release, got, tt.expected)
		}
	}
}

func TestReleaseTypeIsValid(t *testing.T) {
	for _, r := range AllReleaseTypes {
		if !r.IsValid() {
			t.Errorf("IsValid(%s) = false, want true", r)
		}
	}
	if ReleaseType("super-major").IsValid() {
		t.Error("IsValid(super-major) = true, want false")
	}
}
