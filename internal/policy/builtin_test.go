package policy

import (
	"testing"

	"github.com/apivet/apivet/model"
)

func classifyUnder(t *testing.T, policyName string, c *model.APIChange) model.ReleaseType {
	t.Helper()
	registry := NewRegistry()
	p, ok := registry.Policy(policyName)
	if !ok {
		t.Fatalf("policy %s not registered", policyName)
	}
	release, _ := p.Classify(c)
	return release
}

func TestSemverDefaultImpactLaws(t *testing.T) {
	tests := []struct {
		name     string
		change   *model.APIChange
		expected model.ReleaseType
	}{
		{
			"export removed",
			change(model.NewRemoval(model.TargetExport), "X", model.KindFunction),
			model.ReleaseMajor,
		},
		{
			"required parameter added",
			change(model.NewAddition(model.TargetParameter, model.TagNowRequired, model.TagIsNestedChange), "f.p", model.KindParameter),
			model.ReleaseMajor,
		},
		{
			"optional parameter added",
			change(model.NewAddition(model.TargetParameter, model.TagNowOptional, model.TagIsNestedChange), "f.p", model.KindParameter),
			model.ReleaseMinor,
		},
		{
			"property type narrowing",
			change(model.NewModification(model.TargetProperty, model.AspectType, model.ImpactNarrowing), "C.x", model.KindProperty),
			model.ReleaseMajor,
		},
		{
			"property type widening",
			change(model.NewModification(model.TargetProperty, model.AspectType, model.ImpactWidening), "C.x", model.KindProperty),
			model.ReleaseMinor,
		},
		{
			"return type widening",
			change(model.NewModification(model.TargetExport, model.AspectType, model.ImpactWidening), "f", model.KindFunction),
			model.ReleaseMinor,
		},
		{
			"deprecation added",
			change(model.NewModification(model.TargetExport, model.AspectDeprecation, model.ImpactWidening), "f", model.KindFunction),
			model.ReleasePatch,
		},
		{
			"deprecation removed",
			change(model.NewModification(model.TargetExport, model.AspectDeprecation, model.ImpactNarrowing), "f", model.KindFunction),
			model.ReleaseMinor,
		},
		{
			"parameter reordered",
			change(model.NewReorder(model.TargetParameter), "f", model.KindFunction),
			model.ReleaseMajor,
		},
		{
			"rename",
			change(model.NewRename(model.TargetExport), "X", model.KindFunction),
			model.ReleaseMajor,
		},
		{
			"export added",
			change(model.NewAddition(model.TargetExport), "X", model.KindFunction),
			model.ReleaseMinor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyUnder(t, SemverDefault, tt.change); got != tt.expected {
				t.Errorf("semver-default(%s) = %s, want %s", tt.change.Descriptor.Key(), got, tt.expected)
			}
		})
	}
}

func TestUnionWideningDisagreesAcrossPolicies(t *testing.T) {
	aliasWidening := change(
		model.NewModification(model.TargetExport, model.AspectType, model.ImpactWidening),
		"Status", model.KindTypeAlias,
	)

	if got := classifyUnder(t, SemverDefault, aliasWidening); got != model.ReleaseMajor {
		t.Errorf("semver-default = %s, want major (conservative union widening)", got)
	}
	if got := classifyUnder(t, ReadOnly, aliasWidening); got != model.ReleaseMinor {
		t.Errorf("read-only = %s, want minor", got)
	}
	if got := classifyUnder(t, WriteOnly, aliasWidening); got != model.ReleaseMinor {
		t.Errorf("write-only = %s, want minor", got)
	}
}

func TestReadOnlyVsWriteOnlyDirections(t *testing.T) {
	becameOptional := change(
		model.NewModification(model.TargetProperty, model.AspectOptionality, model.ImpactWidening,
			model.TagWasRequired, model.TagNowOptional),
		"C.x", model.KindProperty,
	)
	readonlyAdded := change(
		model.NewModification(model.TargetProperty, model.AspectReadonly, model.ImpactNarrowing),
		"C.x", model.KindProperty,
	)

	// A reader must now handle absence; a writer may simply omit.
	if got := classifyUnder(t, ReadOnly, becameOptional); got != model.ReleaseMajor {
		t.Errorf("read-only optionality widening = %s, want major", got)
	}
	if got := classifyUnder(t, WriteOnly, becameOptional); got != model.ReleaseMinor {
		t.Errorf("write-only optionality widening = %s, want minor", got)
	}

	// Readers never assign; writers break on readonly.
	if got := classifyUnder(t, ReadOnly, readonlyAdded); got != model.ReleasePatch {
		t.Errorf("read-only readonly added = %s, want patch", got)
	}
	if got := classifyUnder(t, WriteOnly, readonlyAdded); got != model.ReleaseMajor {
		t.Errorf("write-only readonly added = %s, want major", got)
	}
}

func TestRegistryCapabilities(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{SemverDefault, ReadOnly, WriteOnly} {
		if _, ok := registry.Policy(name); !ok {
			t.Errorf("built-in policy %s not resolvable by bare name", name)
		}
		if _, ok := registry.Policy("core:" + name); !ok {
			t.Errorf("built-in policy %s not resolvable by qualified key", name)
		}
	}

	if _, ok := registry.Policy("nonexistent"); ok {
		t.Error("unknown policy resolved")
	}

	custom, err := Compile(model.PolicySpec{Name: "strict", Default: model.ReleaseForbidden})
	if err != nil {
		t.Fatal(err)
	}
	if err := registry.RegisterPolicy("myplugin", "strict", custom); err != nil {
		t.Fatal(err)
	}
	if _, ok := registry.Policy("myplugin:strict"); !ok {
		t.Error("registered plugin policy not resolvable")
	}
	if _, ok := registry.Policy("strict"); !ok {
		t.Error("plugin policy not resolvable by bare name")
	}
	if err := registry.RegisterPolicy("myplugin", "strict", custom); err == nil {
		t.Error("duplicate registration accepted")
	}

	if len(registry.Validators()) == 0 {
		t.Error("built-in validator missing")
	}
}
