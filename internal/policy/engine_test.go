package policy

import (
	"testing"

	"github.com/apivet/apivet/model"
)

func change(descriptor model.ChangeDescriptor, path string, kind model.NodeKind) *model.APIChange {
	return &model.APIChange{Descriptor: descriptor, Path: path, NodeKind: kind}
}

func TestCompileRejectsInvalidSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec model.PolicySpec
	}{
		{"missing name", model.PolicySpec{Default: model.ReleaseNone}},
		{"invalid rule release", model.PolicySpec{
			Name:  "p",
			Rules: []model.Rule{{Name: "r", Release: "huge"}},
		}},
		{"invalid default", model.PolicySpec{Name: "p", Default: "gigantic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.spec); err == nil {
				t.Error("Compile() accepted an invalid spec")
			}
		})
	}
}

func TestFirstMatchWins(t *testing.T) {
	removed := model.ActionRemoved
	spec := model.PolicySpec{
		Name:    "ordered",
		Default: model.ReleaseNone,
		Rules: []model.Rule{
			{Name: "first", Action: &removed, Release: model.ReleaseForbidden},
			{Name: "second", Action: &removed, Release: model.ReleasePatch},
		},
	}
	p, err := Compile(spec)
	if err != nil {
		t.Fatal(err)
	}

	release, rule := p.Classify(change(model.NewRemoval(model.TargetExport), "X", model.KindFunction))
	if release != model.ReleaseForbidden {
		t.Errorf("release = %s, want forbidden (first match)", release)
	}
	if rule == nil || rule.Name != "first" {
		t.Errorf("matched rule = %+v, want first", rule)
	}
}

func TestUnmatchedFallsToDefault(t *testing.T) {
	removed := model.ActionRemoved
	spec := model.PolicySpec{
		Name:    "narrow",
		Default: model.ReleasePatch,
		Rules:   []model.Rule{{Name: "removals", Action: &removed, Release: model.ReleaseMajor}},
	}
	p, err := Compile(spec)
	if err != nil {
		t.Fatal(err)
	}

	release, rule := p.Classify(change(model.NewAddition(model.TargetExport), "X", model.KindFunction))
	if release != model.ReleasePatch || rule != nil {
		t.Errorf("got (%s, %v), want (patch, nil)", release, rule)
	}
}

func TestRuleMatchers(t *testing.T) {
	nested := true
	hasTag := model.TagNowOptional
	notTag := model.TagNowRequired
	kindFn := model.KindFunction

	descriptor := model.NewAddition(model.TargetParameter, model.TagNowOptional)
	c := change(descriptor, "f.p", kindFn)
	c.Context.IsNested = true

	tests := []struct {
		name    string
		rule    model.Rule
		matches bool
	}{
		{"empty rule is wildcard", model.Rule{Release: model.ReleaseNone}, true},
		{"has tag", model.Rule{HasTag: &hasTag, Release: model.ReleaseNone}, true},
		{"not tag", model.Rule{NotTag: &notTag, Release: model.ReleaseNone}, true},
		{"not tag present", model.Rule{NotTag: &hasTag, Release: model.ReleaseNone}, false},
		{"nested", model.Rule{Nested: &nested, Release: model.ReleaseNone}, true},
		{"node kind", model.Rule{NodeKind: &kindFn, Release: model.ReleaseNone}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ruleMatches(&tt.rule, c); got != tt.matches {
				t.Errorf("ruleMatches() = %v, want %v", got, tt.matches)
			}
		})
	}
}

func TestClassifyAllAggregation(t *testing.T) {
	p, err := Compile(semverDefaultSpec)
	if err != nil {
		t.Fatal(err)
	}

	changes := []*model.APIChange{
		change(model.NewAddition(model.TargetExport), "A", model.KindFunction),
		change(model.NewRemoval(model.TargetExport), "B", model.KindFunction),
		change(model.NewModification(model.TargetExport, model.AspectDeprecation, model.ImpactWidening), "C", model.KindFunction),
	}

	outcome := ClassifyAll(changes, p)
	if outcome.Overall != model.ReleaseMajor {
		t.Errorf("Overall = %s, want major", outcome.Overall)
	}
	if len(outcome.All) != 3 {
		t.Errorf("All = %d classifications, want 3", len(outcome.All))
	}

	expected := map[string]model.ReleaseType{
		"A": model.ReleaseMinor,
		"B": model.ReleaseMajor,
		"C": model.ReleasePatch,
	}
	for _, cl := range outcome.All {
		if want := expected[cl.Change.Path]; cl.ReleaseType != want {
			t.Errorf("%s classified %s, want %s", cl.Change.Path, cl.ReleaseType, want)
		}
	}
}

func TestClassifyAllNestedChanges(t *testing.T) {
	p, err := Compile(semverDefaultSpec)
	if err != nil {
		t.Fatal(err)
	}

	nested := change(model.NewModification(model.TargetProperty, model.AspectType, model.ImpactUnrelated, model.TagIsNestedChange), "C.timeout", model.KindProperty)
	nested.Context.IsNested = true
	outer := change(model.NewModification(model.TargetExport, model.AspectType, model.ImpactEquivalent, model.TagHasNestedChanges), "C", model.KindInterface)
	outer.NestedChanges = []*model.APIChange{nested}

	outcome := ClassifyAll([]*model.APIChange{outer}, p)
	if outcome.Overall != model.ReleaseMajor {
		t.Errorf("Overall = %s, want major from the nested change", outcome.Overall)
	}
	if got := outcome.Effective(outer); got != model.ReleaseMajor {
		t.Errorf("Effective(outer) = %s, want major", got)
	}

	outerClass, ok := outcome.For(outer)
	if !ok || outerClass.ReleaseType != model.ReleaseNone {
		t.Errorf("outer classified %v, want none (equivalent modification)", outerClass.ReleaseType)
	}
}

type panickingPolicy struct{}

func (panickingPolicy) Name() string               { return "panicking" }
func (panickingPolicy) Default() model.ReleaseType { return model.ReleaseNone }
func (panickingPolicy) Classify(*model.APIChange) (model.ReleaseType, *model.Rule) {
	panic("broken third-party rule")
}

func TestClassifyAllIsolatesPanickingPolicy(t *testing.T) {
	changes := []*model.APIChange{change(model.NewRemoval(model.TargetExport), "X", model.KindFunction)}

	outcome := ClassifyAll(changes, panickingPolicy{})
	if outcome.Overall != model.ReleaseNone {
		t.Errorf("Overall = %s, want none", outcome.Overall)
	}
	if len(outcome.Warnings) == 0 {
		t.Error("expected a warning about the panicking policy")
	}
}

type defaultlessPolicy struct{}

func (defaultlessPolicy) Name() string               { return "defaultless" }
func (defaultlessPolicy) Default() model.ReleaseType { return "" }
func (defaultlessPolicy) Classify(*model.APIChange) (model.ReleaseType, *model.Rule) {
	return "", nil
}

func TestClassifyAllWarnsOnMissingDefault(t *testing.T) {
	changes := []*model.APIChange{
		change(model.NewRemoval(model.TargetExport), "X", model.KindFunction),
		change(model.NewRemoval(model.TargetExport), "Y", model.KindFunction),
	}

	outcome := ClassifyAll(changes, defaultlessPolicy{})
	if outcome.Overall != model.ReleaseNone {
		t.Errorf("Overall = %s, want none", outcome.Overall)
	}
	if len(outcome.Warnings) != 1 {
		t.Errorf("warnings = %d, want exactly 1 (deduplicated)", len(outcome.Warnings))
	}
}
