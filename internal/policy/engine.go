// Package policy evaluates declarative release policies over classified
// changes and aggregates the overall verdict.
package policy

import (
	"fmt"

	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"

	"github.com/apivet/apivet/model"
)

// Compiled is a policy spec validated once and ready for evaluation.
type Compiled struct {
	spec model.PolicySpec
}

var _ model.Policy = (*Compiled)(nil)

// Compile validates a policy spec. Rules referencing unknown release types
// are rejected up front so evaluation never has to care.
func Compile(spec model.PolicySpec) (*Compiled, error) {
	if spec.Name == "" {
		return nil, erro.New("policy requires a name")
	}
	for i, rule := range spec.Rules {
		if !rule.Release.IsValid() {
			return nil, erro.New("policy %s rule %d (%s): invalid release type %q",
				spec.Name, i, rule.Name, rule.Release)
		}
	}
	if spec.Default != "" && !spec.Default.IsValid() {
		return nil, erro.New("policy %s: invalid default release type %q", spec.Name, spec.Default)
	}
	return &Compiled{spec: spec}, nil
}

func mustCompile(spec model.PolicySpec) *Compiled {
	p, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Compiled) Name() string { return p.spec.Name }

func (p *Compiled) Default() model.ReleaseType { return p.spec.Default }

// Classify evaluates the rules in declaration order; the first match wins.
// A nil rule result means the default applied.
func (p *Compiled) Classify(change *model.APIChange) (model.ReleaseType, *model.Rule) {
	for i := range p.spec.Rules {
		rule := &p.spec.Rules[i]
		if ruleMatches(rule, change) {
			return rule.Release, rule
		}
	}
	if p.spec.Default == "" {
		return model.ReleaseNone, nil
	}
	return p.spec.Default, nil
}

// ruleMatches checks the conjunction of the rule's specified matchers;
// unspecified matchers are wildcards.
func ruleMatches(rule *model.Rule, change *model.APIChange) bool {
	d := change.Descriptor
	if rule.Target != nil && d.Target != *rule.Target {
		return false
	}
	if rule.Action != nil && d.Action != *rule.Action {
		return false
	}
	if rule.Aspect != nil && d.Aspect != *rule.Aspect {
		return false
	}
	if rule.Impact != nil && d.Impact != *rule.Impact {
		return false
	}
	if rule.HasTag != nil && !d.Tags.Has(*rule.HasTag) {
		return false
	}
	if rule.NotTag != nil && d.Tags.Has(*rule.NotTag) {
		return false
	}
	if rule.NodeKind != nil && change.NodeKind != *rule.NodeKind {
		return false
	}
	if rule.Nested != nil && change.Context.IsNested != *rule.Nested {
		return false
	}
	return true
}

// Outcome is the result of classifying a change list under one policy.
type Outcome struct {
	// All lists one classification per change, flattened depth first in
	// the differ's deterministic order.
	All      []model.Classification
	Overall  model.ReleaseType
	Warnings []string

	byChange map[*model.APIChange]model.Classification
}

// For returns the classification of a specific change.
func (o *Outcome) For(change *model.APIChange) (model.Classification, bool) {
	c, ok := o.byChange[change]
	return c, ok
}

// Effective returns the strongest release type in the change's subtree,
// which is what bucketing uses for containers whose own modification is
// benign but whose members changed.
func (o *Outcome) Effective(change *model.APIChange) model.ReleaseType {
	result := model.ReleaseNone
	for _, c := range change.Flatten() {
		if cl, ok := o.byChange[c]; ok && cl.ReleaseType.Severity() > result.Severity() {
			result = cl.ReleaseType
		}
	}
	return result
}

// ClassifyAll runs a policy over every change, nested ones included, and
// aggregates the overall verdict as the maximum severity. A misconfigured
// policy without a default falls through to none with a warning; a policy
// that panics on a change is treated as non-matching.
func ClassifyAll(changes []*model.APIChange, p model.Policy) *Outcome {
	log := logze.With("module", "policy", "policy", p.Name())

	outcome := &Outcome{
		Overall:  model.ReleaseNone,
		byChange: make(map[*model.APIChange]model.Classification),
	}

	warnedNoDefault := false
	for _, top := range changes {
		for _, change := range top.Flatten() {
			release, rule, panicked := safeClassify(p, change)
			if panicked != nil {
				outcome.Warnings = append(outcome.Warnings,
					fmt.Sprintf("policy %s failed on %s: %v; treated as unclassified", p.Name(), change.Path, panicked))
				release, rule = model.ReleaseNone, nil
			}
			if rule == nil && p.Default() == "" && !warnedNoDefault {
				outcome.Warnings = append(outcome.Warnings,
					fmt.Sprintf("policy %s has no default release type; unmatched changes fall through to none", p.Name()))
				warnedNoDefault = true
			}

			cl := model.Classification{Change: change, ReleaseType: release, MatchedRule: rule}
			outcome.All = append(outcome.All, cl)
			outcome.byChange[change] = cl
			if release.Severity() > outcome.Overall.Severity() {
				outcome.Overall = release
			}
		}
	}

	log.Debug("changes classified",
		"total", len(outcome.All),
		"overall", outcome.Overall,
	)
	return outcome
}

// safeClassify isolates third-party policy implementations: a panicking
// policy must not take the whole run down.
func safeClassify(p model.Policy, change *model.APIChange) (release model.ReleaseType, rule *model.Rule, panicked error) {
	defer func() {
		if r := recover(); r != nil {
			panicked = erro.New("policy panic: %v", r)
		}
	}()
	release, rule = p.Classify(change)
	if !release.IsValid() {
		release = model.ReleaseNone
	}
	return release, rule, nil
}
