// Package apivet analyzes two versions of a typed module's public API
// surface and emits a semantic-versioning verdict together with a located,
// multi-dimensional description of every change.
package apivet

import (
	"context"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"

	"github.com/apivet/apivet/internal/analyzer"
	"github.com/apivet/apivet/internal/differ"
	"github.com/apivet/apivet/internal/policy"
	"github.com/apivet/apivet/internal/report"
	"github.com/apivet/apivet/model"
)

// Built-in policy names.
const (
	PolicySemverDefault = policy.SemverDefault
	PolicyReadOnly      = policy.ReadOnly
	PolicyWriteOnly     = policy.WriteOnly
)

// Registry is the capability registry plugins register policies,
// validators and renderers into, keyed by "pluginId:capabilityId".
type Registry = policy.Registry

// NewRegistry returns a registry preloaded with the built-in capabilities.
func NewRegistry() *Registry { return policy.NewRegistry() }

// ParseOptions are the front-end knobs.
type ParseOptions struct {
	// OldFilename/NewFilename label the two sources and select the
	// grammar; empty values default to old.d.ts and new.d.ts.
	OldFilename string
	NewFilename string
	// ExtractDocMetadata enables @deprecated/@default/release-tag
	// scanning.
	ExtractDocMetadata bool
}

// DiffOptions tune matching, rename detection and recursion.
type DiffOptions struct {
	RenameThreshold           float64
	IncludeNestedChanges      bool
	ResolveTypeRelationships  bool
	MaxNestingDepth           int
	DetectParameterReordering bool
}

// Options configure one Analyze call.
type Options struct {
	// Policy names a built-in or registered policy; defaults to
	// semver-default.
	Policy string
	Parse  ParseOptions
	Diff   DiffOptions
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Policy: PolicySemverDefault,
		Parse: ParseOptions{
			ExtractDocMetadata: true,
		},
		Diff: DiffOptions{
			RenameThreshold:           0.8,
			IncludeNestedChanges:      true,
			ResolveTypeRelationships:  true,
			MaxNestingDepth:           10,
			DetectParameterReordering: true,
		},
	}
}

// Analyze diffs two declaration sources and classifies every change under
// the selected policy. It is pure: the same inputs always produce the same
// result, parse problems are reported inside the result, and only a
// misconfiguration (an unknown policy) is an error.
func Analyze(ctx context.Context, oldSource, newSource string, opts Options) (*model.Result, error) {
	return AnalyzeWithRegistry(ctx, oldSource, newSource, opts, policy.NewRegistry())
}

// AnalyzeWithRegistry is Analyze with a caller-owned capability registry,
// which is how plugin policies participate.
func AnalyzeWithRegistry(ctx context.Context, oldSource, newSource string, opts Options, registry *policy.Registry) (*model.Result, error) {
	policyName := lang.Check(opts.Policy, PolicySemverDefault)
	pol, ok := registry.Policy(policyName)
	if !ok {
		return nil, errm.New("unknown policy: %s", policyName)
	}

	a := analyzer.New()
	oldAnalysis := a.Analyze(ctx, oldSource, analyzer.Options{
		Filename:           lang.Check(opts.Parse.OldFilename, "old.d.ts"),
		ExtractDocMetadata: opts.Parse.ExtractDocMetadata,
	})
	newAnalysis := a.Analyze(ctx, newSource, analyzer.Options{
		Filename:           lang.Check(opts.Parse.NewFilename, "new.d.ts"),
		ExtractDocMetadata: opts.Parse.ExtractDocMetadata,
	})

	d := differ.New(differ.Options{
		RenameThreshold:           opts.Diff.RenameThreshold,
		IncludeNestedChanges:      opts.Diff.IncludeNestedChanges,
		ResolveTypeRelationships:  opts.Diff.ResolveTypeRelationships,
		MaxNestingDepth:           opts.Diff.MaxNestingDepth,
		DetectParameterReordering: opts.Diff.DetectParameterReordering,
	})
	changes := d.DiffModules(oldAnalysis, newAnalysis)

	outcome := policy.ClassifyAll(changes, pol)
	for _, v := range registry.Validators() {
		for _, analysis := range []*model.ModuleAnalysis{oldAnalysis, newAnalysis} {
			validation := v.Validate(analysis)
			outcome.Warnings = append(outcome.Warnings, validation.Warnings...)
			outcome.Warnings = append(outcome.Warnings, validation.Errors...)
		}
	}

	analysisErrors := append(append([]string(nil), oldAnalysis.Errors...), newAnalysis.Errors...)
	rep := report.Assemble(changes, outcome, analysisErrors)

	return &model.Result{
		Changes:         changes,
		Classifications: outcome.All,
		ReleaseType:     outcome.Overall,
		Report:          rep,
	}, nil
}

// Render serializes a report in the given format: text, markdown or json.
func Render(rep *model.Report, format string) ([]byte, error) {
	var renderer model.Renderer
	switch format {
	case "", "text":
		renderer = report.TextRenderer{}
	case "markdown", "md":
		renderer = report.MarkdownRenderer{}
	case "json":
		renderer = report.JSONRenderer{}
	default:
		return nil, errm.New("unknown report format: %s", format)
	}
	return renderer.Render(rep)
}
