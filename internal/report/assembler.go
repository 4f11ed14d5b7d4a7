// Package report buckets classified changes by release type and renders
// the result as text, markdown or schema-stable JSON.
package report

import (
	"github.com/apivet/apivet/internal/policy"
	"github.com/apivet/apivet/model"
)

// Assemble buckets the top-level changes by their effective release type
// (the strongest verdict in each change's subtree) and computes the stats.
func Assemble(changes []*model.APIChange, outcome *policy.Outcome, analysisErrors []string) *model.Report {
	report := &model.Report{
		ReleaseType:    outcome.Overall,
		Warnings:       append([]string(nil), outcome.Warnings...),
		AnalysisErrors: append([]string(nil), analysisErrors...),
	}
	report.Changes = model.BucketsJSON{
		Forbidden: []model.ChangeJSON{},
		Major:     []model.ChangeJSON{},
		Minor:     []model.ChangeJSON{},
		Patch:     []model.ChangeJSON{},
		None:      []model.ChangeJSON{},
	}

	for _, change := range changes {
		effective := outcome.Effective(change)
		cj := toChangeJSON(change, outcome)

		report.Stats.Total++
		switch effective {
		case model.ReleaseForbidden:
			report.Stats.Forbidden++
			report.Changes.Forbidden = append(report.Changes.Forbidden, cj)
		case model.ReleaseMajor:
			report.Stats.Major++
			report.Changes.Major = append(report.Changes.Major, cj)
		case model.ReleaseMinor:
			report.Stats.Minor++
			report.Changes.Minor = append(report.Changes.Minor, cj)
		case model.ReleasePatch:
			report.Stats.Patch++
			report.Changes.Patch = append(report.Changes.Patch, cj)
		default:
			report.Stats.None++
			report.Changes.None = append(report.Changes.None, cj)
		}
	}

	return report
}

func toChangeJSON(change *model.APIChange, outcome *policy.Outcome) model.ChangeJSON {
	release := model.ReleaseNone
	if cl, ok := outcome.For(change); ok {
		release = cl.ReleaseType
	}

	cj := model.ChangeJSON{
		Path:         change.Path,
		ChangeKind:   change.Descriptor.Key(),
		Target:       change.Descriptor.Target,
		Action:       change.Descriptor.Action,
		Aspect:       change.Descriptor.Aspect,
		Impact:       change.Descriptor.Impact,
		NodeKind:     change.NodeKind,
		ReleaseType:  release,
		Explanation:  change.Explanation,
		OldLocation:  toRangeJSON(change.OldLocation),
		NewLocation:  toRangeJSON(change.NewLocation),
		OldSignature: change.Context.OldType,
		NewSignature: change.Context.NewType,
	}
	for _, nested := range change.NestedChanges {
		cj.Nested = append(cj.Nested, toChangeJSON(nested, outcome))
	}
	return cj
}

func toRangeJSON(r *model.SourceRange) *model.RangeJSON {
	if r == nil {
		return nil
	}
	return &model.RangeJSON{
		Start: model.PositionJSON{Line: r.Start.Line, Column: r.Start.Column},
		End:   model.PositionJSON{Line: r.End.Line, Column: r.End.Column},
	}
}
