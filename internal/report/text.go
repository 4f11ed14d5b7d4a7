package report

import (
	"fmt"
	"strings"

	"github.com/apivet/apivet/model"
)

// TextRenderer is the terminal-friendly output.
type TextRenderer struct{}

var _ model.Renderer = TextRenderer{}

func (TextRenderer) Name() string { return "text" }

func (TextRenderer) Render(report *model.Report) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "release type: %s\n", report.ReleaseType)
	fmt.Fprintf(&sb, "changes: %d total (%d forbidden, %d major, %d minor, %d patch, %d none)\n",
		report.Stats.Total, report.Stats.Forbidden, report.Stats.Major,
		report.Stats.Minor, report.Stats.Patch, report.Stats.None)

	for _, bucket := range textBuckets(report) {
		if len(bucket.changes) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n", bucket.name)
		for _, change := range bucket.changes {
			writeTextChange(&sb, change, 1)
		}
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("\nwarnings:\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
	}
	if len(report.AnalysisErrors) > 0 {
		sb.WriteString("\nanalysis errors:\n")
		for _, e := range report.AnalysisErrors {
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}

	return []byte(sb.String()), nil
}

func writeTextChange(sb *strings.Builder, change model.ChangeJSON, depth int) {
	indent := strings.Repeat("  ", depth)
	location := ""
	if loc := firstLocation(change); loc != nil {
		location = fmt.Sprintf(" @%d:%d", loc.Start.Line, loc.Start.Column)
	}
	fmt.Fprintf(sb, "%s[%s] %s (%s)%s: %s\n",
		indent, change.ReleaseType, change.Path, change.ChangeKind, location, change.Explanation)
	for _, nested := range change.Nested {
		writeTextChange(sb, nested, depth+1)
	}
}

func firstLocation(change model.ChangeJSON) *model.RangeJSON {
	if change.NewLocation != nil {
		return change.NewLocation
	}
	return change.OldLocation
}

type namedBucket struct {
	name    string
	changes []model.ChangeJSON
}

func textBuckets(report *model.Report) []namedBucket {
	return []namedBucket{
		{string(model.ReleaseForbidden), report.Changes.Forbidden},
		{string(model.ReleaseMajor), report.Changes.Major},
		{string(model.ReleaseMinor), report.Changes.Minor},
		{string(model.ReleasePatch), report.Changes.Patch},
		{string(model.ReleaseNone), report.Changes.None},
	}
}
