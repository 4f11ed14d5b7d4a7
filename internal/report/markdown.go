package report

import (
	"fmt"
	"strings"

	"github.com/apivet/apivet/model"
)

// MarkdownRenderer formats a report for MR and PR comments.
type MarkdownRenderer struct{}

var _ model.Renderer = MarkdownRenderer{}

func (MarkdownRenderer) Name() string { return "markdown" }

func (MarkdownRenderer) Render(report *model.Report) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## API compatibility report\n\n")
	fmt.Fprintf(&sb, "**Release type: `%s`** %s\n\n", report.ReleaseType, releaseEmoji(report.ReleaseType))
	fmt.Fprintf(&sb, "| Verdict | Changes |\n|---|---|\n")
	fmt.Fprintf(&sb, "| forbidden | %d |\n", report.Stats.Forbidden)
	fmt.Fprintf(&sb, "| major | %d |\n", report.Stats.Major)
	fmt.Fprintf(&sb, "| minor | %d |\n", report.Stats.Minor)
	fmt.Fprintf(&sb, "| patch | %d |\n", report.Stats.Patch)
	fmt.Fprintf(&sb, "| none | %d |\n", report.Stats.None)

	for _, bucket := range textBuckets(report) {
		if len(bucket.changes) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n### %s\n\n", strings.ToUpper(bucket.name[:1])+bucket.name[1:])
		for _, change := range bucket.changes {
			writeMarkdownChange(&sb, change, 0)
		}
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("\n<details><summary>Warnings</summary>\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		sb.WriteString("\n</details>\n")
	}

	return []byte(sb.String()), nil
}

func writeMarkdownChange(sb *strings.Builder, change model.ChangeJSON, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s- `%s` **%s** — %s\n", indent, change.Path, change.ChangeKind, change.Explanation)
	if change.OldSignature != "" && change.NewSignature != "" && change.OldSignature != change.NewSignature {
		fmt.Fprintf(sb, "%s  `%s` → `%s`\n", indent, change.OldSignature, change.NewSignature)
	}
	for _, nested := range change.Nested {
		writeMarkdownChange(sb, nested, depth+1)
	}
}

func releaseEmoji(r model.ReleaseType) string {
	switch r {
	case model.ReleaseForbidden:
		return "⛔"
	case model.ReleaseMajor:
		return "🚨"
	case model.ReleaseMinor:
		return "✨"
	case model.ReleasePatch:
		return "🩹"
	}
	return "✅"
}
