package policy

import (
	"fmt"

	"github.com/apivet/apivet/model"
)

// AnalysisHealthValidator is the built-in validator: it checks an analysis
// for the problems that make diff results unreliable and feeds the warning
// channel of the report.
type AnalysisHealthValidator struct{}

var _ model.Validator = AnalysisHealthValidator{}

func (AnalysisHealthValidator) Name() string { return "analysis-health" }

func (AnalysisHealthValidator) Validate(analysis *model.ModuleAnalysis) model.ValidationResult {
	result := model.ValidationResult{Valid: true}
	if analysis == nil {
		return model.ValidationResult{Errors: []string{"analysis is nil"}}
	}

	if analysis.Exports.Len() == 0 {
		result.Warnings = append(result.Warnings, "module has no exports")
	}
	for _, err := range analysis.Errors {
		result.Warnings = append(result.Warnings, fmt.Sprintf("analysis error: %s", err))
	}

	seen := make(map[string]bool)
	analysis.Exports.Range(func(_ string, node *model.AnalyzableNode) bool {
		checkPaths(node, seen, &result)
		return true
	})

	return result
}

func checkPaths(node *model.AnalyzableNode, seen map[string]bool, result *model.ValidationResult) {
	if seen[node.Path] {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate node path %s", node.Path))
	}
	seen[node.Path] = true

	node.Children().Range(func(_ string, child *model.AnalyzableNode) bool {
		checkPaths(child, seen, result)
		return true
	})
}
