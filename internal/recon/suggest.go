package recon

import (
	"fmt"
	"strings"
)

// Suggest evaluates a reconstructed definition and its structural analysis
// against a fixed rule set. Rules are independent: each fires or not on its
// own signal, and the output order follows the rule order here.
func Suggest(definition string, analysis StructuralAnalysis) []Suggestion {
	suggestions := []Suggestion{}

	if !containsLine(definition, "timeout") {
		suggestions = append(suggestions, Suggestion{
			Type:        "reliability",
			Priority:    "high",
			Title:       "Add timeout controls",
			Description: "Add timeouts to prevent hanging builds",
			Example:     "timeout(time: 30, unit: 'MINUTES') { /* stage content */ }",
		})
	}

	if !containsLine(definition, "retry") {
		suggestions = append(suggestions, Suggestion{
			Type:        "reliability",
			Priority:    "medium",
			Title:       "Add retry logic",
			Description: "Add retry mechanisms for transient failures",
			Example:     "retry(3) { /* critical operations */ }",
		})
	}

	if !containsLine(definition, "when") {
		suggestions = append(suggestions, Suggestion{
			Type:        "efficiency",
			Priority:    "low",
			Title:       "Add conditional execution",
			Description: "Use 'when' conditions to skip unnecessary stages",
			Example:     "when { not { params.dry_run } }",
		})
	}

	if !strings.Contains(definition, "withCredentials") {
		suggestions = append(suggestions, Suggestion{
			Type:        "security",
			Priority:    "high",
			Title:       "Secure credential handling",
			Description: "Use withCredentials for sensitive data",
			Example:     "withCredentials([string(credentialsId: 'my-secret', variable: 'SECRET')]) { /* use $SECRET */ }",
		})
	}

	if longest, ok := longestStage(analysis.StageBreakdown); ok && longest.DurationMS > 60000 {
		suggestions = append(suggestions, Suggestion{
			Type:     "performance",
			Priority: "medium",
			Title:    fmt.Sprintf("Optimize %s stage", longest.Name),
			Description: fmt.Sprintf("This stage takes %s (%.1f%% of total time)",
				longest.DurationFormatted, longest.Percentage),
			Example: "Consider breaking into smaller steps or using parallel execution",
		})
	}

	return suggestions
}

// containsLine reports whether any line of the definition contains the
// keyword, case-insensitively.
func containsLine(definition, keyword string) bool {
	for _, line := range strings.Split(definition, "\n") {
		if strings.Contains(strings.ToLower(line), keyword) {
			return true
		}
	}
	return false
}

// longestStage returns the stage with the largest duration. Ties keep the
// earliest stage so the result is stable.
func longestStage(breakdown []StageBreakdown) (StageBreakdown, bool) {
	if len(breakdown) == 0 {
		return StageBreakdown{}, false
	}
	longest := breakdown[0]
	for _, s := range breakdown[1:] {
		if s.DurationMS > longest.DurationMS {
			longest = s
		}
	}
	return longest, true
}
