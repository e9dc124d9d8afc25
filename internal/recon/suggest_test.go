package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestionTypes(suggestions []Suggestion) []string {
	types := make([]string, len(suggestions))
	for i, s := range suggestions {
		types[i] = s.Type + "/" + s.Title
	}
	return types
}

func TestSuggestAllRulesFireOnEmptyDefinition(t *testing.T) {
	suggestions := Suggest("", StructuralAnalysis{})

	require.Len(t, suggestions, 4)
	assert.Equal(t, "Add timeout controls", suggestions[0].Title)
	assert.Equal(t, "high", suggestions[0].Priority)
	assert.Equal(t, "Add retry logic", suggestions[1].Title)
	assert.Equal(t, "medium", suggestions[1].Priority)
	assert.Equal(t, "Add conditional execution", suggestions[2].Title)
	assert.Equal(t, "low", suggestions[2].Priority)
	assert.Equal(t, "Secure credential handling", suggestions[3].Title)
	assert.Equal(t, "high", suggestions[3].Priority)
}

func TestSuggestRulesAreIndependent(t *testing.T) {
	// Each keyword suppresses exactly its own rule.
	def := "options {\n    timeout(time: 30, unit: 'MINUTES')\n}"
	suggestions := Suggest(def, StructuralAnalysis{})

	types := suggestionTypes(suggestions)
	assert.NotContains(t, types, "reliability/Add timeout controls")
	assert.Contains(t, types, "reliability/Add retry logic")
	assert.Contains(t, types, "efficiency/Add conditional execution")
	assert.Contains(t, types, "security/Secure credential handling")
}

func TestSuggestKeywordsCaseInsensitive(t *testing.T) {
	def := "TIMEOUT(time: 5)\nRETRY(2)\nWHEN { branch 'main' }\nwithCredentials([])"
	suggestions := Suggest(def, StructuralAnalysis{})

	assert.Empty(t, suggestions)
}

func TestSuggestCredentialRuleIsCaseSensitive(t *testing.T) {
	// "withcredentials" in lowercase is not the plugin step.
	suggestions := Suggest("timeout retry when withcredentials", StructuralAnalysis{})

	require.Len(t, suggestions, 1)
	assert.Equal(t, "security", suggestions[0].Type)
}

func TestSuggestLongStagePerformanceRule(t *testing.T) {
	analysis := StructuralAnalysis{
		StageBreakdown: []StageBreakdown{
			{Name: "Checkout", DurationMS: 10000, DurationFormatted: "10.0 seconds", Percentage: 5.0},
			{Name: "Integration Tests", DurationMS: 90000, DurationFormatted: "90.0 seconds", Percentage: 45.0},
			{Name: "Package", DurationMS: 100000, DurationFormatted: "100.0 seconds", Percentage: 50.0},
		},
	}
	def := "timeout retry when withCredentials"

	suggestions := Suggest(def, analysis)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, "performance", s.Type)
	assert.Equal(t, "medium", s.Priority)
	assert.Equal(t, "Optimize Package stage", s.Title, "targets the single longest stage")
	assert.Equal(t, "This stage takes 100.0 seconds (50.0% of total time)", s.Description)
}

func TestSuggestNoPerformanceRuleUnderThreshold(t *testing.T) {
	analysis := StructuralAnalysis{
		StageBreakdown: []StageBreakdown{
			{Name: "Build", DurationMS: 50000, DurationFormatted: "50.0 seconds", Percentage: 100.0},
		},
	}

	suggestions := Suggest("timeout retry when withCredentials", analysis)

	assert.Empty(t, suggestions)
}

func TestSuggestEmptyBreakdownSkipsPerformanceRule(t *testing.T) {
	suggestions := Suggest("timeout retry when withCredentials", StructuralAnalysis{})

	assert.Empty(t, suggestions)
}
