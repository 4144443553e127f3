package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"overall_score\": 80}\n```"
	assert.JSONEq(t, `{"overall_score": 80}`, extractJSON(raw))
}

func TestExtractJSONFindsObjectInProse(t *testing.T) {
	raw := "Here is the analysis you asked for: {\"overall_score\": 55} hope it helps"
	assert.Equal(t, `{"overall_score": 55}`, extractJSON(raw))
}

func TestParseAnalysisResponse(t *testing.T) {
	response := `{
		"performance_metrics": {"field_knowledge": 80, "attitude": 90, "voice_tone": 70, "willingness": 85},
		"field_experience": [{"field_name": "Go", "score": 8, "year_of_experience": "5 years"}],
		"overall_analysis": "Solid candidate.",
		"overall_score": 82
	}`

	result, err := parseAnalysisResponse(response)
	require.NoError(t, err)

	assert.Equal(t, 80.0, result.PerformanceMetrics.FieldKnowledge)
	assert.Equal(t, 85.0, result.PerformanceMetrics.Willingness)
	require.Len(t, result.FieldExperience, 1)
	assert.Equal(t, "Go", result.FieldExperience[0].FieldName)
	assert.Equal(t, "5 years", result.FieldExperience[0].YearOfExperience)
	assert.Equal(t, 82.0, result.OverallScore)
}

func TestParseAnalysisResponseRejectsNonJSON(t *testing.T) {
	_, err := parseAnalysisResponse("sorry, I cannot analyze this transcript")
	assert.Error(t, err)
}

func TestFallbackAnalysisCarriesError(t *testing.T) {
	result := fallbackAnalysis("upstream timed out")

	assert.Equal(t, "Error during analysis: upstream timed out", result.OverallAnalysis)
	assert.Zero(t, result.OverallScore)
	assert.Zero(t, result.PerformanceMetrics.FieldKnowledge)
	assert.Empty(t, result.FieldExperience)
}
