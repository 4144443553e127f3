package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"vocalhire/campaign-api/internal/models"
)

// TranscriptAnalyzer scores an interview transcript against a job
// description. It never returns an error: any upstream or parse failure
// degrades to a zeroed result carrying the message in OverallAnalysis, so
// the webhook pipeline always completes.
type TranscriptAnalyzer interface {
	AnalyzeTranscript(ctx context.Context, jobDescription, transcript string) *models.AnalysisResult
}

type geminiAnalyzer struct {
	client        *genai.Client
	modelName     string
	promptBuilder *PromptBuilder
}

func NewGeminiAnalyzer(apiKey string) (TranscriptAnalyzer, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAnalyzer{
		client:        client,
		modelName:     "gemini-2.5-flash",
		promptBuilder: NewPromptBuilder(),
	}, nil
}

// AnalyzeTranscript implements TranscriptAnalyzer.
func (g *geminiAnalyzer) AnalyzeTranscript(ctx context.Context, jobDescription, transcript string) *models.AnalysisResult {
	prompt := g.promptBuilder.BuildTranscriptAnalysisPrompt(jobDescription, transcript)

	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		log.Printf("❌ Gemini analysis error: %v\n", err)
		return fallbackAnalysis(err.Error())
	}

	if resp == nil || resp.Text() == "" {
		log.Println("❌ Gemini returned an empty analysis response")
		return fallbackAnalysis("empty response from model")
	}

	result, err := parseAnalysisResponse(resp.Text())
	if err != nil {
		log.Printf("❌ Failed to parse analysis response: %v\n", err)
		return fallbackAnalysis(err.Error())
	}

	return result
}

func parseAnalysisResponse(response string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis JSON: %w", err)
	}

	return &result, nil
}

func fallbackAnalysis(errMsg string) *models.AnalysisResult {
	return &models.AnalysisResult{
		PerformanceMetrics: models.PerformanceMetrics{},
		FieldExperience:    []models.FieldExperience{},
		OverallAnalysis:    "Error during analysis: " + errMsg,
		OverallScore:       0,
	}
}

// extractJSON tries to extract JSON from text that might contain markdown or
// other formatting around the object itself.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
