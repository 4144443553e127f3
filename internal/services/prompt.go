package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildInterviewPrompt creates the agent prompt for an interview campaign
// from the job description. Pure templating, always succeeds.
func (pb *PromptBuilder) BuildInterviewPrompt(jobDescription string) string {
	return fmt.Sprintf(`You are a friendly assistant conducting an interview for the following position: %s.
Ask candidate about their experience, technical skills and interest in the role.
Keep the conversation professional and engaging.`, jobDescription)
}

// BuildTranscriptAnalysisPrompt creates the prompt for post-call transcript
// scoring. The model is instructed to answer with a strict JSON object.
func (pb *PromptBuilder) BuildTranscriptAnalysisPrompt(jobDescription, transcript string) string {
	return fmt.Sprintf(`You are an expert HR recruiter and technical interviewer. Analyze the following conversation transcript between an AI interviewer and a candidate for a job role.

Job Description:
%s

Transcript:
%s

Task:
1. Analyze candidate's performance metrics (0-100 score).
2. Identify specific skills/fields mentioned, the self-rated score (out of 10) if mentioned, and years of experience.
3. Provide an overall detailed analysis of the candidate's fit for the role.
4. Provide an overall score (0-100) based on the analysis.

Return the response STRICTLY as a JSON object with the following structure:
{
  "performance_metrics": {
    "field_knowledge": <number percentage>,
    "attitude": <number percentage>,
    "voice_tone": <number percentage>,
    "willingness": <number percentage>
  },
  "field_experience": [
    {
      "field_name": "<string>",
      "score": <number>,
      "year_of_experience": "<string>"
    }
  ],
  "overall_analysis": "<string>",
  "overall_score": <number percentage>
}`, jobDescription, transcript)
}
