package models

import (
	"encoding/json"
	"strings"
)

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

type UserInfo struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type CandidateInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email,omitempty"`
	LinkedIn    string `json:"linkedin,omitempty"`
}

// Candidate is a CandidateInput with the identifier assigned at campaign
// creation. The id is the only join key between the campaign record, the
// workbook row, and the call correlation metadata.
type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email,omitempty"`
	LinkedIn    string `json:"linkedin,omitempty"`
}

type CreateCampaignRequest struct {
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Candidates    []CandidateInput `json:"candidates"`
	ScheduledDate string           `json:"scheduled_date,omitempty"`
	ScheduledTime string           `json:"scheduled_time,omitempty"`
}

type PerformanceMetrics struct {
	FieldKnowledge float64 `json:"field_knowledge"`
	Attitude       float64 `json:"attitude"`
	VoiceTone      float64 `json:"voice_tone"`
	Willingness    float64 `json:"willingness"`
}

type FieldExperience struct {
	FieldName        string  `json:"field_name"`
	Score            float64 `json:"score"`
	YearOfExperience string  `json:"year_of_experience"`
}

type AnalysisResult struct {
	PerformanceMetrics PerformanceMetrics `json:"performance_metrics"`
	FieldExperience    []FieldExperience  `json:"field_experience"`
	OverallAnalysis    string             `json:"overall_analysis"`
	OverallScore       float64            `json:"overall_score"`
}

// WebhookPayload is the post-call notification from ElevenLabs. Only the
// fields this system correlates on are modelled; everything else is ignored.
type WebhookPayload struct {
	Data *WebhookData `json:"data"`
}

type WebhookData struct {
	Transcript     json.RawMessage `json:"transcript"`
	UserID         string          `json:"user_id"`
	CallID         string          `json:"call_id"`
	ConversationID string          `json:"conversation_id"`
	InitiationData *InitiationData `json:"conversation_initiation_client_data"`
}

type InitiationData struct {
	CustomLLMExtraBody map[string]any `json:"custom_llm_extra_body"`
}

type transcriptEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// FlattenTranscript normalizes the transcript field to one "role: message"
// line per turn. A plain string passes through verbatim; anything else
// yields "".
func (d *WebhookData) FlattenTranscript() string {
	if len(d.Transcript) == 0 {
		return ""
	}

	var entries []transcriptEntry
	if err := json.Unmarshal(d.Transcript, &entries); err == nil {
		lines := make([]string, 0, len(entries))
		for _, entry := range entries {
			lines = append(lines, entry.Role+": "+entry.Message)
		}
		return strings.Join(lines, "\n")
	}

	var plain string
	if err := json.Unmarshal(d.Transcript, &plain); err == nil {
		return plain
	}

	return ""
}

// CampaignID digs the correlation campaign id out of the initiation
// metadata embedded in the outbound batch call.
func (d *WebhookData) CampaignID() string {
	if d.InitiationData == nil {
		return ""
	}
	id, _ := d.InitiationData.CustomLLMExtraBody["campaign_id"].(string)
	return id
}

// ConversationRef prefers the call id and falls back to the conversation id.
func (d *WebhookData) ConversationRef() string {
	if d.CallID != "" {
		return d.CallID
	}
	return d.ConversationID
}
