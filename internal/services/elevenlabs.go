package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"vocalhire/campaign-api/internal/models"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io"

// CampaignCallData carries what the dispatcher needs to build one batch
// call: the campaign id rides along as correlation metadata the platform
// echoes back through the webhook.
type CampaignCallData struct {
	ID                string
	Title             string
	GeneratedPrompt   string
	ScheduledTimeUnix *int64
}

type BatchCallResponse struct {
	ID  string
	Raw map[string]interface{}
}

type CallDispatcher interface {
	CreateBatchCall(ctx context.Context, campaign CampaignCallData, recipients []models.Candidate) (*BatchCallResponse, error)
	CancelBatchCall(ctx context.Context, batchID string) error
}

type elevenLabsDispatcher struct {
	client        *resty.Client
	agentID       string
	phoneNumberID string
}

func NewElevenLabsDispatcher(apiKey, agentID, phoneNumberID string, timeout time.Duration) CallDispatcher {
	client := resty.New().
		SetBaseURL(elevenLabsBaseURL).
		SetHeader("xi-api-key", apiKey).
		SetTimeout(timeout)

	return &elevenLabsDispatcher{
		client:        client,
		agentID:       agentID,
		phoneNumberID: phoneNumberID,
	}
}

type batchCallRequest struct {
	CallName           string           `json:"call_name"`
	AgentID            string           `json:"agent_id"`
	AgentPhoneNumberID string           `json:"agent_phone_number_id"`
	ScheduledTimeUnix  *int64           `json:"scheduled_time_unix,omitempty"`
	Recipients         []batchRecipient `json:"recipients"`
}

type batchRecipient struct {
	ID             string         `json:"id"`
	PhoneNumber    string         `json:"phone_number"`
	InitiationData initiationData `json:"conversation_initiation_client_data"`
}

type initiationData struct {
	ConversationConfigOverride configOverride         `json:"conversation_config_override"`
	CustomLLMExtraBody         map[string]interface{} `json:"custom_llm_extra_body"`
	UserID                     string                 `json:"user_id"`
	SourceInfo                 sourceInfo             `json:"source_info"`
	DynamicVariables           map[string]string      `json:"dynamic_variables"`
}

type configOverride struct {
	Agent agentOverride `json:"agent"`
}

type agentOverride struct {
	FirstMessage string      `json:"first_message"`
	Language     string      `json:"language"`
	Prompt       agentPrompt `json:"prompt"`
}

type agentPrompt struct {
	Prompt string `json:"prompt"`
	LLM    string `json:"llm"`
}

type sourceInfo struct {
	Source  string `json:"source"`
	Version string `json:"version"`
}

// CreateBatchCall implements CallDispatcher. One recipient per candidate;
// the candidate id doubles as the recipient id and the user_id the platform
// echoes back, and the campaign id travels in custom_llm_extra_body.
func (d *elevenLabsDispatcher) CreateBatchCall(ctx context.Context, campaign CampaignCallData, recipients []models.Candidate) (*BatchCallResponse, error) {
	req := batchCallRequest{
		CallName:           campaign.Title,
		AgentID:            d.agentID,
		AgentPhoneNumberID: d.phoneNumberID,
		ScheduledTimeUnix:  campaign.ScheduledTimeUnix,
		Recipients:         make([]batchRecipient, 0, len(recipients)),
	}

	for _, rec := range recipients {
		req.Recipients = append(req.Recipients, batchRecipient{
			ID:          rec.ID,
			PhoneNumber: rec.PhoneNumber,
			InitiationData: initiationData{
				ConversationConfigOverride: configOverride{
					Agent: agentOverride{
						FirstMessage: fmt.Sprintf("Hello %s, thank you for taking the time to speak with us today!", rec.Name),
						Language:     "en",
						Prompt: agentPrompt{
							Prompt: campaign.GeneratedPrompt,
							LLM:    "gpt-4o-mini",
						},
					},
				},
				CustomLLMExtraBody: map[string]interface{}{
					"campaign_id": campaign.ID,
					"priority":    "high",
				},
				UserID: rec.ID,
				SourceInfo: sourceInfo{
					Source:  "twilio",
					Version: "1.4.2",
				},
				DynamicVariables: map[string]string{
					"customer_name": rec.Name,
				},
			},
		})
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/convai/batch-calling/submit")
	if err != nil {
		return nil, fmt.Errorf("failed to submit batch call: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("batch call submission failed: %s: %s", resp.Status(), resp.String())
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode batch call response: %w", err)
	}

	id, _ := raw["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("batch call response has no id")
	}

	return &BatchCallResponse{ID: id, Raw: raw}, nil
}

// CancelBatchCall implements CallDispatcher. Used as the compensating action
// when campaign persistence fails after dispatch.
func (d *elevenLabsDispatcher) CancelBatchCall(ctx context.Context, batchID string) error {
	resp, err := d.client.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/v1/convai/batch-calling/%s/cancel", batchID))
	if err != nil {
		return fmt.Errorf("failed to cancel batch call: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("batch call cancellation failed: %s", resp.Status())
	}

	return nil
}

// VerifyWebhookSignature checks the ElevenLabs-Signature header
// ("t=<unix>,v0=<hex hmac>") against an HMAC-SHA256 of "<t>.<body>" keyed by
// the shared webhook secret.
func VerifyWebhookSignature(secret, header string, body []byte) bool {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		switch {
		case strings.HasPrefix(part, "t="):
			timestamp = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v0="):
			signature = strings.TrimPrefix(part, "v0=")
		}
	}
	if timestamp == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
