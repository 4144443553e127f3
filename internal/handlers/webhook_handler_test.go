package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocalhire/campaign-api/internal/models"
	"vocalhire/campaign-api/internal/repositories"
	"vocalhire/campaign-api/internal/services"
)

type fakeWebhookService struct {
	outcome  *services.WebhookOutcome
	err      error
	payloads []*models.WebhookPayload
}

func (f *fakeWebhookService) CreateCampaign(_ context.Context, _ uuid.UUID, _ *models.CreateCampaignRequest) (*models.Campaign, map[string]interface{}, error) {
	return nil, nil, errors.New("not used")
}

func (f *fakeWebhookService) ProcessWebhook(_ context.Context, payload *models.WebhookPayload) (*services.WebhookOutcome, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &services.WebhookOutcome{Ignored: true}, nil
}

func newWebhookApp(svc services.CampaignService, secret string) *fiber.App {
	handler := NewWebhookHandler(svc, secret)

	app := fiber.New()
	app.Post("/api/webhooks/elevenlabs", handler.HandleElevenLabsWebhook)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/elevenlabs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestWebhookIgnoresPayloadWithoutData(t *testing.T) {
	svc := &fakeWebhookService{}
	app := newWebhookApp(svc, "")

	resp := postWebhook(t, app, []byte(`{"type":"post_call_transcription"}`), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ignored", decodeBody(t, resp)["status"])
}

func TestWebhookIgnoresUnparseableBody(t *testing.T) {
	svc := &fakeWebhookService{}
	app := newWebhookApp(svc, "")

	resp := postWebhook(t, app, []byte(`not json at all`), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ignored", decodeBody(t, resp)["status"])
	assert.Empty(t, svc.payloads, "unparseable bodies never reach the orchestrator")
}

func TestWebhookSuccessReturnsUpdatedURL(t *testing.T) {
	svc := &fakeWebhookService{outcome: &services.WebhookOutcome{UpdatedURL: "https://cdn.test/updated.xlsx"}}
	app := newWebhookApp(svc, "")

	resp := postWebhook(t, app, []byte(`{"data":{"user_id":"cand-1"}}`), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Webhook processed successfully", body["message"])
	assert.Equal(t, "https://cdn.test/updated.xlsx", body["updatedUrl"])
}

func TestWebhookMapsNotFoundTo404(t *testing.T) {
	svc := &fakeWebhookService{err: repositories.ErrCampaignNotFound}
	app := newWebhookApp(svc, "")

	resp := postWebhook(t, app, []byte(`{"data":{"user_id":"cand-1"}}`), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebhookMapsFailuresTo500(t *testing.T) {
	svc := &fakeWebhookService{err: errors.New("storage down")}
	app := newWebhookApp(svc, "")

	resp := postWebhook(t, app, []byte(`{"data":{"user_id":"cand-1"}}`), nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Webhook processing failed", decodeBody(t, resp)["error"])
}

func signWebhook(secret string, body []byte) string {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v0=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookSignatureEnforcement(t *testing.T) {
	svc := &fakeWebhookService{}
	app := newWebhookApp(svc, "shared-secret")
	body := []byte(`{"data":{"user_id":"cand-1"}}`)

	// No signature.
	resp := postWebhook(t, app, body, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong signature.
	resp = postWebhook(t, app, body, map[string]string{
		"ElevenLabs-Signature": "t=123,v0=deadbeef",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid signature passes through.
	resp = postWebhook(t, app, body, map[string]string{
		"ElevenLabs-Signature": signWebhook("shared-secret", body),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, svc.payloads, 1)
}

func TestWebhookOpenWhenNoSecretConfigured(t *testing.T) {
	svc := &fakeWebhookService{}
	app := newWebhookApp(svc, "")

	resp := postWebhook(t, app, []byte(`{"data":{"user_id":"cand-1"}}`), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, svc.payloads, 1)
}
