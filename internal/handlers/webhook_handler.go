package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"vocalhire/campaign-api/internal/models"
	"vocalhire/campaign-api/internal/repositories"
	"vocalhire/campaign-api/internal/services"
)

type WebhookHandler struct {
	campaignService services.CampaignService
	webhookSecret   string
}

func NewWebhookHandler(campaignService services.CampaignService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		campaignService: campaignService,
		webhookSecret:   webhookSecret,
	}
}

// HandleElevenLabsWebhook handles POST /api/webhooks/elevenlabs. Payloads
// that cannot be parsed or correlated are acknowledged with 200 so the
// platform does not retry them.
func (h *WebhookHandler) HandleElevenLabsWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if h.webhookSecret != "" {
		signature := c.Get("ElevenLabs-Signature")
		if !services.VerifyWebhookSignature(h.webhookSecret, signature, body) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid webhook signature",
			})
		}
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	outcome, err := h.campaignService.ProcessWebhook(c.UserContext(), &payload)
	if err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		}

		log.Printf("❌ Webhook error: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Webhook processing failed",
		})
	}

	if outcome.Ignored {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	return c.JSON(fiber.Map{
		"message":    "Webhook processed successfully",
		"updatedUrl": outcome.UpdatedURL,
	})
}
