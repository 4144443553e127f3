package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vocalhire/campaign-api/internal/middleware"
	"vocalhire/campaign-api/internal/models"
	"vocalhire/campaign-api/internal/repositories"
	"vocalhire/campaign-api/internal/services"
)

type CampaignHandler struct {
	campaignRepo    repositories.CampaignRepository
	campaignService services.CampaignService
}

func NewCampaignHandler(
	campaignRepo repositories.CampaignRepository,
	campaignService services.CampaignService,
) *CampaignHandler {
	return &CampaignHandler{
		campaignRepo:    campaignRepo,
		campaignService: campaignService,
	}
}

// HandleCreate handles POST /api/campaigns
func (h *CampaignHandler) HandleCreate(c *fiber.Ctx) error {
	creatorID, ok := c.Locals(middleware.UserIDKey).(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req models.CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields or invalid candidates list",
		})
	}

	campaign, batchCallResponse, err := h.campaignService.CreateCampaign(c.UserContext(), creatorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":            "Campaign created successfully",
		"campaign":           campaign,
		"elevenLabsResponse": batchCallResponse,
	})
}

// HandleList handles GET /api/campaigns, scoped to the caller.
func (h *CampaignHandler) HandleList(c *fiber.Ctx) error {
	creatorID, ok := c.Locals(middleware.UserIDKey).(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	campaigns, err := h.campaignRepo.FindByCreator(creatorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(campaigns)
}

// HandleGetByID handles GET /api/campaigns/:id. Campaigns owned by other
// users look exactly like missing ones.
func (h *CampaignHandler) HandleGetByID(c *fiber.Ctx) error {
	creatorID, ok := c.Locals(middleware.UserIDKey).(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Campaign not found",
		})
	}

	campaign, err := h.campaignRepo.FindByIDAndCreator(campaignID, creatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(campaign)
}
