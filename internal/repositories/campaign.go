package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vocalhire/campaign-api/internal/models"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type CampaignRepository interface {
	Create(campaign *models.Campaign) error
	FindByID(id uuid.UUID) (*models.Campaign, error)
	FindByIDAndCreator(id, creatorID uuid.UUID) (*models.Campaign, error)
	FindByCreator(creatorID uuid.UUID) ([]models.Campaign, error)
	UpdateAnalysisFileURL(id uuid.UUID, url string) error
}

type campaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

// Create implements CampaignRepository.
func (r *campaignRepository) Create(campaign *models.Campaign) error {
	if err := r.db.Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// FindByID implements CampaignRepository. Used by the webhook path, which is
// deliberately unscoped by creator.
func (r *campaignRepository) FindByID(id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.Where("id = ?", id).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}

		return nil, fmt.Errorf("failed to find campaign: %w", err)
	}

	return &campaign, nil
}

// FindByIDAndCreator implements CampaignRepository. An existing campaign
// owned by someone else is indistinguishable from a missing one.
func (r *campaignRepository) FindByIDAndCreator(id, creatorID uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.
		Where("id = ? AND creator_id = ?", id, creatorID).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}

		return nil, fmt.Errorf("failed to find campaign: %w", err)
	}

	return &campaign, nil
}

// FindByCreator implements CampaignRepository.
func (r *campaignRepository) FindByCreator(creatorID uuid.UUID) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	return campaigns, nil
}

// UpdateAnalysisFileURL implements CampaignRepository.
func (r *campaignRepository) UpdateAnalysisFileURL(id uuid.UUID, url string) error {
	result := r.db.Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"analysis_file_url": url,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update analysis file url: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}

	return nil
}
