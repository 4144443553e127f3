package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"vocalhire/campaign-api/internal/models"
	"vocalhire/campaign-api/internal/repositories"
)

var ErrInvalidInput = errors.New("invalid input")

// CampaignService sequences campaign creation and webhook reconciliation.
// It owns the invariant: one campaign, one workbook artifact, one row per
// candidate, joined by the candidate id.
type CampaignService interface {
	CreateCampaign(ctx context.Context, creatorID uuid.UUID, req *models.CreateCampaignRequest) (*models.Campaign, map[string]interface{}, error)
	ProcessWebhook(ctx context.Context, payload *models.WebhookPayload) (*WebhookOutcome, error)
}

// WebhookOutcome distinguishes acted-on deliveries from acknowledged-and-
// ignored ones.
type WebhookOutcome struct {
	Ignored    bool
	UpdatedURL string
}

type campaignService struct {
	campaignRepo  repositories.CampaignRepository
	workbooks     WorkbookService
	artifacts     ArtifactStorage
	dispatcher    CallDispatcher
	analyzer      TranscriptAnalyzer
	promptBuilder *PromptBuilder
	timezone      string
}

func NewCampaignService(
	campaignRepo repositories.CampaignRepository,
	workbooks WorkbookService,
	artifacts ArtifactStorage,
	dispatcher CallDispatcher,
	analyzer TranscriptAnalyzer,
	timezone string,
) CampaignService {
	return &campaignService{
		campaignRepo:  campaignRepo,
		workbooks:     workbooks,
		artifacts:     artifacts,
		dispatcher:    dispatcher,
		analyzer:      analyzer,
		promptBuilder: NewPromptBuilder(),
		timezone:      timezone,
	}
}

// CreateCampaign implements CampaignService. The external writes (artifact
// upload, batch call) run before the insert; if the insert fails the
// orchestrator compensates best-effort by cancelling the batch call and
// deleting the artifact.
func (s *campaignService) CreateCampaign(ctx context.Context, creatorID uuid.UUID, req *models.CreateCampaignRequest) (*models.Campaign, map[string]interface{}, error) {
	if req.Title == "" || req.Description == "" || req.Candidates == nil {
		return nil, nil, fmt.Errorf("%w: missing required fields or invalid candidates list", ErrInvalidInput)
	}

	scheduledAt, err := s.parseSchedule(req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		return nil, nil, err
	}

	// Fresh ids, assigned once and propagated unchanged to the workbook and
	// the call correlation metadata.
	candidates := make([]models.Candidate, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		candidates = append(candidates, models.Candidate{
			ID:          uuid.New().String(),
			Name:        c.Name,
			PhoneNumber: c.PhoneNumber,
			Email:       c.Email,
			LinkedIn:    c.LinkedIn,
		})
	}

	campaignID := uuid.New()
	generatedPrompt := s.promptBuilder.BuildInterviewPrompt(req.Description)

	log.Printf("📄 Building analysis workbook for campaign %s (%d candidates)\n", campaignID, len(candidates))
	workbook, err := s.workbooks.BuildInitial(candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	fileName := workbookFileName(campaignID.String())
	fileURL, err := s.artifacts.Upload(ctx, workbook, fileName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to upload workbook: %w", err)
	}

	callData := CampaignCallData{
		ID:              campaignID.String(),
		Title:           req.Title,
		GeneratedPrompt: generatedPrompt,
	}
	if scheduledAt != nil {
		unix := scheduledAt.Unix()
		callData.ScheduledTimeUnix = &unix
	}

	log.Printf("📞 Dispatching batch call for campaign %s\n", campaignID)
	batchResp, err := s.dispatcher.CreateBatchCall(ctx, callData, candidates)
	if err != nil {
		s.compensate(ctx, fileName, "")
		return nil, nil, fmt.Errorf("failed to dispatch batch call: %w", err)
	}

	campaign := &models.Campaign{
		ID:              campaignID,
		CreatorID:       creatorID,
		Title:           req.Title,
		Description:     req.Description,
		ScheduledAt:     scheduledAt,
		Status:          models.StatusScheduled,
		AnalysisFileURL: fileURL,
		BatchCallID:     batchResp.ID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.campaignRepo.Create(campaign); err != nil {
		s.compensate(ctx, fileName, batchResp.ID)
		return nil, nil, fmt.Errorf("failed to persist campaign: %w", err)
	}

	log.Printf("✅ Campaign %s created (batch call %s)\n", campaignID, batchResp.ID)
	return campaign, batchResp.Raw, nil
}

// ProcessWebhook implements CampaignService. Payloads it cannot correlate
// are acknowledged and ignored so the platform does not retry them.
func (s *campaignService) ProcessWebhook(ctx context.Context, payload *models.WebhookPayload) (*WebhookOutcome, error) {
	if payload == nil || payload.Data == nil {
		return &WebhookOutcome{Ignored: true}, nil
	}

	data := payload.Data
	candidateID := data.UserID
	campaignIDStr := data.CampaignID()
	if campaignIDStr == "" || candidateID == "" {
		return &WebhookOutcome{Ignored: true}, nil
	}

	campaignID, err := uuid.Parse(campaignIDStr)
	if err != nil {
		return &WebhookOutcome{Ignored: true}, nil
	}

	campaign, err := s.campaignRepo.FindByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.AnalysisFileURL == "" {
		return nil, repositories.ErrCampaignNotFound
	}

	transcript := data.FlattenTranscript()

	log.Printf("🤖 Analyzing transcript for campaign %s, candidate %s\n", campaignID, candidateID)
	analysis := s.analyzer.AnalyzeTranscript(ctx, campaign.Description, transcript)

	// The workbook has no nested-structure support; metrics and experience
	// collapse to one JSON text cell each.
	metricsJSON, _ := json.Marshal(analysis.PerformanceMetrics)
	experienceJSON, _ := json.Marshal(analysis.FieldExperience)
	fields := map[string]interface{}{
		"performance_metrics": string(metricsJSON),
		"field_experience":    string(experienceJSON),
		"overall_analysis":    analysis.OverallAnalysis,
		"overall_score":       analysis.OverallScore,
		"transcript":          transcript,
		"conversation_id":     data.ConversationRef(),
	}

	current, err := s.artifacts.Download(ctx, campaign.AnalysisFileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download workbook: %w", err)
	}

	updated, found, err := s.workbooks.ApplyUpdate(current, candidateID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update workbook: %w", err)
	}
	if !found {
		log.Printf("⚠️  Candidate %s has no row in campaign %s workbook, skipping re-upload\n", candidateID, campaignID)
		return &WebhookOutcome{UpdatedURL: campaign.AnalysisFileURL}, nil
	}

	updatedURL, err := s.artifacts.Upload(ctx, updated, workbookFileName(campaignID.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to re-upload workbook: %w", err)
	}

	if err := s.campaignRepo.UpdateAnalysisFileURL(campaignID, updatedURL); err != nil {
		return nil, err
	}

	log.Printf("✅ Webhook processed for campaign %s, candidate %s\n", campaignID, candidateID)
	return &WebhookOutcome{UpdatedURL: updatedURL}, nil
}

// parseSchedule combines the optional date and time strings in the configured
// timezone. An invalid combination is rejected rather than silently dropped;
// supplying only one of the two means unscheduled.
func (s *campaignService) parseSchedule(date, timeStr string) (*time.Time, error) {
	if date == "" || timeStr == "" {
		return nil, nil
	}

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", s.timezone, err)
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid scheduled_date/scheduled_time", ErrInvalidInput)
	}

	return &t, nil
}

// compensate undoes the external writes after a failed creation step.
// Best-effort: failures are logged, the original error still surfaces.
func (s *campaignService) compensate(ctx context.Context, fileName, batchID string) {
	if batchID != "" {
		if err := s.dispatcher.CancelBatchCall(ctx, batchID); err != nil {
			log.Printf("⚠️  Failed to cancel batch call %s during rollback: %v\n", batchID, err)
		}
	}
	if err := s.artifacts.Delete(ctx, fileName); err != nil {
		log.Printf("⚠️  Failed to delete workbook %s during rollback: %v\n", fileName, err)
	}
}

func workbookFileName(campaignID string) string {
	return fmt.Sprintf("campaign_%s_analysis.xlsx", campaignID)
}
