package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocalhire/campaign-api/internal/models"
	"vocalhire/campaign-api/internal/repositories"
)

type fakeCampaignRepo struct {
	created   []*models.Campaign
	createErr error
	campaigns map[uuid.UUID]*models.Campaign
	urls      map[uuid.UUID]string
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{
		campaigns: map[uuid.UUID]*models.Campaign{},
		urls:      map[uuid.UUID]string{},
	}
}

func (f *fakeCampaignRepo) Create(campaign *models.Campaign) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, campaign)
	f.campaigns[campaign.ID] = campaign
	return nil
}

func (f *fakeCampaignRepo) FindByID(id uuid.UUID) (*models.Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok {
		return nil, repositories.ErrCampaignNotFound
	}
	return campaign, nil
}

func (f *fakeCampaignRepo) FindByIDAndCreator(id, creatorID uuid.UUID) (*models.Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok || campaign.CreatorID != creatorID {
		return nil, repositories.ErrCampaignNotFound
	}
	return campaign, nil
}

func (f *fakeCampaignRepo) FindByCreator(creatorID uuid.UUID) ([]models.Campaign, error) {
	var out []models.Campaign
	for _, c := range f.campaigns {
		if c.CreatorID == creatorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCampaignRepo) UpdateAnalysisFileURL(id uuid.UUID, url string) error {
	campaign, ok := f.campaigns[id]
	if !ok {
		return repositories.ErrCampaignNotFound
	}
	campaign.AnalysisFileURL = url
	f.urls[id] = url
	return nil
}

type fakeArtifacts struct {
	byURL       map[string][]byte
	uploadCount int
	deleted     []string
	uploadErr   error
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{byURL: map[string][]byte{}}
}

func (f *fakeArtifacts) Upload(_ context.Context, content []byte, fileName string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploadCount++
	url := fmt.Sprintf("https://cdn.test/%s?v=%d", fileName, f.uploadCount)
	f.byURL[url] = content
	return url, nil
}

func (f *fakeArtifacts) Download(_ context.Context, url string) ([]byte, error) {
	content, ok := f.byURL[url]
	if !ok {
		return nil, errors.New("artifact not found")
	}
	return content, nil
}

func (f *fakeArtifacts) Delete(_ context.Context, fileName string) error {
	f.deleted = append(f.deleted, fileName)
	return nil
}

type fakeDispatcher struct {
	lastData       CampaignCallData
	lastRecipients []models.Candidate
	cancelled      []string
	createErr      error
}

func (f *fakeDispatcher) CreateBatchCall(_ context.Context, campaign CampaignCallData, recipients []models.Candidate) (*BatchCallResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastData = campaign
	f.lastRecipients = recipients
	return &BatchCallResponse{ID: "batch-1", Raw: map[string]interface{}{"id": "batch-1"}}, nil
}

func (f *fakeDispatcher) CancelBatchCall(_ context.Context, batchID string) error {
	f.cancelled = append(f.cancelled, batchID)
	return nil
}

type fakeAnalyzer struct {
	called bool
	result *models.AnalysisResult
}

func (f *fakeAnalyzer) AnalyzeTranscript(_ context.Context, _, _ string) *models.AnalysisResult {
	f.called = true
	if f.result != nil {
		return f.result
	}
	return fallbackAnalysis("not configured")
}

type orchestratorFixture struct {
	repo       *fakeCampaignRepo
	artifacts  *fakeArtifacts
	dispatcher *fakeDispatcher
	analyzer   *fakeAnalyzer
	svc        CampaignService
}

func newOrchestratorFixture() *orchestratorFixture {
	repo := newFakeCampaignRepo()
	artifacts := newFakeArtifacts()
	dispatcher := &fakeDispatcher{}
	analyzer := &fakeAnalyzer{}

	return &orchestratorFixture{
		repo:       repo,
		artifacts:  artifacts,
		dispatcher: dispatcher,
		analyzer:   analyzer,
		svc:        NewCampaignService(repo, NewWorkbookService(), artifacts, dispatcher, analyzer, "UTC"),
	}
}

func validRequest() *models.CreateCampaignRequest {
	return &models.CreateCampaignRequest{
		Title:       "Backend hiring wave",
		Description: "Senior Go engineer",
		Candidates: []models.CandidateInput{
			{Name: "Bo", PhoneNumber: "+1555"},
			{Name: "Ann", PhoneNumber: "+1556", Email: "ann@x.com"},
		},
	}
}

func TestCreateCampaignHappyPath(t *testing.T) {
	fx := newOrchestratorFixture()
	creator := uuid.New()

	campaign, raw, err := fx.svc.CreateCampaign(context.Background(), creator, validRequest())
	require.NoError(t, err)

	assert.Equal(t, creator, campaign.CreatorID)
	assert.Equal(t, models.StatusScheduled, campaign.Status)
	assert.Nil(t, campaign.ScheduledAt)
	assert.Equal(t, "batch-1", campaign.BatchCallID)
	assert.NotEmpty(t, campaign.AnalysisFileURL)
	assert.Equal(t, "batch-1", raw["id"])
	require.Len(t, fx.repo.created, 1)

	// The same fresh ids must reach the workbook and the call correlation
	// metadata.
	require.Len(t, fx.dispatcher.lastRecipients, 2)
	workbook, err := fx.artifacts.Download(context.Background(), campaign.AnalysisFileURL)
	require.NoError(t, err)
	for _, rec := range fx.dispatcher.lastRecipients {
		require.NotEmpty(t, rec.ID)
		_, found, err := NewWorkbookService().ApplyUpdate(workbook, rec.ID, map[string]interface{}{"overall_score": 1.0})
		require.NoError(t, err)
		assert.True(t, found, "recipient %s has no workbook row", rec.ID)
	}

	assert.Equal(t, campaign.ID.String(), fx.dispatcher.lastData.ID)
	assert.Nil(t, fx.dispatcher.lastData.ScheduledTimeUnix)
}

func TestCreateCampaignMissingFields(t *testing.T) {
	fx := newOrchestratorFixture()

	cases := []*models.CreateCampaignRequest{
		{Description: "desc", Candidates: []models.CandidateInput{{Name: "Bo"}}},
		{Title: "t", Candidates: []models.CandidateInput{{Name: "Bo"}}},
		{Title: "t", Description: "desc"},
	}

	for _, req := range cases {
		_, _, err := fx.svc.CreateCampaign(context.Background(), uuid.New(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	assert.Zero(t, fx.artifacts.uploadCount, "nothing should be created on invalid input")
	assert.Empty(t, fx.repo.created)
}

func TestCreateCampaignRejectsInvalidSchedule(t *testing.T) {
	fx := newOrchestratorFixture()

	req := validRequest()
	req.ScheduledDate = "not-a-date"
	req.ScheduledTime = "25:99"

	_, _, err := fx.svc.CreateCampaign(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, fx.artifacts.uploadCount)
}

func TestCreateCampaignWithSchedule(t *testing.T) {
	fx := newOrchestratorFixture()

	req := validRequest()
	req.ScheduledDate = "2026-09-01"
	req.ScheduledTime = "10:30"

	campaign, _, err := fx.svc.CreateCampaign(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	require.NotNil(t, campaign.ScheduledAt)
	want := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	assert.True(t, campaign.ScheduledAt.Equal(want))
	require.NotNil(t, fx.dispatcher.lastData.ScheduledTimeUnix)
	assert.Equal(t, want.Unix(), *fx.dispatcher.lastData.ScheduledTimeUnix)
}

func TestCreateCampaignOnlyDateMeansUnscheduled(t *testing.T) {
	fx := newOrchestratorFixture()

	req := validRequest()
	req.ScheduledDate = "2026-09-01"

	campaign, _, err := fx.svc.CreateCampaign(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Nil(t, campaign.ScheduledAt)
}

func TestCreateCampaignCompensatesOnPersistFailure(t *testing.T) {
	fx := newOrchestratorFixture()
	fx.repo.createErr = errors.New("insert failed")

	_, _, err := fx.svc.CreateCampaign(context.Background(), uuid.New(), validRequest())
	require.Error(t, err)

	assert.Equal(t, []string{"batch-1"}, fx.dispatcher.cancelled)
	require.Len(t, fx.artifacts.deleted, 1)
	assert.Contains(t, fx.artifacts.deleted[0], "_analysis.xlsx")
}

func TestCreateCampaignDeletesArtifactOnDispatchFailure(t *testing.T) {
	fx := newOrchestratorFixture()
	fx.dispatcher.createErr = errors.New("provider down")

	_, _, err := fx.svc.CreateCampaign(context.Background(), uuid.New(), validRequest())
	require.Error(t, err)

	assert.Empty(t, fx.dispatcher.cancelled, "no batch call to cancel")
	assert.Len(t, fx.artifacts.deleted, 1)
	assert.Empty(t, fx.repo.created)
}

func webhookPayload(campaignID, candidateID string) *models.WebhookPayload {
	return &models.WebhookPayload{
		Data: &models.WebhookData{
			Transcript: []byte(`[{"role":"agent","message":"Hi"},{"role":"user","message":"Hello"}]`),
			UserID:     candidateID,
			CallID:     "call-1",
			InitiationData: &models.InitiationData{
				CustomLLMExtraBody: map[string]any{"campaign_id": campaignID},
			},
		},
	}
}

func TestProcessWebhookIgnoresUncorrelatedPayloads(t *testing.T) {
	fx := newOrchestratorFixture()

	cases := []*models.WebhookPayload{
		nil,
		{},
		{Data: &models.WebhookData{UserID: "cand-1"}},
		{Data: &models.WebhookData{
			InitiationData: &models.InitiationData{CustomLLMExtraBody: map[string]any{"campaign_id": "camp"}},
		}},
		webhookPayload("not-a-uuid", "cand-1"),
	}

	for _, payload := range cases {
		outcome, err := fx.svc.ProcessWebhook(context.Background(), payload)
		require.NoError(t, err)
		assert.True(t, outcome.Ignored)
	}

	assert.False(t, fx.analyzer.called, "ignored payloads must not reach the analyzer")
	assert.Zero(t, fx.artifacts.uploadCount, "ignored payloads must not touch storage")
}

func TestProcessWebhookCampaignNotFound(t *testing.T) {
	fx := newOrchestratorFixture()

	_, err := fx.svc.ProcessWebhook(context.Background(), webhookPayload(uuid.New().String(), "cand-1"))
	assert.ErrorIs(t, err, repositories.ErrCampaignNotFound)
}

func TestProcessWebhookHappyPath(t *testing.T) {
	fx := newOrchestratorFixture()
	fx.analyzer.result = &models.AnalysisResult{
		PerformanceMetrics: models.PerformanceMetrics{FieldKnowledge: 80, Attitude: 90, VoiceTone: 70, Willingness: 85},
		FieldExperience:    []models.FieldExperience{{FieldName: "Go", Score: 8, YearOfExperience: "5 years"}},
		OverallAnalysis:    "Strong fit.",
		OverallScore:       82,
	}

	campaign, _, err := fx.svc.CreateCampaign(context.Background(), uuid.New(), validRequest())
	require.NoError(t, err)
	candidateID := fx.dispatcher.lastRecipients[0].ID
	oldURL := campaign.AnalysisFileURL

	outcome, err := fx.svc.ProcessWebhook(context.Background(), webhookPayload(campaign.ID.String(), candidateID))
	require.NoError(t, err)

	assert.False(t, outcome.Ignored)
	assert.NotEqual(t, oldURL, outcome.UpdatedURL)
	assert.Equal(t, outcome.UpdatedURL, fx.repo.urls[campaign.ID])
	assert.True(t, fx.analyzer.called)

	// The updated workbook row carries the flattened transcript and the
	// serialized analysis.
	updated, err := fx.artifacts.Download(context.Background(), outcome.UpdatedURL)
	require.NoError(t, err)
	_, found, err := NewWorkbookService().ApplyUpdate(updated, candidateID, map[string]interface{}{"overall_score": 82.0})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestProcessWebhookSkipsUploadWhenRowMissing(t *testing.T) {
	fx := newOrchestratorFixture()

	campaign, _, err := fx.svc.CreateCampaign(context.Background(), uuid.New(), validRequest())
	require.NoError(t, err)
	uploadsAfterCreate := fx.artifacts.uploadCount

	outcome, err := fx.svc.ProcessWebhook(context.Background(), webhookPayload(campaign.ID.String(), "unknown-candidate"))
	require.NoError(t, err)

	assert.False(t, outcome.Ignored)
	assert.Equal(t, campaign.AnalysisFileURL, outcome.UpdatedURL)
	assert.Equal(t, uploadsAfterCreate, fx.artifacts.uploadCount, "no-match must not re-upload")
}
