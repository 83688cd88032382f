package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-ops-api/internal/dto"
	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

const (
	defaultPipelinePageSize = 50
	maxPipelinePageSize     = 200
)

type applicantRepository interface {
	Create(ctx context.Context, applicant *models.Applicant) error
	GetByID(ctx context.Context, id string) (*models.Applicant, error)
	List(ctx context.Context, filter models.ApplicantFilter) ([]models.ApplicantRecord, error)
	UpdateStatus(ctx context.Context, change repository.ApplicantStatusChange) (*models.Applicant, error)
}

type reservationManager interface {
	Release(ctx context.Context, applicantID string) (*models.ReleaseResult, error)
	Reservation(ctx context.Context, applicantID string) (*models.Reservation, error)
}

// ApplicantService handles applicant signup, the pipeline view and staff status changes.
type ApplicantService struct {
	repo       applicantRepository
	checklists checklistRepository
	bookings   reservationManager
	exporter   *ExportService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewApplicantService constructs the applicant service.
func NewApplicantService(repo applicantRepository, checklists checklistRepository, bookings reservationManager, exporter *ExportService, validate *validator.Validate, logger *zap.Logger) *ApplicantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(ExportConfig{}, logger, nil, nil)
	}
	return &ApplicantService{repo: repo, checklists: checklists, bookings: bookings, exporter: exporter, validator: validate, logger: logger}
}

// Create registers an applicant in the waiting state.
func (s *ApplicantService) Create(ctx context.Context, req dto.CreateApplicantRequest) (*models.Applicant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid applicant payload")
	}
	applicant := &models.Applicant{
		Name:        strings.TrimSpace(req.Name),
		Phone:       strings.TrimSpace(req.Phone),
		ParentPhone: strings.TrimSpace(req.ParentPhone),
		Campus:      req.Campus,
		Gender:      req.Gender,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse(models.SlotDateLayout, req.BirthDate)
		if err != nil {
			return nil, appErrors.Validation(err, "birthDate must be YYYY-MM-DD")
		}
		applicant.BirthDate = &birthDate
	}
	if err := s.repo.Create(ctx, applicant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create applicant")
	}
	s.logger.Info("applicant registered", zap.String("applicant_id", applicant.ID), zap.String("campus", applicant.Campus))
	return applicant, nil
}

// Get returns the applicant with derived stage and active reservation.
func (s *ApplicantService) Get(ctx context.Context, id string) (*models.PipelineEntry, error) {
	applicant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapApplicantError(err, "failed to load applicant")
	}
	items, err := s.checklists.ListByApplicant(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist")
	}
	reservation, err := s.bookings.Reservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PipelineEntry{
		Applicant:   *applicant,
		Stage:       models.DeriveStage(applicant.Status, models.SnapshotOf(items)),
		Reservation: reservation,
	}, nil
}

// Pipeline lists active applicants with their derived stage. Stage filtering applies the
// stage derivation to every candidate row before paginating.
func (s *ApplicantService) Pipeline(ctx context.Context, query dto.PipelineQuery) ([]models.PipelineEntry, *models.Pagination, error) {
	entries, err := s.pipelineEntries(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = defaultPipelinePageSize
	}
	if size > maxPipelinePageSize {
		size = maxPipelinePageSize
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: len(entries)}

	start := (page - 1) * size
	if start >= len(entries) {
		return []models.PipelineEntry{}, pagination, nil
	}
	end := start + size
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], pagination, nil
}

// Export renders the filtered pipeline as CSV or PDF.
func (s *ApplicantService) Export(ctx context.Context, query dto.PipelineQuery, format string) (*ExportResult, error) {
	exportFormat := ExportFormat(strings.ToLower(strings.TrimSpace(format)))
	if exportFormat == "" {
		exportFormat = ExportFormatCSV
	}
	if exportFormat != ExportFormatCSV && exportFormat != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	entries, err := s.pipelineEntries(ctx, query)
	if err != nil {
		return nil, err
	}
	result, err := s.exporter.RenderPipeline(entries, exportFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return result, nil
}

// TransitionStatus applies an explicit staff status change. Rejection archives the applicant
// and releases any held slot.
func (s *ApplicantService) TransitionStatus(ctx context.Context, id string, req dto.TransitionStatusRequest, actor string) (*models.PipelineEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid status payload")
	}
	to := models.ApplicantStatus(strings.TrimSpace(req.Status))
	if !to.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}
	reason := strings.TrimSpace(req.Reason)
	if to == models.ApplicantStatusRejected && reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required when rejecting")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapApplicantError(err, "failed to load applicant")
	}
	if current.Status == models.ApplicantStatusRejected && to == models.ApplicantStatusRejected {
		// Re-running a rejection only finishes the release a failed attempt left behind.
		if err := s.releaseRejected(ctx, id); err != nil {
			return nil, err
		}
		return s.Get(ctx, id)
	}
	tr, ok := models.StaffApplicantTransition(current.Status, to)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot move applicant from %s to %s", current.Status, to))
	}

	change := repository.ApplicantStatusChange{
		ID:      id,
		Allowed: []models.ApplicantStatus{tr.From},
		To:      tr.To,
	}
	if tr.Event == models.ApplicantEventReject {
		change.RejectReason = &reason
		change.Archive = true
	}
	if _, err := s.repo.UpdateStatus(ctx, change); err != nil {
		return nil, mapApplicantError(err, "failed to update applicant status")
	}

	if tr.Event == models.ApplicantEventReject {
		if err := s.releaseRejected(ctx, id); err != nil {
			return nil, err
		}
	}

	s.logger.Info("applicant status changed",
		zap.String("applicant_id", id),
		zap.String("from", string(tr.From)),
		zap.String("to", string(tr.To)),
		zap.String("actor", actor),
	)
	return s.Get(ctx, id)
}

func (s *ApplicantService) releaseRejected(ctx context.Context, id string) error {
	if _, err := s.bookings.Release(ctx, id); err != nil {
		s.logger.Error("release after rejection failed", zap.String("applicant_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *ApplicantService) pipelineEntries(ctx context.Context, query dto.PipelineQuery) ([]models.PipelineEntry, error) {
	filter := models.ApplicantFilter{Campus: strings.TrimSpace(query.Campus), Search: query.Search}
	if query.Status != "" {
		for _, raw := range strings.Split(query.Status, ",") {
			status := models.ApplicantStatus(strings.TrimSpace(raw))
			if !status.Valid() {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", raw))
			}
			filter.Status = append(filter.Status, status)
		}
	}
	var stage models.WorkflowStage
	if query.Stage != "" {
		stage = models.WorkflowStage(strings.TrimSpace(query.Stage))
		if !stage.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown stage %q", query.Stage))
		}
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}
	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	checklists, err := s.checklists.ListByApplicants(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklists")
	}

	entries := make([]models.PipelineEntry, 0, len(records))
	for _, record := range records {
		derived := models.DeriveStage(record.Status, models.SnapshotOf(checklists[record.ID]))
		if stage != "" && derived != stage {
			continue
		}
		entries = append(entries, models.PipelineEntry{
			Applicant:   record.Applicant,
			Stage:       derived,
			Reservation: record.Reservation,
		})
	}
	return entries, nil
}

func mapApplicantError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrApplicantNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
	case errors.Is(err, repository.ErrStatusConflict):
		return appErrors.Clone(appErrors.ErrConflict, "applicant status changed concurrently")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}
