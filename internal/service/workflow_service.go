package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
	"github.com/noah-isme/academy-ops-api/pkg/gateway"
	"github.com/noah-isme/academy-ops-api/pkg/tracing"
)

type applicantReader interface {
	GetByID(ctx context.Context, id string) (*models.Applicant, error)
}

type checklistRepository interface {
	ListByApplicant(ctx context.Context, applicantID string) ([]models.ChecklistItem, error)
	ListByApplicants(ctx context.Context, applicantIDs []string) (map[string][]models.ChecklistItem, error)
	Upsert(ctx context.Context, item *models.ChecklistItem) (bool, error)
}

type documentPackageRepository interface {
	Open(ctx context.Context, applicantID, actor string) (bool, error)
}

type reservationReader interface {
	GetReservation(ctx context.Context, applicantID string) (*models.Reservation, error)
}

type enrollmentFinalizer interface {
	Finalize(ctx context.Context, applicantID string) (*models.FinalizeResult, error)
}

// WorkflowConfig tunes the automation engine.
type WorkflowConfig struct {
	Location *time.Location
	Triggers TriggerTable
	Now      func() time.Time
}

// WorkflowService persists checklist changes and runs the side effects bound to them.
type WorkflowService struct {
	applicants   applicantReader
	checklists   checklistRepository
	packages     documentPackageRepository
	reservations reservationReader
	finalizer    enrollmentFinalizer
	gateway      gateway.Gateway
	metrics      *MetricsService
	tracer       tracing.Tracer
	logger       *zap.Logger
	cfg          WorkflowConfig
}

// NewWorkflowService constructs the workflow automation engine.
func NewWorkflowService(
	applicants applicantReader,
	checklists checklistRepository,
	packages documentPackageRepository,
	reservations reservationReader,
	finalizer enrollmentFinalizer,
	gw gateway.Gateway,
	metrics *MetricsService,
	tracer tracing.Tracer,
	logger *zap.Logger,
	cfg WorkflowConfig,
) *WorkflowService {
	if tracer == nil {
		tracer = tracing.Noop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Triggers == nil {
		cfg.Triggers = DefaultTriggerTable()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &WorkflowService{
		applicants:   applicants,
		checklists:   checklists,
		packages:     packages,
		reservations: reservations,
		finalizer:    finalizer,
		gateway:      gw,
		metrics:      metrics,
		tracer:       tracer,
		logger:       logger,
		cfg:          cfg,
	}
}

// SetChecklistItem records a checklist toggle and executes its triggers. Trigger failures are
// reported in the result and never undo the checklist write.
func (s *WorkflowService) SetChecklistItem(ctx context.Context, applicantID, stepKey string, checked bool, actor string) (result *models.StageTransitionResult, err error) {
	ctx, scope := s.tracer.NewScope(ctx, "workflow", "WorkflowService.SetChecklistItem")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()
	scope.SetAttribute("applicant_id", applicantID)
	scope.SetAttribute("step_key", stepKey)
	scope.SetAttribute("checked", checked)

	if _, ok := models.LookupChecklistStep(stepKey); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown checklist step: "+stepKey)
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "actor is required")
	}

	applicant, err := s.loadApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant.Status == models.ApplicantStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "applicant was rejected; checklist is closed")
	}

	before, err := s.checklists.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist")
	}
	previousStage := models.DeriveStage(applicant.Status, models.SnapshotOf(before))

	now := s.cfg.Now()
	item := &models.ChecklistItem{ApplicantID: applicantID, StepKey: stepKey, Checked: checked, UpdatedAt: now}
	if checked {
		item.CheckedAt = &now
		item.CheckedBy = &actor
	}
	changed, err := s.checklists.Upsert(ctx, item)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save checklist item")
	}

	result = &models.StageTransitionResult{
		ApplicantID:      applicantID,
		StepKey:          stepKey,
		Checked:          checked,
		Changed:          changed,
		PreviousStage:    previousStage,
		TriggeredEffects: []models.TriggeredEffect{},
	}

	status := applicant.Status
	if checked {
		tc := triggerContext{applicant: *applicant, stepKey: stepKey, actor: actor, now: now, location: s.cfg.Location}
		for _, effect := range s.cfg.Triggers.EffectsFor(stepKey) {
			outcome, finalized := s.runEffect(ctx, effect, changed, &tc)
			result.TriggeredEffects = append(result.TriggeredEffects, outcome)
			if finalized != nil {
				result.Finalize = finalized
				status = models.ApplicantStatusEnrolled
			}
		}
	}

	after, err := s.checklists.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist")
	}
	result.Checklist = models.MergeChecklist(after)
	result.Stage = models.DeriveStage(status, models.SnapshotOf(after))

	s.logger.Info("checklist item set",
		zap.String("applicant_id", applicantID),
		zap.String("step_key", stepKey),
		zap.Bool("checked", checked),
		zap.Bool("changed", changed),
		zap.String("actor", actor),
		zap.String("previous_stage", string(previousStage)),
		zap.String("stage", string(result.Stage)),
	)
	return result, nil
}

// GetChecklist returns the full catalog annotated with the applicant's progress.
func (s *WorkflowService) GetChecklist(ctx context.Context, applicantID string) (*models.ChecklistView, error) {
	applicant, err := s.loadApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	items, err := s.checklists.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist")
	}
	return &models.ChecklistView{
		ApplicantID: applicantID,
		Status:      applicant.Status,
		Stage:       models.DeriveStage(applicant.Status, models.SnapshotOf(items)),
		Checklist:   models.MergeChecklist(items),
	}, nil
}

// Finalize promotes the applicant into an enrolled student. Repeated calls return the same
// student with AlreadyFinalized set.
func (s *WorkflowService) Finalize(ctx context.Context, applicantID string) (*models.FinalizeResult, error) {
	result, err := s.finalizer.Finalize(ctx, applicantID)
	if err != nil {
		s.metrics.RecordFinalize("error")
		switch {
		case errors.Is(err, repository.ErrApplicantNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		case errors.Is(err, repository.ErrApplicantClosed):
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "rejected applicants cannot be enrolled")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize enrollment")
		}
	}
	if result.AlreadyFinalized {
		s.metrics.RecordFinalize("existing")
	} else {
		s.metrics.RecordFinalize("created")
	}
	s.logger.Info("enrollment finalized",
		zap.String("applicant_id", applicantID),
		zap.String("enrolled_student_id", result.EnrolledStudentID),
		zap.Bool("already_finalized", result.AlreadyFinalized),
	)
	return result, nil
}

func (s *WorkflowService) loadApplicant(ctx context.Context, applicantID string) (*models.Applicant, error) {
	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicantNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}
	return applicant, nil
}

// runEffect executes one effect. Gateway and package effects only fire on a real
// unchecked-to-checked change; finalize runs on every checked call.
func (s *WorkflowService) runEffect(ctx context.Context, effect models.EffectKind, changed bool, tc *triggerContext) (models.TriggeredEffect, *models.FinalizeResult) {
	outcome := models.TriggeredEffect{Kind: effect}
	logFields := []zap.Field{
		zap.String("applicant_id", tc.applicant.ID),
		zap.String("step_key", tc.stepKey),
		zap.String("effect", string(effect)),
	}

	if effect == models.EffectFinalize {
		result, err := s.Finalize(ctx, tc.applicant.ID)
		if err != nil {
			outcome.Status = models.EffectStatusFailed
			outcome.Detail = appErrors.FromError(err).Message
			s.metrics.RecordTriggerDispatch(effect, outcome.Status)
			s.logger.Error("finalize trigger failed", append(logFields, zap.Error(err))...)
			return outcome, nil
		}
		outcome.Status = models.EffectStatusApplied
		outcome.Detail = result.EnrolledStudentID
		s.metrics.RecordTriggerDispatch(effect, outcome.Status)
		return outcome, result
	}

	if !changed {
		outcome.Status = models.EffectStatusSkipped
		outcome.Detail = "step already checked"
		s.metrics.RecordTriggerDispatch(effect, outcome.Status)
		return outcome, nil
	}

	var err error
	switch effect {
	case models.EffectDocumentPackage:
		var opened bool
		opened, err = s.packages.Open(ctx, tc.applicant.ID, tc.actor)
		if err == nil {
			outcome.Status = models.EffectStatusApplied
			outcome.Detail = "document package opened"
			if !opened {
				outcome.Detail = "document package already open"
			}
		}
	default:
		err = s.dispatch(ctx, effect, tc)
		if err == nil {
			outcome.Status = models.EffectStatusDispatched
		}
	}
	if err != nil {
		outcome.Status = models.EffectStatusFailed
		outcome.Detail = err.Error()
		s.logger.Warn("trigger dispatch failed", append(logFields, zap.Error(err))...)
	}
	s.metrics.RecordTriggerDispatch(effect, outcome.Status)
	return outcome, nil
}

func (s *WorkflowService) dispatch(ctx context.Context, effect models.EffectKind, tc *triggerContext) error {
	if s.gateway == nil {
		return gateway.ErrDispatch
	}
	if tc.reservation == nil && s.reservations != nil {
		reservation, err := s.reservations.GetReservation(ctx, tc.applicant.ID)
		if err != nil {
			s.logger.Warn("reservation lookup failed for trigger", zap.String("applicant_id", tc.applicant.ID), zap.Error(err))
		}
		tc.reservation = reservation
	}
	ins, err := buildInstruction(effect, *tc)
	if err != nil {
		return err
	}
	return s.gateway.Dispatch(ctx, ins)
}
