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

type enrolledStudentRepository interface {
	GetByID(ctx context.Context, id string) (*models.EnrolledStudent, error)
	List(ctx context.Context, filter models.EnrolledStudentFilter) ([]models.EnrolledStudent, error)
	UpdateStatus(ctx context.Context, change models.EnrolledStatusChange) (*models.EnrolledStudent, error)
}

// EnrolledStudentService runs the leave and withdrawal review machine for enrolled students.
// Review states only become terminal through ConfirmReview.
type EnrolledStudentService struct {
	repo      enrolledStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrolledStudentService constructs the service.
func NewEnrolledStudentService(repo enrolledStudentRepository, validate *validator.Validate, logger *zap.Logger) *EnrolledStudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrolledStudentService{repo: repo, validator: validate, logger: logger}
}

// List returns enrolled students filtered by campus and status.
func (s *EnrolledStudentService) List(ctx context.Context, campus, status string) ([]models.EnrolledStudent, error) {
	filter := models.EnrolledStudentFilter{Campus: strings.TrimSpace(campus)}
	if status != "" {
		for _, raw := range strings.Split(status, ",") {
			st := models.EnrolledStatus(strings.TrimSpace(raw))
			if !st.Valid() {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", raw))
			}
			filter.Status = append(filter.Status, st)
		}
	}
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one enrolled student.
func (s *EnrolledStudentService) Get(ctx context.Context, id string) (*models.EnrolledStudent, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapEnrolledError(err, "failed to load student")
	}
	return student, nil
}

// RequestLeave moves an active student into leave review.
func (s *EnrolledStudentService) RequestLeave(ctx context.Context, id string, req dto.LeaveReviewRequest) (*models.EnrolledStudent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid leave payload")
	}
	effective, err := time.Parse(models.SlotDateLayout, req.EffectiveDate)
	if err != nil {
		return nil, appErrors.Validation(err, "effectiveDate must be YYYY-MM-DD")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}
	return s.apply(ctx, id, models.EnrolledEventRequestLeave, req.Actor, func(change *models.EnrolledStatusChange, _ *models.EnrolledStudent) error {
		change.ReviewReason = &reason
		change.EffectiveDate = &effective
		return nil
	})
}

// RequestWithdrawal moves an active student into withdrawal review.
func (s *EnrolledStudentService) RequestWithdrawal(ctx context.Context, id string, req dto.WithdrawalReviewRequest) (*models.EnrolledStudent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid withdrawal payload")
	}
	effective, err := time.Parse(models.SlotDateLayout, req.EffectiveDate)
	if err != nil {
		return nil, appErrors.Validation(err, "effectiveDate must be YYYY-MM-DD")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}
	return s.apply(ctx, id, models.EnrolledEventRequestWithdrawal, req.Actor, func(change *models.EnrolledStatusChange, _ *models.EnrolledStudent) error {
		change.ReviewReason = &reason
		change.EffectiveDate = &effective
		change.RefundRequested = req.RefundRequested
		return nil
	})
}

// ConfirmReview finalizes a pending leave or withdrawal review.
func (s *EnrolledStudentService) ConfirmReview(ctx context.Context, id, actor string) (*models.EnrolledStudent, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "actor is required")
	}
	return s.apply(ctx, id, models.EnrolledEventConfirmReview, actor, func(change *models.EnrolledStatusChange, current *models.EnrolledStudent) error {
		if current.ReviewReason == nil || strings.TrimSpace(*current.ReviewReason) == "" || current.EffectiveDate == nil {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "review is missing a reason or effective date")
		}
		change.ReviewReason = current.ReviewReason
		change.EffectiveDate = current.EffectiveDate
		change.RefundRequested = current.RefundRequested
		return nil
	})
}

// CancelReview returns a student under review to active and clears the review details.
func (s *EnrolledStudentService) CancelReview(ctx context.Context, id, actor string) (*models.EnrolledStudent, error) {
	return s.apply(ctx, id, models.EnrolledEventCancelReview, actor, nil)
}

// ReturnFromLeave reactivates a student on leave.
func (s *EnrolledStudentService) ReturnFromLeave(ctx context.Context, id, actor string) (*models.EnrolledStudent, error) {
	return s.apply(ctx, id, models.EnrolledEventReturn, actor, nil)
}

func (s *EnrolledStudentService) apply(ctx context.Context, id string, ev models.EnrolledEvent, actor string, fill func(*models.EnrolledStatusChange, *models.EnrolledStudent) error) (*models.EnrolledStudent, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapEnrolledError(err, "failed to load student")
	}
	tr, ok := models.EnrolledTransitionFor(current.Status, ev)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot %s while student is %s", strings.ReplaceAll(string(ev), "_", " "), current.Status))
	}

	change := models.EnrolledStatusChange{
		ID:        id,
		From:      tr.From,
		To:        tr.To,
		UpdatedAt: time.Now().UTC(),
	}
	if actor = strings.TrimSpace(actor); actor != "" {
		change.ReviewedBy = &actor
	}
	if fill != nil {
		if err := fill(&change, current); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, change)
	if err != nil {
		return nil, mapEnrolledError(err, "failed to update student status")
	}
	s.logger.Info("enrolled student status changed",
		zap.String("student_id", id),
		zap.String("event", string(ev)),
		zap.String("from", string(tr.From)),
		zap.String("to", string(tr.To)),
		zap.String("actor", actor),
	)
	return updated, nil
}

func mapEnrolledError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrEnrolledStudentNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	case errors.Is(err, repository.ErrStatusConflict):
		return appErrors.Clone(appErrors.ErrConflict, "student status changed concurrently")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}
