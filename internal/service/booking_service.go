package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
	"github.com/noah-isme/academy-ops-api/pkg/tracing"
)

// Booking outcomes recorded in slot_bookings_total.
const (
	bookingOutcomeBooked     = "booked"
	bookingOutcomeSuperseded = "superseded"
	bookingOutcomeUnchanged  = "unchanged"
	bookingOutcomeFull       = "full"
	bookingOutcomeClosed     = "closed"
	bookingOutcomeError      = "error"
	bookingOutcomeReleased   = "released"
)

type bookingRepository interface {
	Book(ctx context.Context, applicantID, slotID string) (*models.BookingResult, error)
	Release(ctx context.Context, applicantID string) (*models.ReleaseResult, error)
	GetReservation(ctx context.Context, applicantID string) (*models.Reservation, error)
	ListReservations(ctx context.Context, applicantIDs []string) (map[string]models.Reservation, error)
}

// BookingService is the only entry point that changes slot occupancy.
type BookingService struct {
	repo    bookingRepository
	cache   *CacheService
	metrics *MetricsService
	tracer  tracing.Tracer
	logger  *zap.Logger
}

// NewBookingService constructs the booking engine service.
func NewBookingService(repo bookingRepository, cache *CacheService, metrics *MetricsService, tracer tracing.Tracer, logger *zap.Logger) *BookingService {
	if tracer == nil {
		tracer = tracing.Noop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, cache: cache, metrics: metrics, tracer: tracer, logger: logger}
}

// Book reserves the slot for the applicant. A previous reservation is superseded in the
// same unit of work; re-booking the held slot returns the reservation unchanged.
func (s *BookingService) Book(ctx context.Context, slotID, applicantID string) (result *models.BookingResult, err error) {
	ctx, scope := s.tracer.NewScope(ctx, "booking", "BookingService.Book")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()
	scope.SetAttribute("slot_id", slotID)
	scope.SetAttribute("applicant_id", applicantID)

	if strings.TrimSpace(slotID) == "" || strings.TrimSpace(applicantID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slotId and applicantId are required")
	}

	result, err = s.repo.Book(ctx, applicantID, slotID)
	if err != nil {
		s.metrics.RecordBooking(bookingOutcome(err))
		return nil, mapBookingError(err, "failed to book slot")
	}

	switch {
	case result.Unchanged:
		s.metrics.RecordBooking(bookingOutcomeUnchanged)
		return result, nil
	case result.Superseded:
		s.metrics.RecordBooking(bookingOutcomeSuperseded)
	default:
		s.metrics.RecordBooking(bookingOutcomeBooked)
	}
	_ = s.cache.Invalidate(ctx, slotCachePattern)

	fields := []zap.Field{
		zap.String("applicant_id", applicantID),
		zap.String("slot_id", slotID),
		zap.Int("occupied", result.Slot.Occupied),
		zap.Int("capacity", result.Slot.Capacity),
	}
	if result.PreviousSlotID != nil {
		fields = append(fields, zap.String("previous_slot_id", *result.PreviousSlotID))
	}
	s.logger.Info("slot booked", fields...)
	return result, nil
}

// Release removes the applicant's reservation. Releasing twice is a no-op.
func (s *BookingService) Release(ctx context.Context, applicantID string) (result *models.ReleaseResult, err error) {
	ctx, scope := s.tracer.NewScope(ctx, "booking", "BookingService.Release")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()
	scope.SetAttribute("applicant_id", applicantID)

	result, err = s.repo.Release(ctx, applicantID)
	if err != nil {
		return nil, mapBookingError(err, "failed to release reservation")
	}
	if result.Released {
		s.metrics.RecordBooking(bookingOutcomeReleased)
		_ = s.cache.Invalidate(ctx, slotCachePattern)
		s.logger.Info("reservation released", zap.String("applicant_id", applicantID), zap.Stringp("slot_id", result.SlotID))
	}
	return result, nil
}

// Reservation returns the applicant's active reservation or nil.
func (s *BookingService) Reservation(ctx context.Context, applicantID string) (*models.Reservation, error) {
	reservation, err := s.repo.GetReservation(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	return reservation, nil
}

// Reservations returns active reservations keyed by applicant.
func (s *BookingService) Reservations(ctx context.Context, applicantIDs []string) (map[string]models.Reservation, error) {
	reservations, err := s.repo.ListReservations(ctx, applicantIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservations")
	}
	return reservations, nil
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, repository.ErrSlotFull):
		return bookingOutcomeFull
	case errors.Is(err, repository.ErrSlotClosed):
		return bookingOutcomeClosed
	default:
		return bookingOutcomeError
	}
}

func mapBookingError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrSlotFull):
		return appErrors.Clone(appErrors.ErrSlotFull, "slot has no remaining capacity")
	case errors.Is(err, repository.ErrSlotClosed):
		return appErrors.Clone(appErrors.ErrSlotClosed, "slot is closed for booking")
	case errors.Is(err, repository.ErrSlotNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
	case errors.Is(err, repository.ErrApplicantNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
	case errors.Is(err, repository.ErrApplicantClosed):
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "applicant is no longer in the admission pipeline")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}
