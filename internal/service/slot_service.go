package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-ops-api/internal/dto"
	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

const slotCachePattern = "slots:*"

type slotRepository interface {
	Create(ctx context.Context, slot *models.ConsultationSlot) error
	GetByID(ctx context.Context, id string) (*models.ConsultationSlot, error)
	List(ctx context.Context, filter models.SlotFilter) ([]models.ConsultationSlot, error)
	SetOpen(ctx context.Context, id string, isOpen bool) (*models.ConsultationSlot, error)
}

// SlotService manages consultation slots. Occupancy is never written here.
type SlotService struct {
	repo      slotRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSlotService constructs the slot service. cache may be nil.
func NewSlotService(repo slotRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// CreateSlot opens a new slot with zero occupancy.
func (s *SlotService) CreateSlot(ctx context.Context, req dto.CreateSlotRequest) (*models.ConsultationSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid slot payload")
	}
	slot := &models.ConsultationSlot{
		Campus:   req.Campus,
		Date:     req.Date,
		Time:     req.Time,
		Capacity: req.Capacity,
		IsOpen:   true,
	}
	if req.IsOpen != nil {
		slot.IsOpen = *req.IsOpen
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}
	_ = s.cache.Invalidate(ctx, slotCachePattern)
	return slot, nil
}

// ListSlots returns slots for a date, optionally restricted to a campus. The boolean reports a cache hit.
func (s *SlotService) ListSlots(ctx context.Context, date, campus string) ([]models.ConsultationSlot, bool, error) {
	if date != "" {
		if _, err := time.Parse(models.SlotDateLayout, date); err != nil {
			return nil, false, appErrors.Validation(err, "date must be YYYY-MM-DD")
		}
	}

	key := fmt.Sprintf("slots:%s:%s", date, campus)
	slots, hit, err := Remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) ([]models.ConsultationSlot, error) {
		return s.repo.List(ctx, models.SlotFilter{Date: date, Campus: campus})
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	return slots, hit, nil
}

// GetSlot returns a single slot.
func (s *SlotService) GetSlot(ctx context.Context, id string) (*models.ConsultationSlot, error) {
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapSlotError(err, "failed to load slot")
	}
	return slot, nil
}

// ToggleOpen flips the slot open flag without touching occupancy or reservations.
func (s *SlotService) ToggleOpen(ctx context.Context, id string, isOpen bool) (*models.ConsultationSlot, error) {
	slot, err := s.repo.SetOpen(ctx, id, isOpen)
	if err != nil {
		return nil, mapSlotError(err, "failed to update slot")
	}
	_ = s.cache.Invalidate(ctx, slotCachePattern)
	s.logger.Info("slot open flag changed", zap.String("slot_id", id), zap.Bool("is_open", isOpen))
	return slot, nil
}

func mapSlotError(err error, message string) error {
	if errors.Is(err, repository.ErrSlotNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
