package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

type mockBookingRepo struct {
	bookResult    *models.BookingResult
	bookErr       error
	releaseResult *models.ReleaseResult
	releaseErr    error
	reservations  map[string]models.Reservation
	bookCalls     int
	releaseCalls  int
}

func (m *mockBookingRepo) Book(ctx context.Context, applicantID, slotID string) (*models.BookingResult, error) {
	m.bookCalls++
	if m.bookErr != nil {
		return nil, m.bookErr
	}
	return m.bookResult, nil
}

func (m *mockBookingRepo) Release(ctx context.Context, applicantID string) (*models.ReleaseResult, error) {
	m.releaseCalls++
	if m.releaseErr != nil {
		return nil, m.releaseErr
	}
	if m.releaseResult == nil {
		return &models.ReleaseResult{}, nil
	}
	return m.releaseResult, nil
}

func (m *mockBookingRepo) GetReservation(ctx context.Context, applicantID string) (*models.Reservation, error) {
	if r, ok := m.reservations[applicantID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *mockBookingRepo) ListReservations(ctx context.Context, applicantIDs []string) (map[string]models.Reservation, error) {
	out := make(map[string]models.Reservation)
	for _, id := range applicantIDs {
		if r, ok := m.reservations[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

type mockCacheRepo struct {
	store       map[string]interface{}
	invalidated []string
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	value, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if slots, ok := value.([]models.ConsultationSlot); ok {
		if out, ok := dest.(*[]models.ConsultationSlot); ok {
			*out = slots
		}
	}
	return nil
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = make(map[string]interface{})
	}
	m.store[key] = value
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	m.store = nil
	return nil
}

func newTestCache(repo *mockCacheRepo) *CacheService {
	return NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
}

func TestBookingServiceBookSuccess(t *testing.T) {
	repo := &mockBookingRepo{bookResult: &models.BookingResult{
		Reservation:     models.Reservation{ApplicantID: "a1", SlotID: "s1", Date: "2025-03-10", Time: "10:00"},
		Slot:            models.ConsultationSlot{ID: "s1", Capacity: 1, Occupied: 1, IsOpen: true},
		ApplicantStatus: models.ApplicantStatusReserved,
	}}
	cacheRepo := &mockCacheRepo{}
	svc := NewBookingService(repo, newTestCache(cacheRepo), NewMetricsService(), nil, zap.NewNop())

	result, err := svc.Book(context.Background(), "s1", "a1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicantStatusReserved, result.ApplicantStatus)
	assert.Equal(t, 1, result.Slot.Occupied)
	assert.Equal(t, []string{slotCachePattern}, cacheRepo.invalidated)
}

func TestBookingServiceBookUnchangedSkipsInvalidation(t *testing.T) {
	repo := &mockBookingRepo{bookResult: &models.BookingResult{Unchanged: true}}
	cacheRepo := &mockCacheRepo{}
	svc := NewBookingService(repo, newTestCache(cacheRepo), nil, nil, nil)

	result, err := svc.Book(context.Background(), "s1", "a1")
	require.NoError(t, err)
	assert.True(t, result.Unchanged)
	assert.Empty(t, cacheRepo.invalidated)
}

func TestBookingServiceBookErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "full", err: repository.ErrSlotFull, code: "SLOT_FULL", status: http.StatusConflict},
		{name: "closed", err: repository.ErrSlotClosed, code: "SLOT_CLOSED", status: http.StatusGone},
		{name: "slot missing", err: repository.ErrSlotNotFound, code: appErrors.ErrNotFound.Code, status: http.StatusNotFound},
		{name: "applicant missing", err: repository.ErrApplicantNotFound, code: appErrors.ErrNotFound.Code, status: http.StatusNotFound},
		{name: "applicant closed", err: repository.ErrApplicantClosed, code: appErrors.ErrPreconditionFailed.Code, status: http.StatusPreconditionFailed},
		{name: "storage", err: errors.New("connection reset"), code: appErrors.ErrInternal.Code, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewBookingService(&mockBookingRepo{bookErr: tc.err}, nil, NewMetricsService(), nil, nil)
			_, err := svc.Book(context.Background(), "s1", "a1")
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.code, appErr.Code)
			assert.Equal(t, tc.status, appErr.Status)
		})
	}
}

func TestBookingServiceBookValidation(t *testing.T) {
	repo := &mockBookingRepo{}
	svc := NewBookingService(repo, nil, nil, nil, nil)

	_, err := svc.Book(context.Background(), "s1", " ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.bookCalls)
}

func TestBookingServiceReleaseNoop(t *testing.T) {
	repo := &mockBookingRepo{releaseResult: &models.ReleaseResult{Released: false, ApplicantStatus: models.ApplicantStatusWaiting}}
	cacheRepo := &mockCacheRepo{}
	svc := NewBookingService(repo, newTestCache(cacheRepo), nil, nil, nil)

	result, err := svc.Release(context.Background(), "a1")
	require.NoError(t, err)
	assert.False(t, result.Released)
	assert.Empty(t, cacheRepo.invalidated)
}

func TestBookingServiceReleaseInvalidatesCache(t *testing.T) {
	slotID := "s1"
	repo := &mockBookingRepo{releaseResult: &models.ReleaseResult{Released: true, SlotID: &slotID, ApplicantStatus: models.ApplicantStatusWaiting}}
	cacheRepo := &mockCacheRepo{}
	svc := NewBookingService(repo, newTestCache(cacheRepo), nil, nil, nil)

	result, err := svc.Release(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, result.Released)
	assert.Equal(t, []string{slotCachePattern}, cacheRepo.invalidated)
}

func TestBookingServiceReleaseNotFound(t *testing.T) {
	svc := NewBookingService(&mockBookingRepo{releaseErr: repository.ErrApplicantNotFound}, nil, nil, nil, nil)
	_, err := svc.Release(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}
