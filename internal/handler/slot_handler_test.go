package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-ops-api/internal/dto"
	"github.com/noah-isme/academy-ops-api/internal/middleware"
	"github.com/noah-isme/academy-ops-api/internal/models"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

type slotServiceMock struct {
	listResp     []models.ConsultationSlot
	listHit      bool
	listErr      error
	lastDate     string
	lastCampus   string
	toggleResp   *models.ConsultationSlot
	toggleErr    error
	toggleCalled bool
	lastIsOpen   bool
}

func (m *slotServiceMock) CreateSlot(ctx context.Context, req dto.CreateSlotRequest) (*models.ConsultationSlot, error) {
	return &models.ConsultationSlot{ID: "slot-1", Campus: req.Campus, Date: req.Date, Time: req.Time, Capacity: req.Capacity, IsOpen: true}, nil
}

func (m *slotServiceMock) ListSlots(ctx context.Context, date, campus string) ([]models.ConsultationSlot, bool, error) {
	m.lastDate = date
	m.lastCampus = campus
	return m.listResp, m.listHit, m.listErr
}

func (m *slotServiceMock) ToggleOpen(ctx context.Context, id string, isOpen bool) (*models.ConsultationSlot, error) {
	m.toggleCalled = true
	m.lastIsOpen = isOpen
	return m.toggleResp, m.toggleErr
}

type slotBookerMock struct {
	resp            *models.BookingResult
	err             error
	lastSlotID      string
	lastApplicantID string
}

func (m *slotBookerMock) Book(ctx context.Context, slotID, applicantID string) (*models.BookingResult, error) {
	m.lastSlotID = slotID
	m.lastApplicantID = applicantID
	return m.resp, m.err
}

func newJSONContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, target, nil)
	} else {
		req, _ = http.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) appErrors.Error {
	t.Helper()
	var payload struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Error
}

func TestSlotHandlerBookMapsFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"full", appErrors.ErrSlotFull, http.StatusConflict, "SLOT_FULL"},
		{"closed", appErrors.ErrSlotClosed, http.StatusGone, "SLOT_CLOSED"},
		{"missing", appErrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			booker := &slotBookerMock{err: tc.err}
			handler := NewSlotHandler(&slotServiceMock{}, booker)

			c, w := newJSONContext(http.MethodPost, "/slots/slot-1/book", `{"applicantId":"app-1"}`)
			c.Params = gin.Params{{Key: "id", Value: "slot-1"}}

			handler.Book(c)
			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		})
	}
}

func TestSlotHandlerBookSuccess(t *testing.T) {
	booker := &slotBookerMock{resp: &models.BookingResult{
		Reservation:     models.Reservation{ApplicantID: "app-1", SlotID: "slot-1"},
		Slot:            models.ConsultationSlot{ID: "slot-1", Capacity: 2, Occupied: 1},
		ApplicantStatus: models.ApplicantStatusReserved,
	}}
	handler := NewSlotHandler(&slotServiceMock{}, booker)

	c, w := newJSONContext(http.MethodPost, "/slots/slot-1/book", `{"applicantId":"app-1"}`)
	c.Params = gin.Params{{Key: "id", Value: "slot-1"}}

	handler.Book(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "slot-1", booker.lastSlotID)
	assert.Equal(t, "app-1", booker.lastApplicantID)

	var payload struct {
		Data models.BookingResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Data.Slot.Occupied)
	assert.Equal(t, models.ApplicantStatusReserved, payload.Data.ApplicantStatus)
}

func TestSlotHandlerBookInvalidBody(t *testing.T) {
	booker := &slotBookerMock{}
	handler := NewSlotHandler(&slotServiceMock{}, booker)

	c, w := newJSONContext(http.MethodPost, "/slots/slot-1/book", `{"applicantId":`)
	handler.Book(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, booker.lastSlotID)
}

func TestSlotHandlerToggleRequiresFlag(t *testing.T) {
	svc := &slotServiceMock{}
	handler := NewSlotHandler(svc, &slotBookerMock{})

	c, w := newJSONContext(http.MethodPost, "/slots/slot-1/open", `{}`)
	handler.ToggleOpen(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.toggleCalled)

	svc.toggleResp = &models.ConsultationSlot{ID: "slot-1", IsOpen: false}
	c, w = newJSONContext(http.MethodPost, "/slots/slot-1/open", `{"isOpen":false}`)
	c.Params = gin.Params{{Key: "id", Value: "slot-1"}}
	handler.ToggleOpen(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.toggleCalled)
	assert.False(t, svc.lastIsOpen)
}

func TestSlotHandlerListReportsCacheHit(t *testing.T) {
	svc := &slotServiceMock{listResp: []models.ConsultationSlot{{ID: "slot-1"}}, listHit: true}
	handler := NewSlotHandler(svc, &slotBookerMock{})

	c, w := newJSONContext(http.MethodGet, "/slots?date=2025-03-10&campus=north", "")
	c.Set("response_meta", map[string]interface{}{})
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-10", svc.lastDate)
	assert.Equal(t, "north", svc.lastCampus)

	var payload struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, true, payload.Meta["cache_hit"])
	assert.NotNil(t, middleware.ExtractMeta(c))
}

func TestSlotHandlerCreate(t *testing.T) {
	handler := NewSlotHandler(&slotServiceMock{}, &slotBookerMock{})

	c, w := newJSONContext(http.MethodPost, "/slots", `{"campus":"north","date":"2025-03-10","time":"10:00","capacity":3}`)
	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}
