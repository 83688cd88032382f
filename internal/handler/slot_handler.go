package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-ops-api/internal/dto"
	"github.com/noah-isme/academy-ops-api/internal/middleware"
	"github.com/noah-isme/academy-ops-api/internal/models"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
	"github.com/noah-isme/academy-ops-api/pkg/response"
)

type slotService interface {
	CreateSlot(ctx context.Context, req dto.CreateSlotRequest) (*models.ConsultationSlot, error)
	ListSlots(ctx context.Context, date, campus string) ([]models.ConsultationSlot, bool, error)
	ToggleOpen(ctx context.Context, id string, isOpen bool) (*models.ConsultationSlot, error)
}

type slotBooker interface {
	Book(ctx context.Context, slotID, applicantID string) (*models.BookingResult, error)
}

// SlotHandler exposes consultation slot endpoints.
type SlotHandler struct {
	slots    slotService
	bookings slotBooker
}

// NewSlotHandler builds a new handler.
func NewSlotHandler(slots slotService, bookings slotBooker) *SlotHandler {
	return &SlotHandler{slots: slots, bookings: bookings}
}

// Create godoc
// @Summary Open a consultation slot
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body dto.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /slots [post]
func (h *SlotHandler) Create(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid slot payload"))
		return
	}
	slot, err := h.slots.CreateSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// List godoc
// @Summary List consultation slots for a day
// @Tags Slots
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param campus query string false "Campus filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	slots, cacheHit, err := h.slots.ListSlots(c.Request.Context(), c.Query("date"), c.Query("campus"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, slots, nil, middleware.ExtractMeta(c))
}

// Book godoc
// @Summary Reserve a seat in a slot for an applicant
// @Tags Slots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body dto.BookSlotRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /slots/{id}/book [post]
func (h *SlotHandler) Book(c *gin.Context) {
	var req dto.BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid booking payload"))
		return
	}
	result, err := h.bookings.Book(c.Request.Context(), c.Param("id"), req.ApplicantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ToggleOpen godoc
// @Summary Open or close a slot for new bookings
// @Tags Slots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body dto.ToggleSlotRequest true "Toggle payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /slots/{id}/open [post]
func (h *SlotHandler) ToggleOpen(c *gin.Context) {
	var req dto.ToggleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid slot toggle payload"))
		return
	}
	if req.IsOpen == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "isOpen is required"))
		return
	}
	slot, err := h.slots.ToggleOpen(c.Request.Context(), c.Param("id"), *req.IsOpen)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}
