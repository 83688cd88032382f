package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-ops-api/internal/dto"
	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/pkg/response"
)

type enrolledStudentService interface {
	List(ctx context.Context, campus, status string) ([]models.EnrolledStudent, error)
	Get(ctx context.Context, id string) (*models.EnrolledStudent, error)
	RequestLeave(ctx context.Context, id string, req dto.LeaveReviewRequest) (*models.EnrolledStudent, error)
	RequestWithdrawal(ctx context.Context, id string, req dto.WithdrawalReviewRequest) (*models.EnrolledStudent, error)
	ConfirmReview(ctx context.Context, id, actor string) (*models.EnrolledStudent, error)
	CancelReview(ctx context.Context, id, actor string) (*models.EnrolledStudent, error)
	ReturnFromLeave(ctx context.Context, id, actor string) (*models.EnrolledStudent, error)
}

// StudentHandler handles enrolled student endpoints.
type StudentHandler struct {
	students enrolledStudentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(students enrolledStudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List enrolled students
// @Tags Students
// @Produce json
// @Param campus query string false "Campus filter"
// @Param status query string false "Comma separated statuses"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context(), c.Query("campus"), strings.TrimSpace(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Get godoc
// @Summary Get enrolled student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// RequestLeave godoc
// @Summary Open a leave review
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.LeaveReviewRequest true "Leave payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /students/{id}/leave-review [post]
func (h *StudentHandler) RequestLeave(c *gin.Context) {
	var req dto.LeaveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid leave payload"))
		return
	}
	req.Actor = actorFrom(c, req.Actor)
	student, err := h.students.RequestLeave(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// RequestWithdrawal godoc
// @Summary Open a withdrawal review
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.WithdrawalReviewRequest true "Withdrawal payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /students/{id}/withdrawal-review [post]
func (h *StudentHandler) RequestWithdrawal(c *gin.Context) {
	var req dto.WithdrawalReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid withdrawal payload"))
		return
	}
	req.Actor = actorFrom(c, req.Actor)
	student, err := h.students.RequestWithdrawal(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// ConfirmReview godoc
// @Summary Confirm a pending leave or withdrawal review
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.ReviewDecisionRequest false "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /students/{id}/review/confirm [post]
func (h *StudentHandler) ConfirmReview(c *gin.Context) {
	h.decide(c, h.students.ConfirmReview)
}

// CancelReview godoc
// @Summary Cancel a pending review
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.ReviewDecisionRequest false "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /students/{id}/review/cancel [post]
func (h *StudentHandler) CancelReview(c *gin.Context) {
	h.decide(c, h.students.CancelReview)
}

// ReturnFromLeave godoc
// @Summary Return a student from leave
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.ReviewDecisionRequest false "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /students/{id}/return [post]
func (h *StudentHandler) ReturnFromLeave(c *gin.Context) {
	h.decide(c, h.students.ReturnFromLeave)
}

func (h *StudentHandler) decide(c *gin.Context, apply func(ctx context.Context, id, actor string) (*models.EnrolledStudent, error)) {
	var req dto.ReviewDecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err, "invalid review payload"))
			return
		}
	}
	student, err := apply(c.Request.Context(), c.Param("id"), actorFrom(c, req.Actor))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
