package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-ops-api/internal/dto"
	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/service"
	"github.com/noah-isme/academy-ops-api/pkg/response"
)

type applicantService interface {
	Create(ctx context.Context, req dto.CreateApplicantRequest) (*models.Applicant, error)
	Get(ctx context.Context, id string) (*models.PipelineEntry, error)
	Pipeline(ctx context.Context, query dto.PipelineQuery) ([]models.PipelineEntry, *models.Pagination, error)
	Export(ctx context.Context, query dto.PipelineQuery, format string) (*service.ExportResult, error)
	TransitionStatus(ctx context.Context, id string, req dto.TransitionStatusRequest, actor string) (*models.PipelineEntry, error)
}

type reservationReleaser interface {
	Release(ctx context.Context, applicantID string) (*models.ReleaseResult, error)
}

// ApplicantHandler exposes the admission pipeline endpoints.
type ApplicantHandler struct {
	applicants applicantService
	bookings   reservationReleaser
}

// NewApplicantHandler builds a new handler.
func NewApplicantHandler(applicants applicantService, bookings reservationReleaser) *ApplicantHandler {
	return &ApplicantHandler{applicants: applicants, bookings: bookings}
}

// List godoc
// @Summary List the admission pipeline
// @Tags Applicants
// @Produce json
// @Param campus query string false "Campus filter"
// @Param stage query string false "Workflow stage filter"
// @Param status query string false "Applicant status filter"
// @Param search query string false "Search by name or phone"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applicants [get]
func (h *ApplicantHandler) List(c *gin.Context) {
	entries, pagination, err := h.applicants.Pipeline(c.Request.Context(), pipelineQueryFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Create godoc
// @Summary Register an applicant
// @Tags Applicants
// @Accept json
// @Produce json
// @Param payload body dto.CreateApplicantRequest true "Applicant payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applicants [post]
func (h *ApplicantHandler) Create(c *gin.Context) {
	var req dto.CreateApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid applicant payload"))
		return
	}
	applicant, err := h.applicants.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, applicant)
}

// Get godoc
// @Summary Get an applicant with stage and reservation
// @Tags Applicants
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applicants/{id} [get]
func (h *ApplicantHandler) Get(c *gin.Context) {
	entry, err := h.applicants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// TransitionStatus godoc
// @Summary Apply a staff status change
// @Tags Applicants
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param payload body dto.TransitionStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /applicants/{id}/status [post]
func (h *ApplicantHandler) TransitionStatus(c *gin.Context) {
	var req dto.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid status payload"))
		return
	}
	entry, err := h.applicants.TransitionStatus(c.Request.Context(), c.Param("id"), req, actorFrom(c, req.Actor))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// ReleaseReservation godoc
// @Summary Release the applicant's consultation reservation
// @Tags Applicants
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applicants/{id}/reservation [delete]
func (h *ApplicantHandler) ReleaseReservation(c *gin.Context) {
	result, err := h.bookings.Release(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export the admission pipeline
// @Tags Applicants
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param campus query string false "Campus filter"
// @Param stage query string false "Workflow stage filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /applicants/export [get]
func (h *ApplicantHandler) Export(c *gin.Context) {
	result, err := h.applicants.Export(c.Request.Context(), pipelineQueryFrom(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Download(c, result.Filename, result.ContentType, result.Data)
}

func pipelineQueryFrom(c *gin.Context) dto.PipelineQuery {
	query := dto.PipelineQuery{
		Campus: c.Query("campus"),
		Stage:  c.Query("stage"),
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.Query("limit")); err == nil {
		query.PageSize = size
	}
	return query
}
