package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-ops-api/internal/dto"
	"github.com/noah-isme/academy-ops-api/internal/models"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
	"github.com/noah-isme/academy-ops-api/pkg/response"
)

type workflowService interface {
	SetChecklistItem(ctx context.Context, applicantID, stepKey string, checked bool, actor string) (*models.StageTransitionResult, error)
	GetChecklist(ctx context.Context, applicantID string) (*models.ChecklistView, error)
}

// ChecklistHandler exposes workflow checklist endpoints.
type ChecklistHandler struct {
	workflow workflowService
}

// NewChecklistHandler builds a new handler.
func NewChecklistHandler(workflow workflowService) *ChecklistHandler {
	return &ChecklistHandler{workflow: workflow}
}

// Get godoc
// @Summary Get an applicant's checklist and derived stage
// @Tags Checklist
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applicants/{id}/checklist [get]
func (h *ChecklistHandler) Get(c *gin.Context) {
	view, err := h.workflow.GetChecklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Set godoc
// @Summary Check or uncheck a workflow step
// @Tags Checklist
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param stepKey path string true "Checklist step key"
// @Param payload body dto.SetChecklistItemRequest true "Checklist payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /applicants/{id}/checklist/{stepKey} [put]
func (h *ChecklistHandler) Set(c *gin.Context) {
	var req dto.SetChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid checklist payload"))
		return
	}
	if req.Checked == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "checked is required"))
		return
	}
	result, err := h.workflow.SetChecklistItem(c.Request.Context(), c.Param("id"), c.Param("stepKey"), *req.Checked, actorFrom(c, req.Actor))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
