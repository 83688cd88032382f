package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-ops-api/internal/middleware"
	"github.com/noah-isme/academy-ops-api/internal/models"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

type workflowServiceMock struct {
	setCalled   bool
	lastID      string
	lastStep    string
	lastChecked bool
	lastActor   string
	setErr      error
}

func (m *workflowServiceMock) SetChecklistItem(ctx context.Context, applicantID, stepKey string, checked bool, actor string) (*models.StageTransitionResult, error) {
	m.setCalled = true
	m.lastID = applicantID
	m.lastStep = stepKey
	m.lastChecked = checked
	m.lastActor = actor
	if m.setErr != nil {
		return nil, m.setErr
	}
	return &models.StageTransitionResult{ApplicantID: applicantID, StepKey: stepKey, Checked: checked, Stage: models.StageDocuments}, nil
}

func (m *workflowServiceMock) GetChecklist(ctx context.Context, applicantID string) (*models.ChecklistView, error) {
	if applicantID == "missing" {
		return nil, appErrors.ErrNotFound
	}
	return &models.ChecklistView{ApplicantID: applicantID, Stage: models.StageWaiting}, nil
}

func TestChecklistHandlerSet(t *testing.T) {
	svc := &workflowServiceMock{}
	handler := NewChecklistHandler(svc)

	c, w := newJSONContext(http.MethodPut, "/applicants/app-1/checklist/admission_confirmed", `{"checked":true}`)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}, {Key: "stepKey", Value: "admission_confirmed"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})
	handler.Set(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "app-1", svc.lastID)
	assert.Equal(t, "admission_confirmed", svc.lastStep)
	assert.True(t, svc.lastChecked)
	assert.Equal(t, "staff-1", svc.lastActor)
}

func TestChecklistHandlerSetRequiresChecked(t *testing.T) {
	svc := &workflowServiceMock{}
	handler := NewChecklistHandler(svc)

	c, w := newJSONContext(http.MethodPut, "/applicants/app-1/checklist/welcome_msg", `{"actor":"staff-1"}`)
	handler.Set(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.setCalled)
}

func TestChecklistHandlerSetPropagatesPrecondition(t *testing.T) {
	svc := &workflowServiceMock{setErr: appErrors.Clone(appErrors.ErrPreconditionFailed, "applicant is closed")}
	handler := NewChecklistHandler(svc)

	c, w := newJSONContext(http.MethodPut, "/applicants/app-1/checklist/welcome_msg", `{"checked":false,"actor":"staff-1"}`)
	handler.Set(c)

	require.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.False(t, svc.lastChecked)
	assert.Equal(t, "staff-1", svc.lastActor)
}

func TestChecklistHandlerGet(t *testing.T) {
	handler := NewChecklistHandler(&workflowServiceMock{})

	c, w := newJSONContext(http.MethodGet, "/applicants/missing/checklist", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	c, w = newJSONContext(http.MethodGet, "/applicants/app-1/checklist", "")
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
}
