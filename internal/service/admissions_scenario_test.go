package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-ops-api/internal/dto"
	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository/memory"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

type admissionsHarness struct {
	store      *memory.Store
	slots      *SlotService
	bookings   *BookingService
	applicants *ApplicantService
	workflow   *WorkflowService
	gateway    *recordingGateway
}

func newAdmissionsHarness() *admissionsHarness {
	store := memory.NewStore()
	metrics := NewMetricsService()
	gw := &recordingGateway{}
	bookings := NewBookingService(store.Bookings(), nil, metrics, nil, nil)
	return &admissionsHarness{
		store:      store,
		slots:      NewSlotService(store.Slots(), nil, 0, nil, nil),
		bookings:   bookings,
		applicants: NewApplicantService(store.Applicants(), store.Checklists(), bookings, nil, nil, nil),
		workflow: NewWorkflowService(store.Applicants(), store.Checklists(), store.DocumentPackages(), store.Bookings(),
			store.EnrolledStudents(), gw, metrics, nil, nil, WorkflowConfig{}),
		gateway: gw,
	}
}

func (h *admissionsHarness) applicant(t *testing.T, name, phone string) *models.Applicant {
	t.Helper()
	a, err := h.applicants.Create(context.Background(), dto.CreateApplicantRequest{Name: name, Phone: phone, Campus: "north"})
	require.NoError(t, err)
	return a
}

func TestScenarioSingleSeatSlot(t *testing.T) {
	h := newAdmissionsHarness()
	ctx := context.Background()

	slot, err := h.slots.CreateSlot(ctx, dto.CreateSlotRequest{Campus: "north", Date: "2025-03-10", Time: "10:00", Capacity: 1})
	require.NoError(t, err)
	first := h.applicant(t, "Rina", "0811")
	second := h.applicant(t, "Bima", "0812")

	result, err := h.bookings.Book(ctx, slot.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Slot.Occupied)
	assert.Equal(t, models.ApplicantStatusReserved, result.ApplicantStatus)

	_, err = h.bookings.Book(ctx, slot.ID, second.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "SLOT_FULL", appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)

	stored, err := h.slots.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Occupied)
}

func TestScenarioClosedSlotKeepsReservations(t *testing.T) {
	h := newAdmissionsHarness()
	ctx := context.Background()

	slot, err := h.slots.CreateSlot(ctx, dto.CreateSlotRequest{Campus: "north", Date: "2025-03-10", Time: "10:00", Capacity: 2})
	require.NoError(t, err)
	first := h.applicant(t, "Rina", "0811")
	second := h.applicant(t, "Bima", "0812")

	_, err = h.bookings.Book(ctx, slot.ID, first.ID)
	require.NoError(t, err)

	closed, err := h.slots.ToggleOpen(ctx, slot.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, closed.Occupied)

	_, err = h.bookings.Book(ctx, slot.ID, second.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusGone, appErrors.FromError(err).Status)

	entry, err := h.applicants.Get(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, entry.Reservation)
	assert.Equal(t, slot.ID, entry.Reservation.SlotID)
}

func TestScenarioDocumentsSubmittedFinalizesOnce(t *testing.T) {
	h := newAdmissionsHarness()
	ctx := context.Background()
	a := h.applicant(t, "Rina", "0811")
	other := h.applicant(t, "Bima", "0812")

	first, err := h.workflow.SetChecklistItem(ctx, a.ID, models.StepDocsSubmitted, true, "staff-1")
	require.NoError(t, err)
	require.NotNil(t, first.Finalize)
	assert.False(t, first.Finalize.AlreadyFinalized)
	assert.Equal(t, models.StageEnrolled, first.Stage)

	pipeline, _, err := h.applicants.Pipeline(ctx, dto.PipelineQuery{})
	require.NoError(t, err)
	require.Len(t, pipeline, 1)
	assert.Equal(t, other.ID, pipeline[0].ID)

	second, err := h.workflow.SetChecklistItem(ctx, a.ID, models.StepDocsSubmitted, true, "staff-1")
	require.NoError(t, err)
	require.NotNil(t, second.Finalize)
	assert.True(t, second.Finalize.AlreadyFinalized)
	assert.Equal(t, first.Finalize.EnrolledStudentID, second.Finalize.EnrolledStudentID)

	again, _, err := h.applicants.Pipeline(ctx, dto.PipelineQuery{})
	require.NoError(t, err)
	assert.Equal(t, pipeline, again)

	students, err := h.store.EnrolledStudents().List(ctx, models.EnrolledStudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, a.ID, students[0].ApplicantID)
	assert.Equal(t, models.EnrolledStatusActive, students[0].Status)
}

func TestScenarioRebookMovesSeat(t *testing.T) {
	h := newAdmissionsHarness()
	ctx := context.Background()

	morning, err := h.slots.CreateSlot(ctx, dto.CreateSlotRequest{Campus: "north", Date: "2025-03-10", Time: "09:00", Capacity: 1})
	require.NoError(t, err)
	afternoon, err := h.slots.CreateSlot(ctx, dto.CreateSlotRequest{Campus: "north", Date: "2025-03-10", Time: "14:00", Capacity: 1})
	require.NoError(t, err)
	a := h.applicant(t, "Rina", "0811")

	_, err = h.bookings.Book(ctx, morning.ID, a.ID)
	require.NoError(t, err)
	moved, err := h.bookings.Book(ctx, afternoon.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, moved.Superseded)
	require.NotNil(t, moved.PreviousSlotID)
	assert.Equal(t, morning.ID, *moved.PreviousSlotID)

	slots, _, err := h.slots.ListSlots(ctx, "2025-03-10", "north")
	require.NoError(t, err)
	total := 0
	for _, slot := range slots {
		total += slot.Occupied
	}
	assert.Equal(t, 1, total)

	released, err := h.bookings.Release(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, released.Released)
	assert.Equal(t, models.ApplicantStatusWaiting, released.ApplicantStatus)

	again, err := h.bookings.Release(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, again.Released)
}
