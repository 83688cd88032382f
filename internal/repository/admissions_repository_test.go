package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-ops-api/internal/models"
)

func newAdmissionsRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() {
		_ = sqlxDB.Close()
	})
	return sqlxDB, mock
}

var applicantRowColumns = []string{"id", "name", "phone", "parent_phone", "campus", "birth_date", "gender", "status", "reject_reason", "archived_at", "created_at", "updated_at"}

var slotRowColumns = []string{"id", "campus", "slot_date", "slot_time", "capacity", "occupied", "is_open", "created_at", "updated_at"}

func applicantRow(id string, status models.ApplicantStatus) *sqlmock.Rows {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(applicantRowColumns).
		AddRow(id, "Rina", "0811", "0899", "north", nil, "F", string(status), nil, nil, now, now)
}

func slotRow(id string, capacity, occupied int, open bool) *sqlmock.Rows {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(slotRowColumns).
		AddRow(id, "north", "2025-03-10", "10:00", capacity, occupied, open, now, now)
}

func TestSlotRepositoryCreateStartsEmpty(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slots`)).
		WithArgs(sqlmock.AnyArg(), "north", "2025-03-10", "10:00", 3, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	slot := &models.ConsultationSlot{Campus: "north", Date: "2025-03-10", Time: "10:00", Capacity: 3, IsOpen: true, Occupied: 2}
	require.NoError(t, repo.Create(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)
	assert.Zero(t, slot.Occupied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryGetByIDNotFound(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListFilters(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`AND slot_date = $1 AND campus = $2 ORDER BY slot_date ASC`)).
		WithArgs("2025-03-10", "north").
		WillReturnRows(slotRow("slot-1", 2, 1, true))

	slots, err := repo.List(context.Background(), models.SlotFilter{Date: "2025-03-10", Campus: "north"})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "10:00", slots[0].Time)
	assert.Equal(t, 1, slots[0].Occupied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBookReservesSeat(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WithArgs("app-1").
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusWaiting))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE applicant_id = $1`)).
		WithArgs("app-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WithArgs("slot-1").
		WillReturnRows(slotRow("slot-1", 2, 1, true))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE slots SET occupied = occupied + 1`)).
		WithArgs("slot-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs("app-1", "slot-1", "2025-03-10", "10:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applicants SET status = $2`)).
		WithArgs("app-1", models.ApplicantStatusReserved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Book(context.Background(), "app-1", "slot-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Slot.Occupied)
	assert.Equal(t, models.ApplicantStatusReserved, result.ApplicantStatus)
	assert.False(t, result.Superseded)
	assert.Nil(t, result.PreviousSlotID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBookFullRollsBack(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WithArgs("app-2").
		WillReturnRows(applicantRow("app-2", models.ApplicantStatusWaiting))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE applicant_id = $1`)).
		WithArgs("app-2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WithArgs("slot-1").
		WillReturnRows(slotRow("slot-1", 1, 1, true))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "app-2", "slot-1")
	assert.ErrorIs(t, err, ErrSlotFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBookClosedSlot(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(applicantRow("app-2", models.ApplicantStatusWaiting))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE applicant_id = $1`)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(slotRow("slot-1", 3, 0, false))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "app-2", "slot-1")
	assert.ErrorIs(t, err, ErrSlotClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBookRejectedApplicant(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(applicantRow("app-3", models.ApplicantStatusRejected))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "app-3", "slot-1")
	assert.ErrorIs(t, err, ErrApplicantClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func reservationRow(applicantID, slotID string) *sqlmock.Rows {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"applicant_id", "slot_id", "slot_date", "slot_time", "created_at"}).
		AddRow(applicantID, slotID, "2025-03-10", "09:00", now)
}

func TestBookingRepositoryBookSupersedesPreviousSlot(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WithArgs("app-1").
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusReserved))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE applicant_id = $1`)).
		WithArgs("app-1").
		WillReturnRows(reservationRow("app-1", "slot-b"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WithArgs("slot-a").
		WillReturnRows(slotRow("slot-a", 2, 0, true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WithArgs("slot-b").
		WillReturnRows(slotRow("slot-b", 2, 1, true))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE slots SET occupied = occupied + 1`)).
		WithArgs("slot-a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`GREATEST(occupied - 1, 0)`)).
		WithArgs("slot-b", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs("app-1", "slot-a", "2025-03-10", "10:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Book(context.Background(), "app-1", "slot-a")
	require.NoError(t, err)
	assert.True(t, result.Superseded)
	require.NotNil(t, result.PreviousSlotID)
	assert.Equal(t, "slot-b", *result.PreviousSlotID)
	assert.Equal(t, 1, result.Slot.Occupied)
	assert.Equal(t, models.ApplicantStatusReserved, result.ApplicantStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBookSkipsMissingPreviousSlot(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WithArgs("app-1").
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusReserved))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE applicant_id = $1`)).
		WithArgs("app-1").
		WillReturnRows(reservationRow("app-1", "slot-0"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WithArgs("slot-0").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WithArgs("slot-a").
		WillReturnRows(slotRow("slot-a", 2, 0, true))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE slots SET occupied = occupied + 1`)).
		WithArgs("slot-a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`GREATEST(occupied - 1, 0)`)).
		WithArgs("slot-0", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs("app-1", "slot-a", "2025-03-10", "10:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Book(context.Background(), "app-1", "slot-a")
	require.NoError(t, err)
	assert.True(t, result.Superseded)
	require.NotNil(t, result.PreviousSlotID)
	assert.Equal(t, "slot-0", *result.PreviousSlotID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBookGuardedIncrementRollsBack(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WithArgs("app-1").
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusReserved))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE applicant_id = $1`)).
		WithArgs("app-1").
		WillReturnRows(reservationRow("app-1", "slot-b"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WithArgs("slot-a").
		WillReturnRows(slotRow("slot-a", 2, 1, true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM slots WHERE id = $1 FOR UPDATE`)).
		WithArgs("slot-b").
		WillReturnRows(slotRow("slot-b", 2, 1, true))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE slots SET occupied = occupied + 1`)).
		WithArgs("slot-a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "app-1", "slot-a")
	assert.ErrorIs(t, err, ErrSlotFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryReleaseWithoutReservation(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WithArgs("app-1").
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusWaiting))
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM reservations WHERE applicant_id = $1 RETURNING slot_id`)).
		WithArgs("app-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	result, err := repo.Release(context.Background(), "app-1")
	require.NoError(t, err)
	assert.False(t, result.Released)
	assert.Equal(t, models.ApplicantStatusWaiting, result.ApplicantStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryReleaseFreesSeat(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusReserved))
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM reservations`)).
		WillReturnRows(sqlmock.NewRows([]string{"slot_id"}).AddRow("slot-1"))
	mock.ExpectExec(regexp.QuoteMeta(`GREATEST(occupied - 1, 0)`)).
		WithArgs("slot-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applicants SET status = $2`)).
		WithArgs("app-1", models.ApplicantStatusWaiting, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Release(context.Background(), "app-1")
	require.NoError(t, err)
	assert.True(t, result.Released)
	require.NotNil(t, result.SlotID)
	assert.Equal(t, "slot-1", *result.SlotID)
	assert.Equal(t, models.ApplicantStatusWaiting, result.ApplicantStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantRepositoryUpdateStatusConflict(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewApplicantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE applicants`)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1`)).
		WithArgs("app-1").
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusApproved))

	_, err := repo.UpdateStatus(context.Background(), ApplicantStatusChange{
		ID:      "app-1",
		Allowed: []models.ApplicantStatus{models.ApplicantStatusReserved},
		To:      models.ApplicantStatusReservedConfirmed,
	})
	assert.ErrorIs(t, err, ErrStatusConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantRepositoryListJoinsReservation(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewApplicantRepository(db)

	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	columns := append(append([]string{}, applicantRowColumns...), "res_slot_id", "res_slot_date", "res_slot_time", "res_created_at")
	rows := sqlmock.NewRows(columns).
		AddRow("app-1", "Rina", "0811", "", "north", nil, "F", "reserved", nil, nil, now, now, "slot-1", "2025-03-10", "10:00", now).
		AddRow("app-2", "Bima", "0812", "", "north", nil, "M", "waiting", nil, nil, now, now, nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`AND a.archived_at IS NULL AND a.campus = $1`)).
		WithArgs("north").
		WillReturnRows(rows)

	records, err := repo.List(context.Background(), models.ApplicantFilter{Campus: "north"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].Reservation)
	assert.Equal(t, "slot-1", records[0].Reservation.SlotID)
	assert.Nil(t, records[1].Reservation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChecklistRepositoryUpsertReportsChange(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewChecklistRepository(db)
	actor := "staff-1"
	at := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO checklist_items`)).
		WithArgs("app-1", models.StepWelcomeMsg, true, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"applicant_id"}).AddRow("app-1"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO checklist_items`)).
		WithArgs("app-1", models.StepWelcomeMsg, true, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"applicant_id"}))

	changed, err := repo.Upsert(context.Background(), &models.ChecklistItem{ApplicantID: "app-1", StepKey: models.StepWelcomeMsg, Checked: true, CheckedAt: &at, CheckedBy: &actor})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Upsert(context.Background(), &models.ChecklistItem{ApplicantID: "app-1", StepKey: models.StepWelcomeMsg, Checked: true, CheckedAt: &at, CheckedBy: &actor})
	require.NoError(t, err)
	assert.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPackageRepositoryOpenOnce(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewDocumentPackageRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO document_packages`)).
		WithArgs("app-1", "staff-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO document_packages`)).
		WithArgs("app-1", "staff-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	opened, err := repo.Open(context.Background(), "app-1", "staff-1")
	require.NoError(t, err)
	assert.True(t, opened)
	opened, err = repo.Open(context.Background(), "app-1", "staff-1")
	require.NoError(t, err)
	assert.False(t, opened)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrolledStudentRepositoryFinalizeReusesExisting(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewEnrolledStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WithArgs("app-1").
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusEnrolled))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO enrolled_students`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM enrolled_students WHERE applicant_id = $1`)).
		WithArgs("app-1", "Rina", "0811").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("st-1"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applicants SET status = $2, archived_at = COALESCE(archived_at, $3)`)).
		WithArgs("app-1", models.ApplicantStatusEnrolled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Finalize(context.Background(), "app-1")
	require.NoError(t, err)
	assert.True(t, result.AlreadyFinalized)
	assert.Equal(t, "st-1", result.EnrolledStudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrolledStudentRepositoryFinalizeCreates(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewEnrolledStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applicants WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(applicantRow("app-1", models.ApplicantStatusApproved))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO enrolled_students`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("st-9"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applicants SET status = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Finalize(context.Background(), "app-1")
	require.NoError(t, err)
	assert.False(t, result.AlreadyFinalized)
	assert.Equal(t, "st-9", result.EnrolledStudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrolledStudentRepositoryUpdateStatusGuarded(t *testing.T) {
	db, mock := newAdmissionsRepoMock(t)
	repo := NewEnrolledStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE enrolled_students`)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), models.EnrolledStatusChange{
		ID:   "st-1",
		From: models.EnrolledStatusLeaveReview,
		To:   models.EnrolledStatusOnLeave,
	})
	assert.ErrorIs(t, err, ErrStatusConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}
