package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academy-ops-api/internal/models"
)

const applicantColumns = `id, name, phone, parent_phone, campus, birth_date, gender, status, reject_reason, archived_at, created_at, updated_at`

// ApplicantRepository persists applicants of the admission pipeline.
type ApplicantRepository struct {
	db *sqlx.DB
}

// NewApplicantRepository constructs the repository.
func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// Create inserts a new applicant in the waiting state.
func (r *ApplicantRepository) Create(ctx context.Context, applicant *models.Applicant) error {
	if applicant.ID == "" {
		applicant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	applicant.Status = models.ApplicantStatusWaiting
	applicant.CreatedAt = now
	applicant.UpdatedAt = now

	const query = `INSERT INTO applicants (id, name, phone, parent_phone, campus, birth_date, gender, status, created_at, updated_at)
VALUES (:id, :name, :phone, :parent_phone, :campus, :birth_date, :gender, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, applicant); err != nil {
		return fmt.Errorf("insert applicant: %w", err)
	}
	return nil
}

// GetByID fetches an applicant including archived ones.
func (r *ApplicantRepository) GetByID(ctx context.Context, id string) (*models.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE id = $1`
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicantNotFound
		}
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	return &applicant, nil
}

type applicantReservationRow struct {
	models.Applicant
	ResSlotID    sql.NullString `db:"res_slot_id"`
	ResDate      sql.NullString `db:"res_slot_date"`
	ResTime      sql.NullString `db:"res_slot_time"`
	ResCreatedAt sql.NullTime   `db:"res_created_at"`
}

// List returns applicants with their active reservation, oldest first.
func (r *ApplicantRepository) List(ctx context.Context, filter models.ApplicantFilter) ([]models.ApplicantRecord, error) {
	query := strings.Builder{}
	query.WriteString(`
SELECT
	a.id, a.name, a.phone, a.parent_phone, a.campus, a.birth_date, a.gender, a.status,
	a.reject_reason, a.archived_at, a.created_at, a.updated_at,
	rv.slot_id AS res_slot_id,
	to_char(rv.slot_date, 'YYYY-MM-DD') AS res_slot_date,
	to_char(rv.slot_time, 'HH24:MI') AS res_slot_time,
	rv.created_at AS res_created_at
FROM applicants a
LEFT JOIN reservations rv ON rv.applicant_id = a.id
WHERE 1=1`)

	var args []interface{}
	if !filter.IncludeArchived {
		query.WriteString(" AND a.archived_at IS NULL")
	}
	if filter.Campus != "" {
		args = append(args, filter.Campus)
		fmt.Fprintf(&query, " AND a.campus = $%d", len(args))
	}
	if len(filter.Status) > 0 {
		values := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			values[i] = string(status)
		}
		args = append(args, pq.Array(values))
		fmt.Fprintf(&query, " AND a.status = ANY($%d)", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		fmt.Fprintf(&query, " AND (LOWER(a.name) LIKE $%d OR a.phone LIKE $%d)", len(args), len(args))
	}
	query.WriteString("\nORDER BY a.created_at ASC, a.id ASC")

	var rows []applicantReservationRow
	if err := r.db.SelectContext(ctx, &rows, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}

	records := make([]models.ApplicantRecord, 0, len(rows))
	for _, row := range rows {
		record := models.ApplicantRecord{Applicant: row.Applicant}
		if row.ResSlotID.Valid {
			record.Reservation = &models.Reservation{
				ApplicantID: row.ID,
				SlotID:      row.ResSlotID.String,
				Date:        row.ResDate.String,
				Time:        row.ResTime.String,
				CreatedAt:   row.ResCreatedAt.Time,
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// ApplicantStatusChange describes a guarded status update.
type ApplicantStatusChange struct {
	ID           string
	Allowed      []models.ApplicantStatus
	To           models.ApplicantStatus
	RejectReason *string
	Archive      bool
}

// UpdateStatus applies a status change if the current status is one of Allowed.
func (r *ApplicantRepository) UpdateStatus(ctx context.Context, change ApplicantStatusChange) (*models.Applicant, error) {
	allowed := make([]string, len(change.Allowed))
	for i, status := range change.Allowed {
		allowed[i] = string(status)
	}
	now := time.Now().UTC()
	var archivedAt *time.Time
	if change.Archive {
		archivedAt = &now
	}

	query := `UPDATE applicants
SET status = $2, reject_reason = COALESCE($3, reject_reason), archived_at = COALESCE(archived_at, $4), updated_at = $5
WHERE id = $1 AND status = ANY($6)
RETURNING ` + applicantColumns
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant, query, change.ID, change.To, change.RejectReason, archivedAt, now, pq.Array(allowed)); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update applicant status: %w", err)
		}
		if _, getErr := r.GetByID(ctx, change.ID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusConflict
	}
	return &applicant, nil
}
