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

const enrolledStudentColumns = `id, applicant_id, name, phone, parent_phone, campus, birth_date, gender, status, review_reason, effective_date, refund_requested, reviewed_by, enrolled_at, updated_at`

// EnrolledStudentRepository persists the post-enrollment projection.
type EnrolledStudentRepository struct {
	db *sqlx.DB
}

// NewEnrolledStudentRepository constructs the repository.
func NewEnrolledStudentRepository(db *sqlx.DB) *EnrolledStudentRepository {
	return &EnrolledStudentRepository{db: db}
}

// Finalize promotes the applicant into an enrolled student and archives it from the pipeline.
// A student already present for the natural key (lower(name), phone) is reused.
func (r *EnrolledStudentRepository) Finalize(ctx context.Context, applicantID string) (result *models.FinalizeResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin finalize transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	applicant, err := lockApplicant(ctx, tx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant.Status == models.ApplicantStatusRejected {
		return nil, ErrApplicantClosed
	}

	now := time.Now().UTC()
	student := models.EnrolledStudentFromApplicant(*applicant, now)
	student.ID = uuid.NewString()

	const insertQuery = `INSERT INTO enrolled_students (id, applicant_id, name, phone, parent_phone, campus, birth_date, gender, status, refund_requested, enrolled_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $11)
ON CONFLICT DO NOTHING
RETURNING id`
	result = &models.FinalizeResult{}
	err = tx.GetContext(ctx, &result.EnrolledStudentID, insertQuery,
		student.ID, student.ApplicantID, student.Name, student.Phone, student.ParentPhone, student.Campus,
		student.BirthDate, student.Gender, student.Status, student.EnrolledAt, student.UpdatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("insert enrolled student: %w", err)
		}
		const existingQuery = `SELECT id FROM enrolled_students WHERE applicant_id = $1 OR (LOWER(name) = LOWER($2) AND phone = $3) ORDER BY enrolled_at ASC LIMIT 1`
		if err = tx.GetContext(ctx, &result.EnrolledStudentID, existingQuery, applicant.ID, applicant.Name, applicant.Phone); err != nil {
			return nil, fmt.Errorf("load existing enrolled student: %w", err)
		}
		result.AlreadyFinalized = true
	}

	const archiveQuery = `UPDATE applicants SET status = $2, archived_at = COALESCE(archived_at, $3), updated_at = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, archiveQuery, applicant.ID, models.ApplicantStatusEnrolled, now); err != nil {
		return nil, fmt.Errorf("archive finalized applicant: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit finalize: %w", err)
	}
	return result, nil
}

// GetByID fetches an enrolled student.
func (r *EnrolledStudentRepository) GetByID(ctx context.Context, id string) (*models.EnrolledStudent, error) {
	query := `SELECT ` + enrolledStudentColumns + ` FROM enrolled_students WHERE id = $1`
	var student models.EnrolledStudent
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEnrolledStudentNotFound
		}
		return nil, fmt.Errorf("get enrolled student: %w", err)
	}
	return &student, nil
}

// GetByApplicant fetches the student produced from an applicant.
func (r *EnrolledStudentRepository) GetByApplicant(ctx context.Context, applicantID string) (*models.EnrolledStudent, error) {
	query := `SELECT ` + enrolledStudentColumns + ` FROM enrolled_students WHERE applicant_id = $1`
	var student models.EnrolledStudent
	if err := r.db.GetContext(ctx, &student, query, applicantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEnrolledStudentNotFound
		}
		return nil, fmt.Errorf("get enrolled student by applicant: %w", err)
	}
	return &student, nil
}

// List returns enrolled students ordered by name.
func (r *EnrolledStudentRepository) List(ctx context.Context, filter models.EnrolledStudentFilter) ([]models.EnrolledStudent, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + enrolledStudentColumns + ` FROM enrolled_students WHERE 1=1`)

	var args []interface{}
	if filter.Campus != "" {
		args = append(args, filter.Campus)
		fmt.Fprintf(&query, " AND campus = $%d", len(args))
	}
	if len(filter.Status) > 0 {
		values := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			values[i] = string(status)
		}
		args = append(args, pq.Array(values))
		fmt.Fprintf(&query, " AND status = ANY($%d)", len(args))
	}
	query.WriteString(" ORDER BY name ASC, id ASC")

	students := []models.EnrolledStudent{}
	if err := r.db.SelectContext(ctx, &students, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	return students, nil
}

// UpdateStatus applies a review transition guarded on the expected current status.
func (r *EnrolledStudentRepository) UpdateStatus(ctx context.Context, change models.EnrolledStatusChange) (*models.EnrolledStudent, error) {
	if change.UpdatedAt.IsZero() {
		change.UpdatedAt = time.Now().UTC()
	}
	query := `UPDATE enrolled_students
SET status = $2, review_reason = $3, effective_date = $4, refund_requested = $5, reviewed_by = $6, updated_at = $7
WHERE id = $1 AND status = $8
RETURNING ` + enrolledStudentColumns
	var student models.EnrolledStudent
	err := r.db.GetContext(ctx, &student, query,
		change.ID, change.To, change.ReviewReason, change.EffectiveDate, change.RefundRequested, change.ReviewedBy, change.UpdatedAt, change.From)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update enrolled student status: %w", err)
	}
	return &student, nil
}
