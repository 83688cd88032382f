package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academy-ops-api/internal/models"
)

const checklistColumns = `applicant_id, step_key, checked, checked_at, checked_by, updated_at`

// ChecklistRepository persists per-applicant checklist items.
type ChecklistRepository struct {
	db *sqlx.DB
}

// NewChecklistRepository constructs the repository.
func NewChecklistRepository(db *sqlx.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// ListByApplicant returns every stored item for the applicant.
func (r *ChecklistRepository) ListByApplicant(ctx context.Context, applicantID string) ([]models.ChecklistItem, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items WHERE applicant_id = $1 ORDER BY step_key ASC`
	items := []models.ChecklistItem{}
	if err := r.db.SelectContext(ctx, &items, query, applicantID); err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	return items, nil
}

// ListByApplicants returns stored items grouped by applicant.
func (r *ChecklistRepository) ListByApplicants(ctx context.Context, applicantIDs []string) (map[string][]models.ChecklistItem, error) {
	out := make(map[string][]models.ChecklistItem, len(applicantIDs))
	if len(applicantIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + checklistColumns + ` FROM checklist_items WHERE applicant_id = ANY($1)`
	var items []models.ChecklistItem
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(applicantIDs)); err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	for _, item := range items {
		out[item.ApplicantID] = append(out[item.ApplicantID], item)
	}
	return out, nil
}

// Upsert stores the item and reports whether the checked flag changed.
func (r *ChecklistRepository) Upsert(ctx context.Context, item *models.ChecklistItem) (bool, error) {
	item.UpdatedAt = time.Now().UTC()
	if !item.Checked {
		item.CheckedAt = nil
		item.CheckedBy = nil
	}

	const query = `INSERT INTO checklist_items (applicant_id, step_key, checked, checked_at, checked_by, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (applicant_id, step_key) DO UPDATE
SET checked = EXCLUDED.checked, checked_at = EXCLUDED.checked_at, checked_by = EXCLUDED.checked_by, updated_at = EXCLUDED.updated_at
WHERE checklist_items.checked IS DISTINCT FROM EXCLUDED.checked
RETURNING applicant_id`
	var applicantID string
	err := r.db.QueryRowxContext(ctx, query, item.ApplicantID, item.StepKey, item.Checked, item.CheckedAt, item.CheckedBy, item.UpdatedAt).Scan(&applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("upsert checklist item: %w", err)
	}
	return true, nil
}

// DocumentPackageRepository records which applicants have the document package flow open.
type DocumentPackageRepository struct {
	db *sqlx.DB
}

// NewDocumentPackageRepository constructs the repository.
func NewDocumentPackageRepository(db *sqlx.DB) *DocumentPackageRepository {
	return &DocumentPackageRepository{db: db}
}

// Open makes the package visible. It reports false when it was already open.
func (r *DocumentPackageRepository) Open(ctx context.Context, applicantID, actor string) (bool, error) {
	const query = `INSERT INTO document_packages (applicant_id, opened_by, opened_at) VALUES ($1, $2, $3)
ON CONFLICT (applicant_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, applicantID, actor, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("open document package: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("open document package rows: %w", err)
	}
	return affected > 0, nil
}

// Get returns the package marker or nil when it was never opened.
func (r *DocumentPackageRepository) Get(ctx context.Context, applicantID string) (*models.DocumentPackage, error) {
	const query = `SELECT applicant_id, opened_by, opened_at FROM document_packages WHERE applicant_id = $1`
	var pkg models.DocumentPackage
	if err := r.db.GetContext(ctx, &pkg, query, applicantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document package: %w", err)
	}
	return &pkg, nil
}
