package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academy-ops-api/internal/models"
)

const reservationColumns = `applicant_id, slot_id, to_char(slot_date, 'YYYY-MM-DD') AS slot_date, to_char(slot_time, 'HH24:MI') AS slot_time, created_at`

// BookingRepository is the only writer of slot occupancy. Every mutation runs in one
// transaction holding row locks on the applicant and the affected slots.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Book reserves slotID for the applicant, superseding any previous reservation.
func (r *BookingRepository) Book(ctx context.Context, applicantID, slotID string) (result *models.BookingResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction: %w", err)
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
	if applicant.Status.Closed() {
		return nil, ErrApplicantClosed
	}

	current, err := getReservation(ctx, tx, applicantID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.SlotID == slotID {
		slot, getErr := getSlot(ctx, tx, slotID, false)
		if getErr != nil {
			return nil, getErr
		}
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit booking: %w", err)
		}
		return &models.BookingResult{Reservation: *current, Slot: *slot, ApplicantStatus: applicant.Status, Unchanged: true}, nil
	}

	// lock in id order so concurrent supersedes cannot deadlock
	ids := []string{slotID}
	if current != nil {
		ids = append(ids, current.SlotID)
	}
	sort.Strings(ids)
	locked := make(map[string]*models.ConsultationSlot, len(ids))
	for _, id := range ids {
		slot, lockErr := getSlot(ctx, tx, id, true)
		if lockErr != nil {
			if id != slotID && errors.Is(lockErr, ErrSlotNotFound) {
				continue
			}
			return nil, lockErr
		}
		locked[id] = slot
	}

	target := locked[slotID]
	if !target.IsOpen {
		return nil, ErrSlotClosed
	}
	if target.Occupied >= target.Capacity {
		return nil, ErrSlotFull
	}

	now := time.Now().UTC()
	const incrementQuery = `UPDATE slots SET occupied = occupied + 1, updated_at = $2 WHERE id = $1 AND is_open AND occupied < capacity`
	res, err := tx.ExecContext(ctx, incrementQuery, slotID, now)
	if err != nil {
		return nil, fmt.Errorf("increment slot occupancy: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrSlotFull
	}
	target.Occupied++
	target.UpdatedAt = now

	var previousSlotID *string
	if current != nil {
		prev := current.SlotID
		previousSlotID = &prev
		if err = decrementSlot(ctx, tx, prev, now); err != nil {
			return nil, err
		}
	}

	reservation := models.Reservation{
		ApplicantID: applicantID,
		SlotID:      slotID,
		Date:        target.Date,
		Time:        target.Time,
		CreatedAt:   now,
	}
	const upsertQuery = `INSERT INTO reservations (applicant_id, slot_id, slot_date, slot_time, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (applicant_id) DO UPDATE SET slot_id = EXCLUDED.slot_id, slot_date = EXCLUDED.slot_date, slot_time = EXCLUDED.slot_time, created_at = EXCLUDED.created_at`
	if _, err = tx.ExecContext(ctx, upsertQuery, reservation.ApplicantID, reservation.SlotID, reservation.Date, reservation.Time, reservation.CreatedAt); err != nil {
		return nil, fmt.Errorf("upsert reservation: %w", err)
	}

	status := applicant.Status
	if tr, ok := models.ApplicantTransitionFor(status, models.ApplicantEventBook); ok {
		if err = setApplicantStatus(ctx, tx, applicantID, tr.To, now); err != nil {
			return nil, err
		}
		status = tr.To
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}
	return &models.BookingResult{
		Reservation:     reservation,
		Slot:            *target,
		PreviousSlotID:  previousSlotID,
		ApplicantStatus: status,
		Superseded:      previousSlotID != nil,
	}, nil
}

// Release clears the applicant's reservation. Releasing without a reservation is a no-op.
func (r *BookingRepository) Release(ctx context.Context, applicantID string) (result *models.ReleaseResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin release transaction: %w", err)
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

	var slotID string
	const deleteQuery = `DELETE FROM reservations WHERE applicant_id = $1 RETURNING slot_id`
	if err = tx.GetContext(ctx, &slotID, deleteQuery, applicantID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delete reservation: %w", err)
		}
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit release: %w", err)
		}
		return &models.ReleaseResult{Released: false, ApplicantStatus: applicant.Status}, nil
	}

	now := time.Now().UTC()
	if err = decrementSlot(ctx, tx, slotID, now); err != nil {
		return nil, err
	}

	status := applicant.Status
	if tr, ok := models.ApplicantTransitionFor(status, models.ApplicantEventRelease); ok {
		if err = setApplicantStatus(ctx, tx, applicantID, tr.To, now); err != nil {
			return nil, err
		}
		status = tr.To
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit release: %w", err)
	}
	return &models.ReleaseResult{Released: true, SlotID: &slotID, ApplicantStatus: status}, nil
}

// GetReservation returns the active reservation or nil.
func (r *BookingRepository) GetReservation(ctx context.Context, applicantID string) (*models.Reservation, error) {
	return getReservation(ctx, r.db, applicantID)
}

// ListReservations returns active reservations keyed by applicant.
func (r *BookingRepository) ListReservations(ctx context.Context, applicantIDs []string) (map[string]models.Reservation, error) {
	out := make(map[string]models.Reservation, len(applicantIDs))
	if len(applicantIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE applicant_id = ANY($1)`
	var rows []models.Reservation
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(applicantIDs)); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	for _, row := range rows {
		out[row.ApplicantID] = row
	}
	return out, nil
}

func lockApplicant(ctx context.Context, q sqlx.QueryerContext, id string) (*models.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE id = $1 FOR UPDATE`
	var applicant models.Applicant
	if err := sqlx.GetContext(ctx, q, &applicant, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicantNotFound
		}
		return nil, fmt.Errorf("lock applicant: %w", err)
	}
	return &applicant, nil
}

func getReservation(ctx context.Context, q sqlx.QueryerContext, applicantID string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE applicant_id = $1`
	var reservation models.Reservation
	if err := sqlx.GetContext(ctx, q, &reservation, query, applicantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &reservation, nil
}

func getSlot(ctx context.Context, q sqlx.QueryerContext, id string, forUpdate bool) (*models.ConsultationSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var slot models.ConsultationSlot
	if err := sqlx.GetContext(ctx, q, &slot, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &slot, nil
}

func decrementSlot(ctx context.Context, exec sqlx.ExecerContext, slotID string, now time.Time) error {
	const query = `UPDATE slots SET occupied = GREATEST(occupied - 1, 0), updated_at = $2 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, slotID, now); err != nil {
		return fmt.Errorf("decrement slot occupancy: %w", err)
	}
	return nil
}

func setApplicantStatus(ctx context.Context, exec sqlx.ExecerContext, id string, status models.ApplicantStatus, now time.Time) error {
	const query = `UPDATE applicants SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, status, now); err != nil {
		return fmt.Errorf("update applicant status: %w", err)
	}
	return nil
}
