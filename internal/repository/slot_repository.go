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

	"github.com/noah-isme/academy-ops-api/internal/models"
)

const slotColumns = `id, campus, to_char(slot_date, 'YYYY-MM-DD') AS slot_date, to_char(slot_time, 'HH24:MI') AS slot_time, capacity, occupied, is_open, created_at, updated_at`

// SlotRepository persists consultation slots. Occupancy is written only by BookingRepository.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create inserts a new slot with zero occupancy.
func (r *SlotRepository) Create(ctx context.Context, slot *models.ConsultationSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	slot.Occupied = 0
	slot.CreatedAt = now
	slot.UpdatedAt = now

	const query = `INSERT INTO slots (id, campus, slot_date, slot_time, capacity, occupied, is_open, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, slot.ID, slot.Campus, slot.Date, slot.Time, slot.Capacity, slot.IsOpen, slot.CreatedAt, slot.UpdatedAt); err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

// GetByID fetches a slot.
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*models.ConsultationSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	var slot models.ConsultationSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &slot, nil
}

// List returns slots ordered by date and time.
func (r *SlotRepository) List(ctx context.Context, filter models.SlotFilter) ([]models.ConsultationSlot, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + slotColumns + ` FROM slots WHERE 1=1`)

	var args []interface{}
	if filter.Date != "" {
		args = append(args, filter.Date)
		fmt.Fprintf(&query, " AND slot_date = $%d", len(args))
	}
	if filter.Campus != "" {
		args = append(args, filter.Campus)
		fmt.Fprintf(&query, " AND campus = $%d", len(args))
	}
	query.WriteString(" ORDER BY slot_date ASC, slot_time ASC, campus ASC")

	slots := []models.ConsultationSlot{}
	if err := r.db.SelectContext(ctx, &slots, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// SetOpen flips the open flag without touching occupancy.
func (r *SlotRepository) SetOpen(ctx context.Context, id string, isOpen bool) (*models.ConsultationSlot, error) {
	query := `UPDATE slots SET is_open = $2, updated_at = $3 WHERE id = $1 RETURNING ` + slotColumns
	var slot models.ConsultationSlot
	if err := r.db.GetContext(ctx, &slot, query, id, isOpen, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("set slot open: %w", err)
	}
	return &slot, nil
}
