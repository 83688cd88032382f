package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
)

// SlotStore is the in-memory slot store.
type SlotStore struct {
	s *Store
}

// Create inserts a slot with zero occupancy.
func (v *SlotStore) Create(_ context.Context, slot *models.ConsultationSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	slot.Occupied = 0
	slot.CreatedAt = now
	slot.UpdatedAt = now

	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.slots[slot.ID] = *slot
	return nil
}

// GetByID fetches a slot.
func (v *SlotStore) GetByID(_ context.Context, id string) (*models.ConsultationSlot, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	slot, ok := v.s.slots[id]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	return &slot, nil
}

// List returns slots ordered by date and time.
func (v *SlotStore) List(_ context.Context, filter models.SlotFilter) ([]models.ConsultationSlot, error) {
	v.s.mu.RLock()
	out := make([]models.ConsultationSlot, 0, len(v.s.slots))
	for _, slot := range v.s.slots {
		if filter.Date != "" && slot.Date != filter.Date {
			continue
		}
		if filter.Campus != "" && slot.Campus != filter.Campus {
			continue
		}
		out = append(out, slot)
	}
	v.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Campus < out[j].Campus
	})
	return out, nil
}

// SetOpen flips the open flag.
func (v *SlotStore) SetOpen(_ context.Context, id string, isOpen bool) (*models.ConsultationSlot, error) {
	unlock := v.s.lockSlots(id)
	defer unlock()

	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	slot, ok := v.s.slots[id]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	slot.IsOpen = isOpen
	slot.UpdatedAt = time.Now().UTC()
	v.s.slots[id] = slot
	return &slot, nil
}
