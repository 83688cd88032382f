package memory

import (
	"context"
	"time"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
)

// BookingStore is the in-memory booking engine store and the only writer of occupancy.
type BookingStore struct {
	s *Store
}

// Book reserves slotID for the applicant, superseding any previous reservation.
func (v *BookingStore) Book(ctx context.Context, applicantID, slotID string) (*models.BookingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlockApplicant := v.s.lockApplicant(applicantID)
	defer unlockApplicant()

	v.s.mu.RLock()
	applicant, ok := v.s.applicants[applicantID]
	current, hasCurrent := v.s.reservations[applicantID]
	v.s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrApplicantNotFound
	}
	if applicant.Status.Closed() {
		return nil, repository.ErrApplicantClosed
	}

	if hasCurrent && current.SlotID == slotID {
		v.s.mu.RLock()
		slot, found := v.s.slots[slotID]
		v.s.mu.RUnlock()
		if !found {
			return nil, repository.ErrSlotNotFound
		}
		return &models.BookingResult{Reservation: current, Slot: slot, ApplicantStatus: applicant.Status, Unchanged: true}, nil
	}

	previous := ""
	if hasCurrent {
		previous = current.SlotID
	}
	unlockSlots := v.s.lockSlots(slotID, previous)
	defer unlockSlots()

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	target, found := v.s.slots[slotID]
	if !found {
		return nil, repository.ErrSlotNotFound
	}
	if !target.IsOpen {
		return nil, repository.ErrSlotClosed
	}
	if target.Occupied >= target.Capacity {
		return nil, repository.ErrSlotFull
	}

	now := time.Now().UTC()
	target.Occupied++
	target.UpdatedAt = now
	v.s.slots[slotID] = target

	var previousSlotID *string
	if hasCurrent {
		prev := current.SlotID
		previousSlotID = &prev
		v.s.decrementLocked(prev, now)
	}

	reservation := models.Reservation{
		ApplicantID: applicantID,
		SlotID:      slotID,
		Date:        target.Date,
		Time:        target.Time,
		CreatedAt:   now,
	}
	v.s.reservations[applicantID] = reservation

	if tr, ok := models.ApplicantTransitionFor(applicant.Status, models.ApplicantEventBook); ok {
		applicant.Status = tr.To
		applicant.UpdatedAt = now
		v.s.applicants[applicantID] = applicant
	}

	return &models.BookingResult{
		Reservation:     reservation,
		Slot:            target,
		PreviousSlotID:  previousSlotID,
		ApplicantStatus: applicant.Status,
		Superseded:      previousSlotID != nil,
	}, nil
}

// Release clears the applicant's reservation. Releasing twice is a no-op.
func (v *BookingStore) Release(ctx context.Context, applicantID string) (*models.ReleaseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlockApplicant := v.s.lockApplicant(applicantID)
	defer unlockApplicant()

	v.s.mu.RLock()
	applicant, ok := v.s.applicants[applicantID]
	current, hasCurrent := v.s.reservations[applicantID]
	v.s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrApplicantNotFound
	}
	if !hasCurrent {
		return &models.ReleaseResult{Released: false, ApplicantStatus: applicant.Status}, nil
	}

	unlockSlots := v.s.lockSlots(current.SlotID)
	defer unlockSlots()

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	now := time.Now().UTC()
	v.s.decrementLocked(current.SlotID, now)
	delete(v.s.reservations, applicantID)

	if tr, ok := models.ApplicantTransitionFor(applicant.Status, models.ApplicantEventRelease); ok {
		applicant.Status = tr.To
		applicant.UpdatedAt = now
		v.s.applicants[applicantID] = applicant
	}

	slotID := current.SlotID
	return &models.ReleaseResult{Released: true, SlotID: &slotID, ApplicantStatus: applicant.Status}, nil
}

// GetReservation returns the active reservation or nil.
func (v *BookingStore) GetReservation(_ context.Context, applicantID string) (*models.Reservation, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	reservation, ok := v.s.reservations[applicantID]
	if !ok {
		return nil, nil
	}
	return &reservation, nil
}

// ListReservations returns active reservations keyed by applicant.
func (v *BookingStore) ListReservations(_ context.Context, applicantIDs []string) (map[string]models.Reservation, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make(map[string]models.Reservation, len(applicantIDs))
	for _, id := range applicantIDs {
		if reservation, ok := v.s.reservations[id]; ok {
			out[id] = reservation
		}
	}
	return out, nil
}

// decrementLocked requires s.mu and the slot lock to be held.
func (s *Store) decrementLocked(slotID string, now time.Time) {
	slot, ok := s.slots[slotID]
	if !ok {
		return
	}
	if slot.Occupied > 0 {
		slot.Occupied--
	}
	slot.UpdatedAt = now
	s.slots[slotID] = slot
}
