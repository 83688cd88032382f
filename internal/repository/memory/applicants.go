package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
)

// ApplicantStore is the in-memory applicant store.
type ApplicantStore struct {
	s *Store
}

// Create inserts a new applicant in the waiting state.
func (v *ApplicantStore) Create(_ context.Context, applicant *models.Applicant) error {
	if applicant.ID == "" {
		applicant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	applicant.Status = models.ApplicantStatusWaiting
	applicant.CreatedAt = now
	applicant.UpdatedAt = now

	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.applicants[applicant.ID] = *applicant
	return nil
}

// GetByID fetches an applicant including archived ones.
func (v *ApplicantStore) GetByID(_ context.Context, id string) (*models.Applicant, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	applicant, ok := v.s.applicants[id]
	if !ok {
		return nil, repository.ErrApplicantNotFound
	}
	return &applicant, nil
}

// List returns applicants with their active reservation, oldest first.
func (v *ApplicantStore) List(_ context.Context, filter models.ApplicantFilter) ([]models.ApplicantRecord, error) {
	statuses := make(map[models.ApplicantStatus]struct{}, len(filter.Status))
	for _, status := range filter.Status {
		statuses[status] = struct{}{}
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	v.s.mu.RLock()
	records := make([]models.ApplicantRecord, 0, len(v.s.applicants))
	for _, applicant := range v.s.applicants {
		if !filter.IncludeArchived && applicant.Archived() {
			continue
		}
		if filter.Campus != "" && applicant.Campus != filter.Campus {
			continue
		}
		if len(statuses) > 0 {
			if _, ok := statuses[applicant.Status]; !ok {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(applicant.Name), search) && !strings.Contains(applicant.Phone, search) {
			continue
		}
		record := models.ApplicantRecord{Applicant: applicant}
		if reservation, ok := v.s.reservations[applicant.ID]; ok {
			r := reservation
			record.Reservation = &r
		}
		records = append(records, record)
	}
	v.s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// UpdateStatus applies a status change if the current status is one of Allowed.
func (v *ApplicantStore) UpdateStatus(_ context.Context, change repository.ApplicantStatusChange) (*models.Applicant, error) {
	unlock := v.s.lockApplicant(change.ID)
	defer unlock()

	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	applicant, ok := v.s.applicants[change.ID]
	if !ok {
		return nil, repository.ErrApplicantNotFound
	}
	allowed := false
	for _, status := range change.Allowed {
		if applicant.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, repository.ErrStatusConflict
	}

	now := time.Now().UTC()
	applicant.Status = change.To
	if change.RejectReason != nil {
		reason := *change.RejectReason
		applicant.RejectReason = &reason
	}
	if change.Archive && applicant.ArchivedAt == nil {
		applicant.ArchivedAt = &now
	}
	applicant.UpdatedAt = now
	v.s.applicants[change.ID] = applicant
	return &applicant, nil
}
