package memory

import (
	"context"
	"sort"
	"time"

	"github.com/noah-isme/academy-ops-api/internal/models"
)

// ChecklistStore is the in-memory checklist store.
type ChecklistStore struct {
	s *Store
}

// ListByApplicant returns every stored item for the applicant.
func (v *ChecklistStore) ListByApplicant(_ context.Context, applicantID string) ([]models.ChecklistItem, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return v.s.itemsLocked(applicantID), nil
}

// ListByApplicants returns stored items grouped by applicant.
func (v *ChecklistStore) ListByApplicants(_ context.Context, applicantIDs []string) (map[string][]models.ChecklistItem, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make(map[string][]models.ChecklistItem, len(applicantIDs))
	for _, id := range applicantIDs {
		if items := v.s.itemsLocked(id); len(items) > 0 {
			out[id] = items
		}
	}
	return out, nil
}

// Upsert stores the item and reports whether the checked flag changed.
func (v *ChecklistStore) Upsert(_ context.Context, item *models.ChecklistItem) (bool, error) {
	item.UpdatedAt = time.Now().UTC()
	if !item.Checked {
		item.CheckedAt = nil
		item.CheckedBy = nil
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	steps, ok := v.s.checklists[item.ApplicantID]
	if !ok {
		steps = make(map[string]models.ChecklistItem)
		v.s.checklists[item.ApplicantID] = steps
	}
	if existing, found := steps[item.StepKey]; found && existing.Checked == item.Checked {
		return false, nil
	}
	steps[item.StepKey] = *item
	return true, nil
}

func (s *Store) itemsLocked(applicantID string) []models.ChecklistItem {
	steps := s.checklists[applicantID]
	items := make([]models.ChecklistItem, 0, len(steps))
	for _, item := range steps {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StepKey < items[j].StepKey })
	return items
}

// DocumentPackageStore is the in-memory document package store.
type DocumentPackageStore struct {
	s *Store
}

// Open makes the package visible. It reports false when it was already open.
func (v *DocumentPackageStore) Open(_ context.Context, applicantID, actor string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.packages[applicantID]; ok {
		return false, nil
	}
	v.s.packages[applicantID] = models.DocumentPackage{ApplicantID: applicantID, OpenedBy: actor, OpenedAt: time.Now().UTC()}
	return true, nil
}

// Get returns the package marker or nil when it was never opened.
func (v *DocumentPackageStore) Get(_ context.Context, applicantID string) (*models.DocumentPackage, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	pkg, ok := v.s.packages[applicantID]
	if !ok {
		return nil, nil
	}
	return &pkg, nil
}
