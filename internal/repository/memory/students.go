package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
)

// EnrolledStudentStore is the in-memory enrolled student store.
type EnrolledStudentStore struct {
	s *Store
}

// Finalize promotes the applicant into an enrolled student, reusing an existing
// record for the same natural key.
func (v *EnrolledStudentStore) Finalize(ctx context.Context, applicantID string) (*models.FinalizeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := v.s.lockApplicant(applicantID)
	defer unlock()

	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	applicant, ok := v.s.applicants[applicantID]
	if !ok {
		return nil, repository.ErrApplicantNotFound
	}
	if applicant.Status == models.ApplicantStatusRejected {
		return nil, repository.ErrApplicantClosed
	}

	now := time.Now().UTC()
	result := &models.FinalizeResult{}
	key := naturalKey(applicant.Name, applicant.Phone)
	if id, exists := v.s.naturalKeys[key]; exists {
		result.EnrolledStudentID = id
		result.AlreadyFinalized = true
	} else if id, exists := v.s.studentForApplicantLocked(applicantID); exists {
		result.EnrolledStudentID = id
		result.AlreadyFinalized = true
	} else {
		student := models.EnrolledStudentFromApplicant(applicant, now)
		student.ID = uuid.NewString()
		v.s.students[student.ID] = student
		v.s.naturalKeys[key] = student.ID
		result.EnrolledStudentID = student.ID
	}

	applicant.Status = models.ApplicantStatusEnrolled
	if applicant.ArchivedAt == nil {
		applicant.ArchivedAt = &now
	}
	applicant.UpdatedAt = now
	v.s.applicants[applicantID] = applicant
	return result, nil
}

func (s *Store) studentForApplicantLocked(applicantID string) (string, bool) {
	for id, student := range s.students {
		if student.ApplicantID == applicantID {
			return id, true
		}
	}
	return "", false
}

// GetByID fetches an enrolled student.
func (v *EnrolledStudentStore) GetByID(_ context.Context, id string) (*models.EnrolledStudent, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	student, ok := v.s.students[id]
	if !ok {
		return nil, repository.ErrEnrolledStudentNotFound
	}
	return &student, nil
}

// GetByApplicant fetches the student produced from an applicant.
func (v *EnrolledStudentStore) GetByApplicant(_ context.Context, applicantID string) (*models.EnrolledStudent, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	id, ok := v.s.studentForApplicantLocked(applicantID)
	if !ok {
		return nil, repository.ErrEnrolledStudentNotFound
	}
	student := v.s.students[id]
	return &student, nil
}

// List returns enrolled students ordered by name.
func (v *EnrolledStudentStore) List(_ context.Context, filter models.EnrolledStudentFilter) ([]models.EnrolledStudent, error) {
	statuses := make(map[models.EnrolledStatus]struct{}, len(filter.Status))
	for _, status := range filter.Status {
		statuses[status] = struct{}{}
	}

	v.s.mu.RLock()
	out := make([]models.EnrolledStudent, 0, len(v.s.students))
	for _, student := range v.s.students {
		if filter.Campus != "" && student.Campus != filter.Campus {
			continue
		}
		if len(statuses) > 0 {
			if _, ok := statuses[student.Status]; !ok {
				continue
			}
		}
		out = append(out, student)
	}
	v.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateStatus applies a review transition guarded on the expected current status.
func (v *EnrolledStudentStore) UpdateStatus(_ context.Context, change models.EnrolledStatusChange) (*models.EnrolledStudent, error) {
	if change.UpdatedAt.IsZero() {
		change.UpdatedAt = time.Now().UTC()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	student, ok := v.s.students[change.ID]
	if !ok || student.Status != change.From {
		return nil, repository.ErrStatusConflict
	}
	student.Status = change.To
	student.ReviewReason = change.ReviewReason
	student.EffectiveDate = change.EffectiveDate
	student.RefundRequested = change.RefundRequested
	student.ReviewedBy = change.ReviewedBy
	student.UpdatedAt = change.UpdatedAt
	v.s.students[change.ID] = student
	return &student, nil
}
