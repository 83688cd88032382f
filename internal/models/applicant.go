package models

import "time"

// ApplicantStatus enumerates admission pipeline states.
type ApplicantStatus string

const (
	ApplicantStatusWaiting           ApplicantStatus = "waiting"
	ApplicantStatusReserved          ApplicantStatus = "reserved"
	ApplicantStatusReservedConfirmed ApplicantStatus = "reserved_confirmed"
	ApplicantStatusConsultDone       ApplicantStatus = "consult_done"
	ApplicantStatusApproved          ApplicantStatus = "approved"
	ApplicantStatusEnrolled          ApplicantStatus = "enrolled"
	ApplicantStatusRejected          ApplicantStatus = "rejected"
)

// Valid reports whether the status is a known pipeline state.
func (s ApplicantStatus) Valid() bool {
	switch s {
	case ApplicantStatusWaiting, ApplicantStatusReserved, ApplicantStatusReservedConfirmed,
		ApplicantStatusConsultDone, ApplicantStatusApproved, ApplicantStatusEnrolled, ApplicantStatusRejected:
		return true
	}
	return false
}

// Closed reports whether the applicant left the pipeline.
func (s ApplicantStatus) Closed() bool {
	return s == ApplicantStatusEnrolled || s == ApplicantStatusRejected
}

// Applicant is a prospective student before enrollment is finalized.
type Applicant struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Phone        string          `db:"phone" json:"phone"`
	ParentPhone  string          `db:"parent_phone" json:"parentPhone"`
	Campus       string          `db:"campus" json:"campus"`
	BirthDate    *time.Time      `db:"birth_date" json:"birthDate,omitempty"`
	Gender       string          `db:"gender" json:"gender"`
	Status       ApplicantStatus `db:"status" json:"status"`
	RejectReason *string         `db:"reject_reason" json:"rejectReason,omitempty"`
	ArchivedAt   *time.Time      `db:"archived_at" json:"archivedAt,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// Archived reports whether the applicant is hidden from the active pipeline.
func (a Applicant) Archived() bool {
	return a.ArchivedAt != nil
}

// ApplicantFilter constrains applicant listing queries.
type ApplicantFilter struct {
	Campus          string
	Status          []ApplicantStatus
	Search          string
	IncludeArchived bool
}

// ApplicantRecord couples an applicant with its active reservation, if any.
type ApplicantRecord struct {
	Applicant
	Reservation *Reservation `json:"reservation,omitempty"`
}
