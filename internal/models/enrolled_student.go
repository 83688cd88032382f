package models

import "time"

// EnrolledStatus enumerates post-enrollment states.
type EnrolledStatus string

const (
	EnrolledStatusActive           EnrolledStatus = "active"
	EnrolledStatusLeaveReview      EnrolledStatus = "on_leave_review"
	EnrolledStatusOnLeave          EnrolledStatus = "on_leave"
	EnrolledStatusWithdrawalReview EnrolledStatus = "withdrawal_review"
	EnrolledStatusWithdrawn        EnrolledStatus = "withdrawn"
)

// Valid reports whether the status is known.
func (s EnrolledStatus) Valid() bool {
	switch s {
	case EnrolledStatusActive, EnrolledStatusLeaveReview, EnrolledStatusOnLeave,
		EnrolledStatusWithdrawalReview, EnrolledStatusWithdrawn:
		return true
	}
	return false
}

// InReview reports whether the student awaits a confirm or cancel decision.
func (s EnrolledStatus) InReview() bool {
	return s == EnrolledStatusLeaveReview || s == EnrolledStatusWithdrawalReview
}

// EnrolledStudent is the post-enrollment projection of a finalized applicant.
type EnrolledStudent struct {
	ID              string         `db:"id" json:"id"`
	ApplicantID     string         `db:"applicant_id" json:"applicantId"`
	Name            string         `db:"name" json:"name"`
	Phone           string         `db:"phone" json:"phone"`
	ParentPhone     string         `db:"parent_phone" json:"parentPhone"`
	Campus          string         `db:"campus" json:"campus"`
	BirthDate       *time.Time     `db:"birth_date" json:"birthDate,omitempty"`
	Gender          string         `db:"gender" json:"gender"`
	Status          EnrolledStatus `db:"status" json:"status"`
	ReviewReason    *string        `db:"review_reason" json:"reviewReason,omitempty"`
	EffectiveDate   *time.Time     `db:"effective_date" json:"effectiveDate,omitempty"`
	RefundRequested bool           `db:"refund_requested" json:"refundRequested"`
	ReviewedBy      *string        `db:"reviewed_by" json:"reviewedBy,omitempty"`
	EnrolledAt      time.Time      `db:"enrolled_at" json:"enrolledAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// EnrolledStudentFilter constrains enrolled student listing queries.
type EnrolledStudentFilter struct {
	Campus string
	Status []EnrolledStatus
}

// EnrolledStudentFromApplicant projects a finalized applicant into a student record.
func EnrolledStudentFromApplicant(a Applicant, at time.Time) EnrolledStudent {
	return EnrolledStudent{
		ApplicantID: a.ID,
		Name:        a.Name,
		Phone:       a.Phone,
		ParentPhone: a.ParentPhone,
		Campus:      a.Campus,
		BirthDate:   a.BirthDate,
		Gender:      a.Gender,
		Status:      EnrolledStatusActive,
		EnrolledAt:  at,
		UpdatedAt:   at,
	}
}

// FinalizeResult reports the enrolled student produced by finalize.
type FinalizeResult struct {
	EnrolledStudentID string `json:"enrolledStudentId"`
	AlreadyFinalized  bool   `json:"alreadyFinalized"`
}

// EnrolledStatusChange carries the fields written by a review transition.
type EnrolledStatusChange struct {
	ID              string
	From            EnrolledStatus
	To              EnrolledStatus
	ReviewReason    *string
	EffectiveDate   *time.Time
	RefundRequested bool
	ReviewedBy      *string
	UpdatedAt       time.Time
}
