package dto

// CreateSlotRequest defines payload for opening a consultation slot.
type CreateSlotRequest struct {
	Campus   string `json:"campus" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,datetime=15:04"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	IsOpen   *bool  `json:"isOpen"`
}

// BookSlotRequest defines payload for booking a slot.
type BookSlotRequest struct {
	ApplicantID string `json:"applicantId" validate:"required"`
}

// ToggleSlotRequest defines payload for opening or closing a slot.
type ToggleSlotRequest struct {
	IsOpen *bool `json:"isOpen" validate:"required"`
}

// SetChecklistItemRequest defines payload for toggling a checklist step.
type SetChecklistItemRequest struct {
	Checked *bool  `json:"checked" validate:"required"`
	Actor   string `json:"actor"`
}

// CreateApplicantRequest defines signup payload.
type CreateApplicantRequest struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	ParentPhone string `json:"parentPhone"`
	Campus      string `json:"campus" validate:"required"`
	BirthDate   string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"omitempty,oneof=M F"`
}

// TransitionStatusRequest defines payload for an explicit staff status change.
type TransitionStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// PipelineQuery captures applicant pipeline query parameters.
type PipelineQuery struct {
	Campus   string
	Stage    string
	Status   string
	Search   string
	Page     int
	PageSize int
}

// LeaveReviewRequest defines payload for requesting a leave of absence.
type LeaveReviewRequest struct {
	Reason        string `json:"reason" validate:"required"`
	EffectiveDate string `json:"effectiveDate" validate:"required,datetime=2006-01-02"`
	Actor         string `json:"actor"`
}

// WithdrawalReviewRequest defines payload for requesting a withdrawal.
type WithdrawalReviewRequest struct {
	Reason          string `json:"reason" validate:"required"`
	EffectiveDate   string `json:"effectiveDate" validate:"required,datetime=2006-01-02"`
	RefundRequested bool   `json:"refundRequested"`
	Actor           string `json:"actor"`
}

// ReviewDecisionRequest carries the actor confirming or cancelling a review.
type ReviewDecisionRequest struct {
	Actor string `json:"actor"`
}
