package models

// WorkflowStage is the derived, human-facing pipeline position of an applicant.
type WorkflowStage string

const (
	StageWaiting           WorkflowStage = "waiting"
	StageReserved          WorkflowStage = "reserved"
	StageReservedConfirmed WorkflowStage = "reserved_confirmed"
	StageConsultDone       WorkflowStage = "consult_done"
	StageApproved          WorkflowStage = "approved"
	StageDocuments         WorkflowStage = "documents"
	StageEnrolled          WorkflowStage = "enrolled"
	StageRejected          WorkflowStage = "rejected"
)

// Valid reports whether the stage is known.
func (s WorkflowStage) Valid() bool {
	switch s {
	case StageWaiting, StageReserved, StageReservedConfirmed, StageConsultDone,
		StageApproved, StageDocuments, StageEnrolled, StageRejected:
		return true
	}
	return false
}

// DeriveStage computes the workflow stage from status and checklist state.
// It is the single derivation used by every read path.
func DeriveStage(status ApplicantStatus, checklist ChecklistSnapshot) WorkflowStage {
	switch status {
	case ApplicantStatusRejected:
		return StageRejected
	case ApplicantStatusEnrolled:
		return StageEnrolled
	}

	if checklist[StepDocsSubmitted] || checklist[StepStep3Completed] {
		return StageEnrolled
	}
	if checklist[StepAdmissionConfirmed] {
		return StageDocuments
	}

	switch status {
	case ApplicantStatusReserved:
		if checklist[StepConsultationConfirmed] {
			return StageReservedConfirmed
		}
		return StageReserved
	case ApplicantStatusReservedConfirmed:
		return StageReservedConfirmed
	case ApplicantStatusConsultDone:
		return StageConsultDone
	case ApplicantStatusApproved:
		return StageApproved
	default:
		return StageWaiting
	}
}
