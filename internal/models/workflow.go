package models

// EffectKind names a side effect bound to a checklist step.
type EffectKind string

const (
	EffectCalendarEvent      EffectKind = "calendar_event"
	EffectParentNotification EffectKind = "parent_notification"
	EffectInviteLink         EffectKind = "invite_link"
	EffectDocumentPackage    EffectKind = "document_package"
	EffectFinalize           EffectKind = "finalize"
)

// Effect dispatch outcomes reported to callers.
const (
	EffectStatusDispatched = "dispatched"
	EffectStatusApplied    = "applied"
	EffectStatusSkipped    = "skipped"
	EffectStatusFailed     = "failed"
)

// TriggeredEffect reports one side effect executed for a checklist write.
type TriggeredEffect struct {
	Kind   EffectKind `json:"kind"`
	Status string     `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// StageTransitionResult is returned by every checklist mutation.
type StageTransitionResult struct {
	ApplicantID      string            `json:"applicantId"`
	StepKey          string            `json:"stepKey"`
	Checked          bool              `json:"checked"`
	Changed          bool              `json:"changed"`
	PreviousStage    WorkflowStage     `json:"previousStage"`
	Stage            WorkflowStage     `json:"stage"`
	Checklist        []ChecklistEntry  `json:"checklist"`
	TriggeredEffects []TriggeredEffect `json:"triggeredEffects"`
	Finalize         *FinalizeResult   `json:"finalize,omitempty"`
}

// PipelineEntry is one applicant row of the admission pipeline.
type PipelineEntry struct {
	Applicant
	Stage       WorkflowStage `json:"stage"`
	Reservation *Reservation  `json:"reservation,omitempty"`
}

// ChecklistView is the catalog-ordered checklist of one applicant.
type ChecklistView struct {
	ApplicantID string           `json:"applicantId"`
	Status      ApplicantStatus  `json:"status"`
	Stage       WorkflowStage    `json:"stage"`
	Checklist   []ChecklistEntry `json:"checklist"`
}
