package models

import "time"

// ChecklistPhase groups onboarding steps. Phase order is informational only.
type ChecklistPhase string

const (
	PhaseReservation     ChecklistPhase = "reservation"
	PhaseDecision        ChecklistPhase = "decision"
	PhaseDocumentPackage ChecklistPhase = "document_package"
	PhasePreparation     ChecklistPhase = "preparation"
	PhaseTransport       ChecklistPhase = "transport"
	PhasePreAdmission    ChecklistPhase = "pre_admission"
	PhasePostAdmission   ChecklistPhase = "post_admission"
)

// Checklist step keys.
const (
	StepConsultationMsg       = "consultation_msg"
	StepConsultationConfirmed = "consultation_confirmed"
	StepAdmissionDecision     = "admission_decision"
	StepAdmissionConfirmed    = "admission_confirmed"
	StepDocsPackageSent       = "docs_package_sent"
	StepStep3Completed        = "step3_completed"
	StepDocsSubmitted         = "docs_submitted"
	StepUniformOrdered        = "uniform_ordered"
	StepTextbookOrdered       = "textbook_ordered"
	StepBandInvite            = "band_invite"
	StepBusRouteAssigned      = "bus_route_assigned"
	StepPickupConfirmed       = "pickup_confirmed"
	StepOrientationScheduled  = "orientation_scheduled"
	StepWelcomeMsg            = "welcome_msg"
	StepFirstWeekCheck        = "first_week_check"
	StepParentFeedback        = "parent_feedback"
)

// ChecklistStep describes one toggleable onboarding step.
type ChecklistStep struct {
	Key   string         `json:"key"`
	Phase ChecklistPhase `json:"phase"`
	Label string         `json:"label"`
}

var checklistCatalog = []ChecklistStep{
	{Key: StepConsultationMsg, Phase: PhaseReservation, Label: "Consultation details sent to parent"},
	{Key: StepConsultationConfirmed, Phase: PhaseReservation, Label: "Consultation confirmed"},
	{Key: StepAdmissionDecision, Phase: PhaseDecision, Label: "Admission decision recorded"},
	{Key: StepAdmissionConfirmed, Phase: PhaseDecision, Label: "Admission confirmed by parent"},
	{Key: StepDocsPackageSent, Phase: PhaseDocumentPackage, Label: "Document package sent"},
	{Key: StepStep3Completed, Phase: PhaseDocumentPackage, Label: "Document step 3 completed"},
	{Key: StepDocsSubmitted, Phase: PhaseDocumentPackage, Label: "Documents submitted"},
	{Key: StepUniformOrdered, Phase: PhasePreparation, Label: "Uniform ordered"},
	{Key: StepTextbookOrdered, Phase: PhasePreparation, Label: "Textbooks ordered"},
	{Key: StepBandInvite, Phase: PhasePreparation, Label: "Class band invite sent"},
	{Key: StepBusRouteAssigned, Phase: PhaseTransport, Label: "Bus route assigned"},
	{Key: StepPickupConfirmed, Phase: PhaseTransport, Label: "Pickup point confirmed"},
	{Key: StepOrientationScheduled, Phase: PhasePreAdmission, Label: "Orientation scheduled"},
	{Key: StepWelcomeMsg, Phase: PhasePreAdmission, Label: "Welcome message sent"},
	{Key: StepFirstWeekCheck, Phase: PhasePostAdmission, Label: "First week check-in"},
	{Key: StepParentFeedback, Phase: PhasePostAdmission, Label: "Parent feedback collected"},
}

var checklistIndex = func() map[string]ChecklistStep {
	idx := make(map[string]ChecklistStep, len(checklistCatalog))
	for _, step := range checklistCatalog {
		idx[step.Key] = step
	}
	return idx
}()

// ChecklistCatalog returns the ordered onboarding steps.
func ChecklistCatalog() []ChecklistStep {
	out := make([]ChecklistStep, len(checklistCatalog))
	copy(out, checklistCatalog)
	return out
}

// LookupChecklistStep resolves a step key.
func LookupChecklistStep(key string) (ChecklistStep, bool) {
	step, ok := checklistIndex[key]
	return step, ok
}

// ChecklistItem is the stored completion record for one applicant step.
type ChecklistItem struct {
	ApplicantID string     `db:"applicant_id" json:"applicantId"`
	StepKey     string     `db:"step_key" json:"stepKey"`
	Checked     bool       `db:"checked" json:"checked"`
	CheckedAt   *time.Time `db:"checked_at" json:"checkedAt,omitempty"`
	CheckedBy   *string    `db:"checked_by" json:"checkedBy,omitempty"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// ChecklistEntry is a catalog step merged with its stored state.
type ChecklistEntry struct {
	ChecklistStep
	Checked   bool       `json:"checked"`
	CheckedAt *time.Time `json:"checkedAt,omitempty"`
	CheckedBy *string    `json:"checkedBy,omitempty"`
}

// ChecklistSnapshot maps step keys to their checked flag.
type ChecklistSnapshot map[string]bool

// SnapshotOf folds items into a snapshot. Later items win per key.
func SnapshotOf(items []ChecklistItem) ChecklistSnapshot {
	snapshot := make(ChecklistSnapshot, len(items))
	for _, item := range items {
		snapshot[item.StepKey] = item.Checked
	}
	return snapshot
}

// MergeChecklist returns the full catalog annotated with stored state.
func MergeChecklist(items []ChecklistItem) []ChecklistEntry {
	stored := make(map[string]ChecklistItem, len(items))
	for _, item := range items {
		stored[item.StepKey] = item
	}
	entries := make([]ChecklistEntry, 0, len(checklistCatalog))
	for _, step := range checklistCatalog {
		entry := ChecklistEntry{ChecklistStep: step}
		if item, ok := stored[step.Key]; ok {
			entry.Checked = item.Checked
			entry.CheckedAt = item.CheckedAt
			entry.CheckedBy = item.CheckedBy
		}
		entries = append(entries, entry)
	}
	return entries
}

// DocumentPackage marks the document package flow as visible for an applicant.
type DocumentPackage struct {
	ApplicantID string    `db:"applicant_id" json:"applicantId"`
	OpenedBy    string    `db:"opened_by" json:"openedBy"`
	OpenedAt    time.Time `db:"opened_at" json:"openedAt"`
}
