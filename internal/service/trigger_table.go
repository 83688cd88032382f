package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/pkg/gateway"
)

// TriggerTable maps checklist step keys to the side effects run when the step is checked.
type TriggerTable map[string][]models.EffectKind

// DefaultTriggerTable returns the admissions trigger bindings.
func DefaultTriggerTable() TriggerTable {
	return TriggerTable{
		models.StepConsultationMsg:       {models.EffectParentNotification},
		models.StepConsultationConfirmed: {models.EffectCalendarEvent},
		models.StepAdmissionConfirmed:    {models.EffectDocumentPackage},
		models.StepStep3Completed:        {models.EffectFinalize},
		models.StepDocsSubmitted:         {models.EffectFinalize},
		models.StepBandInvite:            {models.EffectInviteLink},
		models.StepWelcomeMsg:            {models.EffectParentNotification},
		models.StepOrientationScheduled:  {models.EffectCalendarEvent},
	}
}

// EffectsFor returns the effects bound to the step, or nil.
func (t TriggerTable) EffectsFor(stepKey string) []models.EffectKind {
	effects := t[stepKey]
	if len(effects) == 0 {
		return nil
	}
	out := make([]models.EffectKind, len(effects))
	copy(out, effects)
	return out
}

// Validate rejects bindings to unknown steps.
func (t TriggerTable) Validate() error {
	for key, effects := range t {
		if _, ok := models.LookupChecklistStep(key); !ok {
			return fmt.Errorf("trigger bound to unknown step %q", key)
		}
		for _, effect := range effects {
			switch effect {
			case models.EffectCalendarEvent, models.EffectParentNotification, models.EffectInviteLink,
				models.EffectDocumentPackage, models.EffectFinalize:
			default:
				return fmt.Errorf("step %q bound to unknown effect %q", key, effect)
			}
		}
	}
	return nil
}

// triggerContext carries what instruction builders may read.
type triggerContext struct {
	applicant   models.Applicant
	reservation *models.Reservation
	stepKey     string
	actor       string
	now         time.Time
	location    *time.Location
}

func (tc triggerContext) recipient() string {
	if tc.applicant.ParentPhone != "" {
		return tc.applicant.ParentPhone
	}
	return tc.applicant.Phone
}

// buildInstruction renders the gateway instruction for a gateway-bound effect.
func buildInstruction(kind models.EffectKind, tc triggerContext) (gateway.Instruction, error) {
	ins := gateway.Instruction{ApplicantID: tc.applicant.ID, CreatedAt: tc.now}
	switch kind {
	case models.EffectCalendarEvent:
		ins.Kind = gateway.KindCalendarEvent
		ins.Payload = calendarPayload(tc)
	case models.EffectParentNotification:
		ins.Kind = gateway.KindParentNotification
		ins.Payload = notificationPayload(tc)
	case models.EffectInviteLink:
		ins.Kind = gateway.KindInviteLink
		ins.Payload = map[string]interface{}{
			"to":       tc.recipient(),
			"campus":   tc.applicant.Campus,
			"template": "band_invite",
			"name":     tc.applicant.Name,
		}
	default:
		return gateway.Instruction{}, fmt.Errorf("effect %q is not gateway bound", kind)
	}
	ins.Payload["stepKey"] = tc.stepKey
	ins.Payload["requestedBy"] = tc.actor
	return ins, nil
}

func calendarPayload(tc triggerContext) map[string]interface{} {
	title := fmt.Sprintf("Consultation: %s", tc.applicant.Name)
	if tc.stepKey == models.StepOrientationScheduled {
		title = fmt.Sprintf("Orientation: %s", tc.applicant.Name)
	}
	payload := map[string]interface{}{
		"title":    title,
		"campus":   tc.applicant.Campus,
		"timezone": tc.location.String(),
	}
	if tc.reservation != nil && tc.stepKey == models.StepConsultationConfirmed {
		payload["date"] = tc.reservation.Date
		payload["time"] = tc.reservation.Time
		payload["allDay"] = false
		payload["slotId"] = tc.reservation.SlotID
		return payload
	}
	payload["date"] = tc.now.In(tc.location).Format(models.SlotDateLayout)
	payload["allDay"] = true
	return payload
}

func notificationPayload(tc triggerContext) map[string]interface{} {
	payload := map[string]interface{}{
		"to":     tc.recipient(),
		"name":   tc.applicant.Name,
		"campus": tc.applicant.Campus,
	}
	switch {
	case tc.stepKey == models.StepWelcomeMsg:
		payload["template"] = "welcome"
		payload["message"] = fmt.Sprintf("Welcome to %s, %s. We look forward to the first day.", tc.applicant.Campus, tc.applicant.Name)
	case tc.reservation != nil:
		payload["template"] = "consultation_details"
		payload["date"] = tc.reservation.Date
		payload["time"] = tc.reservation.Time
		payload["message"] = fmt.Sprintf("Consultation for %s is scheduled on %s at %s (%s).", tc.applicant.Name, tc.reservation.Date, tc.reservation.Time, tc.applicant.Campus)
	default:
		payload["template"] = "consultation_generic"
		payload["message"] = fmt.Sprintf("Thank you for applying to %s. Our staff will contact you to arrange a consultation.", tc.applicant.Campus)
	}
	return payload
}
