package models

// ApplicantEvent names a staff or engine action on an applicant.
type ApplicantEvent string

const (
	ApplicantEventBook        ApplicantEvent = "book"
	ApplicantEventRelease     ApplicantEvent = "release"
	ApplicantEventConfirm     ApplicantEvent = "confirm_reservation"
	ApplicantEventConsultDone ApplicantEvent = "consult_done"
	ApplicantEventApprove     ApplicantEvent = "approve"
	ApplicantEventReject      ApplicantEvent = "reject"
	ApplicantEventFinalize    ApplicantEvent = "finalize"
)

// ApplicantTransition is one allowed edge of the admission state machine.
type ApplicantTransition struct {
	From  ApplicantStatus
	To    ApplicantStatus
	Event ApplicantEvent
	// Staff marks edges reachable through the explicit status endpoint.
	Staff bool
}

var applicantTransitions = []ApplicantTransition{
	// booking engine
	{From: ApplicantStatusWaiting, To: ApplicantStatusReserved, Event: ApplicantEventBook},
	{From: ApplicantStatusReserved, To: ApplicantStatusWaiting, Event: ApplicantEventRelease},

	// staff progression
	{From: ApplicantStatusReserved, To: ApplicantStatusReservedConfirmed, Event: ApplicantEventConfirm, Staff: true},
	{From: ApplicantStatusReservedConfirmed, To: ApplicantStatusConsultDone, Event: ApplicantEventConsultDone, Staff: true},
	{From: ApplicantStatusConsultDone, To: ApplicantStatusApproved, Event: ApplicantEventApprove, Staff: true},

	// rejection from any open state
	{From: ApplicantStatusWaiting, To: ApplicantStatusRejected, Event: ApplicantEventReject, Staff: true},
	{From: ApplicantStatusReserved, To: ApplicantStatusRejected, Event: ApplicantEventReject, Staff: true},
	{From: ApplicantStatusReservedConfirmed, To: ApplicantStatusRejected, Event: ApplicantEventReject, Staff: true},
	{From: ApplicantStatusConsultDone, To: ApplicantStatusRejected, Event: ApplicantEventReject, Staff: true},
	{From: ApplicantStatusApproved, To: ApplicantStatusRejected, Event: ApplicantEventReject, Staff: true},

	// finalize
	{From: ApplicantStatusWaiting, To: ApplicantStatusEnrolled, Event: ApplicantEventFinalize},
	{From: ApplicantStatusReserved, To: ApplicantStatusEnrolled, Event: ApplicantEventFinalize},
	{From: ApplicantStatusReservedConfirmed, To: ApplicantStatusEnrolled, Event: ApplicantEventFinalize},
	{From: ApplicantStatusConsultDone, To: ApplicantStatusEnrolled, Event: ApplicantEventFinalize},
	{From: ApplicantStatusApproved, To: ApplicantStatusEnrolled, Event: ApplicantEventFinalize},
}

// ApplicantTransitionFor returns the edge leaving from for the event.
func ApplicantTransitionFor(from ApplicantStatus, ev ApplicantEvent) (ApplicantTransition, bool) {
	for _, tr := range applicantTransitions {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return ApplicantTransition{}, false
}

// StaffApplicantTransition returns the staff edge between two states.
func StaffApplicantTransition(from, to ApplicantStatus) (ApplicantTransition, bool) {
	for _, tr := range applicantTransitions {
		if tr.Staff && tr.From == from && tr.To == to {
			return tr, true
		}
	}
	return ApplicantTransition{}, false
}

// EnrolledEvent names an action on an enrolled student.
type EnrolledEvent string

const (
	EnrolledEventRequestLeave      EnrolledEvent = "request_leave"
	EnrolledEventRequestWithdrawal EnrolledEvent = "request_withdrawal"
	EnrolledEventConfirmReview     EnrolledEvent = "confirm_review"
	EnrolledEventCancelReview      EnrolledEvent = "cancel_review"
	EnrolledEventReturn            EnrolledEvent = "return_from_leave"
)

// EnrolledTransition is one allowed edge of the enrolled student state machine.
type EnrolledTransition struct {
	From  EnrolledStatus
	To    EnrolledStatus
	Event EnrolledEvent
}

// Review sub-states only reach their terminal state through confirm_review.
var enrolledTransitions = []EnrolledTransition{
	{From: EnrolledStatusActive, To: EnrolledStatusLeaveReview, Event: EnrolledEventRequestLeave},
	{From: EnrolledStatusActive, To: EnrolledStatusWithdrawalReview, Event: EnrolledEventRequestWithdrawal},

	{From: EnrolledStatusLeaveReview, To: EnrolledStatusOnLeave, Event: EnrolledEventConfirmReview},
	{From: EnrolledStatusWithdrawalReview, To: EnrolledStatusWithdrawn, Event: EnrolledEventConfirmReview},

	{From: EnrolledStatusLeaveReview, To: EnrolledStatusActive, Event: EnrolledEventCancelReview},
	{From: EnrolledStatusWithdrawalReview, To: EnrolledStatusActive, Event: EnrolledEventCancelReview},

	{From: EnrolledStatusOnLeave, To: EnrolledStatusActive, Event: EnrolledEventReturn},
}

// EnrolledTransitionFor returns the edge leaving from for the event.
func EnrolledTransitionFor(from EnrolledStatus, ev EnrolledEvent) (EnrolledTransition, bool) {
	for _, tr := range enrolledTransitions {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return EnrolledTransition{}, false
}
