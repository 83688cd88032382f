package models

import "time"

// Slot date and time layouts.
const (
	SlotDateLayout = "2006-01-02"
	SlotTimeLayout = "15:04"
)

// ConsultationSlot is a capacity-limited consultation or admission test slot.
type ConsultationSlot struct {
	ID        string    `db:"id" json:"id"`
	Campus    string    `db:"campus" json:"campus"`
	Date      string    `db:"slot_date" json:"date"`
	Time      string    `db:"slot_time" json:"time"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Occupied  int       `db:"occupied" json:"occupied"`
	IsOpen    bool      `db:"is_open" json:"isOpen"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Remaining returns the number of seats left.
func (s ConsultationSlot) Remaining() int {
	if s.Occupied >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Occupied
}

// SlotFilter constrains slot listing queries.
type SlotFilter struct {
	Date   string
	Campus string
}

// Reservation links one applicant to one slot.
type Reservation struct {
	ApplicantID string    `db:"applicant_id" json:"applicantId"`
	SlotID      string    `db:"slot_id" json:"slotId"`
	Date        string    `db:"slot_date" json:"date"`
	Time        string    `db:"slot_time" json:"time"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// BookingResult describes the committed outcome of a booking.
type BookingResult struct {
	Reservation     Reservation      `json:"reservation"`
	Slot            ConsultationSlot `json:"slot"`
	PreviousSlotID  *string          `json:"previousSlotId,omitempty"`
	ApplicantStatus ApplicantStatus  `json:"applicantStatus"`
	Superseded      bool             `json:"superseded"`
	Unchanged       bool             `json:"unchanged"`
}

// ReleaseResult describes the outcome of releasing a reservation.
type ReleaseResult struct {
	Released        bool            `json:"released"`
	SlotID          *string         `json:"slotId,omitempty"`
	ApplicantStatus ApplicantStatus `json:"applicantStatus"`
}
