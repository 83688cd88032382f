package repository

import "errors"

// Domain sentinels shared by the PostgreSQL and in-memory stores.
var (
	ErrSlotNotFound            = errors.New("slot not found")
	ErrSlotFull                = errors.New("slot is full")
	ErrSlotClosed              = errors.New("slot is closed")
	ErrApplicantNotFound       = errors.New("applicant not found")
	ErrApplicantClosed         = errors.New("applicant is no longer in the pipeline")
	ErrEnrolledStudentNotFound = errors.New("enrolled student not found")
	ErrStatusConflict          = errors.New("status changed concurrently")
)
