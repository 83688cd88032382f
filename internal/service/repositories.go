package service

import "context"

// Repositories groups the persistence ports of the admissions core. The PostgreSQL and in-memory
// stores both satisfy every field.
type Repositories struct {
	Slots            slotRepository
	Bookings         bookingRepository
	Applicants       applicantRepository
	Checklists       checklistRepository
	DocumentPackages documentPackageRepository
	EnrolledStudents enrolledStudentRepository
	Finalizer        enrollmentFinalizer
	// Ping reports store readiness; nil means always ready.
	Ping func(ctx context.Context) error
}
