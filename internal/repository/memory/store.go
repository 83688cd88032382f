// Package memory provides in-process implementations of the admissions stores.
// Slot occupancy is serialized through per-slot mutexes, applicant mutations through
// per-applicant mutexes. Lock order is applicant first, then slots by ascending id.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/academy-ops-api/internal/models"
)

// Store holds all in-memory state.
type Store struct {
	mu sync.RWMutex

	slots        map[string]models.ConsultationSlot
	applicants   map[string]models.Applicant
	reservations map[string]models.Reservation
	checklists   map[string]map[string]models.ChecklistItem
	packages     map[string]models.DocumentPackage
	students     map[string]models.EnrolledStudent
	naturalKeys  map[string]string

	locks keyedLocks
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		slots:        make(map[string]models.ConsultationSlot),
		applicants:   make(map[string]models.Applicant),
		reservations: make(map[string]models.Reservation),
		checklists:   make(map[string]map[string]models.ChecklistItem),
		packages:     make(map[string]models.DocumentPackage),
		students:     make(map[string]models.EnrolledStudent),
		naturalKeys:  make(map[string]string),
	}
}

// Slots returns the slot store view.
func (s *Store) Slots() *SlotStore { return &SlotStore{s: s} }

// Bookings returns the booking engine store view.
func (s *Store) Bookings() *BookingStore { return &BookingStore{s: s} }

// Applicants returns the applicant store view.
func (s *Store) Applicants() *ApplicantStore { return &ApplicantStore{s: s} }

// Checklists returns the checklist store view.
func (s *Store) Checklists() *ChecklistStore { return &ChecklistStore{s: s} }

// DocumentPackages returns the document package store view.
func (s *Store) DocumentPackages() *DocumentPackageStore { return &DocumentPackageStore{s: s} }

// EnrolledStudents returns the enrolled student store view.
func (s *Store) EnrolledStudents() *EnrolledStudentStore { return &EnrolledStudentStore{s: s} }

type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}

func (s *Store) lockApplicant(id string) func() {
	l := s.locks.get("applicant:" + id)
	l.Lock()
	return l.Unlock
}

// lockSlots locks the distinct slot ids in ascending order.
func (s *Store) lockSlots(ids ...string) func() {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Strings(uniq)
	held := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		l := s.locks.get("slot:" + id)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func naturalKey(name, phone string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.TrimSpace(phone)
}
