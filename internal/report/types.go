// Package report reconciles a campaign's contact list against its delivery
// outcome files and classifies every unique contact into one status.
//
// Pipeline:
//
//	universe CSV ──┐
//	outcome CSVs ──┼─► load & normalize ─► classify ─► *Report
//	config       ──┘
//
// The universe is deduplicated by normalized email (first occurrence wins).
// Each contact receives the first outcome category, in declared priority
// order, whose set contains its normalized email; contacts matching no
// category receive the configured fallback status. The result is immutable
// once built.
package report

import "time"

// Contact is one deduplicated row of the universe list.
type Contact struct {
	// Email is the display form: the identifier exactly as it appeared in
	// the first occurrence in the universe file.
	Email string `json:"email"`
	// Normalized is the trimmed, lowercased form used for all matching.
	Normalized string `json:"-"`
}

// Universe is the deduplicated contact list in file order.
type Universe struct {
	Contacts []Contact
	// index maps normalized email to position in Contacts.
	index map[string]int
}

// Len returns the number of unique contacts.
func (u *Universe) Len() int {
	return len(u.Contacts)
}

// OutcomeSet is a named delivery outcome category backed by a membership set
// of normalized emails.
type OutcomeSet struct {
	Name    string
	members map[string]struct{}
}

// Contains reports whether the set holds the given normalized email.
func (s *OutcomeSet) Contains(normalized string) bool {
	_, ok := s.members[normalized]
	return ok
}

// Len returns the number of unique members.
func (s *OutcomeSet) Len() int {
	return len(s.members)
}

// Entry is one row of the final report: a contact and its assigned status.
type Entry struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Report maps every unique universe contact to exactly one delivery status.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	// Entries holds one row per unique contact, in universe file order.
	Entries []Entry `json:"entries"`

	// Counts is the status frequency table. Every declared status appears,
	// including zero-valued ones, so chart consumers always see the full
	// taxonomy.
	Counts map[string]int `json:"counts"`

	// Statuses lists every status label in priority order, fallback last.
	Statuses []string `json:"statuses"`

	// TotalContacts is the number of unique universe contacts.
	TotalContacts int `json:"total_contacts"`
	// SuccessfulCount is the count for the highest-priority status.
	SuccessfulCount int `json:"successful_count"`
	// FailureCount is TotalContacts minus SuccessfulCount.
	FailureCount int `json:"failure_count"`

	// index maps normalized email to position in Entries for lookups.
	index map[string]int
}

// LookupResult is the outcome of a single-email status query. Found=false
// means the address is not in the original contact list; that is a normal
// query outcome, not an error.
type LookupResult struct {
	Found  bool   `json:"found"`
	Email  string `json:"email,omitempty"`
	Status string `json:"status,omitempty"`
}
