package report

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/google/uuid"
)

// Classify assigns exactly one status to every universe contact.
//
// Categories are scanned in the given order and the first set containing the
// contact's normalized email wins. A contact present in no category receives
// the fallback status. The result is a pure function of its inputs: identical
// universe and categories always yield an identical report (entry order is
// universe order, count iteration order is declared category order).
func Classify(universe *Universe, categories []*OutcomeSet, fallback string) *Report {
	statuses := make([]string, 0, len(categories)+1)
	counts := make(map[string]int, len(categories)+1)
	for _, c := range categories {
		statuses = append(statuses, c.Name)
		counts[c.Name] = 0
	}
	statuses = append(statuses, fallback)
	counts[fallback] = 0

	r := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]Entry, 0, universe.Len()),
		Counts:      counts,
		Statuses:    statuses,
		index:       make(map[string]int, universe.Len()),
	}

	for _, contact := range universe.Contacts {
		status := fallback
		for _, c := range categories {
			if c.Contains(contact.Normalized) {
				status = c.Name
				break
			}
		}
		counts[status]++
		r.index[contact.Normalized] = len(r.Entries)
		r.Entries = append(r.Entries, Entry{Email: contact.Email, Status: status})
	}

	r.TotalContacts = len(r.Entries)
	if len(categories) > 0 {
		r.SuccessfulCount = counts[categories[0].Name]
	}
	r.FailureCount = r.TotalContacts - r.SuccessfulCount
	return r
}

// Lookup resolves a raw email string to its assigned status. The query is
// normalized exactly like the input files, so "Foo@Bar.com", " foo@bar.com "
// and "foo@bar.com" resolve identically. An address absent from the original
// contact list yields Found=false.
func (r *Report) Lookup(raw string) LookupResult {
	i, ok := r.index[Normalize(raw)]
	if !ok {
		return LookupResult{Found: false}
	}
	e := r.Entries[i]
	return LookupResult{Found: true, Email: e.Email, Status: e.Status}
}

// WriteCSV writes the full report as a two-column CSV: the display-form
// email and its status, one row per unique contact. Output on identical
// inputs is byte-identical across runs.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Email", "Status"}); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if err := cw.Write([]string{e.Email, e.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
