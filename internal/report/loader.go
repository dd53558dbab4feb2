package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// MissingFileError reports a declared input file that does not exist.
// Fatal to report generation: no partial report is produced.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

// MissingColumnError reports a loaded file whose header lacks the declared
// identifier column. Fatal, same as a missing file.
type MissingColumnError struct {
	Path   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in %s", e.Column, e.Path)
}

// Normalize converts a raw identifier to its canonical matching form.
// The same normalization is applied at load time and at lookup time.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// LoadUniverse reads the original contact list, extracts the identifier
// column, and deduplicates by normalized email keeping the first occurrence.
// Rows with an empty identifier are dropped.
func LoadUniverse(path, column string) (*Universe, error) {
	u := &Universe{index: make(map[string]int)}
	err := readIdentifiers(path, column, func(raw, normalized string) {
		if _, dup := u.index[normalized]; dup {
			return
		}
		u.index[normalized] = len(u.Contacts)
		u.Contacts = append(u.Contacts, Contact{Email: raw, Normalized: normalized})
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// LoadOutcomeSet reads one outcome category file into a membership set of
// normalized emails. An existing file with zero data rows is a valid empty
// set.
func LoadOutcomeSet(name, path, column string) (*OutcomeSet, error) {
	s := &OutcomeSet{Name: name, members: make(map[string]struct{})}
	err := readIdentifiers(path, column, func(_, normalized string) {
		s.members[normalized] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// readIdentifiers streams a CSV file and invokes fn with the raw and
// normalized identifier of every row whose identifier is non-empty.
// The file is never fully buffered in memory.
func readIdentifiers(path, column string, fn func(raw, normalized string)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &MissingFileError{Path: path}
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReaderSize(f, 64*1024))
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		// No header row at all means the column cannot exist.
		return &MissingColumnError{Path: path, Column: column}
	}
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}

	idx := findColumn(header, column)
	if idx < 0 {
		return &MissingColumnError{Path: path, Column: column}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if idx >= len(record) {
			continue
		}
		raw := record[idx]
		normalized := Normalize(raw)
		if normalized == "" {
			continue
		}
		fn(raw, normalized)
	}
}

// findColumn locates the identifier column in a header row. Header cells are
// matched trimmed and case-insensitively; a UTF-8 BOM on the first cell is
// ignored.
func findColumn(header []string, column string) int {
	want := strings.ToLower(strings.TrimSpace(column))
	for i, cell := range header {
		cell = strings.TrimPrefix(cell, "\ufeff")
		if strings.ToLower(strings.TrimSpace(cell)) == want {
			return i
		}
	}
	return -1
}
