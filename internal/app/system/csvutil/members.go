// internal/app/system/csvutil/members.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dalemusser/panelhub/internal/app/system/inputval"
	"github.com/dalemusser/panelhub/internal/domain/models"
	waffletext "github.com/dalemusser/waffle/pantry/text"
)

// ErrNoHeader is returned for an empty file.
var ErrNoHeader = errors.New("csv has no header row")

// ParseOptions bounds a parse.
type ParseOptions struct {
	MaxRows   int // data rows; 0 means MaxRows
	MaxErrors int // row errors collected before giving up; 0 means 50
}

// DefaultParseOptions returns the limits used by the import endpoint.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxRows: MaxRows, MaxErrors: 50}
}

// RowError describes one rejected cell or row. Line is the 1-based line in
// the file (the header is line 1).
type RowError struct {
	Line   int    `json:"line"`
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d, %s: %s", e.Line, e.Column, e.Reason)
}

// ParseResult holds the members read from a file and any problems found.
type ParseResult struct {
	Rows      []models.Member
	Errors    []RowError
	Truncated bool // MaxErrors reached; later rows were not checked
}

// HasErrors reports whether any row was rejected.
func (r ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// ParseMemberCSV reads a member CSV from r. It never writes to a DB, so it is
// safe to call before any mutation.
//
// The first row must be a header naming known columns (short names such as
// "gender" or document paths such as "demographics.gender", any case) or
// meta.<key> columns. Blank rows are skipped. Multi-valued cells use ";".
// An email may appear only once per file.
//
// A non-nil error means the file itself could not be used (no header, bad
// columns, too many rows, malformed CSV). Row-level problems are reported
// in ParseResult.Errors; callers should not import when HasErrors is true.
func ParseMemberCSV(r io.Reader, opts ParseOptions) (ParseResult, error) {
	if opts.MaxRows <= 0 {
		opts.MaxRows = MaxRows
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = 50
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return ParseResult{}, ErrNoHeader
	}
	if err != nil {
		return ParseResult{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	setters, metaKeys, err := resolveHeader(header)
	if err != nil {
		return ParseResult{}, err
	}

	var res ParseResult
	seenEmail := map[string]int{} // folded email -> line
	dataRows := 0

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if blank(rec) {
			continue
		}

		dataRows++
		if dataRows > opts.MaxRows {
			return ParseResult{}, fmt.Errorf("csv has more than %d rows", opts.MaxRows)
		}
		if len(res.Errors) >= opts.MaxErrors {
			res.Truncated = true
			continue
		}

		var m models.Member
		rowOK := true
		fail := func(col, reason string) {
			res.Errors = append(res.Errors, RowError{Line: line, Column: col, Reason: reason})
			rowOK = false
		}

		if len(rec) > len(header) {
			fail("", "has "+strconv.Itoa(len(rec))+" fields, header has "+strconv.Itoa(len(header)))
			continue
		}
		for i, cell := range rec {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if key := metaKeys[i]; key != "" {
				v, ok := inputval.PlainText(cell)
				if !ok {
					fail(header[i], inputval.MarkupReason)
					continue
				}
				if m.Metadata == nil {
					m.Metadata = map[string]any{}
				}
				m.Metadata[key] = v
				continue
			}
			if reason := setters[i](&m, cell); reason != "" {
				fail(header[i], reason)
			}
		}

		if m.Email != "" {
			key := waffletext.Fold(m.Email)
			if prev, dup := seenEmail[key]; dup {
				fail("email", "duplicate of line "+strconv.Itoa(prev))
			} else {
				seenEmail[key] = line
			}
		}
		if rowOK {
			res.Rows = append(res.Rows, m)
		}
	}

	return res, nil
}

// resolveHeader maps each header cell to either a column setter or a
// metadata key. Unknown and repeated columns are rejected.
func resolveHeader(header []string) ([]setter, []string, error) {
	setters := make([]setter, len(header))
	metaKeys := make([]string, len(header))
	seen := map[string]bool{}

	var bad []string
	for i, h := range header {
		h = strings.TrimSpace(h)
		norm := strings.ToLower(h)
		if h == "" {
			bad = append(bad, "column "+strconv.Itoa(i+1)+" has no name")
			continue
		}
		if k, ok := strings.CutPrefix(h, MetaPrefix); ok {
			if !inputval.IsMetaKey(k) {
				bad = append(bad, h+": metadata key must contain only letters, digits and underscores")
				continue
			}
			metaKeys[i] = k
		} else {
			s, ok := lookupColumn(h)
			if !ok {
				bad = append(bad, h+": unknown column")
				continue
			}
			setters[i] = s
		}
		if seen[norm] {
			bad = append(bad, h+": repeated column")
		}
		seen[norm] = true
	}
	if len(bad) > 0 {
		return nil, nil, fmt.Errorf("invalid header: %s", strings.Join(bad, "; "))
	}
	return setters, metaKeys, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
