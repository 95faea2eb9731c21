package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mansoorceksport/workoutlog/internal/domain"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// planRow is one accepted data row of a plan CSV, already validated
type planRow struct {
	line        int // 1-based, counted after the header
	exercise    string
	sets        int
	reps        string
	restSeconds int
	videoURL    string
}

// parsePlanCSV decodes and validates a whole plan CSV. Rows with a blank
// Exercise are dropped; they never reach the importer.
func parsePlanCSV(r io.Reader) ([]planRow, error) {
	// Strip a leading byte-order mark, transcoding UTF-16 if the BOM says so.
	// Anything else must already be valid UTF-8.
	decoded := transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(transform.Nop),
		encoding.UTF8Validator,
	))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1 // short rows are padded with empty values
	reader.LazyQuotes = true    // Box Jump 24" keeps its inch mark

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &domain.StructuralValidationError{Missing: sortedColumns(domain.RequiredImportColumns)}
	}
	if err != nil {
		return nil, readError(err, "failed to read CSV header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var missing []string
	for _, name := range domain.RequiredImportColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.StructuralValidationError{Missing: sortedColumns(missing)}
	}

	var rows []planRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, readError(err, fmt.Sprintf("row %d: failed to read CSV", line))
		}

		field := func(name string) string {
			idx := columns[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := field(domain.ColumnExercise)
		if name == "" {
			continue
		}

		setsRaw := field(domain.ColumnSets)
		sets, err := parseSets(setsRaw)
		if err != nil {
			return nil, &domain.RowParseError{Row: line, Field: domain.ColumnSets, Value: setsRaw, Err: err}
		}

		restRaw := field(domain.ColumnRestSeconds)
		rest, err := parseRestSeconds(restRaw)
		if err != nil {
			return nil, &domain.RowParseError{Row: line, Field: domain.ColumnRestSeconds, Value: restRaw, Err: err}
		}

		reps := field(domain.ColumnRepsOrTime)
		if reps == "" {
			reps = domain.DefaultPrescribedReps
		}

		rows = append(rows, planRow{
			line:        line,
			exercise:    name,
			sets:        sets,
			reps:        reps,
			restSeconds: rest,
			videoURL:    field(domain.ColumnYouTubeURL),
		})
	}

	return rows, nil
}

// readError classifies a csv.Reader failure. Bad encoding and CSV syntax are
// the uploader's fault; anything else is an I/O failure.
func readError(err error, msg string) error {
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return &domain.MalformedCSVError{Err: domain.ErrInvalidEncoding}
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &domain.MalformedCSVError{Line: parseErr.Line, Err: parseErr.Err}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

var errSetsNotPositive = errors.New("sets must be at least 1")

// parseSets reads a Sets cell: "" is 1, "3" is 3, and a hyphenated range such
// as "1-2" or "2-1" is the largest of its numbers. The result is always >= 1.
func parseSets(value string) (int, error) {
	n, err := parseSetsToken(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errSetsNotPositive
	}
	return n, nil
}

func parseSetsToken(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	if !strings.Contains(s, "-") {
		return strconv.Atoi(s)
	}

	max, found := 0, false
	for _, part := range strings.Split(s, "-") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, err
		}
		if !found || n > max {
			max, found = n, true
		}
	}
	if !found {
		return 1, nil
	}
	return max, nil
}

var errNegativeRest = errors.New("rest seconds cannot be negative")

func parseRestSeconds(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegativeRest
	}
	return n, nil
}

func sortedColumns(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
