package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEncoding is wrapped by MalformedCSVError when the upload is not UTF-8
var ErrInvalidEncoding = errors.New("file is not valid UTF-8 text")

// Required CSV columns for a plan import
const (
	ColumnExercise    = "Exercise"
	ColumnSets        = "Sets"
	ColumnRepsOrTime  = "Reps_or_Time"
	ColumnRestSeconds = "Rest_Seconds"
	ColumnYouTubeURL  = "YouTube_URL"
)

// RequiredImportColumns lists every header a plan CSV must carry
var RequiredImportColumns = []string{
	ColumnExercise,
	ColumnSets,
	ColumnRepsOrTime,
	ColumnRestSeconds,
	ColumnYouTubeURL,
}

// ImportSummary reports what a successful plan import changed
type ImportSummary struct {
	RunID            string `json:"run_id"`
	PlanID           string `json:"plan_id"`
	PlanDate         string `json:"plan_date"`
	CreatedExercises int    `json:"created_exercises"`
	UpdatedExercises int    `json:"updated_exercises"`
	CreatedItems     int    `json:"created_items"`
}

// Message is the admin-facing success text
func (s *ImportSummary) Message() string {
	return fmt.Sprintf("Imported %d items into %s. Exercises created: %d, updated: %d.",
		s.CreatedItems, s.PlanDate, s.CreatedExercises, s.UpdatedExercises)
}

// StructuralValidationError is returned when required header columns are absent.
// Missing is sorted alphabetically.
type StructuralValidationError struct {
	Missing []string
}

func (e *StructuralValidationError) Error() string {
	return "Missing required CSV columns: " + strings.Join(e.Missing, ", ")
}

// MalformedCSVError is returned when the upload cannot be read as UTF-8 CSV.
// Line is the physical file line when the CSV reader reports one, 0 otherwise.
type MalformedCSVError struct {
	Line int
	Err  error
}

func (e *MalformedCSVError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed CSV at line %d: %v", e.Line, e.Err)
	}
	return "malformed CSV: " + e.Err.Error()
}

func (e *MalformedCSVError) Unwrap() error { return e.Err }

// RowParseError reports a Sets or Rest_Seconds value that could not be parsed.
// Row is 1-based and counts data rows after the header.
type RowParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("row %d: invalid %s value %q", e.Row, e.Field, e.Value)
}

func (e *RowParseError) Unwrap() error { return e.Err }

// ReferenceError is returned when the target plan does not exist
type ReferenceError struct {
	PlanID string
	Err    error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("workout plan %s not found", e.PlanID)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// StorageConflictError wraps a uniqueness violation raised during an import
type StorageConflictError struct {
	Err error
}

func (e *StorageConflictError) Error() string {
	return "storage conflict: " + e.Err.Error()
}

func (e *StorageConflictError) Unwrap() error { return e.Err }
