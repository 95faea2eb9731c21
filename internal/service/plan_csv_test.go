package service

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planHeader = "Exercise,Sets,Reps_or_Time,Rest_Seconds,YouTube_URL\n"

func TestParseSets(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "", want: 1},
		{in: "   ", want: 1},
		{in: "3", want: 3},
		{in: " 4 ", want: 4},
		{in: "1-2", want: 2},
		{in: "2-1", want: 2},
		{in: "2 - 5", want: 5},
		{in: "3-", want: 3},
		{in: "-", want: 1},
		{in: "0", wantErr: true},
		{in: "0-0", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1-x", wantErr: true},
		{in: "2.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSets(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSets_ZeroIsRejected(t *testing.T) {
	_, err := parseSets("0")
	assert.ErrorIs(t, err, errSetsNotPositive)
}

func TestParseRestSeconds(t *testing.T) {
	n, err := parseRestSeconds("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = parseRestSeconds("90")
	require.NoError(t, err)
	assert.Equal(t, 90, n)

	_, err = parseRestSeconds("1m")
	assert.Error(t, err)

	_, err = parseRestSeconds("-5")
	assert.ErrorIs(t, err, errNegativeRest)
}

func TestParsePlanCSV_MissingColumns(t *testing.T) {
	_, err := parsePlanCSV(strings.NewReader("Exercise,Sets,YouTube_URL,Reps_or_Time\nSquat,3,,10\n"))

	var structural *domain.StructuralValidationError
	require.True(t, errors.As(err, &structural))
	assert.Equal(t, []string{"Rest_Seconds"}, structural.Missing)
	assert.Equal(t, "Missing required CSV columns: Rest_Seconds", err.Error())
}

func TestParsePlanCSV_EmptyFile(t *testing.T) {
	_, err := parsePlanCSV(strings.NewReader(""))

	var structural *domain.StructuralValidationError
	require.True(t, errors.As(err, &structural))
	assert.Equal(t, []string{"Exercise", "Reps_or_Time", "Rest_Seconds", "Sets", "YouTube_URL"}, structural.Missing)
}

func TestParsePlanCSV_Rows(t *testing.T) {
	csv := "Notes,YouTube_URL,Rest_Seconds,Reps_or_Time,Sets,Exercise\n" +
		"warmup first, https://youtu.be/a ,60,12,3, Squat \n" +
		",,,,,\n" +
		"\"quoted, note\",,,,1-2,\"Push Up\"\n" +
		",,,AMRAP\n"

	rows, err := parsePlanCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, planRow{line: 1, exercise: "Squat", sets: 3, reps: "12", restSeconds: 60, videoURL: "https://youtu.be/a"}, rows[0])
	assert.Equal(t, planRow{line: 3, exercise: "Push Up", sets: 2, reps: "10", restSeconds: 0}, rows[1])
}

func TestParsePlanCSV_ShortRowIsPadded(t *testing.T) {
	rows, err := parsePlanCSV(strings.NewReader(planHeader + "Plank\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].sets)
	assert.Equal(t, "10", rows[0].reps)
	assert.Equal(t, 0, rows[0].restSeconds)
}

func TestParsePlanCSV_RowErrorNamesRowAndField(t *testing.T) {
	_, err := parsePlanCSV(strings.NewReader(planHeader + "Squat,3,10,60,\nLunge,abc,10,60,\n"))

	var rowErr *domain.RowParseError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "Sets", rowErr.Field)
	assert.Equal(t, "abc", rowErr.Value)

	_, err = parsePlanCSV(strings.NewReader(planHeader + "Squat,3,10,soon,\n"))
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, "Rest_Seconds", rowErr.Field)
}

func TestParsePlanCSV_BlankExerciseSkipsBeforeParsing(t *testing.T) {
	rows, err := parsePlanCSV(strings.NewReader(planHeader + " ,abc,10,xyz,\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParsePlanCSV_BOM(t *testing.T) {
	plain := planHeader + "Squat,3,10,60,\n"

	withBOM, err := parsePlanCSV(strings.NewReader("\ufeff" + plain))
	require.NoError(t, err)
	without, err := parsePlanCSV(strings.NewReader(plain))
	require.NoError(t, err)

	assert.Equal(t, without, withBOM)
}

func TestParsePlanCSV_InvalidUTF8(t *testing.T) {
	inputs := map[string]string{
		"plain":    planHeader + "Squat\xff\xfe,3,10,60,\n",
		"with bom": "\ufeff" + planHeader + "Squat,3,10,60,\nLunge\xe9,3,10,60,\n",
		"header":   "Exercise\xff,Sets,Reps_or_Time,Rest_Seconds,YouTube_URL\n",
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			rows, err := parsePlanCSV(strings.NewReader(in))
			assert.Nil(t, rows)

			var malformed *domain.MalformedCSVError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.ErrorIs(t, err, domain.ErrInvalidEncoding)
			assert.Equal(t, "malformed CSV: file is not valid UTF-8 text", err.Error())
		})
	}
}

func TestParsePlanCSV_BareQuoteKeptLiterally(t *testing.T) {
	rows, err := parsePlanCSV(strings.NewReader(planHeader + "Box Jump 24\",3,10,60,\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Box Jump 24\"", rows[0].exercise)
	assert.Equal(t, 3, rows[0].sets)
}

func TestReadError(t *testing.T) {
	err := readError(&csv.ParseError{StartLine: 3, Line: 3, Column: 5, Err: csv.ErrQuote}, "row 2: failed to read CSV")

	var malformed *domain.MalformedCSVError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 3, malformed.Line)
	assert.ErrorIs(t, err, csv.ErrQuote)
	assert.Equal(t, `malformed CSV at line 3: extraneous or missing " in quoted-field`, err.Error())

	err = readError(io.ErrUnexpectedEOF, "row 2: failed to read CSV")
	assert.False(t, errors.As(err, &malformed))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "row 2: failed to read CSV: unexpected EOF", err.Error())
}
