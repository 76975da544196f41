package tables

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multiplesInput = `[
  {"multiple": "EV/EBITDA", "value": 12.5, "industry_median": 11, "description": "Enterprise value to EBITDA"},
  {"multiple": "P/E", "value": 18, "industry_median": 20.25, "description": "Price to earnings", "source": "Q3 filings"}
]`

func TestDecode(t *testing.T) {
	records, err := Decode(multiplesInput)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "EV/EBITDA", records[0]["multiple"])
	assert.Equal(t, "12.5", cellText(records[0]["value"]))
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"blank":          "   \n",
		"not json":       "multiple: EV/EBITDA",
		"truncated":      `[{"a": 1}`,
		"object":         `{"a": 1}`,
		"scalar rows":    `[1, 2]`,
		"null row":       `[null]`,
		"no rows":        `[]`,
		"empty row":      `[{}]`,
		"empty rows":     `[{}, {}]`,
		"trailing data":  `[{"a": 1}] [{"b": 2}]`,
		"trailing token": `[{"a": 1}]]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			records, err := Decode(raw)
			require.Error(t, err)
			assert.Nil(t, records)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "want *DecodeError, got %T", err)
			assert.True(t, strings.HasPrefix(err.Error(), "decode table: "))
		})
	}
}

func TestDecodeSyntaxErrorOffset(t *testing.T) {
	_, err := Decode(`[{"a": 1,}]`)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Greater(t, decodeErr.Offset, int64(0))
	assert.NotNil(t, decodeErr.Unwrap())
}

func TestFormatIsDeterministic(t *testing.T) {
	for _, kind := range Kinds() {
		first, err := Decode(multiplesInput)
		require.NoError(t, err)
		second, err := Decode(multiplesInput)
		require.NoError(t, err)

		a, err := Format(kind, first)
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			b, err := Format(kind, second)
			require.NoError(t, err)
			require.Equal(t, a, b, "kind %s", kind)
		}
	}
}

func TestFormatMultiplesColumnOrder(t *testing.T) {
	records, err := Decode(multiplesInput)
	require.NoError(t, err)

	out := FormatMultiples(records)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5)

	header := lines[1]
	order := []string{"Multiple", "Value", "Industry Median", "Description", "Source"}
	last := -1
	for _, label := range order {
		idx := strings.Index(header, label)
		require.Greater(t, idx, last, "label %q out of order in %q", label, header)
		last = idx
	}
	assert.Contains(t, out, "EV/EBITDA")
	assert.Contains(t, out, "20.25")
	assert.Contains(t, out, "Q3 filings")
}

func TestFormatUnknownFieldsSorted(t *testing.T) {
	records, err := Decode(`[{"zeta": 1, "alpha_beta": 2, "component": "Market"}]`)
	require.NoError(t, err)

	out := FormatRisk(records)
	header := strings.Split(out, "\n")[1]
	assert.Less(t, strings.Index(header, "Risk Component"), strings.Index(header, "Alpha Beta"))
	assert.Less(t, strings.Index(header, "Alpha Beta"), strings.Index(header, "Zeta"))
}

func TestFormatCellValues(t *testing.T) {
	records, err := Decode(`[{"barrier": "Capital\nrequirements", "present": true, "level": null, "notes": {"b": 1, "a": [1, 2]}}]`)
	require.NoError(t, err)

	out := FormatBarriers(records)
	assert.Contains(t, out, "Capital requirements")
	assert.Contains(t, out, "true")
	assert.Contains(t, out, `{"a":[1,2],"b":1}`)
}

func TestFormatUnknownKind(t *testing.T) {
	_, err := Format("weather", nil)
	require.Error(t, err)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("Multiples")
	require.NoError(t, err)
	assert.Equal(t, KindMultiples, kind)

	kind, err = ParseKind("barriers-to-entry")
	require.NoError(t, err)
	assert.Equal(t, KindBarriers, kind)

	_, err = ParseKind("valuation")
	require.ErrorIs(t, err, ErrUnknownKind)
}
