package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdentityIsExact(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"  leading and trailing  ",
		"a, b, c",
		"line one\nline two\n",
		"ünïcödé, ✓",
	}
	for _, raw := range inputs {
		got := Normalize(raw, Identity)
		assert.False(t, got.List)
		assert.Equal(t, raw, got.Text)
		assert.Nil(t, got.Items)
	}
}

func TestNormalizeCommaList(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"basic", "California, Texas, New York", []string{"California", "Texas", "New York"}},
		{"no separators", "abc", []string{"abc"}},
		{"empty", "", []string{}},
		{"empty segment dropped", "a,,b", []string{"a", "b"}},
		{"whitespace only", " , ", []string{}},
		{"trailing comma", "a, b,", []string{"a", "b"}},
		{"newlines trimmed", "a,\n b ,\tc\n", []string{"a", "b", "c"}},
		{"inner spaces kept", "small business owners, large enterprises", []string{"small business owners", "large enterprises"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.raw, CommaList)
			require.True(t, got.List)
			require.Equal(t, tc.want, got.Items)
			require.Empty(t, got.Text)
		})
	}
}

func TestNormalizeCommaListNoSeparatorIsSingleton(t *testing.T) {
	for _, raw := range []string{"x", "some longer phrase", "  padded  "} {
		got := Normalize(raw, CommaList)
		require.Len(t, got.Items, 1)
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Identity, s)

	s, err = ParseStrategy("comma_list")
	require.NoError(t, err)
	assert.Equal(t, CommaList, s)

	s, err = ParseStrategy(" Comma-List ")
	require.NoError(t, err)
	assert.Equal(t, CommaList, s)

	_, err = ParseStrategy("json")
	require.Error(t, err)
}

func TestStrategyTextRoundTrip(t *testing.T) {
	var s Strategy
	require.NoError(t, s.UnmarshalText([]byte("comma_list")))
	assert.Equal(t, CommaList, s)

	text, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "comma_list", string(text))

	require.Error(t, s.UnmarshalText([]byte("bogus")))
}

func TestFormatInstructions(t *testing.T) {
	assert.Empty(t, FormatInstructions(Identity))
	assert.Contains(t, FormatInstructions(CommaList), "comma separated values")
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "California", Capitalize("california"))
	assert.Equal(t, "New york", Capitalize("new york"))
	assert.Equal(t, "NYSE", Capitalize("NYSE"))
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "Élan", Capitalize("élan"))
	assert.Equal(t, "3d printing", Capitalize("3d printing"))
}
