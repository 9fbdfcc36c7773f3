package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	require.Equal(t, 42, ParseValue("42"))
	require.Equal(t, 42, ParseValue("  42  "))
	require.Equal(t, 4.5, ParseValue("4.5"))
	require.Equal(t, "LHR", ParseValue("LHR"))
	require.Equal(t, "", ParseValue("   "))
}

func TestFormatValue(t *testing.T) {
	require.Equal(t, "", FormatValue(nil))
	require.Equal(t, "LHR", FormatValue("LHR"))
	require.Equal(t, "true", FormatValue(true))
	// JSON numbers decode as float64; whole values print without ".0".
	require.Equal(t, "500", FormatValue(float64(500)))
	require.Equal(t, "4.5", FormatValue(4.5))
	require.Equal(t, "7", FormatValue(7))
	require.Equal(t, "9", FormatValue(int64(9)))
}

func TestParseHHMM(t *testing.T) {
	cases := []struct {
		cell   string
		hour   int
		minute int
		ok     bool
	}{
		{"500", 5, 0, true},
		{"1730", 17, 30, true},
		{"0", 0, 0, true},
		{"2359", 23, 59, true},
		{"500.0", 5, 0, true}, // float-typed sources write a trailing .0
		{"2400", 0, 0, false},
		{"1299", 0, 0, false},
		{"9999", 0, 0, false},
		{"-500", 0, 0, false},
		{"500.5", 0, 0, false},
		{"", 0, 0, false},
		{"noon", 0, 0, false},
	}
	for _, c := range cases {
		h, m, ok := ParseHHMM(c.cell)
		require.Equal(t, c.ok, ok, "cell %q", c.cell)
		if c.ok {
			require.Equal(t, c.hour, h, "cell %q", c.cell)
			require.Equal(t, c.minute, m, "cell %q", c.cell)
		}
	}
}

func TestFormatHHMM(t *testing.T) {
	require.Equal(t, "05:00", FormatHHMM(5, 0))
	require.Equal(t, "17:30", FormatHHMM(17, 30))
}

func TestHHMMToDecimal(t *testing.T) {
	require.Equal(t, 17.5, HHMMToDecimal(17, 30))
	require.Equal(t, 0.0, HHMMToDecimal(0, 0))
}

func TestDurationMinutes(t *testing.T) {
	require.Equal(t, 240, DurationMinutes(5, 0, 9, 0))
	require.Equal(t, 30, DurationMinutes(17, 30, 18, 0))
	// End before start rolls over midnight.
	require.Equal(t, 120, DurationMinutes(23, 0, 1, 0))
	require.Equal(t, 0, DurationMinutes(9, 15, 9, 15))
}
