package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		out  string
		unit Unit
	}{
		{raw: "0.4", out: "0.4", unit: UnitNone},
		{raw: "20%", out: "20%", unit: UnitPercent},
		{raw: "0.25mm", out: "0.25mm", unit: UnitMillimeter},
		{raw: " 215 ", out: "215", unit: UnitNone},
		{raw: "-0.1 mm", out: "-0.1mm", unit: UnitMillimeter},
	}

	for _, tc := range cases {
		v, err := Parse(tc.raw)
		require.NoError(t, err, "Parse(%q)", tc.raw)
		assert.Equal(t, tc.unit, v.Unit, "unit of %q", tc.raw)
		assert.Equal(t, tc.out, v.String(), "round trip of %q", tc.raw)
	}

	for _, bad := range []string{"", "abc", "0.4.2", "mm", "20 %%", "0.2; 0.3"} {
		_, err := Parse(bad)
		assert.Error(t, err, "Parse(%q)", bad)
	}
}

func TestApplyAdjustment(t *testing.T) {
	adj, err := ParseAdjustment("=+0.05")
	require.NoError(t, err)
	got, err := Apply("0.2", adj)
	require.NoError(t, err)
	assert.Equal(t, "0.25", got)

	adj, err = ParseAdjustment("=-10%")
	require.NoError(t, err)
	got, err = Apply("20%", adj)
	require.NoError(t, err)
	assert.Equal(t, "10%", got)

	// Bare deltas apply in the current value's unit.
	adj, err = ParseAdjustment("= +1")
	require.NoError(t, err)
	got, err = Apply("0.25mm", adj)
	require.NoError(t, err)
	assert.Equal(t, "1.25mm", got)
}

func TestApplyUnitMismatch(t *testing.T) {
	adj, err := ParseAdjustment("=+5%")
	require.NoError(t, err)
	_, err = Apply("0.2mm", adj)
	assert.ErrorContains(t, err, "unit mismatch")

	adj, err = ParseAdjustment("=+1mm")
	require.NoError(t, err)
	_, err = Apply("20%", adj)
	assert.Error(t, err)
}

func TestApplyNonNumericCurrent(t *testing.T) {
	adj, err := ParseAdjustment("=+1")
	require.NoError(t, err)
	_, err = Apply("rectilinear", adj)
	assert.Error(t, err)
}

func TestParseAdjustmentRejectsPlainValues(t *testing.T) {
	for _, bad := range []string{"0.2", "=0.2", "=+", "=+x", "+0.2"} {
		_, err := ParseAdjustment(bad)
		assert.Error(t, err, "ParseAdjustment(%q)", bad)
	}
	assert.True(t, IsAdjustment("=+0.1"))
	assert.False(t, IsAdjustment("0.1"))
}

func TestFractionalRounding(t *testing.T) {
	adj, err := ParseAdjustment("=+0.0005")
	require.NoError(t, err)
	got, err := Apply("0.2", adj)
	require.NoError(t, err)
	assert.Equal(t, "0.201", got) // rounded to three places

	adj, err = ParseAdjustment("=+0.8")
	require.NoError(t, err)
	got, err = Apply("0.2", adj)
	require.NoError(t, err)
	assert.Equal(t, "1", got) // integral results stay integral
}
