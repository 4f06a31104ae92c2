package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1", 10000},
		{"2.5", 25000},
		{"0.0001", 1},
		{"-3.75", -37500},
		{"+1.5", 15000},
		{".5", 5000},
		{"12.34567", 123456}, // fifth fractional digit truncated
	}
	for _, tc := range cases {
		q, err := NewQuantityFromString(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, q.Int64Scaled(), tc.in)
	}

	_, err := NewQuantityFromString("")
	assert.Error(t, err)
	_, err = NewQuantityFromString("abc")
	assert.Error(t, err)
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "2.5000", MustQuantity("2.5").String())
	assert.Equal(t, "0.0000", Quantity(0).String())
	assert.Equal(t, "-3.7500", MustQuantity("-3.75").String())
}

func TestQuantityJSON(t *testing.T) {
	// Marshals as a bare number.
	b, err := json.Marshal(MustQuantity("12.5"))
	require.NoError(t, err)
	assert.Equal(t, "12.5000", string(b))

	// Accepts both number and string tokens.
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte("12.5"), &q))
	assert.Equal(t, MustQuantity("12.5"), q)

	require.NoError(t, json.Unmarshal([]byte(`"7.25"`), &q))
	assert.Equal(t, MustQuantity("7.25"), q)

	require.NoError(t, json.Unmarshal([]byte("null"), &q))
	assert.True(t, q.IsZero())
}

func TestQuantityMulInt(t *testing.T) {
	perPiece := MustQuantity("2.5")
	assert.Equal(t, MustQuantity("250"), perPiece.MulInt(100))
	assert.Equal(t, Quantity(0), perPiece.MulInt(0))
}

func TestApplyPercent(t *testing.T) {
	// 250m at 5% wastage allowance.
	assert.Equal(t, MustQuantity("12.5"), ApplyPercent(MustQuantity("250"), MustPercent("5")))
	assert.Equal(t, Quantity(0), ApplyPercent(MustQuantity("250"), ZeroPercent()))
	// Rounds half up at the fourth decimal.
	assert.Equal(t, MustQuantity("0.0333"), ApplyPercent(MustQuantity("0.9999"), MustPercent("3.33")))
}

func TestPercentOf(t *testing.T) {
	p := PercentOf(MustQuantity("12.5"), MustQuantity("250"))
	assert.Equal(t, "5.00", FormatPercent(p))

	assert.True(t, PercentOf(MustQuantity("1"), 0).IsZero())
}

func TestValidPercent(t *testing.T) {
	assert.True(t, ValidPercent(MustPercent("0")))
	assert.True(t, ValidPercent(MustPercent("100")))
	assert.False(t, ValidPercent(MustPercent("-0.01")))
	assert.False(t, ValidPercent(MustPercent("100.01")))
}
