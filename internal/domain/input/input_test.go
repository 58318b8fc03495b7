package input

import (
	"strconv"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	v, err := Required("name", "  Widget ")
	require.NoError(t, err)
	assert.Equal(t, "Widget", v)

	_, err = Required("name", "   ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)
	assert.Equal(t, "required", vErr.Reason)
}

func TestInt_KeepsParseError(t *testing.T) {
	_, err := Int("productId", "abc")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "must be an integer", vErr.Reason)

	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr), "parse failure reason must stay reachable")
}

func TestNonNegativeInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "12", want: 12},
		{in: " 7 ", want: 7},
		{in: "-1", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "", wantErr: true},
		{in: "99999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NonNegativeInt("quantity", tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositiveInt_RejectsZero(t *testing.T) {
	_, err := PositiveInt("quantity", "0")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "must be greater than 0", vErr.Reason)

	v, err := PositiveInt("quantity", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestNonNegativeDecimal(t *testing.T) {
	d, err := NonNegativeDecimal("price", "9.99")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9.99").Equal(d))

	d, err = NonNegativeDecimal("price", "12,50")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(d))

	d, err = NonNegativeDecimal("price", "0")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = NonNegativeDecimal("price", "-0.01")
	assert.True(t, IsValidation(err))

	_, err = NonNegativeDecimal("price", "cheap")
	assert.True(t, IsValidation(err))
}

func TestNonNegativeDecimal_StoredExactly(t *testing.T) {
	for _, tt := range []struct {
		in     string
		reason string
	}{
		{"0.005", "must have at most 2 decimal places"},
		{"9,999", "must have at most 2 decimal places"},
		{"1e20", "too large"},
		{"10000000000", "too large"},
	} {
		_, err := NonNegativeDecimal("price", tt.in)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, tt.in)
		assert.Equal(t, "price", vErr.Field)
		assert.Equal(t, tt.reason, vErr.Reason, tt.in)
	}

	for _, in := range []string{"9999999999.99", "1.500", "1e2"} {
		_, err := NonNegativeDecimal("price", in)
		assert.NoError(t, err, in)
	}
}

func TestRequired_RejectsControlCharacters(t *testing.T) {
	for _, in := range []string{"A\nFake - 99 ks", "Tab\there", "Bell\a"} {
		_, err := Required("name", in)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "%q", in)
		assert.Equal(t, "must not contain control characters", vErr.Reason)
	}

	// Surrounding whitespace, line breaks included, is trimmed first.
	v, err := Required("name", "\n Šroub M6 \r\n")
	require.NoError(t, err)
	assert.Equal(t, "Šroub M6", v)
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "invalid name: required", Invalid("name", "required").Error())
	assert.False(t, IsValidation(errors.New("boom")))
}
