package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("two decimals", func(t *testing.T) {
		c, err := Parse("4.50")
		require.NoError(t, err)
		assert.Equal(t, Cents(450), c)
	})
	t.Run("integer amount", func(t *testing.T) {
		c, err := Parse("18")
		require.NoError(t, err)
		assert.Equal(t, Cents(1800), c)
	})
	t.Run("negative rejected", func(t *testing.T) {
		_, err := Parse("-1.00")
		assert.True(t, errors.Is(err, ErrNegativeAmount))
	})
	t.Run("fraction of centavo rejected", func(t *testing.T) {
		_, err := Parse("0.105")
		assert.True(t, errors.Is(err, ErrTooPrecise))
	})
	t.Run("garbage rejected", func(t *testing.T) {
		_, err := Parse("abc")
		assert.Error(t, err)
	})
}

func TestFromFloatRounds(t *testing.T) {
	c, err := FromFloat(5.8)
	require.NoError(t, err)
	assert.Equal(t, Cents(580), c)

	c, err = FromFloat(0.1 + 0.2)
	require.NoError(t, err)
	assert.Equal(t, Cents(30), c)
}

func TestStringAndTimes(t *testing.T) {
	assert.Equal(t, "8.20", Cents(820).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "10.00", Cents(500).Times(2).String())
	assert.True(t, Cents(1890).Decimal().Equal(decimal.RequireFromString("18.90")))
}

func TestRepeatedTenCentsIsExact(t *testing.T) {
	var total Cents
	price, err := Parse("0.10")
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		total += price
	}
	assert.Equal(t, "1000.00", total.String())
}
