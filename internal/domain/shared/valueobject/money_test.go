package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), INR)
		require.NoError(t, err)
		assert.Equal(t, INR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := NewMoneyINRFromFloat(100.50)
		b := NewMoneyINRFromFloat(49.50)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
	})

	t.Run("add different currencies", func(t *testing.T) {
		a := NewMoneyINRFromFloat(100)
		b, _ := NewMoney(decimal.NewFromInt(100), USD)
		_, err := a.Add(b)
		assert.Error(t, err)
	})

	t.Run("subtract", func(t *testing.T) {
		a := NewMoneyINRFromFloat(100)
		b := NewMoneyINRFromFloat(30)
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(70)))
	})

	t.Run("multiply", func(t *testing.T) {
		m := NewMoneyINRFromFloat(50)
		result := m.Multiply(decimal.NewFromFloat(5.5))
		assert.True(t, result.Amount().Equal(decimal.NewFromInt(275)))
	})

	t.Run("divide by zero", func(t *testing.T) {
		m := NewMoneyINRFromFloat(50)
		_, err := m.Divide(decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("round", func(t *testing.T) {
		m := NewMoneyINRFromFloat(123.456)
		rounded := m.Round(2)
		assert.Equal(t, "123.46", rounded.Amount().StringFixed(2))
	})
}

func TestMoney_Comparison(t *testing.T) {
	a := NewMoneyINRFromFloat(100)
	b := NewMoneyINRFromFloat(200)

	t.Run("less than", func(t *testing.T) {
		less, err := a.LessThan(b)
		require.NoError(t, err)
		assert.True(t, less)
	})

	t.Run("equals", func(t *testing.T) {
		c := NewMoneyINRFromFloat(100)
		assert.True(t, a.Equals(c))
		assert.False(t, a.Equals(b))
	})

	t.Run("cross-currency comparison fails", func(t *testing.T) {
		usd, _ := NewMoney(decimal.NewFromInt(100), USD)
		_, err := a.LessThan(usd)
		assert.Error(t, err)
	})
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyINRFromFloat(4675)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scan string", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("1870.00"))
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(1870)))
		assert.Equal(t, INR, m.Currency())
	})

	t.Run("scan nil", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})
}
