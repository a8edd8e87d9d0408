package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegion(t *testing.T) {
	t.Run("valid region", func(t *testing.T) {
		r, err := NewRegion("Jaipur", "Rajasthan")
		require.NoError(t, err)
		assert.Equal(t, "Jaipur", r.District())
		assert.Equal(t, "Rajasthan", r.State())
	})

	t.Run("trims whitespace", func(t *testing.T) {
		r, err := NewRegion("  Jaipur ", " Rajasthan ")
		require.NoError(t, err)
		assert.Equal(t, "Jaipur", r.District())
	})

	t.Run("empty district", func(t *testing.T) {
		_, err := NewRegion("", "Rajasthan")
		assert.Error(t, err)
	})

	t.Run("empty state", func(t *testing.T) {
		_, err := NewRegion("Jaipur", "")
		assert.Error(t, err)
	})
}

func TestRegion_Matches(t *testing.T) {
	a, _ := NewRegion("Jaipur", "Rajasthan")
	b, _ := NewRegion("jaipur", "RAJASTHAN")
	c, _ := NewRegion("Jodhpur", "Rajasthan")

	assert.True(t, a.Matches(b))
	assert.False(t, a.Matches(c))
}

func TestRegion_Key(t *testing.T) {
	r, _ := NewRegion("Jaipur", "Rajasthan")
	assert.Equal(t, "jaipur|rajasthan", r.Key())
}
