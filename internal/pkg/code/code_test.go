package code

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LengthAndAlphabet(t *testing.T) {
	for _, length := range []int{6, 8, 12} {
		c, err := New(length)
		require.NoError(t, err)
		assert.Len(t, c, length)
		for _, r := range c {
			assert.Contains(t, Alphabet, string(r))
		}
	}
}

func TestNew_RejectsNonPositiveLength(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
	_, err = New(-3)
	assert.Error(t, err)
}

func TestNew_NoCollisionsAtSmallScale(t *testing.T) {
	// 36^8 candidate codes; 1000 draws colliding would indicate a broken source.
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		c, err := New(DefaultLength)
		require.NoError(t, err)
		_, dup := seen[c]
		require.False(t, dup, "duplicate code drawn: %s", c)
		seen[c] = struct{}{}
	}
}

func TestNew_UppercaseOnly(t *testing.T) {
	c, err := New(DefaultLength)
	require.NoError(t, err)
	assert.Equal(t, strings.ToUpper(c), c)
}
