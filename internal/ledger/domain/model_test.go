package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	t.Run("lower-cases valid addresses", func(t *testing.T) {
		got, err := NormalizeAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
		require.NoError(t, err)
		assert.Equal(t, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", got)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		got, err := NormalizeAddress("  0x70997970c51812dc3a010c7d01b50e0d17dc79c8 ")
		require.NoError(t, err)
		assert.Equal(t, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", got)
	})

	t.Run("accepts the zero address", func(t *testing.T) {
		got, err := NormalizeAddress(ZeroAddress)
		require.NoError(t, err)
		assert.Equal(t, ZeroAddress, got)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, in := range []string{
			"",
			"0x",
			"70997970c51812dc3a010c7d01b50e0d17dc79c8",
			"0x70997970c51812dc3a010c7d01b50e0d17dc79",
			"0x70997970c51812dc3a010c7d01b50e0d17dc79c8ff",
			"0xzz997970c51812dc3a010c7d01b50e0d17dc79c8",
		} {
			_, err := NormalizeAddress(in)
			assert.ErrorIs(t, err, ErrInvalidAddress, in)
		}
	})
}
