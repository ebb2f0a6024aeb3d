package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUint64(t *testing.T) {
	c, err := AddUint64(math.MaxUint64, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), c)

	_, err = AddUint64(1, math.MaxUint64)
	assert.ErrorIs(t, err, ErrUint64Overflow)

	c, err = AddUint64(2, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), c)
}

func TestSubUint64(t *testing.T) {
	c, err := SubUint64(5, 5)
	require.NoError(t, err)
	assert.Zero(t, c)

	_, err = SubUint64(4, 5)
	assert.ErrorIs(t, err, ErrUint64Underflow)
}
