package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDPoolReturnsSmallestFree(t *testing.T) {
	p := NewIDPool(0)
	for want := uint32(0); want < 130; want++ {
		id, err := p.CreateID()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	require.NoError(t, p.DestroyID(70))
	require.NoError(t, p.DestroyID(3))

	id, err := p.CreateID()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), id)

	id, err = p.CreateID()
	require.NoError(t, err)
	assert.Equal(t, uint32(70), id)

	id, err = p.CreateID()
	require.NoError(t, err)
	assert.Equal(t, uint32(130), id)
	assert.Equal(t, 131, p.Len())
}

func TestIDPoolDestroyUnused(t *testing.T) {
	p := NewIDPool(8)
	assert.ErrorIs(t, p.DestroyID(0), ErrInvalidHandle)
	assert.ErrorIs(t, p.DestroyID(1000), ErrInvalidHandle)

	id, err := p.CreateID()
	require.NoError(t, err)
	require.NoError(t, p.DestroyID(id))
	assert.ErrorIs(t, p.DestroyID(id), ErrInvalidHandle)
	assert.False(t, p.IsUsed(id))
}

func TestIDPoolExhaustion(t *testing.T) {
	p := NewIDPool(5)
	for i := 0; i < 5; i++ {
		_, err := p.CreateID()
		require.NoError(t, err)
	}
	_, err := p.CreateID()
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.True(t, IsFatal(err))

	require.NoError(t, p.DestroyID(2))
	id, err := p.CreateID()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), id)
}

func TestIDPoolReset(t *testing.T) {
	p := NewIDPool(0)
	for i := 0; i < 10; i++ {
		_, err := p.CreateID()
		require.NoError(t, err)
	}
	p.Reset()
	assert.Equal(t, 0, p.Len())
	id, err := p.CreateID()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), id)
}
