package service

import (
	"fmt"
	"testing"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iodd(id string) domain.DeviceRef {
	return domain.DeviceRef{ID: id, Format: domain.FORMAT_IODD}
}

func eds(id string) domain.DeviceRef {
	return domain.DeviceRef{ID: id, Format: domain.FORMAT_EDS}
}

func TestSelectionNeverExceedsMax(t *testing.T) {

	require := require.New(t)

	sel := NewSelectionManager(NewDetailCache())
	for i := 0; i < 10; i++ {
		err := sel.Add(iodd(fmt.Sprint(i)))
		if i < MAX_SELECTION {
			require.NoError(err)
		} else {
			require.ErrorIs(err, domain.ErrMaxSelectionExceeded)
		}
		require.LessOrEqual(sel.Len(), MAX_SELECTION)
	}
	require.Equal([]domain.DeviceRef{iodd("0"), iodd("1"), iodd("2"), iodd("3")}, sel.Refs())
}

func TestSelectionRejectsDuplicate(t *testing.T) {

	require := require.New(t)

	sel := NewSelectionManager(NewDetailCache())
	require.NoError(sel.Add(iodd("7")))
	require.ErrorIs(sel.Add(iodd("7")), domain.ErrDuplicateSelection)
	require.Equal(1, sel.Len())
}

func TestSelectionRejectsFormatMismatch(t *testing.T) {

	require := require.New(t)

	sel := NewSelectionManager(NewDetailCache())
	require.NoError(sel.Add(iodd("1")))
	require.ErrorIs(sel.Add(eds("1")), domain.ErrTypeMismatch)
	require.Equal(1, sel.Len())

	format, ok := sel.Format()
	require.True(ok)
	require.Equal(domain.FORMAT_IODD, format)

	for _, ref := range sel.Refs() {
		require.Equal(domain.FORMAT_IODD, ref.Format)
	}
}

func TestSelectionFormatResetsWhenEmptied(t *testing.T) {

	require := require.New(t)

	sel := NewSelectionManager(NewDetailCache())
	require.NoError(sel.Add(iodd("1")))
	require.True(sel.Remove(iodd("1")))
	require.NoError(sel.Add(eds("9")))
}

func TestSelectionRemoveEvictsCache(t *testing.T) {

	assert := assert.New(t)

	cache := NewDetailCache()
	sel := NewSelectionManager(cache)
	assert.NoError(sel.Add(iodd("1")))
	assert.NoError(sel.Add(iodd("2")))
	cache.Put(iodd("1"), &domain.DeviceDescriptor{Ref: iodd("1")})
	cache.Put(iodd("2"), &domain.DeviceDescriptor{Ref: iodd("2")})

	assert.True(sel.Remove(iodd("1")))
	assert.Equal(CACHE_ABSENT, cache.State(iodd("1")))
	assert.Equal(CACHE_READY, cache.State(iodd("2")))
	assert.Equal([]domain.DeviceRef{iodd("2")}, sel.Refs())

	// removing an absent device is a no-op
	assert.False(sel.Remove(iodd("1")))
	assert.Equal(1, sel.Len())

	sel.Clear()
	assert.Equal(0, sel.Len())
	assert.Equal(0, cache.Len())
}

func TestSelectionAddCreatesPendingEntry(t *testing.T) {

	cache := NewDetailCache()
	sel := NewSelectionManager(cache)
	assert.NoError(t, sel.Add(eds("3")))
	assert.Equal(t, CACHE_PENDING, cache.State(eds("3")))
}
