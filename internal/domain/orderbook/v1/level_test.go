package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test 1: Orders queue in arrival order and the front is the oldest
func TestLevel_AppendFIFO(t *testing.T) {
	level := NewLevel(dec("100"))

	first := NewOrder("BTC-USD", "user1", SideBuy, KindLimit, dec("100"), dec("2"))
	second := NewOrder("BTC-USD", "user2", SideBuy, KindLimit, dec("100"), dec("3"))

	require.NoError(t, level.Append(first))
	require.NoError(t, level.Append(second))

	assert.Equal(t, 2, level.OrderCount())
	assert.Same(t, first, level.Front())
	assert.True(t, level.TotalRemaining().Equal(dec("5")))
}

// Test 2: Appending a mispriced or nil order fails
func TestLevel_AppendRejects(t *testing.T) {
	level := NewLevel(dec("100"))

	err := level.Append(nil)
	assert.ErrorIs(t, err, ErrNilOrder)

	stray := NewOrder("BTC-USD", "user1", SideBuy, KindLimit, dec("101"), dec("2"))
	err = level.Append(stray)
	assert.ErrorIs(t, err, ErrPriceMismatch)
	assert.True(t, level.IsEmpty())
}

// Test 3: Removing an order keeps the queue order of the rest
func TestLevel_Remove(t *testing.T) {
	level := NewLevel(dec("100"))

	first := NewOrder("BTC-USD", "user1", SideBuy, KindLimit, dec("100"), dec("2"))
	second := NewOrder("BTC-USD", "user2", SideBuy, KindLimit, dec("100"), dec("3"))
	third := NewOrder("BTC-USD", "user3", SideBuy, KindLimit, dec("100"), dec("4"))

	require.NoError(t, level.Append(first))
	require.NoError(t, level.Append(second))
	require.NoError(t, level.Append(third))

	require.NoError(t, level.Remove(second))

	assert.Equal(t, 2, level.OrderCount())
	assert.Same(t, first, level.Front())
	assert.True(t, level.TotalRemaining().Equal(dec("6")))

	err := level.Remove(second)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// Test 4: Executed quantity shrinks the resting total
func TestLevel_ReduceRemaining(t *testing.T) {
	level := NewLevel(dec("100"))

	order := NewOrder("BTC-USD", "user1", SideBuy, KindLimit, dec("100"), dec("10"))
	require.NoError(t, level.Append(order))

	level.ReduceRemaining(dec("4"))
	assert.True(t, level.TotalRemaining().Equal(dec("6")))
}

// Test 5: An empty level has no front
func TestLevel_Empty(t *testing.T) {
	level := NewLevel(dec("100"))

	assert.True(t, level.IsEmpty())
	assert.Nil(t, level.Front())
	assert.True(t, level.TotalRemaining().IsZero())
}
