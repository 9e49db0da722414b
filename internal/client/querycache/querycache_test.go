package querycache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMiss(t *testing.T) {
	c := New()

	_, ok := c.Get(Detail(1))
	assert.False(t, ok)
}

func TestSetThenGet(t *testing.T) {
	c := New()

	c.Set(Detail(1), "order-1")

	v, ok := c.Get(Detail(1))
	require.True(t, ok)
	assert.Equal(t, "order-1", v)
}

func TestSetReplaces(t *testing.T) {
	c := New()

	c.Set(List("acc-1"), "v1")
	c.Set(List("acc-1"), "v2")

	v, ok := c.Get(List("acc-1"))
	require.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 1, c.Len())
}

func TestInvalidateMarksBranchStale(t *testing.T) {
	c := New()
	c.Set(List("acc-1"), "list-1")
	c.Set(List("acc-2"), "list-2")
	c.Set(Detail(7), "detail-7")

	c.Invalidate(Lists())

	_, ok := c.Get(List("acc-1"))
	assert.False(t, ok, "lists under the branch are stale")
	_, ok = c.Get(List("acc-2"))
	assert.False(t, ok)

	v, ok := c.Get(Detail(7))
	require.True(t, ok, "details are untouched by a list invalidation")
	assert.Equal(t, "detail-7", v)
}

func TestInvalidateExactKey(t *testing.T) {
	c := New()
	c.Set(List("acc-1"), "list-1")
	c.Set(List("acc-2"), "list-2")

	c.Invalidate(List("acc-1"))

	_, ok := c.Get(List("acc-1"))
	assert.False(t, ok)
	_, ok = c.Get(List("acc-2"))
	assert.True(t, ok)
}

func TestInvalidateRootCoversEverything(t *testing.T) {
	c := New()
	c.Set(List("acc-1"), "list-1")
	c.Set(Detail(7), "detail-7")

	c.Invalidate(AllOrders())

	_, ok := c.Get(List("acc-1"))
	assert.False(t, ok)
	_, ok = c.Get(Detail(7))
	assert.False(t, ok)
}

func TestInvalidateDoesNotMatchKeyPrefixSubstrings(t *testing.T) {
	c := New()
	c.Set(List("acc"), "short")
	c.Set(List("acc-1"), "long")

	c.Invalidate(List("acc"))

	_, ok := c.Get(List("acc"))
	assert.False(t, ok)

	// "orders/list/acc-1" does not live under "orders/list/acc".
	_, ok = c.Get(List("acc-1"))
	assert.True(t, ok)
}

func TestInvalidatedEntriesKeepValuesUntilReplaced(t *testing.T) {
	c := New()
	c.Set(Detail(1), "v1")

	c.Invalidate(Details())
	assert.Equal(t, 1, c.Len(), "stale entries stay in place")

	c.Set(Detail(1), "v2")
	v, ok := c.Get(Detail(1))
	require.True(t, ok, "a fresh Set clears staleness")
	assert.Equal(t, "v2", v)
}
