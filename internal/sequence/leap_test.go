package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeapOccurrences(t *testing.T) {
	lp := NewLeap[string](8)
	for _, v := range []string{"a", "b", "a", "c", "a"} {
		lp.Append(v)
	}

	assert.Equal(t, []Handle{0, 2, 4}, lp.Occurrences("a"))
	assert.Equal(t, []Handle{1}, lp.Occurrences("b"))
	assert.Nil(t, lp.Occurrences("z"))
	assert.Equal(t, Handle(0), lp.First("a"))
	assert.Equal(t, Handle(4), lp.Last("a"))
	assert.Equal(t, Handle(2), lp.Leap(0))
	assert.Equal(t, Handle(2), lp.LeapBack(4))
}

func TestLeapSetValueKeepsPosition(t *testing.T) {
	lp := NewLeap[string](8)
	for _, v := range []string{"a", "b", "a", "c"} {
		lp.Append(v)
	}

	lp.SetValue(2, "b")
	assert.Equal(t, []string{"a", "b", "b", "c"}, lp.Values())
	assert.Equal(t, []Handle{0}, lp.Occurrences("a"))
	assert.Equal(t, []Handle{1, 2}, lp.Occurrences("b"))
	assert.Equal(t, Handle(0), lp.Last("a"))

	lp.SetValue(0, "c")
	assert.Nil(t, lp.Occurrences("a"))
	assert.Equal(t, Nil, lp.First("a"))
	assert.Equal(t, []Handle{3, 0}, lp.Occurrences("c"))
}

func TestLeapDelete(t *testing.T) {
	lp := NewLeap[int](4)
	for _, v := range []int{7, 7, 7} {
		lp.Append(v)
	}

	lp.Delete(1)
	require.Equal(t, 2, lp.Len())
	assert.Equal(t, []Handle{0, 2}, lp.Occurrences(7))
	assert.Equal(t, Handle(2), lp.Next(0))
	assert.False(t, lp.Alive(1))

	lp.Delete(0)
	lp.Delete(2)
	assert.Nil(t, lp.Occurrences(7))
	assert.Equal(t, Nil, lp.Head())
	assert.Equal(t, 0, lp.Len())
}
