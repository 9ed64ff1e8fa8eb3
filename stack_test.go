package sgmlreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHWStackPushPopReusesSlots(t *testing.T) {
	s := newHWStack[int](2)
	a := s.push()
	*a = 1
	b := s.push()
	*b = 2
	require.Equal(t, 2, s.len())

	top, ok := s.pop()
	require.True(t, ok)
	assert.Equal(t, 1, *top)
	assert.Equal(t, 1, s.len())

	// Pushing again must reuse the same backing slot rather than growing.
	c := s.push()
	assert.Same(t, b, c)
}

func TestHWStackGetBounds(t *testing.T) {
	s := newHWStack[int](4)
	s.push()
	_, ok := s.get(0)
	assert.True(t, ok)
	_, ok = s.get(1)
	assert.False(t, ok)
	_, ok = s.get(-1)
	assert.False(t, ok)
}

func TestHWStackRemoveAt(t *testing.T) {
	s := newHWStack[int](4)
	for i := 1; i <= 3; i++ {
		v := s.push()
		*v = i
	}
	s.removeAt(1)
	require.Equal(t, 2, s.len())
	v0, _ := s.get(0)
	v1, _ := s.get(1)
	assert.Equal(t, 1, *v0)
	assert.Equal(t, 3, *v1)
}

func TestHWStackInsertAtShiftsLiveSlots(t *testing.T) {
	s := newHWStack[int](4)
	for i := 1; i <= 3; i++ {
		v := s.push()
		*v = i
	}
	slot := s.insertAt(1)
	*slot = 99
	require.Equal(t, 4, s.len())
	v0, _ := s.get(0)
	v1, _ := s.get(1)
	v2, _ := s.get(2)
	v3, _ := s.get(3)
	assert.Equal(t, 1, *v0)
	assert.Equal(t, 99, *v1)
	assert.Equal(t, 2, *v2)
	assert.Equal(t, 3, *v3)
}

func TestHWStackResetKeepsBackingArray(t *testing.T) {
	s := newHWStack[int](2)
	s.push()
	s.push()
	s.reset()
	assert.Equal(t, 0, s.len())
	assert.GreaterOrEqual(t, cap(s.items), 2)
}
