package propbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindGetSet(t *testing.T) {
	b := New()
	v := 1.5
	require.NoError(t, b.Bind("test", "velocities/vt-fps", func() float64 { return v }, func(nv float64) { v = nv }))

	got, ok := b.Get("velocities/vt-fps")
	assert.True(t, ok)
	assert.Equal(t, 1.5, got)

	assert.True(t, b.Set("velocities/vt-fps", 42))
	assert.Equal(t, 42.0, v)
}

func TestBindDuplicateFails(t *testing.T) {
	b := New()
	require.NoError(t, b.BindConstant("a", "aero/alpha-rad", 0))
	err := b.BindConstant("b", "aero/alpha-rad", 1)
	assert.Error(t, err)
}

func TestSetReadOnlyFails(t *testing.T) {
	b := New()
	require.NoError(t, b.BindConstant("a", "aero/alpha-rad", 0))
	assert.False(t, b.Set("aero/alpha-rad", 5))
}

func TestGetUnknown(t *testing.T) {
	b := New()
	_, ok := b.Get("nope")
	assert.False(t, ok)
}
