package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T) *Scope {
	t.Helper()
	root := NewScope("cic_decimator")
	_, err := root.AddSignal("clk", 1, false)
	require.NoError(t, err)
	integ, err := root.AddScope("integrators")
	require.NoError(t, err)
	for _, n := range []string{"stage0", "stage1", "stage2"} {
		_, err := integ.AddSignal(n, 16, true)
		require.NoError(t, err)
	}
	return root
}

func TestScopeLookup(t *testing.T) {
	root := newTestTree(t)

	sig, err := root.Signal("integrators.stage1")
	require.NoError(t, err)
	assert.Equal(t, "stage1", sig.Name())
	assert.Equal(t, "integrators.stage1", sig.Path())
	assert.True(t, sig.Signed())

	clk, err := root.Signal("clk")
	require.NoError(t, err)
	assert.Equal(t, "clk", clk.Path())

	_, err = root.Signal("integrators.stage9")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = root.Signal("nope.stage0")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = root.Signal("integrators")
	assert.ErrorIs(t, err, ErrNotFound, "a scope is not a signal")
}

func TestScopeChildren(t *testing.T) {
	root := newTestTree(t)

	names, err := root.ListChildren("")
	require.NoError(t, err)
	assert.Equal(t, []string{"integrators", "clk"}, names)

	names, err = root.ListChildren("integrators")
	require.NoError(t, err)
	assert.Equal(t, []string{"stage0", "stage1", "stage2"}, names)

	n, err := root.ChildCount("integrators")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = root.ChildCount("combDelay")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScopeRejectsDuplicatesAndBadNames(t *testing.T) {
	root := newTestTree(t)

	_, err := root.AddSignal("clk", 1, false)
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = root.AddScope("integrators")
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = root.AddSignal("a.b", 1, false)
	assert.Error(t, err)
	_, err = root.AddSignal("wide", 65, false)
	assert.ErrorIs(t, err, ErrWidth)
}

func TestSignalStore(t *testing.T) {
	root := NewScope("top")
	sig, err := root.AddSignal("data", 8, true)
	require.NoError(t, err)

	prev, err := sig.Store(sig.Encode(-3))
	require.NoError(t, err)
	assert.Equal(t, int64(0), prev.Int())
	assert.Equal(t, int64(-3), sig.Int())

	_, err = sig.Store(FromUint(4, 1))
	assert.ErrorIs(t, err, ErrWidth)
	assert.Equal(t, int64(-3), sig.Int(), "failed store leaves value untouched")
}
