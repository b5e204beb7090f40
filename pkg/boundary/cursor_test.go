package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walk(t *testing.T, reg *Registry, m ModelHandle, c CursorHandle) []string {
	t.Helper()
	var names []string
	for {
		done, err := reg.CursorExhausted(m, c)
		require.NoError(t, err)
		if done {
			require.NoError(t, reg.ReleaseCursor(m, c))
			return names
		}
		name, err := reg.CursorName(m, c)
		require.NoError(t, err)
		names = append(names, name.String())

		next, err := reg.Advance(m, c)
		require.NoError(t, err)
		require.NoError(t, reg.ReleaseCursor(m, c))
		c = next
	}
}

func TestCursorWalk(t *testing.T) {
	reg, m := openSample(t)

	c, err := reg.FirstClass(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"Base", "Reg", "R"}, walk(t, reg, m, c))

	c, err = reg.FirstDef(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"ins", "X", "D", "V", "anonymous_0"}, walk(t, reg, m, c))
}

func TestCursorAdvanceLeavesReceiver(t *testing.T) {
	reg, m := openSample(t)

	c, err := reg.FirstDef(m)
	require.NoError(t, err)
	clone, err := reg.CloneCursor(m, c)
	require.NoError(t, err)
	next, err := reg.Advance(m, c)
	require.NoError(t, err)

	for _, tc := range []struct {
		h    CursorHandle
		want string
	}{
		{h: c, want: "ins"},
		{h: clone, want: "ins"},
		{h: next, want: "X"},
	} {
		name, err := reg.CursorName(m, tc.h)
		require.NoError(t, err)
		assert.Equal(t, tc.want, name.String())
	}

	rec, err := reg.CursorRecord(m, next)
	require.NoError(t, err)
	x, err := reg.LookupDef(m, "X")
	require.NoError(t, err)
	assert.Equal(t, x, rec)

	for _, h := range []CursorHandle{c, clone, next} {
		require.NoError(t, reg.ReleaseCursor(m, h))
	}
}

func TestCursorExhausted(t *testing.T) {
	reg, m := openSample(t)

	c, err := reg.FirstClass(m)
	require.NoError(t, err)
	for range 3 {
		next, err := reg.Advance(m, c)
		require.NoError(t, err)
		require.NoError(t, reg.ReleaseCursor(m, c))
		c = next
	}

	done, err := reg.CursorExhausted(m, c)
	require.NoError(t, err)
	assert.True(t, done)

	_, err = reg.CursorName(m, c)
	assert.ErrorIs(t, err, ErrExhausted)
	_, err = reg.CursorRecord(m, c)
	assert.ErrorIs(t, err, ErrExhausted)

	again, err := reg.Advance(m, c)
	require.NoError(t, err)
	done, err = reg.CursorExhausted(m, again)
	require.NoError(t, err)
	assert.True(t, done, "advancing an exhausted cursor stays exhausted")

	require.NoError(t, reg.ReleaseCursor(m, again))
	require.NoError(t, reg.ReleaseCursor(m, c))
}

func TestCursorRelease(t *testing.T) {
	reg, m := openSample(t)

	c, err := reg.FirstDef(m)
	require.NoError(t, err)
	require.NoError(t, reg.ReleaseCursor(m, c))

	assert.ErrorIs(t, reg.ReleaseCursor(m, c), ErrReleased)
	_, err = reg.CursorName(m, c)
	assert.ErrorIs(t, err, ErrReleased)
	_, err = reg.Advance(m, c)
	assert.ErrorIs(t, err, ErrReleased)

	assert.ErrorIs(t, reg.ReleaseCursor(m, c+1), ErrInvalidHandle)
}

func TestSeqRelease(t *testing.T) {
	reg, m := openSample(t)

	q, err := reg.AllDerivedDefinitions(m, "Base")
	require.NoError(t, err)
	require.NoError(t, reg.ReleaseSeq(m, q))
	assert.ErrorIs(t, reg.ReleaseSeq(m, q), ErrReleased)
	_, err = reg.SeqLen(m, q)
	assert.ErrorIs(t, err, ErrReleased)
}
