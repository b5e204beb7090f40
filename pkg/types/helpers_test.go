package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildSample returns a keeper equivalent to:
//
//	class Base { int x = 5; }
//	class Mid : Base { string s = "m"; }
//	class Other;
//	def D : Base;
//	def E : Mid;
//	def F : Other;
//	def G : Mid;
func buildSample(t *testing.T) *RecordKeeper {
	t.Helper()
	b := NewBuilder()

	base := mustClass(t, b, "Base")
	require.NoError(t, base.AddField("x", IntType(), NoLocation))
	require.NoError(t, base.SetValue("x", NewInt(5), NoLocation))
	_, err := base.Commit()
	require.NoError(t, err)

	mid := mustClass(t, b, "Mid")
	require.NoError(t, mid.Inherit("Base"))
	require.NoError(t, mid.AddField("s", StringType(), NoLocation))
	require.NoError(t, mid.SetValue("s", NewString("m"), NoLocation))
	_, err = mid.Commit()
	require.NoError(t, err)

	_, err = mustClass(t, b, "Other").Commit()
	require.NoError(t, err)

	for _, d := range []struct{ name, super string }{
		{"D", "Base"}, {"E", "Mid"}, {"F", "Other"}, {"G", "Mid"},
	} {
		rb, err := b.NewDef(d.name, NoLocation)
		require.NoError(t, err)
		require.NoError(t, rb.Inherit(d.super))
		_, err = rb.Commit()
		require.NoError(t, err)
	}

	k, err := b.Build()
	require.NoError(t, err)
	return k
}

func mustClass(t *testing.T, b *Builder, name string) *RecordBuilder {
	t.Helper()
	rb, err := b.NewClass(name, NoLocation)
	require.NoError(t, err)
	return rb
}
