package boundary

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recordkeeper/internal/ctxlog"
	"github.com/mesh-intelligence/recordkeeper/pkg/tablegen"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

const sampleSource = `
class Base { int x = 5; }
class Reg;
def ins;
def X : Reg;
def D : Base;
class R {
  bits<4> b = {0, 0, 1, 0};
  bit flag = true;
  string s = "hi";
  list<int> l = [1, 2];
  dag d = (ins X:$a, X);
  Reg ref = X;
  int u = ?;
}
def V : R, Base;
def : Base;
`

func openSample(t *testing.T) (*Registry, ModelHandle) {
	t.Helper()
	k, err := tablegen.NewParser(tablegen.WithFs(afero.NewMemMapFs()), tablegen.WithLogger(ctxlog.Discard())).
		AddSource(sampleSource).
		Parse(context.Background())
	require.NoError(t, err)

	reg := NewRegistry(WithLogger(ctxlog.Discard()))
	m, err := reg.Open(k)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Release(m) })
	return reg, m
}

func TestBaseAndDerivedDef(t *testing.T) {
	reg, m := openSample(t)

	d, err := reg.LookupDef(m, "D")
	require.NoError(t, err)

	ok, err := reg.IsSubclassOf(m, d, "Base")
	require.NoError(t, err)
	assert.True(t, ok)

	f, err := reg.FieldNamed(m, d, "x")
	require.NoError(t, err)
	v, err := reg.FieldValue(m, f)
	require.NoError(t, err)

	kind, err := reg.ValueKind(m, v)
	require.NoError(t, err)
	assert.Equal(t, types.KindInt, kind)

	x, err := reg.ValueInt(m, v)
	require.NoError(t, err)
	assert.Equal(t, int64(5), x)

	q, err := reg.AllDerivedDefinitions(m, "Base")
	require.NoError(t, err)
	n, err := reg.SeqLen(m, q)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	first, err := reg.SeqAt(m, q, 0)
	require.NoError(t, err)
	assert.Equal(t, d, first, "same record yields the same handle")
	require.NoError(t, reg.ReleaseSeq(m, q))
}

func TestLookupErrors(t *testing.T) {
	reg, m := openSample(t)

	_, err := reg.LookupDef(m, "Missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = reg.LookupClass(m, "D")
	assert.ErrorIs(t, err, types.ErrNotFound)

	d, err := reg.LookupDef(m, "D")
	require.NoError(t, err)
	_, err = reg.FieldNamed(m, d, "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)

	f, err := reg.FieldNamed(m, d, "x")
	require.NoError(t, err)
	v, err := reg.FieldValue(m, f)
	require.NoError(t, err)
	_, err = reg.ValueString(m, v)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	q, err := reg.AllDerivedDefinitions(m, "NoSuchClass")
	require.NoError(t, err)
	n, err := reg.SeqLen(m, q)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = reg.SeqAt(m, q, 0)
	assert.ErrorIs(t, err, types.ErrIndexOutOfRange)
}

func TestRecordQueries(t *testing.T) {
	reg, m := openSample(t)

	v, err := reg.LookupDef(m, "V")
	require.NoError(t, err)

	name, err := reg.RecordName(m, v)
	require.NoError(t, err)
	assert.Equal(t, "V", name.String())

	n, err := reg.NumFields(m, v)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	f, err := reg.FirstField(m, v)
	require.NoError(t, err)
	fname, err := reg.FieldName(m, f)
	require.NoError(t, err)
	assert.Equal(t, "b", fname.String())

	_, err = reg.FieldAt(m, v, n)
	assert.ErrorIs(t, err, types.ErrIndexOutOfRange)

	kind, err := reg.DeclaredKind(m, v, "ref")
	require.NoError(t, err)
	assert.Equal(t, types.KindRecord, kind)

	isClass, err := reg.RecordIsClass(m, v)
	require.NoError(t, err)
	assert.False(t, isClass)

	anon, err := reg.LookupDef(m, "anonymous_0")
	require.NoError(t, err)
	isAnon, err := reg.RecordIsAnonymous(m, anon)
	require.NoError(t, err)
	assert.True(t, isAnon)

	base, err := reg.LookupClass(m, "Base")
	require.NoError(t, err)
	_, err = reg.FirstField(m, base)
	require.NoError(t, err)

	reg2, err := reg.LookupClass(m, "Reg")
	require.NoError(t, err)
	_, err = reg.FirstField(m, reg2)
	assert.ErrorIs(t, err, types.ErrIndexOutOfRange)
}

func TestReleaseModel(t *testing.T) {
	k, err := tablegen.NewParser(tablegen.WithLogger(ctxlog.Discard())).
		AddSource("class A; def D : A;").
		Parse(context.Background())
	require.NoError(t, err)

	reg := NewRegistry(WithLogger(ctxlog.Discard()))
	m, err := reg.Open(k)
	require.NoError(t, err)
	assert.False(t, m.IsZero())

	d, err := reg.LookupDef(m, "D")
	require.NoError(t, err)
	name, err := reg.RecordName(m, d)
	require.NoError(t, err)
	assert.True(t, name.Valid())

	buf, err := reg.MaterializeString(name)
	require.NoError(t, err)

	require.NoError(t, reg.Release(m))
	assert.ErrorIs(t, reg.Release(m), ErrReleased)

	_, err = reg.RecordName(m, d)
	assert.ErrorIs(t, err, ErrReleased)
	_, err = reg.LookupDef(m, "D")
	assert.ErrorIs(t, err, ErrReleased)
	assert.False(t, name.Valid())
	assert.Empty(t, name.String())

	_, err = reg.MaterializeString(name)
	assert.ErrorIs(t, err, ErrReleased)

	b, err := reg.Buffer(buf)
	require.NoError(t, err, "buffers outlive their model")
	assert.Equal(t, []byte("D\x00"), b)
	require.NoError(t, reg.FreeBuffer(buf))
}

func TestOpenErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Open(nil)
	assert.Error(t, err)

	assert.ErrorIs(t, reg.Release(ModelHandle{}), ErrInvalidHandle)
	_, err = reg.Keeper(ModelHandle{})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestNilLoggerUsesDefault(t *testing.T) {
	reg := NewRegistry(WithLogger(nil))
	require.NotNil(t, reg.logger)

	k, err := types.NewBuilder().Build()
	require.NoError(t, err)
	m, err := reg.Open(k)
	require.NoError(t, err)
	assert.NoError(t, reg.Release(m))
}

func TestHandleKinds(t *testing.T) {
	reg, m := openSample(t)

	d, err := reg.LookupDef(m, "D")
	require.NoError(t, err)

	_, err = reg.FieldName(m, FieldHandle(d))
	assert.ErrorIs(t, err, ErrWrongHandleKind)
	_, err = reg.ValueKind(m, ValueHandle(d))
	assert.ErrorIs(t, err, ErrWrongHandleKind)

	_, err = reg.RecordName(m, 0)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = reg.RecordName(m, d+1000)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	c, err := reg.FirstDef(m)
	require.NoError(t, err)
	_, err = reg.SeqLen(m, SeqHandle(c))
	assert.ErrorIs(t, err, ErrWrongHandleKind)
	require.NoError(t, reg.ReleaseCursor(m, c))
}

func TestHandlesFromOtherModel(t *testing.T) {
	reg, m := openSample(t)
	other, err := reg.Open(mustKeeper(t, "class A;\ndef Z : A;\n"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Release(other) })

	// Fill the other model's handle tables so slot numbers overlap.
	z, err := reg.LookupDef(other, "Z")
	require.NoError(t, err)
	oc, err := reg.FirstDef(other)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.ReleaseCursor(other, oc) })

	d, err := reg.LookupDef(m, "D")
	require.NoError(t, err)
	require.Equal(t, uint64(d)&idxMask, uint64(z)&idxMask, "both models used slot 0")
	c, err := reg.FirstDef(m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.ReleaseCursor(m, c) })
	f, err := reg.FieldNamed(m, d, "x")
	require.NoError(t, err)
	q, err := reg.AllDerivedDefinitions(m, "Base")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.ReleaseSeq(m, q) })

	tests := []struct {
		name string
		call func() error
	}{
		{name: "record", call: func() error { _, err := reg.RecordName(other, d); return err }},
		{name: "cursor", call: func() error { _, err := reg.CursorName(other, c); return err }},
		{name: "field", call: func() error { _, err := reg.FieldName(other, f); return err }},
		{name: "sequence", call: func() error { _, err := reg.SeqLen(other, q); return err }},
		{name: "release cursor", call: func() error { return reg.ReleaseCursor(other, c) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), ErrInvalidHandle)
		})
	}

	// The handles still work against their own model.
	name, err := reg.RecordName(m, d)
	require.NoError(t, err)
	assert.Equal(t, "D", name.String())
	name, err = reg.CursorName(other, oc)
	require.NoError(t, err)
	assert.Equal(t, "Z", name.String())
}

func TestRender(t *testing.T) {
	reg, m := openSample(t)

	d, err := reg.LookupDef(m, "D")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, reg.RenderRecord(m, d, &sb))
	assert.Equal(t, "def D {\t// Base\n  int x = 5;\n}\n", sb.String())

	f, err := reg.FieldNamed(m, d, "x")
	require.NoError(t, err)
	v, err := reg.FieldValue(m, f)
	require.NoError(t, err)
	sb.Reset()
	require.NoError(t, reg.RenderValue(m, v, &sb))
	assert.Equal(t, "5", sb.String())

	sb.Reset()
	require.NoError(t, reg.RenderModel(m, &sb))
	assert.Contains(t, sb.String(), "------------- Defs -----------------\n")
}

func TestConcurrentReaders(t *testing.T) {
	reg, m := openSample(t)

	var wg sync.WaitGroup
	handles := make([]RecordHandle, 16)
	for i := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := reg.LookupDef(m, "V")
			if err == nil {
				handles[i] = h
			}
		}()
	}
	wg.Wait()

	for _, h := range handles {
		assert.NotZero(t, h)
		assert.Equal(t, handles[0], h)
	}
}

func mustKeeper(t *testing.T, src string) *types.RecordKeeper {
	t.Helper()
	k, err := tablegen.NewParser(tablegen.WithLogger(ctxlog.Discard())).AddSource(src).Parse(context.Background())
	require.NoError(t, err)
	return k
}
