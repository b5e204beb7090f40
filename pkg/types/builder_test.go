package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInheritCopiesFieldValues(t *testing.T) {
	k := buildSample(t)
	d, err := k.Def("D")
	require.NoError(t, err)

	x, err := d.IntValue("x")
	require.NoError(t, err)
	assert.Equal(t, int64(5), x)

	e, err := k.Def("E")
	require.NoError(t, err)
	require.Equal(t, 2, e.NumFields())
	f0, err := e.FieldAt(0)
	require.NoError(t, err)
	assert.Equal(t, "x", f0.Name(), "inherited fields come first")
	f1, err := e.FieldAt(1)
	require.NoError(t, err)
	assert.Equal(t, "s", f1.Name())

	_, err = e.FieldAt(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestLaterParentValueWins(t *testing.T) {
	b := NewBuilder()
	for i, c := range []struct {
		name string
		x    Init
	}{{"A", NewInt(1)}, {"B", NewInt(2)}, {"C", nil}} {
		rb, err := b.NewClass(c.name, Location{File: "p.td", Line: i + 1, Col: 1})
		require.NoError(t, err)
		require.NoError(t, rb.AddField("x", IntType(), Location{File: "p.td", Line: i + 1, Col: 10}))
		if c.x != nil {
			require.NoError(t, rb.SetValue("x", c.x, NoLocation))
		}
		_, err = rb.Commit()
		require.NoError(t, err)
	}

	rb, err := b.NewDef("D", NoLocation)
	require.NoError(t, err)
	for _, p := range []string{"A", "B", "C"} {
		require.NoError(t, rb.Inherit(p))
	}
	d, err := rb.Commit()
	require.NoError(t, err)

	x, err := d.IntValue("x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), x, "an unset value in a later parent does not clear it")
	f, err := d.FieldAt(0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Loc().Line, "position of the first declaration is kept")
}

func TestRecordAccessors(t *testing.T) {
	b := NewBuilder()
	rb, err := b.NewDef("R", Location{File: "r.td", Line: 1, Col: 1})
	require.NoError(t, err)
	require.NoError(t, rb.AddField("flag", BitType(), NoLocation))
	require.NoError(t, rb.AddField("enc", BitsType(3), NoLocation))
	require.NoError(t, rb.AddField("n", IntType(), NoLocation))
	require.NoError(t, rb.AddField("pending", StringType(), NoLocation))
	require.NoError(t, rb.SetValue("flag", NewBit(true), NoLocation))
	require.NoError(t, rb.SetValue("enc", NewBitsFromInt(5, 3), NoLocation))
	require.NoError(t, rb.SetValue("n", NewInt(-2), NoLocation))
	r, err := rb.Commit()
	require.NoError(t, err)

	flag, err := r.BitValue("flag")
	require.NoError(t, err)
	assert.True(t, flag)

	enc, err := r.BitsValue("enc")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, enc)

	n, err := r.IntValue("n")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), n)

	_, err = r.StringValue("n")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = r.IntValue("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.Name)

	pending, err := r.FieldNamed("pending")
	require.NoError(t, err)
	assert.False(t, pending.IsSet())
	typ, err := r.DeclaredType("pending")
	require.NoError(t, err)
	assert.Equal(t, "string", typ.String())
	_, err = r.StringValue("pending")
	assert.ErrorIs(t, err, ErrTypeMismatch, "unset fields have no string value")
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		run     func(b *Builder) error
		wantErr error
	}{
		{
			name: "duplicate class",
			run: func(b *Builder) error {
				rb, _ := b.NewClass("A", NoLocation)
				_, _ = rb.Commit()
				_, err := b.NewClass("A", NoLocation)
				return err
			},
			wantErr: ErrDuplicateName,
		},
		{
			name: "duplicate def",
			run: func(b *Builder) error {
				rb, _ := b.NewDef("A", NoLocation)
				_, _ = rb.Commit()
				_, err := b.NewDef("A", NoLocation)
				return err
			},
			wantErr: ErrDuplicateName,
		},
		{
			name: "duplicate detected at commit",
			run: func(b *Builder) error {
				first, _ := b.NewDef("A", NoLocation)
				second, _ := b.NewDef("A", NoLocation)
				_, _ = first.Commit()
				_, err := second.Commit()
				return err
			},
			wantErr: ErrDuplicateName,
		},
		{
			name: "unknown superclass",
			run: func(b *Builder) error {
				rb, _ := b.NewDef("A", NoLocation)
				return rb.Inherit("Nope")
			},
			wantErr: ErrUnknownClass,
		},
		{
			name: "value does not fit type",
			run: func(b *Builder) error {
				rb, _ := b.NewDef("A", NoLocation)
				_ = rb.AddField("x", IntType(), NoLocation)
				return rb.SetValue("x", NewString("five"), NoLocation)
			},
			wantErr: ErrTypeMismatch,
		},
		{
			name: "bits width mismatch",
			run: func(b *Builder) error {
				rb, _ := b.NewDef("A", NoLocation)
				_ = rb.AddField("x", BitsType(4), NoLocation)
				return rb.SetValue("x", NewBitsFromInt(1, 3), NoLocation)
			},
			wantErr: ErrTypeMismatch,
		},
		{
			name: "assign undeclared field",
			run: func(b *Builder) error {
				rb, _ := b.NewDef("A", NoLocation)
				return rb.SetValue("x", NewInt(1), NoLocation)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "redeclare with other type",
			run: func(b *Builder) error {
				rb, _ := b.NewDef("A", NoLocation)
				_ = rb.AddField("x", IntType(), NoLocation)
				return rb.AddField("x", StringType(), NoLocation)
			},
			wantErr: ErrInvalidType,
		},
		{
			name: "use after build",
			run: func(b *Builder) error {
				rb, _ := b.NewDef("A", NoLocation)
				_, _ = b.Build()
				return rb.AddField("x", IntType(), NoLocation)
			},
			wantErr: ErrBuilderClosed,
		},
		{
			name: "build twice",
			run: func(b *Builder) error {
				_, _ = b.Build()
				_, err := b.Build()
				return err
			},
			wantErr: ErrBuilderClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(NewBuilder())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordTypeAcceptsDerivedDefsOnly(t *testing.T) {
	k := buildSample(t)
	d, err := k.Def("D")
	require.NoError(t, err)
	f, err := k.Def("F")
	require.NoError(t, err)

	typ := RecordType("Base")
	assert.True(t, typ.Accepts(NewDef(d)))
	assert.False(t, typ.Accepts(NewDef(f)))
	assert.True(t, typ.Accepts(Unset()))
}

func TestAnonymousDefNames(t *testing.T) {
	b := NewBuilder()

	first, err := b.NewDef("", NoLocation)
	require.NoError(t, err)
	r1, err := first.Commit()
	require.NoError(t, err)
	second, err := b.NewDef("", NoLocation)
	require.NoError(t, err)
	r2, err := second.Commit()
	require.NoError(t, err)

	assert.Equal(t, "anonymous_0", r1.Name())
	assert.Equal(t, "anonymous_1", r2.Name())
	assert.True(t, r1.IsAnonymous())

	named, err := b.Def("anonymous_1")
	require.NoError(t, err)
	assert.Same(t, r2, named)
}

func TestSourceErrorCarriesLocation(t *testing.T) {
	loc := Location{File: "x.td", Line: 3, Col: 7}
	b := NewBuilder()
	rb, err := b.NewDef("A", loc)
	require.NoError(t, err)

	err = rb.Inherit("Missing")
	var se *SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, loc, se.Loc)
	assert.Equal(t, `x.td:3:7: class "Missing": unknown class`, err.Error())
}
