package tdparse

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recordkeeper/internal/ctxlog"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

func readString(t *testing.T, src string) (*types.RecordKeeper, error) {
	t.Helper()
	b := types.NewBuilder()
	r := NewReader(b, afero.NewMemMapFs(), nil, ctxlog.Discard())
	if err := r.ReadSource(context.Background(), "test.td", src); err != nil {
		return nil, err
	}
	return b.Build()
}

func mustRead(t *testing.T, src string) *types.RecordKeeper {
	t.Helper()
	k, err := readString(t, src)
	require.NoError(t, err)
	return k
}

func mustDef(t *testing.T, k *types.RecordKeeper, name string) *types.Record {
	t.Helper()
	d, err := k.Def(name)
	require.NoError(t, err)
	return d
}

func TestInheritedFieldValue(t *testing.T) {
	k := mustRead(t, `
class Base { int x = 5; }
def D : Base;
`)
	d := mustDef(t, k, "D")

	x, err := d.IntValue("x")
	require.NoError(t, err)
	assert.Equal(t, int64(5), x)
	assert.True(t, d.IsSubclassOf("Base"))
	assert.Equal(t, "def D {\t// Base\n  int x = 5;\n}\n", d.String())
}

func TestTemplateArguments(t *testing.T) {
	k := mustRead(t, `
class Inst<bits<4> op, string asm = "nop"> {
  bits<4> Opcode = op;
  string Asm = asm;
}
def ADD : Inst<2, "add">;
def NOP : Inst<0>;
`)
	add := mustDef(t, k, "ADD")
	op, err := add.BitsValue("Opcode")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false}, op)
	asm, err := add.StringValue("Asm")
	require.NoError(t, err)
	assert.Equal(t, "add", asm)

	nop := mustDef(t, k, "NOP")
	asm, err = nop.StringValue("Asm")
	require.NoError(t, err)
	assert.Equal(t, "nop", asm)

	inst, err := k.Class("Inst")
	require.NoError(t, err)
	f, err := inst.FieldNamed("Opcode")
	require.NoError(t, err)
	assert.False(t, f.IsSet(), "class records leave unbound arguments unset")
}

func TestLateBoundOverrides(t *testing.T) {
	k := mustRead(t, `
class A { int x = 1; int y = x; }
def B : A { let x = 2; }
let x = 7 in def C : A;
let x = 3 in {
  def E : A;
  def F : A { let x = 4; }
}
def G : A;
`)
	tests := []struct {
		def  string
		want int64
	}{
		{def: "B", want: 2},
		{def: "C", want: 7},
		{def: "E", want: 3},
		{def: "F", want: 4},
		{def: "G", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			d := mustDef(t, k, tt.def)
			y, err := d.IntValue("y")
			require.NoError(t, err)
			assert.Equal(t, tt.want, y)
		})
	}
}

func TestLaterParentOverridesSharedField(t *testing.T) {
	k := mustRead(t, `
class A { int x = 1; int a = 0; }
class B { int x = 2; }
def D : A, B;
`)
	d := mustDef(t, k, "D")

	x, err := d.IntValue("x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), x)
	f, err := d.FieldAt(0)
	require.NoError(t, err)
	assert.Equal(t, "x", f.Name(), "field order follows the first declaration")
}

func TestParentArgumentsFlowThrough(t *testing.T) {
	k := mustRead(t, `
class Enc<int w> { int Width = w; }
class Inst<int size> : Enc<size> { int Size = size; }
def I : Inst<16>;
`)
	i := mustDef(t, k, "I")
	w, err := i.IntValue("Width")
	require.NoError(t, err)
	assert.Equal(t, int64(16), w)
	assert.Equal(t, []string{"Enc", "Inst"}, i.Superclasses())
}

func TestValueForms(t *testing.T) {
	k := mustRead(t, `
def ins;
def X;
def Y;
class R {
  bits<4> b = {0, 0, 1, 0};
  bit flag = true;
  int h = 0x1F;
  int n = -4;
  code c = [{ foo }];
  list<int> l = [1, 2, 3];
  list<string> s = ["a", "b"];
  dag d = (ins X:$src1, Y:$src2);
  int u = ?;
}
def V : R;
`)
	v := mustDef(t, k, "V")

	b, err := v.BitsValue("b")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false}, b)

	flag, err := v.BitValue("flag")
	require.NoError(t, err)
	assert.True(t, flag)

	h, err := v.IntValue("h")
	require.NoError(t, err)
	assert.Equal(t, int64(31), h)

	n, err := v.IntValue("n")
	require.NoError(t, err)
	assert.Equal(t, int64(-4), n)

	c, err := v.StringValue("c")
	require.NoError(t, err)
	assert.Equal(t, " foo ", c)

	l, err := v.ListValue("l")
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())

	want := "def V {\t// R\n" +
		"  bits<4> b = { 0, 0, 1, 0 };\n" +
		"  bit flag = 1;\n" +
		"  int h = 31;\n" +
		"  int n = -4;\n" +
		"  code c = [{ foo }];\n" +
		"  list<int> l = [1, 2, 3];\n" +
		"  list<string> s = [\"a\", \"b\"];\n" +
		"  dag d = (ins X:$src1, Y:$src2);\n" +
		"  int u = ?;\n" +
		"}\n"
	if diff := cmp.Diff(want, v.String()); diff != "" {
		t.Errorf("rendered record mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordReferences(t *testing.T) {
	k := mustRead(t, `
class Reg;
def R0 : Reg;
class UsesReg { Reg r = ?; }
def U : UsesReg { let r = R0; }
`)
	u := mustDef(t, k, "U")
	r, err := u.DefValue("r")
	require.NoError(t, err)
	assert.Same(t, mustDef(t, k, "R0"), r)
}

func TestAnonymousDefs(t *testing.T) {
	k := mustRead(t, `
class P<int v> { int val = v; }
class Holder { P p = ?; }
def : P<1>;
def H : Holder { let p = P<3>; }
`)
	assert.Equal(t, []string{"anonymous_0", "anonymous_1", "H"}, k.Defs().Keys())

	h := mustDef(t, k, "H")
	p, err := h.DefValue("p")
	require.NoError(t, err)
	assert.True(t, p.IsAnonymous())
	v, err := p.IntValue("val")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	assert.Len(t, k.AllDerivedDefinitions("P"), 2)
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{name: "unknown superclass", src: "def D : Nope;", wantErr: types.ErrUnknownClass},
		{name: "unknown field type", src: "class A { Nope n; }", wantErr: types.ErrUnknownClass},
		{name: "string into int", src: `class A { int x = "s"; }`, wantErr: types.ErrTypeMismatch},
		{name: "bits overflow", src: "class A { bits<2> b = 7; }", wantErr: types.ErrTypeMismatch},
		{name: "bits width", src: "class A { bits<2> b = {1, 0, 1}; }", wantErr: types.ErrTypeMismatch},
		{name: "int into bit", src: "class A { bit b = 2; }", wantErr: types.ErrTypeMismatch},
		{name: "unknown identifier", src: "class A { int x = y; }", wantErr: ErrUnknownIdentifier},
		{name: "let of undeclared field", src: "class A; def D : A { let x = 1; }", wantErr: ErrUnknownField},
		{name: "self reference", src: "class A { int a = b; int b = a; }", wantErr: ErrSelfReference},
		{name: "duplicate def", src: "def D; def D;", wantErr: types.ErrDuplicateName},
		{name: "duplicate class", src: "class C; class C;", wantErr: types.ErrDuplicateName},
		{name: "missing template argument", src: "class A<int x>; def D : A;", wantErr: ErrTemplateArgs},
		{name: "too many template arguments", src: "class A<int x>; def D : A<1, 2>;", wantErr: ErrTemplateArgs},
		{name: "redeclared with other type", src: "class A { int x; } def D : A { string x; }", wantErr: types.ErrInvalidType},
		{name: "unknown dag operator", src: "class A { dag d = (nope); }", wantErr: ErrUnknownIdentifier},
		{name: "record of wrong class", src: "class Reg; def NotReg; class U { Reg r = NotReg; }", wantErr: types.ErrTypeMismatch},
		{name: "syntax", src: "class A {", wantErr: ErrSyntax},
		{name: "invalid utf-8 string", src: "def D { string s = \"\xff\"; }", wantErr: ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readString(t, tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var se *types.SourceError
			assert.ErrorAs(t, err, &se, "diagnostics carry a location")
		})
	}
}

func TestEvalErrorLocation(t *testing.T) {
	_, err := readString(t, "class A;\ndef D : A {\n  let x = 1;\n}")

	var se *types.SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, types.Location{File: "test.td", Line: 3, Col: 7}, se.Loc)
}

func TestEvalHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReader(types.NewBuilder(), afero.NewMemMapFs(), nil, nil)
	err := r.ReadSource(ctx, "test.td", "class A;")
	assert.ErrorIs(t, err, context.Canceled)
}
