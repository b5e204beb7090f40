package hclsrc

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recordkeeper/internal/ctxlog"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

func load(t *testing.T, src string) (*types.RecordKeeper, error) {
	t.Helper()
	b := types.NewBuilder()
	l := NewLoader(afero.NewMemMapFs(), ctxlog.Discard())
	if err := l.LoadSource(context.Background(), b, "test.hcl", []byte(src)); err != nil {
		return nil, err
	}
	return b.Build()
}

func TestLoadRecords(t *testing.T) {
	k, err := load(t, `
def "R0" {
  parents = ["Reg"]
}

class "Reg" {}

class "Base" {
  field "x" {
    type  = "int"
    value = 5
  }
  field "enc" {
    type  = "bits<4>"
    value = [0, 0, 1, 0]
  }
  field "flag" {
    type  = "bit"
    value = true
  }
  field "names" {
    type  = "list<string>"
    value = ["a", "b"]
  }
  field "body" {
    type  = "code"
    value = "x = 1;"
  }
  field "reg" {
    type = "Reg"
  }
}

def "D" {
  parents = ["Base"]
  let "x" { value = 7 }
  let "reg" { value = "R0" }
}
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"Reg", "Base"}, k.Classes().Keys())
	assert.Equal(t, []string{"R0", "D"}, k.Defs().Keys(), "classes are committed before defs")

	d, err := k.Def("D")
	require.NoError(t, err)
	assert.True(t, d.IsSubclassOf("Base"))

	x, err := d.IntValue("x")
	require.NoError(t, err)
	assert.Equal(t, int64(7), x)

	enc, err := d.BitsValue("enc")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false}, enc)

	flag, err := d.BitValue("flag")
	require.NoError(t, err)
	assert.True(t, flag)

	names, err := d.ListValue("names")
	require.NoError(t, err)
	assert.Equal(t, 2, names.Len())

	body, err := d.FieldNamed("body")
	require.NoError(t, err)
	assert.Equal(t, "code", body.Type().String())

	reg, err := d.DefValue("reg")
	require.NoError(t, err)
	assert.Equal(t, "R0", reg.Name())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{
			name:    "syntax",
			src:     `class "A" {`,
			wantErr: ErrHCL,
		},
		{
			name:    "unknown parent",
			src:     `def "D" { parents = ["Nope"] }`,
			wantErr: types.ErrUnknownClass,
		},
		{
			name: "dag rejected",
			src: `class "A" {
  field "d" {
    type  = "dag"
    value = "x"
  }
}`,
			wantErr: types.ErrInvalidType,
		},
		{
			name: "string into int",
			src: `class "A" {
  field "x" {
    type  = "int"
    value = "five"
  }
}`,
			wantErr: types.ErrTypeMismatch,
		},
		{
			name: "bits overflow",
			src: `class "A" {
  field "b" {
    type  = "bits<2>"
    value = 9
  }
}`,
			wantErr: types.ErrTypeMismatch,
		},
		{
			name: "bad type",
			src: `class "A" {
  field "x" { type = "bits<" }
}`,
			wantErr: types.ErrInvalidType,
		},
		{
			name: "let of undeclared field",
			src: `def "D" {
  let "x" {
    value = 1
  }
}`,
			wantErr: types.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.src)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr != ErrHCL {
				assert.NotErrorIs(t, err, ErrHCL, "source must parse as HCL")
			}
		})
	}
}

func TestLoadErrorLocation(t *testing.T) {
	_, err := load(t, "class \"A\" {\n  field \"x\" {\n    type  = \"int\"\n    value = \"five\"\n  }\n}\n")

	var se *types.SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "test.hcl", se.Loc.File)
	assert.Equal(t, 4, se.Loc.Line)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/m/model.hcl", []byte(`class "A" {}`), 0o644))

	b := types.NewBuilder()
	require.NoError(t, NewLoader(fs, nil).LoadFile(context.Background(), b, "/m/model.hcl"))
	_, err := b.Class("A")
	assert.NoError(t, err)

	err = NewLoader(fs, nil).LoadFile(context.Background(), b, "/m/missing.hcl")
	assert.Error(t, err)
}
