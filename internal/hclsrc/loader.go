// Package hclsrc reads records written in HCL into a types.Builder.
//
//	class "Base" {
//	  field "x" {
//	    type  = "int"
//	    value = 5
//	  }
//	}
//
//	def "D" {
//	  parents = ["Base"]
//	  let "x" { value = 7 }
//	}
//
// Within a file every class block is committed before any def block.
package hclsrc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"

	"github.com/mesh-intelligence/recordkeeper/internal/tdparse"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// ErrHCL is wrapped by every HCL parse and decode failure.
var ErrHCL = errors.New("invalid HCL source")

// fileRoot decodes the top-level blocks of a file.
type fileRoot struct {
	Classes []*recordBlock `hcl:"class,block"`
	Defs    []*recordBlock `hcl:"def,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

type recordBlock struct {
	Name    string         `hcl:"name,label"`
	Parents hcl.Expression `hcl:"parents,optional"`
	Fields  []*fieldBlock  `hcl:"field,block"`
	Lets    []*letBlock    `hcl:"let,block"`
}

type fieldBlock struct {
	Name  string         `hcl:"name,label"`
	Type  hcl.Expression `hcl:"type"`
	Value hcl.Expression `hcl:"value,optional"`
}

type letBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

// Loader reads HCL files from an afero filesystem.
type Loader struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewLoader returns a loader reading from fs.
func NewLoader(fs afero.Fs, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fs: fs, logger: logger}
}

// LoadFile reads the HCL file at path into b.
func (l *Loader) LoadFile(ctx context.Context, b *types.Builder, path string) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return l.LoadSource(ctx, b, path, data)
}

// LoadSource reads HCL text into b. filename labels locations.
func (l *Loader) LoadSource(ctx context.Context, b *types.Builder, filename string, src []byte) error {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("parsing %s: %w: %w", filename, ErrHCL, diags)
	}
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("decoding %s: %w: %w", filename, ErrHCL, diags)
	}
	l.logger.Debug("decoded HCL file", "path", filename, "classes", len(root.Classes), "defs", len(root.Defs))

	for _, blk := range root.Classes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.record(b, blk, true); err != nil {
			return err
		}
	}
	for _, blk := range root.Defs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.record(b, blk, false); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) record(b *types.Builder, blk *recordBlock, class bool) error {
	loc := location(blk.Parents.Range())
	var (
		rb  *types.RecordBuilder
		err error
	)
	if class {
		rb, err = b.NewClass(blk.Name, loc)
	} else {
		rb, err = b.NewDef(blk.Name, loc)
	}
	if err != nil {
		return err
	}

	parents, err := stringList(blk.Parents)
	if err != nil {
		return types.WithLocation(fmt.Errorf("parents of %q: %w", blk.Name, err), loc)
	}
	for _, p := range parents {
		if err := rb.Inherit(p); err != nil {
			return err
		}
	}

	for _, f := range blk.Fields {
		floc := location(f.Type.Range())
		typ, err := fieldType(b, f.Type)
		if err != nil {
			return types.WithLocation(fmt.Errorf("field %q: %w", f.Name, err), floc)
		}
		if err := rb.AddField(f.Name, typ, floc); err != nil {
			return err
		}
		if err := assign(b, rb, f.Name, typ, f.Value); err != nil {
			return err
		}
	}
	for _, let := range blk.Lets {
		typ, err := rb.DeclaredType(let.Name)
		if err != nil {
			return types.WithLocation(fmt.Errorf("let in %q: %w", blk.Name, err), location(let.Value.Range()))
		}
		if err := assign(b, rb, let.Name, typ, let.Value); err != nil {
			return err
		}
	}
	_, err = rb.Commit()
	return err
}

// assign sets a field from expr. A missing or null value leaves the field
// as it is.
func assign(b *types.Builder, rb *types.RecordBuilder, name string, typ types.RecType, expr hcl.Expression) error {
	loc := location(expr.Range())
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return types.WithLocation(fmt.Errorf("field %q: %w: %w", name, ErrHCL, diags), loc)
	}
	if val.IsNull() {
		return nil
	}
	v, err := convert(b, val, typ)
	if err != nil {
		return types.WithLocation(fmt.Errorf("field %q: %w", name, err), loc)
	}
	return rb.SetValue(name, v, loc)
}

func fieldType(b *types.Builder, expr hcl.Expression) (types.RecType, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return types.RecType{}, fmt.Errorf("%w: %w", ErrHCL, diags)
	}
	if val.IsNull() || val.Type() != cty.String {
		return types.RecType{}, fmt.Errorf("type must be a string: %w", types.ErrInvalidType)
	}
	te, err := tdparse.ParseType(expr.Range().Filename, val.AsString())
	if err != nil {
		return types.RecType{}, fmt.Errorf("type %q: %w", val.AsString(), types.ErrInvalidType)
	}
	return tdparse.ResolveType(te, func(name string) bool {
		_, err := b.Class(name)
		return err == nil
	})
}

func stringList(expr hcl.Expression) ([]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrHCL, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("expected a list of class names: %w", ErrHCL)
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.IsNull() || v.Type() != cty.String {
			return nil, fmt.Errorf("expected a list of class names: %w", ErrHCL)
		}
		out = append(out, v.AsString())
	}
	return out, nil
}

func location(r hcl.Range) types.Location {
	return types.Location{File: r.Filename, Line: r.Start.Line, Col: r.Start.Column}
}
