package tdparse

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// Evaluation errors. Each is returned wrapped in a *types.SourceError.
var (
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrTemplateArgs      = errors.New("bad template arguments")
	ErrSelfReference     = errors.New("field value refers to itself")
	ErrUnknownField      = errors.New("let of undeclared field")
)

// Evaluator turns parsed items into records on a types.Builder. Field
// values are resolved when a record is committed, so an override made in a
// subclass or by an enclosing let is seen by every field that refers to it.
type Evaluator struct {
	b       *types.Builder
	classes map[string]*classInfo
	lets    [][]*BodyItem
}

type classInfo struct {
	decl *RecordDecl
	lets []*BodyItem // enclosing top-level lets at the point of declaration
}

// NewEvaluator returns an evaluator adding records to b.
func NewEvaluator(b *types.Builder) *Evaluator {
	return &Evaluator{b: b, classes: make(map[string]*classInfo)}
}

// Eval evaluates items in order. include is invoked for every include
// statement, with the enclosing lets still in effect.
func (e *Evaluator) Eval(ctx context.Context, items []Item, include func(*Include) error) error {
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch it := it.(type) {
		case *RecordDecl:
			err = e.record(it)
		case *Include:
			err = include(it)
		case *LetBlock:
			e.lets = append(e.lets, it.Bindings)
			err = e.Eval(ctx, it.Items, include)
			e.lets = e.lets[:len(e.lets)-1]
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) activeLets() []*BodyItem {
	var out []*BodyItem
	for _, frame := range e.lets {
		out = append(out, frame...)
	}
	return out
}

// scope binds the template arguments visible to an expression.
type scope struct {
	params map[string]types.Init
}

var globalScope = &scope{}

func (s *scope) lookup(name string) (types.Init, bool) {
	if s == nil || s.params == nil {
		return nil, false
	}
	v, ok := s.params[name]
	return v, ok
}

// fieldPlan is the pending definition of one field.
type fieldPlan struct {
	typ  types.RecType
	expr Expr
	env  *scope
	loc  types.Location
}

// recordCtx assembles one record.
type recordCtx struct {
	e     *Evaluator
	rb    *types.RecordBuilder
	class bool

	plan   map[string]*fieldPlan
	order  []string
	values map[string]types.Init
	active map[string]bool
}

func (e *Evaluator) newRecordCtx(rb *types.RecordBuilder, class bool) *recordCtx {
	return &recordCtx{
		e:      e,
		rb:     rb,
		class:  class,
		plan:   make(map[string]*fieldPlan),
		values: make(map[string]types.Init),
		active: make(map[string]bool),
	}
}

func (e *Evaluator) record(d *RecordDecl) error {
	var (
		rb  *types.RecordBuilder
		err error
	)
	if d.Class {
		rb, err = e.b.NewClass(d.Name, d.Loc)
	} else {
		rb, err = e.b.NewDef(d.Name, d.Loc)
	}
	if err != nil {
		return err
	}
	rc := e.newRecordCtx(rb, d.Class)

	own := globalScope
	if d.Class {
		if own, err = e.bindOwnParams(d); err != nil {
			return err
		}
	}
	for _, ref := range d.Parents {
		args, err := rc.evalAll(ref.Args, own, false)
		if err != nil {
			return err
		}
		if err := rc.inherit(ref.Name, args, ref.Loc); err != nil {
			return err
		}
	}
	lets := e.activeLets()
	if err := rc.override(lets, globalScope); err != nil {
		return err
	}
	if err := rc.body(d.Body, own); err != nil {
		return err
	}
	if _, err := rc.commit(); err != nil {
		return err
	}
	if d.Class {
		e.classes[d.Name] = &classInfo{decl: d, lets: lets}
	}
	return nil
}

// instantiate creates the anonymous def written `class<args>`.
func (e *Evaluator) instantiate(class string, args []types.Init, loc types.Location) (*types.Record, error) {
	rb, err := e.b.NewDef("", loc)
	if err != nil {
		return nil, err
	}
	rc := e.newRecordCtx(rb, false)
	if err := rc.inherit(class, args, loc); err != nil {
		return nil, err
	}
	return rc.commit()
}

// bindOwnParams binds the template arguments of a class being committed
// as a class record: defaults where written, unset otherwise.
func (e *Evaluator) bindOwnParams(d *RecordDecl) (*scope, error) {
	s := &scope{params: make(map[string]types.Init)}
	for _, prm := range d.Params {
		typ, err := e.recType(prm.Type)
		if err != nil {
			return nil, err
		}
		v := types.Init(types.Unset())
		if prm.Default != nil {
			if v, err = e.evalParam(prm, typ, s); err != nil {
				return nil, err
			}
		}
		s.params[prm.Name] = v
	}
	return s, nil
}

func (e *Evaluator) bindParams(ci *classInfo, args []types.Init, loc types.Location) (*scope, error) {
	d := ci.decl
	if len(args) > len(d.Params) {
		return nil, types.WithLocation(fmt.Errorf("class %q takes %d template arguments, got %d: %w",
			d.Name, len(d.Params), len(args), ErrTemplateArgs), loc)
	}
	s := &scope{params: make(map[string]types.Init)}
	for i, prm := range d.Params {
		typ, err := e.recType(prm.Type)
		if err != nil {
			return nil, err
		}
		var v types.Init
		switch {
		case i < len(args):
			if v, err = Coerce(args[i], typ); err != nil {
				return nil, types.WithLocation(fmt.Errorf("template argument %q of %q: %w", prm.Name, d.Name, err), loc)
			}
		case prm.Default != nil:
			if v, err = e.evalParam(prm, typ, s); err != nil {
				return nil, err
			}
		default:
			return nil, types.WithLocation(fmt.Errorf("missing template argument %q of %q: %w",
				prm.Name, d.Name, ErrTemplateArgs), loc)
		}
		s.params[prm.Name] = v
	}
	return s, nil
}

func (e *Evaluator) evalParam(prm *Param, typ types.RecType, s *scope) (types.Init, error) {
	rc := &recordCtx{e: e}
	v, err := rc.eval(prm.Default, s, &typ)
	if err != nil {
		return nil, err
	}
	if !typ.Accepts(v) {
		return nil, types.WithLocation(fmt.Errorf("default of %q: %w", prm.Name,
			&types.MismatchError{From: types.KindOf(v), To: typ.Kind()}), prm.Loc)
	}
	return v, nil
}

// inherit expands class into the record: its ancestors first, then the
// lets enclosing its declaration, then its body.
func (rc *recordCtx) inherit(class string, args []types.Init, loc types.Location) error {
	ci, ok := rc.e.classes[class]
	if !ok {
		return types.WithLocation(fmt.Errorf("class %q: %w", class, types.ErrUnknownClass), loc)
	}
	s, err := rc.e.bindParams(ci, args, loc)
	if err != nil {
		return err
	}
	for _, ref := range ci.decl.Parents {
		pargs, err := rc.evalAll(ref.Args, s, false)
		if err != nil {
			return err
		}
		if err := rc.inherit(ref.Name, pargs, ref.Loc); err != nil {
			return err
		}
	}
	if err := rc.override(ci.lets, globalScope); err != nil {
		return err
	}
	if err := rc.body(ci.decl.Body, s); err != nil {
		return err
	}
	return rc.rb.Inherit(class)
}

func (rc *recordCtx) body(items []*BodyItem, s *scope) error {
	for _, bi := range items {
		if bi.Type == nil {
			if err := rc.override([]*BodyItem{bi}, s); err != nil {
				return err
			}
			continue
		}
		typ, err := rc.e.recType(bi.Type)
		if err != nil {
			return err
		}
		if err := rc.rb.AddField(bi.Name, typ, bi.Loc); err != nil {
			return err
		}
		if fp, ok := rc.plan[bi.Name]; ok {
			if bi.Value != nil {
				fp.expr, fp.env, fp.loc = bi.Value, s, bi.Loc
			}
			continue
		}
		rc.plan[bi.Name] = &fieldPlan{typ: typ, expr: bi.Value, env: s, loc: bi.Loc}
		rc.order = append(rc.order, bi.Name)
	}
	return nil
}

func (rc *recordCtx) override(lets []*BodyItem, s *scope) error {
	for _, l := range lets {
		fp, ok := rc.plan[l.Name]
		if !ok {
			return types.WithLocation(fmt.Errorf("field %q in %q: %w", l.Name, rc.rb.Name(), ErrUnknownField), l.Loc)
		}
		fp.expr, fp.env, fp.loc = l.Value, s, l.Loc
	}
	return nil
}

func (rc *recordCtx) commit() (*types.Record, error) {
	for _, name := range rc.order {
		v, err := rc.field(name)
		if err != nil {
			return nil, err
		}
		if err := rc.rb.SetValue(name, v, rc.plan[name].loc); err != nil {
			return nil, err
		}
	}
	return rc.rb.Commit()
}

// field resolves a field of the record under construction.
func (rc *recordCtx) field(name string) (types.Init, error) {
	if v, ok := rc.values[name]; ok {
		return v, nil
	}
	fp := rc.plan[name]
	if rc.active[name] {
		return nil, types.WithLocation(fmt.Errorf("field %q: %w", name, ErrSelfReference), fp.loc)
	}
	if fp.expr == nil {
		rc.values[name] = types.Unset()
		return types.Unset(), nil
	}
	rc.active[name] = true
	v, err := rc.eval(fp.expr, fp.env, &fp.typ)
	delete(rc.active, name)
	if err != nil {
		return nil, err
	}
	rc.values[name] = v
	return v, nil
}

func (rc *recordCtx) evalAll(exprs []Expr, s *scope, fields bool) ([]types.Init, error) {
	sub := rc
	if !fields {
		sub = &recordCtx{e: rc.e, class: rc.class}
	}
	out := make([]types.Init, len(exprs))
	for i, x := range exprs {
		v, err := sub.eval(x, s, nil)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// eval evaluates x. When want is set the result is coerced to it.
func (rc *recordCtx) eval(x Expr, s *scope, want *types.RecType) (types.Init, error) {
	v, err := rc.evalUntyped(x, s, want)
	if err != nil {
		return nil, err
	}
	if want == nil {
		return v, nil
	}
	cv, err := Coerce(v, *want)
	if err != nil {
		return nil, types.WithLocation(err, x.Pos())
	}
	return cv, nil
}

func (rc *recordCtx) evalUntyped(x Expr, s *scope, want *types.RecType) (types.Init, error) {
	switch x := x.(type) {
	case *UnsetExpr:
		return types.Unset(), nil
	case *IntExpr:
		return types.NewInt(x.Value), nil
	case *BoolExpr:
		return types.NewBit(x.Value), nil
	case *StringExpr:
		if x.Code {
			return types.NewCode(x.Value), nil
		}
		return types.NewString(x.Value), nil
	case *BitsExpr:
		return rc.evalBits(x, s)
	case *ListExpr:
		return rc.evalList(x, s, want)
	case *DagExpr:
		return rc.evalDag(x, s)
	case *IdentExpr:
		return rc.resolve(x, s)
	case *InstanceExpr:
		if rc.class {
			// Class records are templates; instances are made by defs.
			return types.Unset(), nil
		}
		args, err := rc.evalAll(x.Args, s, true)
		if err != nil {
			return nil, err
		}
		r, err := rc.e.instantiate(x.Class, args, x.Loc)
		if err != nil {
			return nil, err
		}
		return types.NewDef(r), nil
	}
	return nil, fmt.Errorf("unhandled expression %T", x)
}

func (rc *recordCtx) resolve(x *IdentExpr, s *scope) (types.Init, error) {
	if v, ok := s.lookup(x.Name); ok {
		return v, nil
	}
	if rc.plan != nil {
		if _, ok := rc.plan[x.Name]; ok {
			return rc.field(x.Name)
		}
	}
	if r, err := rc.e.b.Def(x.Name); err == nil {
		return types.NewDef(r), nil
	}
	return nil, types.WithLocation(fmt.Errorf("%q: %w", x.Name, ErrUnknownIdentifier), x.Loc)
}

func (rc *recordCtx) evalBits(x *BitsExpr, s *scope) (types.Init, error) {
	bitType := types.BitType()
	n := len(x.Elems)
	bits := make([]bool, n)
	for i, ex := range x.Elems {
		v, err := rc.eval(ex, s, &bitType)
		if err != nil {
			return nil, err
		}
		b, ok := v.(*types.BitInit)
		if !ok {
			// An unresolved bit leaves the whole value unresolved.
			return types.Unset(), nil
		}
		// Written most significant first.
		bits[n-1-i] = b.Value()
	}
	return types.NewBits(bits), nil
}

func (rc *recordCtx) evalList(x *ListExpr, s *scope, want *types.RecType) (types.Init, error) {
	var elemType *types.RecType
	if want != nil {
		if et, ok := want.Elem(); ok {
			elemType = &et
		}
	}
	elems := make([]types.Init, len(x.Elems))
	for i, ex := range x.Elems {
		v, err := rc.eval(ex, s, elemType)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	if elemType == nil {
		et, err := inferElemType(elems)
		if err != nil {
			return nil, types.WithLocation(err, x.Loc)
		}
		elemType = &et
	}
	l, err := types.NewList(*elemType, elems)
	if err != nil {
		return nil, types.WithLocation(fmt.Errorf("list of %s: %w", *elemType, err), x.Loc)
	}
	return l, nil
}

func (rc *recordCtx) evalDag(x *DagExpr, s *scope) (types.Init, error) {
	op, err := rc.e.b.Def(x.Op)
	if err != nil {
		return nil, types.WithLocation(fmt.Errorf("dag operator %q: %w", x.Op, ErrUnknownIdentifier), x.Loc)
	}
	args := make([]types.DagArg, len(x.Args))
	for i, a := range x.Args {
		args[i].Name = a.Name
		if a.Value == nil {
			continue
		}
		if args[i].Value, err = rc.eval(a.Value, s, nil); err != nil {
			return nil, err
		}
	}
	return types.NewDag(op, args), nil
}

func (e *Evaluator) recType(t *TypeExpr) (types.RecType, error) {
	return ResolveType(t, func(name string) bool {
		_, ok := e.classes[name]
		return ok
	})
}

// ResolveType converts a written type. Names other than the builtin types
// must satisfy isClass.
func ResolveType(t *TypeExpr, isClass func(string) bool) (types.RecType, error) {
	switch t.Name {
	case "bit":
		return types.BitType(), nil
	case "bits":
		return types.BitsType(t.Width), nil
	case "int":
		return types.IntType(), nil
	case "string":
		return types.StringType(), nil
	case "code":
		return types.CodeType(), nil
	case "dag":
		return types.DagType(), nil
	case "list":
		elem, err := ResolveType(t.Elem, isClass)
		if err != nil {
			return types.RecType{}, err
		}
		return types.ListType(elem), nil
	}
	if !isClass(t.Name) {
		return types.RecType{}, types.WithLocation(fmt.Errorf("type %q: %w", t.Name, types.ErrUnknownClass), t.Loc)
	}
	return types.RecordType(t.Name), nil
}

// inferElemType picks the element type of an untyped list literal from its
// first resolved element.
func inferElemType(elems []types.Init) (types.RecType, error) {
	for _, v := range elems {
		switch v := v.(type) {
		case *types.UnsetInit:
			continue
		case *types.BitInit:
			return types.BitType(), nil
		case *types.BitsInit:
			return types.BitsType(v.Len()), nil
		case *types.IntInit:
			return types.IntType(), nil
		case *types.StringInit:
			return types.StringType(), nil
		case *types.DagInit:
			return types.DagType(), nil
		case *types.ListInit:
			return types.ListType(v.ElemType()), nil
		case *types.DefInit:
			supers := v.Record().Superclasses()
			if len(supers) == 0 {
				return types.RecType{}, fmt.Errorf("def %q has no class to type the list: %w",
					v.Record().Name(), types.ErrInvalidType)
			}
			return types.RecordType(supers[len(supers)-1]), nil
		}
	}
	// Nothing to go on; an empty int list fits every list type.
	return types.IntType(), nil
}
