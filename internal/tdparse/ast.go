package tdparse

import "github.com/mesh-intelligence/recordkeeper/pkg/types"

// Item is a top-level statement: *RecordDecl, *LetBlock or *Include.
type Item interface {
	item()
}

// RecordDecl is a class or def statement. Name is empty for an anonymous
// def.
type RecordDecl struct {
	Class   bool
	Name    string
	Params  []*Param
	Parents []*ParentRef
	Body    []*BodyItem
	Loc     types.Location
}

// Param is a class template argument.
type Param struct {
	Type    *TypeExpr
	Name    string
	Default Expr // nil when the argument is required
	Loc     types.Location
}

// ParentRef names a superclass with its template arguments.
type ParentRef struct {
	Name string
	Args []Expr
	Loc  types.Location
}

// BodyItem is a field declaration (Type set) or a let override (Type nil).
// Value is nil for a declaration without initializer.
type BodyItem struct {
	Type  *TypeExpr
	Name  string
	Value Expr
	Loc   types.Location
}

// LetBlock is a top-level `let a = v, ... in` applied to Items.
type LetBlock struct {
	Bindings []*BodyItem
	Items    []Item
	Loc      types.Location
}

// Include is an `include "path"` statement.
type Include struct {
	Path string
	Loc  types.Location
}

func (*RecordDecl) item() {}
func (*LetBlock) item()   {}
func (*Include) item()    {}

// TypeExpr is a written type. Name is one of bit, bits, int, string, code,
// list, dag, or a class name.
type TypeExpr struct {
	Name  string
	Width int
	Elem  *TypeExpr
	Loc   types.Location
}

// Expr is a value expression.
type Expr interface {
	Pos() types.Location
}

type (
	// UnsetExpr is `?`.
	UnsetExpr struct{ Loc types.Location }

	// IntExpr is an integer literal.
	IntExpr struct {
		Value int64
		Loc   types.Location
	}

	// BoolExpr is `true` or `false`.
	BoolExpr struct {
		Value bool
		Loc   types.Location
	}

	// StringExpr is a string or code literal.
	StringExpr struct {
		Value string
		Code  bool
		Loc   types.Location
	}

	// BitsExpr is `{ b, ... }`, most significant bit first.
	BitsExpr struct {
		Elems []Expr
		Loc   types.Location
	}

	// ListExpr is `[ v, ... ]`.
	ListExpr struct {
		Elems []Expr
		Loc   types.Location
	}

	// DagExpr is `(op a:$n, ...)`.
	DagExpr struct {
		Op   string
		Args []*DagArgExpr
		Loc  types.Location
	}

	// IdentExpr names a template argument, a field or a def.
	IdentExpr struct {
		Name string
		Loc  types.Location
	}

	// InstanceExpr is `Class<args>`, an anonymous def.
	InstanceExpr struct {
		Class string
		Args  []Expr
		Loc   types.Location
	}
)

// DagArgExpr is one dag argument. Value is nil for a bare `$name`.
type DagArgExpr struct {
	Value Expr
	Name  string
}

func (e *UnsetExpr) Pos() types.Location    { return e.Loc }
func (e *IntExpr) Pos() types.Location      { return e.Loc }
func (e *BoolExpr) Pos() types.Location     { return e.Loc }
func (e *StringExpr) Pos() types.Location   { return e.Loc }
func (e *BitsExpr) Pos() types.Location     { return e.Loc }
func (e *ListExpr) Pos() types.Location     { return e.Loc }
func (e *DagExpr) Pos() types.Location      { return e.Loc }
func (e *IdentExpr) Pos() types.Location    { return e.Loc }
func (e *InstanceExpr) Pos() types.Location { return e.Loc }
