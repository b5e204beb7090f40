package tdparse

import (
	"fmt"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// Parse reads a whole source buffer into its top-level items.
func Parse(file, src string) ([]Item, error) {
	toks, err := NewLexer(file, src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var items []Item
	for p.peek().Type != EOF {
		it, err := p.item()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// ParseType reads a written type such as `bits<4>` or `list<Reg>`.
func ParseType(file, src string) (*TypeExpr, error) {
	toks, err := NewLexer(file, src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	t, err := p.typeExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.errorf(tok, "unexpected %s after type", describe(tok))
	}
	return t, nil
}

type parser struct {
	toks []Token
	i    int
}

func (p *parser) peek() Token { return p.toks[p.i] }

func (p *parser) peekAt(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) next() Token {
	t := p.toks[p.i]
	if t.Type != EOF {
		p.i++
	}
	return t
}

func (p *parser) match(tt TokenType) bool {
	if p.peek().Type == tt {
		p.next()
		return true
	}
	return false
}

func (p *parser) need(tt TokenType, context string) (Token, error) {
	t := p.peek()
	if t.Type != tt {
		return t, p.errorf(t, "expected %s %s, found %s", tt, context, describe(t))
	}
	return p.next(), nil
}

func (p *parser) errorf(at Token, format string, args ...any) error {
	return types.WithLocation(fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrSyntax), at.Loc)
}

func describe(t Token) string {
	switch t.Type {
	case IDENT, VARNAME, INT:
		return fmt.Sprintf("%s %q", t.Type, t.Text)
	}
	return t.Type.String()
}

func (p *parser) item() (Item, error) {
	t := p.peek()
	switch t.Type {
	case CLASS, DEF:
		return p.recordDecl()
	case LET:
		return p.letBlock()
	case INCLUDE:
		p.next()
		path, err := p.need(STRING, "after include")
		if err != nil {
			return nil, err
		}
		return &Include{Path: path.Text, Loc: t.Loc}, nil
	}
	return nil, p.errorf(t, "expected class, def, let or include, found %s", describe(t))
}

func (p *parser) recordDecl() (*RecordDecl, error) {
	kw := p.next()
	d := &RecordDecl{Class: kw.Type == CLASS, Loc: kw.Loc}

	if d.Class {
		name, err := p.need(IDENT, "after class")
		if err != nil {
			return nil, err
		}
		d.Name = name.Text
		if p.match(LANGLE) {
			for {
				prm, err := p.param()
				if err != nil {
					return nil, err
				}
				d.Params = append(d.Params, prm)
				if !p.match(COMMA) {
					break
				}
			}
			if _, err := p.need(RANGLE, "after template arguments"); err != nil {
				return nil, err
			}
		}
	} else if p.peek().Type == IDENT {
		d.Name = p.next().Text
	}

	if p.match(COLON) {
		for {
			ref, err := p.parentRef()
			if err != nil {
				return nil, err
			}
			d.Parents = append(d.Parents, ref)
			if !p.match(COMMA) {
				break
			}
		}
	}

	if p.match(SEMI) {
		return d, nil
	}
	if _, err := p.need(LBRACE, "to open record body"); err != nil {
		return nil, err
	}
	for !p.match(RBRACE) {
		if p.peek().Type == EOF {
			return nil, p.errorf(p.peek(), "unterminated body of %q", d.Name)
		}
		bi, err := p.bodyItem()
		if err != nil {
			return nil, err
		}
		d.Body = append(d.Body, bi)
	}
	// A trailing ';' after the body is accepted.
	p.match(SEMI)
	return d, nil
}

func (p *parser) param() (*Param, error) {
	typ, err := p.typeExpr()
	if err != nil {
		return nil, err
	}
	name, err := p.need(IDENT, "for template argument name")
	if err != nil {
		return nil, err
	}
	prm := &Param{Type: typ, Name: name.Text, Loc: typ.Loc}
	if p.match(ASSIGN) {
		if prm.Default, err = p.expr(); err != nil {
			return nil, err
		}
	}
	return prm, nil
}

func (p *parser) parentRef() (*ParentRef, error) {
	name, err := p.need(IDENT, "for superclass")
	if err != nil {
		return nil, err
	}
	ref := &ParentRef{Name: name.Text, Loc: name.Loc}
	if p.match(LANGLE) {
		if ref.Args, err = p.exprList(RANGLE); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

func (p *parser) bodyItem() (*BodyItem, error) {
	if t := p.peek(); t.Type == LET {
		p.next()
		bi, err := p.binding()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(SEMI, "after let"); err != nil {
			return nil, err
		}
		return bi, nil
	}

	p.match(FIELD)
	typ, err := p.typeExpr()
	if err != nil {
		return nil, err
	}
	name, err := p.need(IDENT, "for field name")
	if err != nil {
		return nil, err
	}
	bi := &BodyItem{Type: typ, Name: name.Text, Loc: name.Loc}
	if p.match(ASSIGN) {
		if bi.Value, err = p.expr(); err != nil {
			return nil, err
		}
	}
	if _, err := p.need(SEMI, "after field"); err != nil {
		return nil, err
	}
	return bi, nil
}

func (p *parser) binding() (*BodyItem, error) {
	name, err := p.need(IDENT, "for let name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "in let"); err != nil {
		return nil, err
	}
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &BodyItem{Name: name.Text, Value: v, Loc: name.Loc}, nil
}

func (p *parser) letBlock() (*LetBlock, error) {
	kw := p.next()
	lb := &LetBlock{Loc: kw.Loc}
	for {
		bi, err := p.binding()
		if err != nil {
			return nil, err
		}
		lb.Bindings = append(lb.Bindings, bi)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(IN, "after let bindings"); err != nil {
		return nil, err
	}
	if !p.match(LBRACE) {
		it, err := p.item()
		if err != nil {
			return nil, err
		}
		lb.Items = []Item{it}
		return lb, nil
	}
	for !p.match(RBRACE) {
		if p.peek().Type == EOF {
			return nil, p.errorf(p.peek(), "unterminated let block")
		}
		it, err := p.item()
		if err != nil {
			return nil, err
		}
		lb.Items = append(lb.Items, it)
	}
	return lb, nil
}

func (p *parser) typeExpr() (*TypeExpr, error) {
	t, err := p.need(IDENT, "for type")
	if err != nil {
		return nil, err
	}
	te := &TypeExpr{Name: t.Text, Loc: t.Loc}
	switch t.Text {
	case "bits":
		if _, err := p.need(LANGLE, "after bits"); err != nil {
			return nil, err
		}
		w, err := p.need(INT, "for bits width")
		if err != nil {
			return nil, err
		}
		if w.Int < 0 {
			return nil, p.errorf(w, "negative bits width %d", w.Int)
		}
		te.Width = int(w.Int)
		if _, err := p.need(RANGLE, "after bits width"); err != nil {
			return nil, err
		}
	case "list":
		if _, err := p.need(LANGLE, "after list"); err != nil {
			return nil, err
		}
		if te.Elem, err = p.typeExpr(); err != nil {
			return nil, err
		}
		if _, err := p.need(RANGLE, "after list element type"); err != nil {
			return nil, err
		}
	}
	return te, nil
}

func (p *parser) exprList(end TokenType) ([]Expr, error) {
	var out []Expr
	if p.match(end) {
		return out, nil
	}
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(end, "to close value list"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) expr() (Expr, error) {
	t := p.next()
	switch t.Type {
	case QUESTION:
		return &UnsetExpr{Loc: t.Loc}, nil
	case INT:
		return &IntExpr{Value: t.Int, Loc: t.Loc}, nil
	case TRUE, FALSE:
		return &BoolExpr{Value: t.Type == TRUE, Loc: t.Loc}, nil
	case STRING:
		return &StringExpr{Value: t.Text, Loc: t.Loc}, nil
	case CODE:
		return &StringExpr{Value: t.Text, Code: true, Loc: t.Loc}, nil
	case LBRACE:
		elems, err := p.exprList(RBRACE)
		if err != nil {
			return nil, err
		}
		return &BitsExpr{Elems: elems, Loc: t.Loc}, nil
	case LSQUARE:
		elems, err := p.exprList(RSQUARE)
		if err != nil {
			return nil, err
		}
		return &ListExpr{Elems: elems, Loc: t.Loc}, nil
	case LPAREN:
		return p.dag(t)
	case IDENT:
		if p.peek().Type == LANGLE {
			p.next()
			args, err := p.exprList(RANGLE)
			if err != nil {
				return nil, err
			}
			return &InstanceExpr{Class: t.Text, Args: args, Loc: t.Loc}, nil
		}
		return &IdentExpr{Name: t.Text, Loc: t.Loc}, nil
	}
	return nil, p.errorf(t, "expected value, found %s", describe(t))
}

func (p *parser) dag(open Token) (Expr, error) {
	op, err := p.need(IDENT, "for dag operator")
	if err != nil {
		return nil, err
	}
	d := &DagExpr{Op: op.Text, Loc: open.Loc}
	if p.match(RPAREN) {
		return d, nil
	}
	for {
		arg := &DagArgExpr{}
		if p.peek().Type == VARNAME {
			arg.Name = p.next().Text
		} else {
			if arg.Value, err = p.expr(); err != nil {
				return nil, err
			}
			if p.peek().Type == COLON && p.peekAt(1).Type == VARNAME {
				p.next()
				arg.Name = p.next().Text
			}
		}
		d.Args = append(d.Args, arg)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RPAREN, "to close dag"); err != nil {
		return nil, err
	}
	return d, nil
}
