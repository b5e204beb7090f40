package hclsrc

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/mesh-intelligence/recordkeeper/internal/tdparse"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// convert turns a cty value into a value of type t. Numbers and booleans
// fill integer fields. Strings name the def of a record field. A tuple
// fills a list, or a bits field written most significant first.
func convert(b *types.Builder, v cty.Value, t types.RecType) (types.Init, error) {
	if v.IsNull() {
		return types.Unset(), nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known: %w", ErrHCL)
	}

	switch t.Kind() {
	case types.KindBit, types.KindInt:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return tdparse.Coerce(types.NewInt(n), t)

	case types.KindBits:
		if v.Type().IsTupleType() || v.Type().IsListType() {
			return convertBits(v, t.Width())
		}
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return tdparse.Coerce(types.NewInt(n), t)

	case types.KindString:
		if v.Type() != cty.String {
			return nil, mismatch(v, t)
		}
		if t.IsCode() {
			return types.NewCode(v.AsString()), nil
		}
		return types.NewString(v.AsString()), nil

	case types.KindRecord:
		if v.Type() != cty.String {
			return nil, mismatch(v, t)
		}
		r, err := b.Def(v.AsString())
		if err != nil {
			return nil, err
		}
		return types.NewDef(r), nil

	case types.KindList:
		if !v.Type().IsTupleType() && !v.Type().IsListType() {
			return nil, mismatch(v, t)
		}
		elem, _ := t.Elem()
		var elems []types.Init
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := convert(b, ev, elem)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return types.NewList(elem, elems)

	case types.KindDag:
		return nil, fmt.Errorf("dag values cannot be written in HCL: %w", types.ErrInvalidType)
	}
	return nil, mismatch(v, t)
}

func convertBits(v cty.Value, width int) (types.Init, error) {
	n := v.LengthInt()
	if n != width {
		return nil, fmt.Errorf("%d bits for bits<%d>: %w", n, width, types.ErrTypeMismatch)
	}
	bits := make([]bool, n)
	i := 0
	for it := v.ElementIterator(); it.Next(); i++ {
		_, ev := it.Element()
		b, err := toInt(ev)
		if err != nil {
			return nil, err
		}
		if b != 0 && b != 1 {
			return nil, fmt.Errorf("%d is not a bit: %w", b, types.ErrTypeMismatch)
		}
		bits[n-1-i] = b == 1
	}
	return types.NewBits(bits), nil
}

// toInt reads a number or a boolean as an integer.
func toInt(v cty.Value) (int64, error) {
	switch v.Type() {
	case cty.Bool:
		if v.True() {
			return 1, nil
		}
		return 0, nil
	case cty.Number:
		var n int64
		if err := gocty.FromCtyValue(v, &n); err != nil {
			return 0, fmt.Errorf("%s: %w", err, types.ErrTypeMismatch)
		}
		return n, nil
	}
	return 0, fmt.Errorf("invalid conversion from %s to integer: %w", v.Type().FriendlyName(), types.ErrTypeMismatch)
}

func mismatch(v cty.Value, t types.RecType) error {
	return fmt.Errorf("invalid conversion from %s to %s: %w", v.Type().FriendlyName(), t, types.ErrTypeMismatch)
}
