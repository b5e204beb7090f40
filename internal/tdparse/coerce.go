package tdparse

import (
	"fmt"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// Coerce converts v to the representation of t where the language allows
// it: integers and bits convert among bit, bits<N> and int. Other values
// are returned unchanged and left to the builder's type check.
func Coerce(v types.Init, t types.RecType) (types.Init, error) {
	switch t.Kind() {
	case types.KindBit:
		switch v := v.(type) {
		case *types.IntInit:
			if v.Value() != 0 && v.Value() != 1 {
				return nil, fmt.Errorf("integer %d does not fit in a bit: %w", v.Value(), types.ErrTypeMismatch)
			}
			return types.NewBit(v.Value() == 1), nil
		case *types.BitsInit:
			if v.Len() == 1 {
				b, _ := v.Bit(0)
				return types.NewBit(b), nil
			}
		}
	case types.KindBits:
		switch v := v.(type) {
		case *types.IntInit:
			if !fitsBits(v.Value(), t.Width()) {
				return nil, fmt.Errorf("integer %d does not fit in bits<%d>: %w", v.Value(), t.Width(), types.ErrTypeMismatch)
			}
			return types.NewBitsFromInt(v.Value(), t.Width()), nil
		case *types.BitInit:
			if t.Width() == 1 {
				return types.NewBits([]bool{v.Value()}), nil
			}
		case *types.BitsInit:
			if v.Len() != t.Width() {
				return nil, fmt.Errorf("bits<%d> value for bits<%d>: %w", v.Len(), t.Width(), types.ErrTypeMismatch)
			}
		}
	case types.KindInt:
		switch v := v.(type) {
		case *types.BitInit:
			if v.Value() {
				return types.NewInt(1), nil
			}
			return types.NewInt(0), nil
		case *types.BitsInit:
			var n int64
			for i := v.Len() - 1; i >= 0; i-- {
				b, _ := v.Bit(i)
				n <<= 1
				if b {
					n |= 1
				}
			}
			return types.NewInt(n), nil
		}
	}
	return v, nil
}

// fitsBits reports whether v is representable in width bits, either as an
// unsigned or as a two's complement value.
func fitsBits(v int64, width int) bool {
	if width >= 64 {
		return true
	}
	if width == 0 {
		return v == 0
	}
	lo := -(int64(1) << (width - 1))
	hi := int64(1)<<width - 1
	return v >= lo && v <= hi
}
