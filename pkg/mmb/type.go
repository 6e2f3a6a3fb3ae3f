package mmb

import "fmt"

// SortID indexes into the sort table. The file format caps the number of
// sorts at 128 because a sort fits in 7 bits of a Type.
type SortID uint8

// TermID indexes into the term table.
type TermID uint32

// ThmID indexes into the assertion (axiom/theorem) table.
type ThmID uint32

// Each sort has one byte associated to it, which contains flags for the
// sort modifiers. The high four bits are unused.
const (
	SortPure     uint8 = 1
	SortStrict   uint8 = 2
	SortProvable uint8 = 4
	SortFree     uint8 = 8
)

// SortMods is the modifier byte for one sort.
type SortMods uint8

func (m SortMods) Pure() bool     { return uint8(m)&SortPure != 0 }
func (m SortMods) Strict() bool   { return uint8(m)&SortStrict != 0 }
func (m SortMods) Provable() bool { return uint8(m)&SortProvable != 0 }
func (m SortMods) Free() bool     { return uint8(m)&SortFree != 0 }

func (m SortMods) String() string {
	s := ""
	if m.Pure() {
		s += "pure "
	}
	if m.Strict() {
		s += "strict "
	}
	if m.Provable() {
		s += "provable "
	}
	if m.Free() {
		s += "free "
	}
	return s + "sort"
}

// Type is the 64-bit type of a binder or expression: bit 63 marks a bound
// variable, bits 56-62 hold the sort, and the low 56 bits are either the
// bound variable's digit (a one-hot bit) or a dependency set over the
// bound variables in scope.
type Type uint64

const (
	// bound mask: 10000000_00000000_00000000_00000000_00000000_00000000_00000000_00000000
	typeBoundMask Type = 1 << 63

	// deps mask: 00000000_11111111_11111111_11111111_11111111_11111111_11111111_11111111
	typeDepsMask Type = (1 << 56) - 1
)

// NewBoundType makes the type of a bound variable of the given sort with
// the given one-hot digit.
func NewBoundType(sort SortID, digit uint64) Type {
	return typeBoundMask | Type(sort)<<56 | Type(digit)
}

// NewRegularType makes the type of a regular binder with the given
// dependency set.
func NewRegularType(sort SortID, deps uint64) Type {
	return Type(sort)<<56 | Type(deps)
}

func (t Type) Bound() bool { return t&typeBoundMask != 0 }

func (t Type) Sort() SortID { return SortID(t >> 56 & 0x7f) }

// Deps returns the dependency set of a regular type.
func (t Type) Deps() (uint64, error) {
	if t.Bound() {
		return 0, fmt.Errorf("can't get deps of bound type %x", uint64(t))
	}
	return uint64(t & typeDepsMask), nil
}

// BoundDigit returns the one-hot bound variable bit of a bound type.
func (t Type) BoundDigit() (uint64, error) {
	if !t.Bound() {
		return 0, fmt.Errorf("can't get bound digit of regular type %x", uint64(t))
	}
	return uint64(t & typeDepsMask), nil
}

// lowBits is the low 56 bits, whichever of the two meanings they carry.
func (t Type) lowBits() uint64 { return uint64(t & typeDepsMask) }

// sortsCompatible returns true if a value with type `from` can be cast to
// a value of type `to`. This requires that the sorts be the same, and
// additionally if `to` is bound then so is `from`.
func sortsCompatible(from, to Type) bool {
	diff := from ^ to
	if diff & ^typeDepsMask == 0 {
		return true
	}
	return diff & ^typeBoundMask & ^typeDepsMask == 0 && from.Bound()
}
