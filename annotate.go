package lonelypoint

import "github.com/hupe1980/lonelypoint/crystal"

// Annotate returns a deep copy of s with one marker atom appended at the
// absolute position pos. s is not modified. An empty symbol selects
// DefaultMarker.
func Annotate(s *crystal.Structure, pos crystal.Vec3, symbol string) *crystal.Structure {
	if symbol == "" {
		symbol = DefaultMarker
	}
	out := s.Copy()
	out.Append(crystal.Atom{Symbol: symbol, Position: pos})
	return out
}

// AnnotateFractional is Annotate with the marker given in fractional
// coordinates of the cell of s.
func AnnotateFractional(s *crystal.Structure, frac crystal.Vec3, symbol string) *crystal.Structure {
	return Annotate(s, s.Cell.FracToCart(frac), symbol)
}
