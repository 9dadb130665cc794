package crystal

import "maps"

// Atom is a chemical species at an absolute position (Å).
type Atom struct {
	Symbol   string `json:"symbol"`
	Position Vec3   `json:"position"`
}

// Structure is a periodic crystal: a cell plus an ordered atom list.
type Structure struct {
	Cell  Cell              `json:"cell"`
	Atoms []Atom            `json:"atoms"`
	PBC   [3]bool           `json:"pbc"`
	Info  map[string]string `json:"info,omitempty"`
}

// New creates a fully periodic structure. The atoms slice is copied.
func New(cell Cell, atoms []Atom) *Structure {
	return &Structure{
		Cell:  cell,
		Atoms: append([]Atom(nil), atoms...),
		PBC:   [3]bool{true, true, true},
	}
}

// Len returns the number of atoms.
func (s *Structure) Len() int {
	return len(s.Atoms)
}

// At returns atom i.
func (s *Structure) At(i int) Atom {
	return s.Atoms[i]
}

// Positions returns a copy of all atom positions in order.
func (s *Structure) Positions() []Vec3 {
	out := make([]Vec3, len(s.Atoms))
	for i, a := range s.Atoms {
		out[i] = a.Position
	}
	return out
}

// Symbols returns the chemical symbols in atom order.
func (s *Structure) Symbols() []string {
	out := make([]string, len(s.Atoms))
	for i, a := range s.Atoms {
		out[i] = a.Symbol
	}
	return out
}

// FractionalPositions returns atom positions in fractional coordinates.
func (s *Structure) FractionalPositions() ([]Vec3, error) {
	inv, err := s.Cell.Inverse()
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, len(s.Atoms))
	for i, a := range s.Atoms {
		out[i] = inv.FracToCart(a.Position)
	}
	return out, nil
}

// Copy returns a deep copy that shares no memory with s.
func (s *Structure) Copy() *Structure {
	cp := &Structure{
		Cell:  s.Cell,
		Atoms: append([]Atom(nil), s.Atoms...),
		PBC:   s.PBC,
	}
	if s.Info != nil {
		cp.Info = maps.Clone(s.Info)
	}
	return cp
}

// Append adds an atom at the end.
func (s *Structure) Append(a Atom) {
	s.Atoms = append(s.Atoms, a)
}
