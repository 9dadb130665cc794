package neighbor

import "github.com/hupe1980/lonelypoint/crystal"

// imageCount is the number of cell translations searched (−1..1 per axis).
const imageCount = 27

// Periodic searches the atoms of the home cell and its 26 neighbours and
// reports hits by their home-cell atom index.
type Periodic struct {
	inner Index
	n     int
}

// NewPeriodic replicates points over the neighbouring images of cell and
// indexes them with newIndex.
func NewPeriodic(points []crystal.Vec3, cell crystal.Cell, newIndex func([]crystal.Vec3) Index) *Periodic {
	images := make([]crystal.Vec3, 0, imageCount*len(points))
	// The untranslated image goes first so ties resolve to home-cell atoms.
	images = append(images, points...)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				shift := cell.FracToCart(crystal.Vec3{float64(i), float64(j), float64(k)})
				for _, p := range points {
					images = append(images, p.Add(shift))
				}
			}
		}
	}
	return &Periodic{inner: newIndex(images), n: len(points)}
}

// Nearest implements Index.
func (p *Periodic) Nearest(q crystal.Vec3) Result {
	r := p.inner.Nearest(q)
	if r.Index >= 0 {
		r.Index %= p.n
	}
	return r
}

// Len implements Index. It counts home-cell atoms only.
func (p *Periodic) Len() int {
	return p.n
}
