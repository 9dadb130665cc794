package neighbor

import (
	"cmp"
	"slices"

	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/distance"
)

// leafSize is the point count below which a subtree is scanned linearly.
const leafSize = 8

type kdNode struct {
	// Leaf: order[lo:hi] holds the points. Inner: split point is order[mid].
	lo, hi      int
	mid         int
	axis        int
	left, right int32
}

func (n *kdNode) leaf() bool { return n.mid < 0 }

// KDTree is a static 3-d tree built once over a point set.
type KDTree struct {
	points []crystal.Vec3
	order  []int
	nodes  []kdNode
}

// NewKDTree builds a tree over points. The points slice is copied.
//
// Each inner node splits on the axis with the widest spread at the median,
// so the tree is balanced regardless of input order.
func NewKDTree(points []crystal.Vec3) *KDTree {
	t := &KDTree{
		points: append([]crystal.Vec3(nil), points...),
		order:  make([]int, len(points)),
	}
	for i := range t.order {
		t.order[i] = i
	}
	if len(points) > 0 {
		t.nodes = make([]kdNode, 0, 2*len(points)/leafSize+1)
		t.build(0, len(points))
	}
	return t
}

func (t *KDTree) build(lo, hi int) int32 {
	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, kdNode{lo: lo, hi: hi, mid: -1, left: -1, right: -1})

	if hi-lo <= leafSize {
		return id
	}

	axis := t.widestAxis(lo, hi)
	sub := t.order[lo:hi]
	slices.SortFunc(sub, func(a, b int) int {
		if c := cmp.Compare(t.points[a][axis], t.points[b][axis]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	mid := lo + (hi-lo)/2
	left := t.build(lo, mid)
	right := t.build(mid+1, hi)

	n := &t.nodes[id]
	n.axis = axis
	n.mid = mid
	n.left = left
	n.right = right
	return id
}

func (t *KDTree) widestAxis(lo, hi int) int {
	minV := t.points[t.order[lo]]
	maxV := minV
	for _, i := range t.order[lo+1 : hi] {
		p := t.points[i]
		for a := 0; a < 3; a++ {
			minV[a] = min(minV[a], p[a])
			maxV[a] = max(maxV[a], p[a])
		}
	}
	axis := 0
	for a := 1; a < 3; a++ {
		if maxV[a]-minV[a] > maxV[axis]-minV[axis] {
			axis = a
		}
	}
	return axis
}

// Nearest implements Index.
func (t *KDTree) Nearest(q crystal.Vec3) Result {
	b := newBest()
	if len(t.nodes) > 0 {
		t.search(0, q, &b)
	}
	return b.result()
}

func (t *KDTree) search(id int32, q crystal.Vec3, b *best) {
	n := &t.nodes[id]
	if n.leaf() {
		for _, i := range t.order[n.lo:n.hi] {
			b.offer(distance.SquaredL2(q, t.points[i]), i)
		}
		return
	}

	pi := t.order[n.mid]
	b.offer(distance.SquaredL2(q, t.points[pi]), pi)

	diff := q[n.axis] - t.points[pi][n.axis]
	near, far := n.left, n.right
	if diff > 0 {
		near, far = far, near
	}

	if near >= 0 {
		t.search(near, q, b)
	}
	// <= keeps equidistant points on the far side reachable for the index tie-break.
	if far >= 0 && diff*diff <= b.d2 {
		t.search(far, q, b)
	}
}

// Len implements Index.
func (t *KDTree) Len() int {
	return len(t.points)
}
