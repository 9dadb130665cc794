package structio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/lonelypoint/crystal"
)

// SymOp is an affine symmetry operation on fractional coordinates.
type SymOp struct {
	Rot   [3]crystal.Vec3
	Trans crystal.Vec3
}

// Identity is the operation "x, y, z".
var Identity = SymOp{Rot: [3]crystal.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}

// Apply maps a fractional position through the operation.
func (op SymOp) Apply(f crystal.Vec3) crystal.Vec3 {
	var out crystal.Vec3
	for i := range 3 {
		out[i] = op.Rot[i].Dot(f) + op.Trans[i]
	}
	return out
}

// ParseSymOp parses an operation in the "x, -y+1/2, z" notation.
func ParseSymOp(s string) (SymOp, error) {
	parts := strings.Split(strings.Trim(strings.TrimSpace(s), `'"`), ",")
	if len(parts) != 3 {
		return SymOp{}, fmt.Errorf("symmetry operation %q: want 3 components, got %d", s, len(parts))
	}
	var op SymOp
	for i, p := range parts {
		rot, trans, err := parseSymExpr(p)
		if err != nil {
			return SymOp{}, fmt.Errorf("symmetry operation %q: %w", s, err)
		}
		op.Rot[i] = rot
		op.Trans[i] = trans
	}
	return op, nil
}

func parseSymExpr(expr string) (crystal.Vec3, float64, error) {
	e := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if e == "" {
		return crystal.Vec3{}, 0, fmt.Errorf("empty component")
	}

	var (
		rot   crystal.Vec3
		trans float64
	)
	for pos := 0; pos < len(e); {
		sign := 1.0
		switch e[pos] {
		case '+':
			pos++
		case '-':
			sign = -1
			pos++
		}

		start := pos
		for pos < len(e) && (e[pos] >= '0' && e[pos] <= '9' || e[pos] == '.' || e[pos] == '/') {
			pos++
		}
		num := e[start:pos]
		if pos < len(e) && e[pos] == '*' {
			pos++
		}

		coef := 1.0
		if num != "" {
			v, err := parseFraction(num)
			if err != nil {
				return crystal.Vec3{}, 0, err
			}
			coef = v
		}

		if pos < len(e) && e[pos] >= 'x' && e[pos] <= 'z' {
			rot[e[pos]-'x'] += sign * coef
			pos++
			continue
		}
		if num == "" {
			return crystal.Vec3{}, 0, fmt.Errorf("unexpected %q in %q", e[pos:], expr)
		}
		trans += sign * coef
	}
	return rot, trans, nil
}

func parseFraction(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	if !ok {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator in %q", s)
	}
	return n / d, nil
}
