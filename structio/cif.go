package structio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hupe1980/lonelypoint/crystal"
)

// siteTolerance is the fractional distance below which two symmetry
// generated sites of the same species are considered equal.
const siteTolerance = 1e-4

// CIF reads and writes Crystallographic Information Files. Only the first
// data block is used. Atom sites are expanded through the listed symmetry
// operations; the written file always uses space group P 1.
type CIF struct{}

// Name implements Format.
func (CIF) Name() string { return "cif" }

// Extensions implements Format.
func (CIF) Extensions() []string { return []string{".cif"} }

type cifToken struct {
	text   string
	line   int
	quoted bool
}

func (t cifToken) isTag() bool { return !t.quoted && strings.HasPrefix(t.text, "_") }

func (t cifToken) isKeyword() bool {
	if t.quoted {
		return false
	}
	l := strings.ToLower(t.text)
	return l == "loop_" || strings.HasPrefix(l, "data_") || strings.HasPrefix(l, "save_") || l == "stop_" || l == "global_"
}

func tokenizeCIF(r io.Reader) ([]cifToken, error) {
	var (
		toks    []cifToken
		lineNo  int
		text    strings.Builder
		inText  bool
		textPos int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if strings.HasPrefix(line, ";") {
			if inText {
				toks = append(toks, cifToken{text: strings.TrimSpace(text.String()), line: textPos, quoted: true})
				text.Reset()
				inText = false
				line = line[1:]
			} else {
				inText = true
				textPos = lineNo
				text.WriteString(line[1:])
				continue
			}
		} else if inText {
			text.WriteByte('\n')
			text.WriteString(line)
			continue
		}

		for pos := 0; pos < len(line); {
			c := line[pos]
			switch {
			case c == ' ' || c == '\t':
				pos++
			case c == '#':
				pos = len(line)
			case c == '\'' || c == '"':
				// A quote only closes when followed by whitespace or end of line.
				end := pos + 1
				for end < len(line) && !(line[end] == c && (end+1 == len(line) || line[end+1] == ' ' || line[end+1] == '\t')) {
					end++
				}
				if end >= len(line) {
					return nil, malformed("cif", lineNo, "unterminated quoted string")
				}
				toks = append(toks, cifToken{text: line[pos+1 : end], line: lineNo, quoted: true})
				pos = end + 1
			default:
				end := pos
				for end < len(line) && line[end] != ' ' && line[end] != '\t' {
					end++
				}
				toks = append(toks, cifToken{text: line[pos:end], line: lineNo})
				pos = end
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if inText {
		return nil, malformed("cif", textPos, "unterminated text field")
	}
	return toks, nil
}

type cifLoop struct {
	tags []string
	rows [][]string
}

func (l *cifLoop) column(tag string) int {
	for i, t := range l.tags {
		if t == tag {
			return i
		}
	}
	return -1
}

type cifBlock struct {
	name   string
	items  map[string]string
	loops  []*cifLoop
	byTag  map[string]*cifLoop
	hasAny bool
}

func (b *cifBlock) loopWith(tags ...string) (*cifLoop, string) {
	for _, t := range tags {
		if l, ok := b.byTag[t]; ok {
			return l, t
		}
	}
	return nil, ""
}

// parseCIFBlock returns the first data block of the token stream.
func parseCIFBlock(toks []cifToken) (*cifBlock, error) {
	b := &cifBlock{items: map[string]string{}, byTag: map[string]*cifLoop{}}
	started := false

	for i := 0; i < len(toks); {
		t := toks[i]
		lower := strings.ToLower(t.text)
		switch {
		case !t.quoted && strings.HasPrefix(lower, "data_"):
			if started {
				return b, nil
			}
			started = true
			b.name = t.text[len("data_"):]
			i++
		case !t.quoted && lower == "loop_":
			i++
			l := &cifLoop{}
			for i < len(toks) && toks[i].isTag() {
				l.tags = append(l.tags, strings.ToLower(toks[i].text))
				i++
			}
			if len(l.tags) == 0 {
				return nil, malformed("cif", t.line, "loop_ without tags")
			}
			var values []string
			for i < len(toks) && !toks[i].isTag() && !toks[i].isKeyword() {
				values = append(values, toks[i].text)
				i++
			}
			if len(values)%len(l.tags) != 0 {
				return nil, malformed("cif", t.line, "loop has %d values for %d tags", len(values), len(l.tags))
			}
			for r := 0; r < len(values); r += len(l.tags) {
				l.rows = append(l.rows, values[r:r+len(l.tags)])
			}
			b.loops = append(b.loops, l)
			for _, tag := range l.tags {
				b.byTag[tag] = l
			}
			b.hasAny = true
		case t.isTag():
			if i+1 >= len(toks) || toks[i+1].isTag() || toks[i+1].isKeyword() {
				return nil, malformed("cif", t.line, "tag %s has no value", t.text)
			}
			b.items[lower] = toks[i+1].text
			b.hasAny = true
			i += 2
		default:
			// Global or save-frame keywords and stray values are ignored.
			i++
		}
	}
	if !started && !b.hasAny {
		return nil, malformed("cif", 0, "no data block")
	}
	return b, nil
}

// Decode implements Format.
func (CIF) Decode(r io.Reader) (*crystal.Structure, error) {
	toks, err := tokenizeCIF(r)
	if err != nil {
		return nil, err
	}
	b, err := parseCIFBlock(toks)
	if err != nil {
		return nil, err
	}

	var params [6]float64
	for i, tag := range []string{
		"_cell_length_a", "_cell_length_b", "_cell_length_c",
		"_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma",
	} {
		v, ok := b.items[tag]
		if !ok {
			if i < 3 {
				return nil, malformed("cif", 0, "missing %s", tag)
			}
			params[i] = 90
			continue
		}
		f, err := parseNumber(v)
		if err != nil {
			return nil, malformed("cif", 0, "%s: %v", tag, err)
		}
		params[i] = f
	}
	cell := crystal.CellFromParameters(params[0], params[1], params[2], params[3], params[4], params[5])

	ops, err := cifSymOps(b)
	if err != nil {
		return nil, err
	}

	sites, err := cifSites(b, cell)
	if err != nil {
		return nil, err
	}

	s := crystal.New(cell, nil)
	if b.name != "" {
		s.Info = map[string]string{"name": b.name}
	}

	var expanded []cifSite
	for _, site := range sites {
		for _, op := range ops {
			f := crystal.WrapFrac(op.Apply(site.frac))
			dup := false
			for _, e := range expanded {
				if e.symbol == site.symbol && fracClose(e.frac, f, siteTolerance) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			expanded = append(expanded, cifSite{symbol: site.symbol, frac: f})
			s.Append(crystal.Atom{Symbol: site.symbol, Position: cell.FracToCart(f)})
		}
	}
	return s, nil
}

// fracClose compares two fractional positions modulo lattice translations.
func fracClose(a, b crystal.Vec3, tol float64) bool {
	for i := range 3 {
		d := a[i] - b[i]
		d -= math.Round(d)
		if math.Abs(d) > tol {
			return false
		}
	}
	return true
}

func cifSymOps(b *cifBlock) ([]SymOp, error) {
	l, tag := b.loopWith(
		"_space_group_symop_operation_xyz",
		"_symmetry_equiv_pos_as_xyz",
		"_space_group_symop.operation_xyz",
	)
	if l == nil {
		return []SymOp{Identity}, nil
	}
	col := l.column(tag)
	ops := make([]SymOp, 0, len(l.rows))
	for _, row := range l.rows {
		op, err := ParseSymOp(row[col])
		if err != nil {
			return nil, malformed("cif", 0, "%v", err)
		}
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		ops = append(ops, Identity)
	}
	return ops, nil
}

type cifSite struct {
	symbol string
	frac   crystal.Vec3
}

func cifSites(b *cifBlock, cell crystal.Cell) ([]cifSite, error) {
	l, _ := b.loopWith("_atom_site_fract_x", "_atom_site_cartn_x", "_atom_site_label", "_atom_site_type_symbol")
	if l == nil {
		return nil, nil
	}

	symCol := l.column("_atom_site_type_symbol")
	labelCol := l.column("_atom_site_label")
	if symCol < 0 && labelCol < 0 {
		return nil, malformed("cif", 0, "atom sites have neither _atom_site_type_symbol nor _atom_site_label")
	}

	cartesian := false
	cols := [3]int{l.column("_atom_site_fract_x"), l.column("_atom_site_fract_y"), l.column("_atom_site_fract_z")}
	if cols[0] < 0 {
		cartesian = true
		cols = [3]int{l.column("_atom_site_cartn_x"), l.column("_atom_site_cartn_y"), l.column("_atom_site_cartn_z")}
	}
	for _, c := range cols {
		if c < 0 {
			return nil, malformed("cif", 0, "atom sites lack coordinates")
		}
	}

	var inv crystal.Cell
	if cartesian {
		var err error
		if inv, err = cell.Inverse(); err != nil {
			return nil, malformed("cif", 0, "cartesian sites in singular cell")
		}
	}

	sites := make([]cifSite, 0, len(l.rows))
	for i, row := range l.rows {
		var v crystal.Vec3
		for k, c := range cols {
			f, err := parseNumber(row[c])
			if err != nil {
				return nil, malformed("cif", 0, "atom site %d: %v", i, err)
			}
			v[k] = f
		}
		if cartesian {
			v = inv.FracToCart(v)
		}

		var symbol string
		if symCol >= 0 {
			symbol = symbolFromLabel(row[symCol])
		}
		if symbol == "" && labelCol >= 0 {
			symbol = symbolFromLabel(row[labelCol])
		}
		if symbol == "" {
			return nil, malformed("cif", 0, "atom site %d has no element symbol", i)
		}
		sites = append(sites, cifSite{symbol: symbol, frac: v})
	}
	return sites, nil
}

// Encode implements Format.
func (CIF) Encode(w io.Writer, s *crystal.Structure) error {
	frac, err := s.FractionalPositions()
	if err != nil {
		return err
	}
	name := "structure"
	if n := s.Info["name"]; n != "" {
		name = strings.ReplaceAll(n, " ", "_")
	}
	lengths, angles := s.Cell.Lengths(), s.Cell.Angles()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "data_%s\n\n", name)
	fmt.Fprintf(bw, "_symmetry_space_group_name_H-M    'P 1'\n")
	fmt.Fprintf(bw, "_symmetry_Int_Tables_number       1\n\n")
	fmt.Fprintf(bw, "_cell_length_a       %.8f\n", lengths[0])
	fmt.Fprintf(bw, "_cell_length_b       %.8f\n", lengths[1])
	fmt.Fprintf(bw, "_cell_length_c       %.8f\n", lengths[2])
	fmt.Fprintf(bw, "_cell_angle_alpha    %.8f\n", angles[0])
	fmt.Fprintf(bw, "_cell_angle_beta     %.8f\n", angles[1])
	fmt.Fprintf(bw, "_cell_angle_gamma    %.8f\n\n", angles[2])
	fmt.Fprintf(bw, "loop_\n  _symmetry_equiv_pos_as_xyz\n  'x, y, z'\n\n")
	fmt.Fprintf(bw, "loop_\n  _atom_site_label\n  _atom_site_type_symbol\n  _atom_site_fract_x\n  _atom_site_fract_y\n  _atom_site_fract_z\n  _atom_site_occupancy\n")

	counts := map[string]int{}
	for i, a := range s.Atoms {
		counts[a.Symbol]++
		label := fmt.Sprintf("%s%d", a.Symbol, counts[a.Symbol])
		f := frac[i]
		fmt.Fprintf(bw, "  %-6s %-3s %.8f %.8f %.8f 1.0000\n", label, a.Symbol, f[0], f[1], f[2])
	}
	return bw.Flush()
}
