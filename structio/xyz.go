package structio

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/lonelypoint/crystal"
)

// XYZ reads and writes extended XYZ. The cell comes from the
// Lattice="ax ay az bx by bz cx cy cz" key of the comment line; a plain XYZ
// file without it yields a zero cell with periodicity switched off. Only the
// first frame is read.
type XYZ struct{}

// Name implements Format.
func (XYZ) Name() string { return "xyz" }

// Extensions implements Format.
func (XYZ) Extensions() []string { return []string{".xyz", ".extxyz"} }

// parseKeyValues splits an extended XYZ comment line into key=value pairs.
// Values may be quoted with double quotes; bare keys map to "T".
func parseKeyValues(line string) (map[string]string, error) {
	kv := map[string]string{}
	for pos := 0; pos < len(line); {
		for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
			pos++
		}
		if pos >= len(line) {
			break
		}
		start := pos
		for pos < len(line) && line[pos] != '=' && line[pos] != ' ' && line[pos] != '\t' {
			pos++
		}
		key := line[start:pos]
		if pos >= len(line) || line[pos] != '=' {
			kv[key] = "T"
			continue
		}
		pos++

		var value string
		if pos < len(line) && line[pos] == '"' {
			end := strings.IndexByte(line[pos+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote for key %s", key)
			}
			value = line[pos+1 : pos+1+end]
			pos += end + 2
		} else {
			start = pos
			for pos < len(line) && line[pos] != ' ' && line[pos] != '\t' {
				pos++
			}
			value = line[start:pos]
		}
		kv[key] = value
	}
	return kv, nil
}

// xyzColumns locates the species and position columns from a
// Properties=name:type:count:... specification.
func xyzColumns(props string) (species, pos int, err error) {
	if props == "" {
		return 0, 1, nil
	}
	fields := strings.Split(props, ":")
	if len(fields)%3 != 0 {
		return 0, 0, fmt.Errorf("invalid Properties %q", props)
	}
	species, pos = -1, -1
	col := 0
	for i := 0; i < len(fields); i += 3 {
		n, err := strconv.Atoi(fields[i+2])
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("invalid Properties %q", props)
		}
		switch strings.ToLower(fields[i]) {
		case "species":
			species = col
		case "pos":
			if n != 3 {
				return 0, 0, fmt.Errorf("pos must have 3 columns, got %d", n)
			}
			pos = col
		}
		col += n
	}
	if species < 0 || pos < 0 {
		return 0, 0, fmt.Errorf("properties %q lack species or pos", props)
	}
	return species, pos, nil
}

// Decode implements Format.
func (XYZ) Decode(r io.Reader) (*crystal.Structure, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNo := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return sc.Text(), true
	}

	header, ok := next()
	for ok && strings.TrimSpace(header) == "" {
		header, ok = next()
	}
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, malformed("xyz", 0, "empty file")
	}
	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || n < 0 {
		return nil, malformed("xyz", lineNo, "invalid atom count %q", header)
	}

	comment, ok := next()
	if !ok {
		return nil, malformed("xyz", lineNo, "missing comment line")
	}
	kv, err := parseKeyValues(comment)
	if err != nil {
		return nil, malformed("xyz", lineNo, "%v", err)
	}

	var cell crystal.Cell
	pbc := [3]bool{}
	if lat, ok := kv["Lattice"]; ok {
		fields := strings.Fields(lat)
		if len(fields) != 9 {
			return nil, malformed("xyz", lineNo, "Lattice needs 9 numbers, got %d", len(fields))
		}
		for i, f := range fields {
			v, err := parseFloat(f)
			if err != nil {
				return nil, malformed("xyz", lineNo, "Lattice: %v", err)
			}
			cell[i/3][i%3] = v
		}
		pbc = [3]bool{true, true, true}
	}
	if p, ok := kv["pbc"]; ok {
		fields := strings.Fields(p)
		if len(fields) != 3 {
			return nil, malformed("xyz", lineNo, "pbc needs 3 flags")
		}
		for i, f := range fields {
			pbc[i] = strings.EqualFold(f, "T") || strings.EqualFold(f, "true")
		}
	}

	speciesCol, posCol, err := xyzColumns(kv["Properties"])
	if err != nil {
		return nil, malformed("xyz", lineNo, "%v", err)
	}
	width := max(speciesCol+1, posCol+3)

	s := crystal.New(cell, nil)
	s.PBC = pbc
	for i := range n {
		line, ok := next()
		if !ok {
			return nil, malformed("xyz", lineNo, "expected %d atoms, found %d", n, i)
		}
		fields := strings.Fields(line)
		if len(fields) < width {
			return nil, malformed("xyz", lineNo, "expected at least %d columns, got %d", width, len(fields))
		}
		var p crystal.Vec3
		for k := range 3 {
			if p[k], err = parseFloat(fields[posCol+k]); err != nil {
				return nil, malformed("xyz", lineNo, "%v", err)
			}
		}
		s.Append(crystal.Atom{Symbol: fields[speciesCol], Position: p})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for k, v := range kv {
		if slices.Contains([]string{"Lattice", "Properties", "pbc"}, k) {
			continue
		}
		if s.Info == nil {
			s.Info = map[string]string{}
		}
		s.Info[k] = v
	}
	return s, nil
}

// Encode implements Format.
func (XYZ) Encode(w io.Writer, s *crystal.Structure) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", s.Len())

	c := s.Cell
	fmt.Fprintf(bw, `Lattice="%.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f" Properties=species:S:1:pos:R:3 pbc="%s %s %s"`,
		c[0][0], c[0][1], c[0][2], c[1][0], c[1][1], c[1][2], c[2][0], c[2][1], c[2][2],
		flag(s.PBC[0]), flag(s.PBC[1]), flag(s.PBC[2]))

	keys := make([]string, 0, len(s.Info))
	for k := range s.Info {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := s.Info[k]
		if strings.ContainsAny(v, " \t") {
			v = `"` + v + `"`
		}
		fmt.Fprintf(bw, " %s=%s", k, v)
	}
	bw.WriteByte('\n')

	for _, a := range s.Atoms {
		p := a.Position
		fmt.Fprintf(bw, "%-3s %15.8f %15.8f %15.8f\n", a.Symbol, p[0], p[1], p[2])
	}
	return bw.Flush()
}

func flag(b bool) string {
	if b {
		return "T"
	}
	return "F"
}
