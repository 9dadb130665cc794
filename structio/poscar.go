package structio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/lonelypoint/crystal"
)

// POSCAR reads and writes VASP structure files. Both VASP 5 files (with a
// species line) and VASP 4 files (species taken from the comment line) are
// accepted. A negative scale factor is read as the target cell volume.
type POSCAR struct{}

// Name implements Format.
func (POSCAR) Name() string { return "poscar" }

// Extensions implements Format.
func (POSCAR) Extensions() []string { return []string{".vasp", ".poscar"} }

// Decode implements Format.
func (POSCAR) Decode(r io.Reader) (*crystal.Structure, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) < 7 {
		return nil, malformed("poscar", 0, "file too short")
	}

	comment := strings.TrimSpace(lines[0])

	scaleFields := strings.Fields(lines[1])
	if len(scaleFields) == 0 {
		return nil, malformed("poscar", 2, "missing scale factor")
	}
	scale, err := parseFloat(scaleFields[0])
	if err != nil || scale == 0 {
		return nil, malformed("poscar", 2, "invalid scale factor %q", lines[1])
	}

	var cell crystal.Cell
	for i := range 3 {
		fields := strings.Fields(lines[2+i])
		if len(fields) < 3 {
			return nil, malformed("poscar", 3+i, "lattice vector needs 3 numbers")
		}
		for k := range 3 {
			if cell[i][k], err = parseFloat(fields[k]); err != nil {
				return nil, malformed("poscar", 3+i, "%v", err)
			}
		}
	}
	if scale < 0 {
		vol := cell.Volume()
		if vol == 0 {
			return nil, malformed("poscar", 2, "volume scaling of a singular cell")
		}
		scale = math.Cbrt(-scale / vol)
	}
	for i := range 3 {
		cell[i] = cell[i].Scale(scale)
	}

	lineIdx := 5
	var species []string
	first := strings.Fields(lines[lineIdx])
	if len(first) > 0 {
		if _, err := strconv.Atoi(first[0]); err != nil {
			species = first
			lineIdx++
		}
	}
	if lineIdx >= len(lines) {
		return nil, malformed("poscar", lineIdx, "missing atom counts")
	}
	countFields := strings.Fields(lines[lineIdx])
	counts := make([]int, 0, len(countFields))
	for _, f := range countFields {
		n, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		if n < 0 {
			return nil, malformed("poscar", lineIdx+1, "negative atom count")
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, malformed("poscar", lineIdx+1, "missing atom counts")
	}
	lineIdx++

	if species == nil {
		// VASP 4: the comment line names the species.
		species = strings.Fields(comment)
		if len(species) < len(counts) {
			return nil, malformed("poscar", 1, "species are missing and the comment line does not name %d of them", len(counts))
		}
		species = species[:len(counts)]
	}
	if len(species) != len(counts) {
		return nil, malformed("poscar", lineIdx, "%d species for %d counts", len(species), len(counts))
	}

	if lineIdx < len(lines) && strings.HasPrefix(strings.ToLower(strings.TrimSpace(lines[lineIdx])), "s") {
		lineIdx++
	}
	if lineIdx >= len(lines) {
		return nil, malformed("poscar", lineIdx, "missing coordinate mode")
	}
	mode := strings.ToLower(strings.TrimSpace(lines[lineIdx]))
	cartesian := strings.HasPrefix(mode, "c") || strings.HasPrefix(mode, "k")
	if !cartesian && !strings.HasPrefix(mode, "d") {
		return nil, malformed("poscar", lineIdx+1, "unknown coordinate mode %q", lines[lineIdx])
	}
	lineIdx++

	s := crystal.New(cell, nil)
	if comment != "" {
		s.Info = map[string]string{"comment": comment}
	}
	for si, n := range counts {
		for range n {
			if lineIdx >= len(lines) {
				return nil, malformed("poscar", lineIdx, "expected more coordinates")
			}
			fields := strings.Fields(lines[lineIdx])
			if len(fields) < 3 {
				return nil, malformed("poscar", lineIdx+1, "coordinate needs 3 numbers")
			}
			var v crystal.Vec3
			for k := range 3 {
				if v[k], err = parseFloat(fields[k]); err != nil {
					return nil, malformed("poscar", lineIdx+1, "%v", err)
				}
			}
			if cartesian {
				v = v.Scale(scale)
			} else {
				v = cell.FracToCart(v)
			}
			s.Append(crystal.Atom{Symbol: species[si], Position: v})
			lineIdx++
		}
	}
	return s, nil
}

// Encode implements Format. Atoms are written in their original order;
// consecutive runs of one species form one species group.
func (POSCAR) Encode(w io.Writer, s *crystal.Structure) error {
	frac, err := s.FractionalPositions()
	if err != nil {
		return err
	}

	var (
		species []string
		counts  []int
	)
	for _, a := range s.Atoms {
		if n := len(species); n > 0 && species[n-1] == a.Symbol {
			counts[n-1]++
			continue
		}
		species = append(species, a.Symbol)
		counts = append(counts, 1)
	}

	comment := s.Info["comment"]
	if comment == "" {
		comment = strings.Join(species, " ")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, comment)
	fmt.Fprintln(bw, "1.0")
	for _, v := range s.Cell {
		fmt.Fprintf(bw, " %21.16f %21.16f %21.16f\n", v[0], v[1], v[2])
	}
	for _, sp := range species {
		fmt.Fprintf(bw, " %4s", sp)
	}
	bw.WriteByte('\n')
	for _, n := range counts {
		fmt.Fprintf(bw, " %4d", n)
	}
	bw.WriteByte('\n')
	fmt.Fprintln(bw, "Direct")
	for _, f := range frac {
		fmt.Fprintf(bw, " %19.16f %19.16f %19.16f\n", f[0], f[1], f[2])
	}
	return bw.Flush()
}
