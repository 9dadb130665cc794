// Package structio reads and writes crystal structure files.
//
// The format is chosen from the file name:
//
//	.cif               CIF (symmetry operations are expanded, output is P1)
//	.xyz, .extxyz      extended XYZ with a Lattice="..." comment line
//	.vasp, .poscar     VASP POSCAR; also files named POSCAR* or CONTCAR*
//	.json              JSON encoding of crystal.Structure
//
// A trailing .gz, .zst or .lz4 adds transparent compression, e.g.
// "NaCl.cif.zst".
//
//	s, err := structio.Read(ctx, store, "NaCl.cif")
//	err = structio.Write(ctx, store, structio.OutputName("NaCl.cif", "lis_"), s)
package structio
