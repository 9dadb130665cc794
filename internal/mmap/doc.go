// Package mmap maps structure files read-only into memory.
//
// Structure files are parsed front to back, so mappings are advised for
// sequential access where the platform supports it.
package mmap
