package structio

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hupe1980/lonelypoint/crystal"
)

var (
	// ErrUnknownFormat is returned when no format matches a file name.
	ErrUnknownFormat = errors.New("structio: unknown structure format")

	// ErrMalformed is returned when a file cannot be parsed.
	ErrMalformed = errors.New("structio: malformed structure")
)

// Format encodes and decodes one file format.
type Format interface {
	// Name returns the stable format name (e.g. "cif").
	Name() string
	// Extensions returns the lower-case file extensions, including the dot.
	Extensions() []string
	Decode(r io.Reader) (*crystal.Structure, error)
	Encode(w io.Writer, s *crystal.Structure) error
}

var formats = []Format{CIF{}, XYZ{}, POSCAR{}, JSON{}}

// Formats returns all built-in formats.
func Formats() []Format {
	return append([]Format(nil), formats...)
}

// ByName returns a built-in format by its name.
func ByName(name string) (Format, error) {
	for _, f := range formats {
		if f.Name() == strings.ToLower(name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Detect picks the format for a file name, ignoring any compression suffix.
func Detect(name string) (Format, error) {
	base := strings.ToLower(path.Base(filepathToSlash(name)))
	base = strings.TrimSuffix(base, compressionOf(base).ext())

	for _, f := range formats {
		for _, ext := range f.Extensions() {
			if strings.HasSuffix(base, ext) {
				return f, nil
			}
		}
	}
	if strings.HasPrefix(base, "poscar") || strings.HasPrefix(base, "contcar") {
		return POSCAR{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// OutputName prefixes the base name of name with tag, keeping the directory.
func OutputName(name, tag string) string {
	slashed := filepathToSlash(name)
	dir, base := path.Split(slashed)
	return dir + tag + base
}

func filepathToSlash(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

func malformed(format string, line int, msg string, args ...any) error {
	if line > 0 {
		return fmt.Errorf("%w: %s line %d: %s", ErrMalformed, format, line, fmt.Sprintf(msg, args...))
	}
	return fmt.Errorf("%w: %s: %s", ErrMalformed, format, fmt.Sprintf(msg, args...))
}
