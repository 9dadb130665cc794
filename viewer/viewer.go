// Package viewer hands an annotated structure to an external visualizer.
//
// Viewing is fire-and-forget: View returns once the program has started and
// never waits for it to exit.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/structio"
)

// ErrNoCommand is returned for an empty command line.
var ErrNoCommand = errors.New("viewer: empty command")

// Viewer displays a structure.
type Viewer interface {
	View(ctx context.Context, s *crystal.Structure) error
}

// Noop discards every structure.
type Noop struct{}

// View implements Viewer.
func (Noop) View(context.Context, *crystal.Structure) error { return nil }

// Command starts an external program with the path of a temporary structure
// file appended to its arguments.
type Command struct {
	Name string
	Args []string
	// Format of the temporary file. Defaults to extended XYZ.
	Format structio.Format
	// Dir for the temporary file. Defaults to os.TempDir.
	Dir string
}

// NewCommand parses a whitespace separated command line such as
// "ase gui" or "vesta".
func NewCommand(cmdline string) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, ErrNoCommand
	}
	return &Command{Name: fields[0], Args: fields[1:]}, nil
}

// startProcess launches cmd and detaches from it.
var startProcess = func(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// View implements Viewer. The temporary file is left in place for the viewer
// to read.
func (c *Command) View(ctx context.Context, s *crystal.Structure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format := c.Format
	if format == nil {
		format = structio.XYZ{}
	}

	f, err := os.CreateTemp(c.Dir, "lonelypoint-*"+format.Extensions()[0])
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	if err := format.Encode(f, s); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("viewer: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("viewer: %w", err)
	}

	args := append(append([]string(nil), c.Args...), f.Name())
	cmd := exec.Command(c.Name, args...)
	if err := startProcess(cmd); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("viewer: start %s: %w", c.Name, err)
	}
	return nil
}

var (
	_ Viewer = Noop{}
	_ Viewer = (*Command)(nil)
)
