//go:build unix

package tools

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ExecDispatcher replaces the current process image with the tool. On
// success Dispatch never returns.
type ExecDispatcher struct{}

func (ExecDispatcher) Dispatch(inv Invocation) error {
	path, err := Resolve(inv.Path)
	if err != nil {
		return err
	}
	if inv.Dir != "" {
		if err := os.Chdir(inv.Dir); err != nil {
			return fmt.Errorf("%w: chdir %s: %v", ErrDispatch, inv.Dir, err)
		}
	}
	if err := unix.Exec(path, inv.Argv(), inv.environ()); err != nil {
		return fmt.Errorf("%w: exec %s: %v", ErrDispatch, path, err)
	}
	return nil
}
