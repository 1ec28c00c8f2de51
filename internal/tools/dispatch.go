package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
)

var (
	ErrDispatch          = errors.New("tools: dispatch failed")
	ErrToolNotFound      = fmt.Errorf("%w: tool not found", ErrDispatch)
	ErrToolNotExecutable = fmt.Errorf("%w: tool not executable", ErrDispatch)
)

// Invocation describes one hand-off to an external tool.
type Invocation struct {
	Path string
	Args []string
	// Dir is the working directory of the tool. Empty keeps the current one.
	Dir string
	// Env defaults to os.Environ() when nil.
	Env []string
}

// Argv is the argument vector including argv[0].
func (inv Invocation) Argv() []string {
	argv := make([]string, 0, len(inv.Args)+1)
	argv = append(argv, inv.Path)
	return append(argv, inv.Args...)
}

func (inv Invocation) environ() []string {
	if inv.Env == nil {
		return os.Environ()
	}
	return inv.Env
}

// Dispatcher transfers control to an external tool.
type Dispatcher interface {
	Dispatch(inv Invocation) error
}

// ExitError carries a tool's non-zero exit status back to the caller.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("tool exited with status %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Resolve returns the executable path for name.
func Resolve(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err == nil {
		return path, nil
	}
	if errors.Is(err, fs.ErrPermission) {
		return "", fmt.Errorf("%w: %s: %v", ErrToolNotExecutable, name, err)
	}
	return "", fmt.Errorf("%w: %s: %v", ErrToolNotFound, name, err)
}

// ChildDispatcher runs the tool as a child with inherited standard streams
// and reports its exit status as an *ExitError.
type ChildDispatcher struct{}

func (ChildDispatcher) Dispatch(inv Invocation) error {
	path, err := Resolve(inv.Path)
	if err != nil {
		return err
	}

	cmd := exec.Command(path, inv.Args...)
	cmd.Args[0] = inv.Path
	cmd.Dir = inv.Dir
	cmd.Env = inv.environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err = cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by signal
			code = 1
		}
		return &ExitError{Code: code, Err: err}
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return fmt.Errorf("%w: %s: %v", ErrToolNotFound, inv.Path, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrDispatch, inv.Path, err)
}
