//go:build !unix

package tools

// ExecDispatcher falls back to a child process where exec(2) is unavailable.
type ExecDispatcher struct{}

func (ExecDispatcher) Dispatch(inv Invocation) error {
	return ChildDispatcher{}.Dispatch(inv)
}
