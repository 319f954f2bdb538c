package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrStubFailure is returned by RecordingRunner for actions listed in FailOn.
var ErrStubFailure = errors.New("stub command failed")

// RecordingRunner is a control-tool runner that records every argument list
// instead of executing anything.
type RecordingRunner struct {
	mu    sync.Mutex
	calls [][]string
	// FailOn makes calls whose action fail. The action is the second token
	// for "-a <action> ..." calls and the first token otherwise.
	FailOn map[string]bool
}

// Run records args.
func (r *RecordingRunner) Run(_ context.Context, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), args...))
	if r.FailOn[actionOf(args)] {
		return ErrStubFailure
	}
	return nil
}

// Calls returns a copy of every recorded argument list.
func (r *RecordingRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Actions returns the action of every call in order.
func (r *RecordingRunner) Actions() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = actionOf(c)
	}
	return out
}

// ArgsOf returns the arguments after the action token for every call of
// action.
func (r *RecordingRunner) ArgsOf(action string) [][]string {
	var out [][]string
	for _, c := range r.Calls() {
		if actionOf(c) != action {
			continue
		}
		if c[0] == "-a" {
			out = append(out, c[2:])
		} else {
			out = append(out, c[1:])
		}
	}
	return out
}

// Count returns how many calls of action were made.
func (r *RecordingRunner) Count(action string) int {
	n := 0
	for _, a := range r.Actions() {
		if a == action {
			n++
		}
	}
	return n
}

func actionOf(args []string) string {
	if len(args) == 0 {
		return ""
	}
	if args[0] == "-a" && len(args) > 1 {
		return args[1]
	}
	return args[0]
}
