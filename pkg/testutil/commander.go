package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/arthur-debert/mcargo/pkg/executor"
)

// FakeCommander is a scripted executor.Commander.
//
// Binaries present on the fake PATH live in Paths. Run exit codes are
// looked up by the command's full string; a slice is consumed one entry per
// call and its last entry repeats. Unscripted commands exit 0.
type FakeCommander struct {
	mu sync.Mutex

	Paths    map[string]string
	Outputs  map[string]string
	RunCodes map[string][]int
	RunErrs  map[string]error

	// OnRun is called after each Run with the command and its exit code.
	OnRun func(f *FakeCommander, cmd executor.Command, code int)

	Calls  []executor.Command
	counts map[string]int
}

// NewFakeCommander creates an empty fake with nothing on PATH.
func NewFakeCommander() *FakeCommander {
	return &FakeCommander{
		Paths:    make(map[string]string),
		Outputs:  make(map[string]string),
		RunCodes: make(map[string][]int),
		RunErrs:  make(map[string]error),
		counts:   make(map[string]int),
	}
}

// Install puts name on the fake PATH.
func (f *FakeCommander) Install(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths[name] = "/usr/bin/" + name
}

// LookPath implements executor.Commander.
func (f *FakeCommander) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Output implements executor.Commander.
func (f *FakeCommander) Output(ctx context.Context, cmd executor.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, cmd)
	if out, ok := f.Outputs[cmd.String()]; ok {
		return out, nil
	}
	return "", fmt.Errorf("%s: no scripted output", cmd.String())
}

// Run implements executor.Commander.
func (f *FakeCommander) Run(ctx context.Context, cmd executor.Command) (int, error) {
	f.mu.Lock()
	key := cmd.String()
	f.Calls = append(f.Calls, cmd)
	n := f.counts[key]
	f.counts[key] = n + 1

	if err, ok := f.RunErrs[key]; ok {
		f.mu.Unlock()
		return executor.ExitCodeNotRun, err
	}

	code := 0
	if codes := f.RunCodes[key]; len(codes) > 0 {
		if n >= len(codes) {
			n = len(codes) - 1
		}
		code = codes[n]
	}
	hook := f.OnRun
	f.mu.Unlock()

	if hook != nil {
		hook(f, cmd, code)
	}
	return code, nil
}

// RunCalls returns the commands passed to Run or Output, in order, rendered
// as strings.
func (f *FakeCommander) RunCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

// CallCount returns how many times the exact command line was run.
func (f *FakeCommander) CallCount(cmdline string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[cmdline]
}

// RecordingSleeper records requested delays without sleeping.
type RecordingSleeper struct {
	Delays []time.Duration
}

// Sleep records d and honours cancellation of ctx.
func (s *RecordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.Delays = append(s.Delays, d)
	return ctx.Err()
}

// Verify interface compliance
var _ executor.Commander = (*FakeCommander)(nil)
