package testutil

import (
	"context"

	"github.com/arthur-debert/mcargo/pkg/distro"
	"github.com/arthur-debert/mcargo/pkg/executor"
	"github.com/stretchr/testify/mock"
)

// MockCommander is a testify mock of executor.Commander.
type MockCommander struct {
	mock.Mock
}

// LookPath records the call and returns the configured values.
func (m *MockCommander) LookPath(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

// Output records the call and returns the configured values.
func (m *MockCommander) Output(ctx context.Context, cmd executor.Command) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

// Run records the call and returns the configured values.
func (m *MockCommander) Run(ctx context.Context, cmd executor.Command) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

// FakeResolver returns a fixed platform or error and counts calls.
type FakeResolver struct {
	Platform distro.Platform
	Err      error
	Calls    int
}

// Resolve implements the installer's platform resolver.
func (f *FakeResolver) Resolve() (distro.Platform, error) {
	f.Calls++
	return f.Platform, f.Err
}

// FakeChecker answers presence checks from a scripted sequence; once the
// sequence is exhausted the last value repeats.
type FakeChecker struct {
	Results []bool
	Calls   int
}

// IsInstalled implements the installer's presence checker.
func (f *FakeChecker) IsInstalled(ctx context.Context) bool {
	f.Calls++
	if len(f.Results) == 0 {
		return false
	}
	i := f.Calls - 1
	if i >= len(f.Results) {
		i = len(f.Results) - 1
	}
	return f.Results[i]
}

// Verify interface compliance
var _ executor.Commander = (*MockCommander)(nil)
