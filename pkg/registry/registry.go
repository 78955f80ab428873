package registry

import (
	"fmt"
)

// PassThroughName is the subcommand that forwards arbitrary cargo arguments.
const PassThroughName = "cargo"

// CommandDescriptor describes one supported subcommand.
type CommandDescriptor struct {
	Name        string
	Description string

	// PassThrough marks the entry whose trailing arguments are handed to
	// cargo unmodified, without inserting the subcommand name.
	PassThrough bool
}

// Registry is an ordered, immutable set of command descriptors.
type Registry struct {
	commands []CommandDescriptor
	index    map[string]int
}

// New builds a registry from descriptors, keeping their order. It panics on
// an empty or duplicate name.
func New(descriptors ...CommandDescriptor) *Registry {
	r := &Registry{
		commands: make([]CommandDescriptor, 0, len(descriptors)),
		index:    make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.Name == "" {
			panic("command name cannot be empty")
		}
		if _, exists := r.index[d.Name]; exists {
			panic(fmt.Sprintf("command %s already registered", d.Name))
		}
		r.index[d.Name] = len(r.commands)
		r.commands = append(r.commands, d)
	}
	return r
}

// Default returns the registry of cargo subcommands mcargo supports.
func Default() *Registry {
	return New(
		CommandDescriptor{Name: "run", Description: "Compile and run the current package"},
		CommandDescriptor{Name: "build", Description: "Compile the current package"},
		CommandDescriptor{Name: "test", Description: "Run the tests"},
		CommandDescriptor{Name: "check", Description: "Analyze the current package without building"},
		CommandDescriptor{Name: "bench", Description: "Run the benchmarks"},
		CommandDescriptor{Name: PassThroughName, Description: "Pass arbitrary arguments straight to cargo", PassThrough: true},
	)
}

// IsValidCommand reports whether name exactly matches a registered command.
// The empty string is never valid.
func (r *Registry) IsValidCommand(name string) bool {
	if name == "" {
		return false
	}
	_, ok := r.index[name]
	return ok
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (CommandDescriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return CommandDescriptor{}, false
	}
	return r.commands[i], true
}

// List returns the descriptors in registration order. Each call returns a
// fresh copy.
func (r *Registry) List() []CommandDescriptor {
	out := make([]CommandDescriptor, len(r.commands))
	copy(out, r.commands)
	return out
}
