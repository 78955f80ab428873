// Package registry holds the fixed set of cargo subcommands mcargo accepts.
//
// The registry is built once at startup from a static list of descriptors
// and never mutated afterwards. Its order is the order commands are shown in
// help and usage output.
package registry
