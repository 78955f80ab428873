// Package config handles configuration management for mcargo.
// It layers the embedded defaults, the user config file, a project config
// file, MCARGO_ environment variables and command line flags, in that order.
package config
