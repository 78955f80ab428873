// Package installer installs the fast linker through the host's package
// manager.
//
// Installation is a bounded retry loop over an Attempt index:
//
//	Idle -> Attempting(i) -> Success
//	                      -> Retrying(i+1) -> Attempting(i+1) ...
//	                      -> TerminallyFailed
//
// Attempts after the first wait a fixed delay. Failing to identify the
// platform is terminal at once; a package manager failure, or a reported
// success that leaves the binary undiscoverable, is retried until
// MaxAttempts is reached.
package installer
