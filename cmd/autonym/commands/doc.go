// Package commands defines the autonym CLI and wires dependencies for subcommands.
//
// Commands
//
//   - incept       Create a new identifier
//   - rotate       Rotate to the pre-committed next key
//   - deactivate   Terminate an identifier with both keys
//   - show         Replay a log and print its state
//   - list         List identifiers with a stored log
//   - export       Print a log as hex wire events
//   - import       Validate and store wire events from elsewhere
//   - seal         Encrypt a message to an identifier
//   - open         Decrypt a message addressed to an identifier
//   - fingerprint  Print short fingerprints of an identifier and its key
//
// # Implementation
//
// The root command loads the config, then builds the dependency graph
// (stores, services, metrics registry) before any subcommand runs, so
// handlers share one app.Wire.
package commands
