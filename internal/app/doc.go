// Package app wires application dependencies for the CLI.
//
// LoadConfig layers defaults, the YAML config file and environment
// overrides. NewWire builds the log store selected by the config, the
// keyring, the controller and message services and a metrics registry, and
// exposes them through the Wire struct for commands to use.
package app
