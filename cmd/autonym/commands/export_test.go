package commands

import "autonym/internal/app"

// OpenWire returns the wiring of the last command that has not been released.
func OpenWire() *app.Wire { return wire }
