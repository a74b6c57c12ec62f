package store

import "errors"

// ErrEventExists is returned when an event is appended at a sequence that is
// already stored for its identifier.
var ErrEventExists = errors.New("event already stored at this sequence")
