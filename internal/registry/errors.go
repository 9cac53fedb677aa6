package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEventsFound means a build produced zero entries. An empty map
	// is a build failure, never a valid state.
	ErrNoEventsFound = errors.New("no events found")
	// ErrInvalidConfiguration means the cache path points into a directory
	// that does not exist.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// UnknownRoutingKeyError is returned on a lookup miss.
type UnknownRoutingKeyError struct {
	Key string
}

func (e *UnknownRoutingKeyError) Error() string {
	return fmt.Sprintf("unknown routing key %q", e.Key)
}

// UnknownTypeError means a candidate could not be described during a
// build: a nil prototype, an unresolvable type or an empty canonical
// name. It is fatal to the whole build, never skipped.
type UnknownTypeError struct {
	TypeID     string
	SourcePath string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown event type %q registered from %s", e.TypeID, e.SourcePath)
}
