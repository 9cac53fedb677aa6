package event

import "reflect"

// Event is the capability a type must expose to be routable on the bus.
// EventName returns the canonical routing key and must be callable on the
// zero value (value receiver, no construction required).
type Event interface {
	EventName() string
}

// Renamed marks an event that kept historical routing keys after a rename.
// Every former name keeps resolving to the current type.
type Renamed interface {
	FormerNames() []string
}

// TypeID returns the fully-qualified identifier of v's underlying type,
// e.g. "github.com/acme/billing/events.InvoicePaid". Pointers are
// dereferenced; an untyped nil yields "".
func TypeID(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
