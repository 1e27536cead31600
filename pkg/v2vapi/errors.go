package v2vapi

import "fmt"

// invalidEnumError is the shared shape for "value isn't one of the known
// enum members" validation failures across this package's types.
type invalidEnumError struct {
	field string
	value string
}

func (e *invalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s (%s)", e.field, e.value)
}
