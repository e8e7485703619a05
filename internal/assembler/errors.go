package assembler

import (
	"errors"
	"fmt"

	"textcad/internal/shape"
)

// ErrUnknownClass indicates a descriptor whose class is outside the known set.
var ErrUnknownClass = errors.New("assembler: unknown shape class")

// ValidationError reports a descriptor whose class-relevant parameter slot is
// non-positive or non-finite. Assembly of a batch fails atomically on the
// first such slot; no partial document is produced.
type ValidationError struct {
	Index int        // position of the offending shape in the input sequence
	Class shape.Class
	Slot  shape.Slot
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("assembler: shape %d (%s): parameter %q is %v, must be a positive finite number",
		e.Index, e.Class, e.Slot, e.Value)
}
