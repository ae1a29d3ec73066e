package game

import "errors"

// Engine errors. These signal wiring bugs or unsupported paths and abort the
// game; rule violations are reported as ValidationResult values instead.
var (
	ErrMissingHandler     = errors.New("no handler registered for kind")
	ErrKindMismatch       = errors.New("handler invoked with mismatched kind")
	ErrNotSupported       = errors.New("not supported")
	ErrMultipleTargetCost = errors.New("cannot derive cost from multiple target cards")
	ErrEntityNotInZone    = errors.New("entity not in expected zone")
)
