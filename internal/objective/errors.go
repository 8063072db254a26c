package objective

import "errors"

// Structural errors for the controls-mapping contract. These signal a
// broken upstream extraction, not a user-recoverable condition.
var (
	// ErrMappingShape indicates a controls mapping whose cardinality does
	// not match the objectives, terms or controls it describes.
	ErrMappingShape = errors.New("objective: controls mapping shape mismatch")

	// ErrPositionRange indicates a mapping position outside the term it
	// addresses.
	ErrPositionRange = errors.New("objective: mapping position out of range")

	// ErrFixedEntry indicates a mapping position that addresses a fixed
	// operator entry instead of a controlled pair.
	ErrFixedEntry = errors.New("objective: mapping position addresses a fixed entry")
)
