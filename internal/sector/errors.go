package sector

import "errors"

var (
	// ErrReleased is returned by Parse once the sector buffer was released
	ErrReleased = errors.New("sector buffer released")

	// ErrUnknownItemType is returned when a record has a type tag with no
	// decoder and the UnknownTagFail policy is in effect
	ErrUnknownItemType = errors.New("unknown item type")

	// ErrTruncated is returned when declared item or node counts run past
	// the end of the buffer
	ErrTruncated = errors.New("sector truncated")

	// ErrTooLarge is returned when a compressed sector inflates past
	// maxSectorSize
	ErrTooLarge = errors.New("sector too large")

	// ErrFailed is returned when Parse is called again after a failed parse
	ErrFailed = errors.New("sector parse failed earlier")
)
