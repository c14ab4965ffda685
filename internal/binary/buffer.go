package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned when a read would cross the end of the buffer
var ErrOutOfBounds = errors.New("read out of bounds")

// BoundsError describes a read that did not fit in the buffer
type BoundsError struct {
	Offset int // Requested offset
	Width  int // Number of bytes requested
	Len    int // Buffer length
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("read %d bytes at 0x%x: buffer holds 0x%x bytes", e.Width, e.Offset, e.Len)
}

// Is reports ErrOutOfBounds so callers can use errors.Is on wrapped bounds errors
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// Buffer provides bounds-checked little-endian reads over an in-memory sector
type Buffer struct {
	data   []byte
	endian binary.ByteOrder // Sector files are little-endian
}

// NewBuffer wraps data for random-access reads. The slice is not copied.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{
		data:   data,
		endian: binary.LittleEndian,
	}
}

// Len returns the buffer length in bytes
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the underlying slice
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Check verifies that width bytes are readable at offset
func (b *Buffer) Check(offset, width int) error {
	if offset < 0 || width < 0 || offset > len(b.data)-width {
		return &BoundsError{Offset: offset, Width: width, Len: len(b.data)}
	}
	return nil
}

// Slice returns width bytes at offset
func (b *Buffer) Slice(offset, width int) ([]byte, error) {
	if err := b.Check(offset, width); err != nil {
		return nil, err
	}
	return b.data[offset : offset+width], nil
}

// Uint8 reads one byte at offset
func (b *Buffer) Uint8(offset int) (uint8, error) {
	if err := b.Check(offset, 1); err != nil {
		return 0, err
	}
	return b.data[offset], nil
}

// Uint16 reads a little-endian uint16 at offset
func (b *Buffer) Uint16(offset int) (uint16, error) {
	if err := b.Check(offset, 2); err != nil {
		return 0, err
	}
	return b.endian.Uint16(b.data[offset:]), nil
}

// Uint32 reads a little-endian uint32 at offset
func (b *Buffer) Uint32(offset int) (uint32, error) {
	if err := b.Check(offset, 4); err != nil {
		return 0, err
	}
	return b.endian.Uint32(b.data[offset:]), nil
}

// Int32 reads a little-endian int32 at offset
func (b *Buffer) Int32(offset int) (int32, error) {
	v, err := b.Uint32(offset)
	return int32(v), err
}

// Uint64 reads a little-endian uint64 at offset
func (b *Buffer) Uint64(offset int) (uint64, error) {
	if err := b.Check(offset, 8); err != nil {
		return 0, err
	}
	return b.endian.Uint64(b.data[offset:]), nil
}

// Float32 reads a little-endian IEEE 754 float at offset
func (b *Buffer) Float32(offset int) (float32, error) {
	v, err := b.Uint32(offset)
	return math.Float32frombits(v), err
}

// Count reads a uint32 element count at offset and checks that count
// elements of stride bytes fit after it. It returns the count as an int.
func (b *Buffer) Count(offset, stride int) (int, error) {
	n, err := b.Uint32(offset)
	if err != nil {
		return 0, err
	}
	if stride > 0 {
		// Guard against counts that overflow the multiplication
		if uint64(n)*uint64(stride) > uint64(len(b.data)) {
			return 0, &BoundsError{Offset: offset + 4, Width: int(min(uint64(n)*uint64(stride), math.MaxInt32)), Len: len(b.data)}
		}
		if err := b.Check(offset+4, int(n)*stride); err != nil {
			return 0, err
		}
	}
	return int(n), nil
}
