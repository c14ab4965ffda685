// Package sector decodes map sector files.
//
// A sector is read fully into memory, then walked record by record: each
// item record is handed to the decoder for its type tag and the cursor moves
// by the length that decoder reports. The node table that follows the last
// record is deduplicated by node Uid into a shared registry.
package sector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// State is the parse state of a Sector
type State int

const (
	StateUnparsed State = iota // Loaded, not parsed yet
	StateEmpty                 // Missing file or zero declared items
	StateParsing               // Parse in progress
	StateParsed                // Parse finished
	StateFailed                // Parse returned an error
)

func (s State) String() string {
	switch s {
	case StateUnparsed:
		return "unparsed"
	case StateEmpty:
		return "empty"
	case StateParsing:
		return "parsing"
	case StateParsed:
		return "parsed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Sector is one sector file and its raw bytes. A Sector is owned by a single
// goroutine while it is parsed.
type Sector struct {
	path     string
	data     []byte // nil once released or when the file is missing
	size     int
	checksum uint64
	state    State
	released bool
	stats    *Stats
}

// New wraps data read from path
func New(path string, data []byte) *Sector {
	return &Sector{
		path:     path,
		data:     data,
		size:     len(data),
		checksum: xxhash.Sum64(data),
		state:    StateUnparsed,
	}
}

// NewEmpty returns a sector with no backing file
func NewEmpty(path string) *Sector {
	return &Sector{path: path, state: StateEmpty}
}

// Load reads the sector stored as name in fsys. A missing file is not an
// error: the sector comes back empty. Compressed files (.zst, .lz4, .xz, .lzo)
// are decompressed.
func Load(fsys fs.FS, name string) (*Sector, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewEmpty(name), nil
		}
		return nil, fmt.Errorf("read sector %s: %w", name, err)
	}

	data, err = decompress(name, data)
	if err != nil {
		return nil, fmt.Errorf("decompress sector %s: %w", name, err)
	}
	return New(name, data), nil
}

// LoadFile is Load for a path on the local filesystem
func LoadFile(path string) (*Sector, error) {
	s, err := Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// Path returns the path the sector was loaded from
func (s *Sector) Path() string {
	return s.path
}

// State returns the current parse state
func (s *Sector) State() State {
	return s.state
}

// Empty reports whether the sector has no items, either because the file
// was missing or because it declares zero items
func (s *Sector) Empty() bool {
	return s.state == StateEmpty
}

// Size returns the length of the (decompressed) buffer as loaded
func (s *Sector) Size() int {
	return s.size
}

// Checksum returns the xxHash64 of the buffer as loaded, 0 for a missing file
func (s *Sector) Checksum() uint64 {
	return s.checksum
}

// Stats returns the statistics of the last successful parse, or nil
func (s *Sector) Stats() *Stats {
	return s.stats
}

// Released reports whether Release was called
func (s *Sector) Released() bool {
	return s.released
}

// Release drops the buffer. Items and nodes already handed out stay valid;
// a later Parse fails with ErrReleased unless the sector is empty.
func (s *Sector) Release() {
	s.data = nil
	s.released = true
}
