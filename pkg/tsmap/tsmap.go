// Package tsmap provides functions for decoding map sector files.
//
// This package can be used as a library to parse single sectors, load a
// whole map directory, and dump the result.
//
// Example usage:
//
//	m, stats, err := tsmap.ParseSectorFile("map/sec+0001-0002.base", tsmap.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(stats.Retained, "items kept")
//	tsmap.WriteText(os.Stdout, m)
package tsmap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"

	"github.com/dyuri/tsmap/internal/mapper"
	"github.com/dyuri/tsmap/internal/model"
	"github.com/dyuri/tsmap/internal/sector"
	"github.com/dyuri/tsmap/internal/text"
)

// Options controls single-sector parsing
type Options = sector.Options

// Config controls multi-sector loading
type Config = mapper.Config

// DefaultConfig returns the default loading configuration
func DefaultConfig() Config {
	return mapper.DefaultConfig()
}

// ParseSectorFile reads and decodes one sector file into a fresh map.
//
// A missing file yields an empty map. Compressed files (.zst, .lz4, .xz, .lzo)
// are decompressed first.
func ParseSectorFile(path string, opts Options) (*model.Map, *sector.Stats, error) {
	s, err := sector.LoadFile(path)
	if err != nil {
		return nil, nil, &Error{Code: "read_failed", Message: "cannot read sector", Cause: err}
	}
	defer s.Release()

	m := model.NewMap()
	stats, err := s.Parse(m, opts)
	if err != nil {
		return nil, stats, classify(err)
	}
	return m, stats, nil
}

// LoadMap decodes every sector file in dir into one map. metrics may be nil.
func LoadMap(ctx context.Context, dir string, cfg Config, metrics *mapper.Metrics, logger log.Logger) (*mapper.Result, error) {
	m, err := mapper.New(cfg, metrics, logger)
	if err != nil {
		return nil, &Error{Code: "invalid_config", Message: "invalid configuration", Cause: err}
	}
	res, err := m.LoadDir(ctx, os.DirFS(dir), ".")
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

// WriteText writes m in the sectioned text format
func WriteText(w io.Writer, m *model.Map) error {
	return text.NewWriter(w).Write(m)
}

// classify maps sector errors onto the package error values
func classify(err error) error {
	switch {
	case errors.Is(err, sector.ErrUnknownItemType):
		return &Error{Code: ErrUnknownItemType.Code, Message: ErrUnknownItemType.Message, Cause: err}
	case errors.Is(err, sector.ErrTruncated):
		return &Error{Code: ErrTruncated.Code, Message: ErrTruncated.Message, Cause: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &Error{Code: ErrInvalidFormat.Code, Message: ErrInvalidFormat.Message, Cause: err}
	}
}

// ValidationError represents a structural issue found in a sector
type ValidationError struct {
	Field   string // Field name or location
	Message string // Error description
	Level   string // "error" or "warning"
}

func (v ValidationError) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Level, v.Field, v.Message)
}

// Validate checks a parsed sector for structural problems.
//
// The node table is expected to end exactly four bytes before the end of
// the buffer, and every node referenced by a retained item should be in
// the registry. Problems are reported as warnings; an empty list means the
// sector looks well formed.
func Validate(m *model.Map, stats *sector.Stats) []ValidationError {
	var out []ValidationError
	if stats == nil {
		return out
	}

	for _, w := range stats.Warnings {
		out = append(out, ValidationError{Field: "items", Message: w, Level: "warning"})
	}
	if stats.ItemCount > 0 && !stats.Stopped && stats.Trailing != 4 {
		out = append(out, ValidationError{
			Field:   "nodes",
			Message: fmt.Sprintf("%d bytes after the node table at 0x%x, want 4", stats.Trailing, stats.End),
			Level:   "warning",
		})
	}
	if m != nil {
		out = append(out, danglingNodes(m)...)
	}
	return out
}

// danglingNodes reports retained items whose nodes are not registered
func danglingNodes(m *model.Map) []ValidationError {
	var out []ValidationError
	check := func(kind string, uid uint64, node uint32) {
		if node == 0 {
			return
		}
		if _, ok := m.Nodes[node]; !ok {
			out = append(out, ValidationError{
				Field:   fmt.Sprintf("%s 0x%x", kind, uid),
				Message: fmt.Sprintf("node %d not in registry", node),
				Level:   "warning",
			})
		}
	}

	for _, r := range m.Roads {
		check("road", r.Header().Uid, r.StartNode)
		check("road", r.Header().Uid, r.EndNode)
	}
	for _, p := range m.Prefabs {
		for _, n := range p.Nodes {
			check("prefab", p.Header().Uid, n)
		}
	}
	for _, c := range m.Cities {
		check("city", c.Header().Uid, c.Node)
	}
	for _, o := range m.MapOverlays {
		check("overlay", o.Header().Uid, o.Node)
	}
	for _, f := range m.Ferries {
		check("ferry", f.Header().Uid, f.Node)
	}
	return out
}

// Common errors
var (
	ErrInvalidFormat   = &Error{Code: "invalid_format", Message: "invalid sector format"}
	ErrTruncated       = &Error{Code: "truncated", Message: "sector data truncated"}
	ErrUnknownItemType = &Error{Code: "unknown_item_type", Message: "unknown item type"}
)

// Error represents a tsmap error
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors carrying the same code, so errors.Is(err, ErrTruncated)
// holds for any truncation failure
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
