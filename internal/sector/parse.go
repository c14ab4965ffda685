package sector

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/dyuri/tsmap/internal/binary"
	"github.com/dyuri/tsmap/internal/item"
	"github.com/dyuri/tsmap/internal/model"
)

// Sector layout
const (
	ItemCountOffset = 0x10
	FirstItemOffset = 0x14
)

// UnknownTagPolicy decides what happens when a record has a type tag with
// no decoder. The record length of such a record cannot be known, so the
// walk can never continue past it.
type UnknownTagPolicy string

const (
	// UnknownTagFail logs the tag and fails the sector with ErrUnknownItemType
	UnknownTagFail UnknownTagPolicy = "fail"
	// UnknownTagStop logs the tag, keeps the items decoded before it and
	// skips the rest of the sector, node table included
	UnknownTagStop UnknownTagPolicy = "stop"
)

// ParseUnknownTagPolicy parses a policy name. The empty name is the default
// policy.
func ParseUnknownTagPolicy(s string) (UnknownTagPolicy, bool) {
	switch UnknownTagPolicy(s) {
	case "", UnknownTagFail:
		return UnknownTagFail, true
	case UnknownTagStop:
		return UnknownTagStop, true
	default:
		return "", false
	}
}

// Options control a parse
type Options struct {
	Logger      log.Logger       // nil discards diagnostics
	Catalog     *model.Catalog   // nil accepts every non-zero token
	UnknownTags UnknownTagPolicy // "" means UnknownTagFail
}

func (o Options) logger() log.Logger {
	if o.Logger == nil {
		return log.NewNopLogger()
	}
	return o.Logger
}

// Parse decodes the sector and merges retained items and new nodes into
// dst. Nothing reaches dst when an error is returned. Parsing an empty or
// already parsed sector is a no-op.
func (s *Sector) Parse(dst Sink, opts Options) (*Stats, error) {
	batch, stats, err := s.ParseBatch(opts)
	if err != nil || batch == nil {
		return stats, err
	}
	stats.DuplicateNodes = batch.MergeInto(dst)
	return stats, nil
}

// ParseBatch decodes the sector into a private batch. The batch is nil for
// empty sectors and for sectors that were already parsed.
func (s *Sector) ParseBatch(opts Options) (*Batch, *Stats, error) {
	switch {
	case s.state == StateEmpty:
		return nil, newStats(s.path), nil
	case s.released:
		return nil, nil, fmt.Errorf("parse %s: %w", s.path, ErrReleased)
	case s.state == StateParsed:
		return nil, s.stats, nil
	case s.state == StateFailed:
		return nil, nil, fmt.Errorf("parse %s: %w", s.path, ErrFailed)
	case s.state == StateParsing:
		return nil, nil, fmt.Errorf("parse %s: already in progress", s.path)
	}

	s.state = StateParsing
	batch, stats, err := s.walk(opts)
	if err != nil {
		s.state = StateFailed
		return nil, stats, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if stats.ItemCount == 0 {
		s.state = StateEmpty
		return nil, stats, nil
	}
	s.state = StateParsed
	s.stats = stats
	return batch, stats, nil
}

// walk runs the record loop then the node table loop
func (s *Sector) walk(opts Options) (*Batch, *Stats, error) {
	logger := opts.logger()
	stats := newStats(s.path)
	buf := binary.NewBuffer(s.data)

	count, err := buf.Uint32(ItemCountOffset)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: read item count: %w", ErrTruncated, err)
	}
	stats.ItemCount = int(count)
	if count == 0 {
		return nil, stats, nil
	}
	// Every record is at least a header long
	if uint64(count)*item.HeaderSize > uint64(buf.Len()-FirstItemOffset) {
		return nil, stats, fmt.Errorf("%w: %d items cannot fit in %d bytes: %w",
			ErrTruncated, count, buf.Len(), binary.ErrOutOfBounds)
	}

	batch := &Batch{}
	ctx := &item.Context{Catalog: opts.Catalog}
	cursor := FirstItemOffset

	for i := 0; i < int(count); i++ {
		// A record shorter than a header means the count overruns the
		// record area, whatever follows it
		if err := buf.Check(cursor, item.HeaderSize); err != nil {
			return nil, stats, fmt.Errorf("%w: item %d of %d: %w", ErrTruncated, i+1, count, err)
		}
		tag, err := buf.Uint32(cursor)
		if err != nil {
			return nil, stats, fmt.Errorf("%w: item %d of %d: %w", ErrTruncated, i+1, count, err)
		}
		typ := model.ItemType(tag)

		decode, ok := item.Lookup(typ)
		if !ok {
			stats.Unknown++
			level.Warn(logger).Log(
				"msg", "unknown item type",
				"type", fmt.Sprintf("0x%x", tag),
				"name", typ,
				"file", filepath.Base(s.path),
				"offset", cursor,
			)
			if opts.UnknownTags != UnknownTagStop {
				return nil, stats, fmt.Errorf("%w 0x%x (%s) in %s @ %d",
					ErrUnknownItemType, tag, typ, filepath.Base(s.path), cursor)
			}
			stats.Stopped = true
			stats.Warnings = append(stats.Warnings,
				fmt.Sprintf("unknown item type 0x%x (%s) at %d: skipped %d remaining records and the node table",
					tag, typ, cursor, int(count)-i))
			stats.RecordsEnd = cursor
			stats.End = cursor
			stats.Trailing = buf.Len() - cursor
			return batch, stats, nil
		}

		it, err := decode(buf, cursor, ctx)
		if err != nil {
			if errors.Is(err, binary.ErrOutOfBounds) {
				return nil, stats, fmt.Errorf("%w: item %d of %d: %w", ErrTruncated, i+1, count, err)
			}
			return nil, stats, fmt.Errorf("item %d of %d: %w", i+1, count, err)
		}
		cursor += it.BlockSize()
		stats.Decoded[typ]++

		if !it.Valid() {
			stats.Invalid++
			continue
		}
		if batch.AddItem(it) {
			stats.Retained++
		}
	}
	stats.RecordsEnd = cursor

	cursor, err = walkNodes(buf, cursor, batch, stats)
	if err != nil {
		return nil, stats, err
	}
	stats.End = cursor
	stats.Trailing = buf.Len() - cursor

	level.Debug(logger).Log(
		"msg", "parsed sector",
		"file", filepath.Base(s.path),
		"items", count,
		"retained", stats.Retained,
		"invalid", stats.Invalid,
		"nodes", stats.NodeCount,
	)
	return batch, stats, nil
}
