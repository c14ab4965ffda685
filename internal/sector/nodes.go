package sector

import (
	"fmt"

	"github.com/dyuri/tsmap/internal/binary"
	"github.com/dyuri/tsmap/internal/model"
)

// Node table layout
const (
	NodeRecordSize = 0x34
	nodeGap        = 0x04 // Count field before the first record, reserved word before the others
)

// walkNodes reads the node table at cursor into dst and returns the cursor
// after the last record
func walkNodes(buf *binary.Buffer, cursor int, dst Sink, stats *Stats) (int, error) {
	count, err := buf.Int32(cursor)
	if err != nil {
		return cursor, fmt.Errorf("%w: read node count: %w", ErrTruncated, err)
	}
	if count <= 0 {
		return cursor, nil
	}

	n := int(count)
	if err := buf.Check(cursor+nodeGap, n*(nodeGap+NodeRecordSize)-nodeGap); err != nil {
		return cursor, fmt.Errorf("%w: node table of %d entries: %w", ErrTruncated, n, err)
	}
	stats.NodeCount = n

	for i := 0; i < n; i++ {
		cursor += nodeGap
		node, err := readNode(buf, cursor)
		if err != nil {
			return cursor, fmt.Errorf("%w: node %d of %d: %w", ErrTruncated, i+1, n, err)
		}
		dst.AddNode(node)
		cursor += NodeRecordSize
	}
	return cursor, nil
}

// readNode decodes one node record at offset
func readNode(buf *binary.Buffer, offset int) (*model.Node, error) {
	c := buf.CursorAt(offset)
	n := &model.Node{}
	n.Uid = c.Uint32()
	n.Flags = c.Uint32()
	n.Position = model.Position{
		X: float32(c.Int32()) / 256,
		Y: float32(c.Int32()) / 256,
		Z: float32(c.Int32()) / 256,
	}
	n.Rotation = model.Quaternion{W: c.Float32(), X: c.Float32(), Y: c.Float32(), Z: c.Float32()}
	n.BackwardItemUid = c.Uint64()
	n.ForwardItemUid = c.Uint64()
	if err := c.Err(); err != nil {
		return nil, err
	}
	return n, nil
}
