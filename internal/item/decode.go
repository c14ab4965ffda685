// Package item decodes individual item records of a map sector.
//
// Every decoder reads one record starting at its type tag and reports the
// record length through Item.BlockSize, valid or not. The sector walker
// relies on that length to find the next record.
package item

import (
	"fmt"

	"github.com/dyuri/tsmap/internal/binary"
	"github.com/dyuri/tsmap/internal/model"
)

// HeaderSize is the length of the header shared by all item records
const HeaderSize = 0x2C

// Context carries lookups that decide item validity
type Context struct {
	Catalog *model.Catalog // nil accepts every non-zero token
}

// DecodeFunc decodes one record at offset. The returned item is never nil
// when err is nil.
type DecodeFunc func(buf *binary.Buffer, offset int, ctx *Context) (model.Item, error)

// Lookup returns the decoder for typ. Tags known only by name (terrain,
// building, ...) have none.
func Lookup(typ model.ItemType) (DecodeFunc, bool) {
	switch typ {
	case model.ItemRoad:
		return decodeRoad, true
	case model.ItemPrefab:
		return decodePrefab, true
	case model.ItemCompany:
		return decodeCompany, true
	case model.ItemService:
		return decodeService, true
	case model.ItemCutPlane:
		return decodeCutPlane, true
	case model.ItemCity:
		return decodeCity, true
	case model.ItemMapOverlay:
		return decodeMapOverlay, true
	case model.ItemFerry:
		return decodeFerry, true
	case model.ItemGarage:
		return decodeGarage, true
	case model.ItemTrigger:
		return decodeTrigger, true
	case model.ItemFuelPump:
		return decodeFuelPump, true
	case model.ItemRoadSideItem:
		return decodeRoadSideItem, true
	case model.ItemBusStop:
		return decodeBusStop, true
	case model.ItemTrafficRule:
		return decodeTrafficRule, true
	case model.ItemTrajectoryItem:
		return decodeTrajectoryItem, true
	case model.ItemMapArea:
		return decodeMapArea, true
	default:
		return nil, false
	}
}

// Decode reads the type tag at offset and runs the matching decoder.
// Unregistered tags return an *UnknownTypeError.
func Decode(buf *binary.Buffer, offset int, ctx *Context) (model.Item, error) {
	tag, err := buf.Uint32(offset)
	if err != nil {
		return nil, fmt.Errorf("read item type: %w", err)
	}
	fn, ok := Lookup(model.ItemType(tag))
	if !ok {
		return nil, &UnknownTypeError{Type: model.ItemType(tag), Offset: offset}
	}
	if ctx == nil {
		ctx = &Context{}
	}
	return fn(buf, offset, ctx)
}

// UnknownTypeError reports a type tag with no decoder
type UnknownTypeError struct {
	Type   model.ItemType
	Offset int
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown item type 0x%x (%s) at 0x%x", uint32(e.Type), e.Type, e.Offset)
}

// readHeader reads the common item header and leaves c at the payload
func readHeader(c *binary.Cursor) model.ItemHeader {
	var h model.ItemHeader
	h.Type = model.ItemType(c.Uint32())
	h.Uid = c.Uint64()
	h.Bounds.Min = model.Position{X: c.Float32(), Y: c.Float32(), Z: c.Float32()}
	h.Bounds.Max = model.Position{X: c.Float32(), Y: c.Float32(), Z: c.Float32()}
	h.Flags = c.Uint32()
	h.ViewDistance = c.Uint8()
	c.Skip(3) // reserved
	return h
}

// finish fills the base fields once the payload has been read
func finish(base *model.ItemBase, c *binary.Cursor, start int, head model.ItemHeader, valid bool) error {
	if err := c.Err(); err != nil {
		return fmt.Errorf("decode %s at 0x%x: %w", head.Type, start, err)
	}
	base.Head = head
	base.Size = c.Offset() - start
	base.IsValid = valid
	return nil
}
