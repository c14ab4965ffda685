// Package sectortest builds synthetic sector files for tests.
package sectortest

import (
	"encoding/binary"
	"math"

	"github.com/dyuri/tsmap/internal/model"
)

// Layout constants mirrored from the sector format
const (
	ItemCountOffset = 0x10
	FirstItemOffset = 0x14
	ItemHeaderSize  = 0x2C
	NodeRecordSize  = 0x34
	NodeSlotSize    = 0x38
)

// Sector describes a synthetic sector file
type Sector struct {
	Items     [][]byte     // Encoded item records, in order
	ItemCount *uint32      // Overrides len(Items) when set
	Nodes     []model.Node // Node table entries
	NodeCount *int32       // Overrides len(Nodes) when set
	Truncate  int          // Bytes removed from the end of the output
}

// Bytes encodes the sector
func (s Sector) Bytes() []byte {
	out := make([]byte, FirstItemOffset)
	count := uint32(len(s.Items))
	if s.ItemCount != nil {
		count = *s.ItemCount
	}
	binary.LittleEndian.PutUint32(out[ItemCountOffset:], count)

	for _, rec := range s.Items {
		out = append(out, rec...)
	}

	nodeCount := int32(len(s.Nodes))
	if s.NodeCount != nil {
		nodeCount = *s.NodeCount
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(nodeCount))
	for _, n := range s.Nodes {
		out = append(out, NodeRecord(n)...)
		out = binary.LittleEndian.AppendUint32(out, 0) // reserved word
	}

	if s.Truncate > 0 {
		out = out[:len(out)-s.Truncate]
	}
	return out
}

// RecordsEnd returns the offset just past the last item record
func (s Sector) RecordsEnd() int {
	end := FirstItemOffset
	for _, rec := range s.Items {
		end += len(rec)
	}
	return end
}

// Count is a helper for the override fields
func Count[T uint32 | int32](v T) *T {
	return &v
}

// NodeRecord encodes one 0x34-byte node record
func NodeRecord(n model.Node) []byte {
	b := make([]byte, 0, NodeRecordSize)
	b = binary.LittleEndian.AppendUint32(b, n.Uid)
	b = binary.LittleEndian.AppendUint32(b, n.Flags)
	b = binary.LittleEndian.AppendUint32(b, uint32(int32(n.Position.X*256)))
	b = binary.LittleEndian.AppendUint32(b, uint32(int32(n.Position.Y*256)))
	b = binary.LittleEndian.AppendUint32(b, uint32(int32(n.Position.Z*256)))
	b = appendFloat(b, n.Rotation.W)
	b = appendFloat(b, n.Rotation.X)
	b = appendFloat(b, n.Rotation.Y)
	b = appendFloat(b, n.Rotation.Z)
	b = binary.LittleEndian.AppendUint64(b, n.BackwardItemUid)
	b = binary.LittleEndian.AppendUint64(b, n.ForwardItemUid)
	return b
}

func appendFloat(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

// record accumulates one item record
type record struct {
	b []byte
}

// header starts an item record with the common header
func header(typ model.ItemType, uid uint64, flags uint32) *record {
	r := &record{b: make([]byte, 0, 64)}
	r.u32(uint32(typ))
	r.u64(uid)
	for i := 0; i < 6; i++ {
		r.f32(float32(i))
	}
	r.u32(flags)
	r.b = append(r.b, 0x10, 0, 0, 0) // view distance + reserved
	return r
}

func (r *record) u16(v uint16) *record { r.b = binary.LittleEndian.AppendUint16(r.b, v); return r }
func (r *record) u32(v uint32) *record { r.b = binary.LittleEndian.AppendUint32(r.b, v); return r }
func (r *record) u64(v uint64) *record { r.b = binary.LittleEndian.AppendUint64(r.b, v); return r }
func (r *record) f32(v float32) *record {
	r.b = appendFloat(r.b, v)
	return r
}
func (r *record) zeros(n int) *record { r.b = append(r.b, make([]byte, n)...); return r }

func (r *record) u32s(vs []uint32) *record {
	r.u32(uint32(len(vs)))
	for _, v := range vs {
		r.u32(v)
	}
	return r
}

func (r *record) u64s(vs []uint64) *record {
	r.u32(uint32(len(vs)))
	for _, v := range vs {
		r.u64(v)
	}
	return r
}

// Road encodes a road record with the given vegetation and stamp counts
func Road(uid uint64, flags uint32, look model.Token, start, end uint32, vegetation, stamps int) []byte {
	r := header(model.ItemRoad, uid, flags)
	r.u64(uint64(look)).u32(start).u32(end).f32(12.5)
	r.u32(uint32(vegetation)).zeros(vegetation * 0x14)
	r.u32(uint32(stamps)).zeros(stamps * 0x18)
	return r.b
}

// Prefab encodes a prefab record
func Prefab(uid uint64, flags uint32, mdl model.Token, origin uint16, nodes []uint32, slaves []uint64) []byte {
	r := header(model.ItemPrefab, uid, flags)
	r.u64(uint64(mdl)).u64(0).u16(origin).zeros(2)
	r.u32s(nodes).u64s(slaves)
	return r.b
}

// City encodes a city record
func City(uid uint64, flags uint32, name model.Token, node uint32) []byte {
	r := header(model.ItemCity, uid, flags)
	r.u64(uint64(name)).f32(100).f32(200).u32(node)
	return r.b
}

// MapOverlay encodes a map overlay record
func MapOverlay(uid uint64, flags uint32, overlay model.Token, node uint32) []byte {
	r := header(model.ItemMapOverlay, uid, flags)
	r.u64(uint64(overlay)).u32(node)
	return r.b
}

// Ferry encodes a ferry record
func Ferry(uid uint64, flags uint32, port model.Token, node uint32) []byte {
	r := header(model.ItemFerry, uid, flags)
	r.u64(uint64(port)).u32(node).f32(1).f32(2)
	return r.b
}

// Trigger encodes a trigger record with the given actions
func Trigger(uid uint64, nodes []uint32, actions []model.TriggerAction) []byte {
	r := header(model.ItemTrigger, uid, 0)
	r.u32s(nodes)
	r.u32(uint32(len(actions)))
	for _, a := range actions {
		r.u64(uint64(a.Action)).f32(a.Value).u32(0)
	}
	r.f32(5).f32(1)
	return r.b
}

// TrajectoryItem encodes a trajectory record
func TrajectoryItem(uid uint64, nodes []uint32, rules []model.TrajectoryRule, checkpoints int) []byte {
	r := header(model.ItemTrajectoryItem, uid, 0)
	r.u32s(nodes)
	r.u32(uint32(len(rules)))
	for _, rule := range rules {
		r.u64(uint64(rule.Rule)).u32(uint32(len(rule.Params)))
		for _, p := range rule.Params {
			r.f32(p)
		}
	}
	r.u32(uint32(checkpoints)).zeros(checkpoints * 0x10)
	return r.b
}

// minimalPayload is the payload length of each decoded type with every
// count set to zero
var minimalPayload = map[model.ItemType]int{
	model.ItemRoad:           28,
	model.ItemPrefab:         28,
	model.ItemCompany:        48,
	model.ItemService:        12,
	model.ItemCutPlane:       4,
	model.ItemCity:           20,
	model.ItemMapOverlay:     12,
	model.ItemFerry:          20,
	model.ItemGarage:         20,
	model.ItemTrigger:        16,
	model.ItemFuelPump:       12,
	model.ItemRoadSideItem:   20,
	model.ItemBusStop:        20,
	model.ItemTrafficRule:    16,
	model.ItemTrajectoryItem: 12,
	model.ItemMapArea:        8,
}

// Minimal encodes a record of typ whose payload is all zeros. Retained
// types built this way decode as invalid because their tokens are zero.
func Minimal(typ model.ItemType, uid uint64) []byte {
	return header(typ, uid, 0).zeros(minimalPayload[typ]).b
}

// MinimalSize returns len(Minimal(typ, uid))
func MinimalSize(typ model.ItemType) int {
	return ItemHeaderSize + minimalPayload[typ]
}

// Unknown encodes a record with a tag nothing decodes, padded to size
func Unknown(tag uint32, size int) []byte {
	b := make([]byte, size)
	binary.LittleEndian.PutUint32(b, tag)
	return b
}

// LZO wraps data as an .lzo sector: a little-endian length prefix and an
// LZO1X stream made of one literal run and the end-of-stream marker.
// data must be at least 4 bytes long.
func LZO(data []byte) []byte {
	n := len(data)
	out := binary.LittleEndian.AppendUint32(nil, uint32(n))
	switch {
	case n < 4:
		panic("sectortest: LZO needs at least 4 bytes")
	case n <= 238:
		out = append(out, byte(n+17))
	default:
		// Long literal: 3 + 15 + 255 per zero byte + final byte
		rest := n - 18
		out = append(out, 0)
		for ; rest > 255; rest -= 255 {
			out = append(out, 0)
		}
		out = append(out, byte(rest))
	}
	out = append(out, data...)
	return append(out, 0x11, 0x00, 0x00)
}
