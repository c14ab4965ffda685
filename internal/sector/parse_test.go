package sector

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyuri/tsmap/internal/binary"
	"github.com/dyuri/tsmap/internal/model"
	"github.com/dyuri/tsmap/internal/sectortest"
)

var (
	lookA  = model.MustToken("look_a")
	junc   = model.MustToken("junction")
	berlin = model.MustToken("berlin")
)

func node(uid uint32, x float32) model.Node {
	return model.Node{
		Uid:             uid,
		Flags:           3,
		Position:        model.Position{X: x, Y: 2, Z: -3.5},
		Rotation:        model.Quaternion{W: 1},
		BackwardItemUid: 11,
		ForwardItemUid:  12,
	}
}

func TestParseRoadAndInvalidPrefab(t *testing.T) {
	road := sectortest.Road(1, 0, lookA, 7, 8, 1, 2)
	prefab := sectortest.Prefab(2, 0, 0, 0, []uint32{7}, nil) // zero model token
	sec := sectortest.Sector{
		Items: [][]byte{road, prefab},
		Nodes: []model.Node{node(7, 10.5)},
	}

	m := model.NewMap()
	s := New("sec+0000+0000.base", sec.Bytes())
	stats, err := s.Parse(m, Options{})
	require.NoError(t, err)

	require.Len(t, m.Roads, 1)
	assert.Empty(t, m.Prefabs)
	assert.Equal(t, uint64(1), m.Roads[0].Header().Uid)

	require.Len(t, m.Nodes, 1)
	n := m.Nodes[7]
	require.NotNil(t, n)
	assert.Equal(t, node(7, 10.5), *n)

	L1, L2 := len(road), len(prefab)
	assert.Equal(t, 0x14+L1+L2, stats.RecordsEnd)
	assert.Equal(t, 0x14+L1+L2+4+0x34, stats.End)
	assert.Equal(t, 4, stats.Trailing)
	assert.Equal(t, 1, stats.Retained)
	assert.Equal(t, 1, stats.Invalid)
	assert.Equal(t, StateParsed, s.State())
}

func TestParseCursorArithmetic(t *testing.T) {
	items := [][]byte{
		sectortest.Road(1, 0, lookA, 1, 2, 3, 1),
		sectortest.Minimal(model.ItemCompany, 2),
		sectortest.Trigger(3, []uint32{1, 2, 3}, []model.TriggerAction{{Action: lookA}}),
		sectortest.Prefab(4, 0, junc, 0, []uint32{1, 2}, []uint64{9, 10}),
	}
	nodes := []model.Node{node(1, 0), node(2, 0), node(3, 0)}
	sec := sectortest.Sector{Items: items, Nodes: nodes}

	stats, err := New("a.base", sec.Bytes()).Parse(model.NewMap(), Options{})
	require.NoError(t, err)

	want := 0x14
	for _, rec := range items {
		want += len(rec)
	}
	assert.Equal(t, want, stats.RecordsEnd)
	assert.Equal(t, want+len(nodes)*(4+0x34), stats.End)
	assert.Equal(t, 3, stats.NodeCount)
	assert.Equal(t, 4, stats.DecodedTotal())
}

func TestParseOnlyRetainedCategories(t *testing.T) {
	var items [][]byte
	for i, typ := range model.DecodedTypes {
		if typ.Retained() {
			continue
		}
		items = append(items, sectortest.Minimal(typ, uint64(i)))
	}
	items = append(items,
		sectortest.Road(100, 0, lookA, 1, 2, 0, 0),
		sectortest.Prefab(101, 0, junc, 0, []uint32{1}, nil),
		sectortest.City(102, 0, berlin, 1),
		sectortest.MapOverlay(103, 0, berlin, 1),
		sectortest.Ferry(104, 0, berlin, 1),
	)

	m := model.NewMap()
	stats, err := New("a.base", sectortest.Sector{Items: items}.Bytes()).Parse(m, Options{})
	require.NoError(t, err)

	assert.Len(t, m.Roads, 1)
	assert.Len(t, m.Prefabs, 1)
	assert.Len(t, m.Cities, 1)
	assert.Len(t, m.MapOverlays, 1)
	assert.Len(t, m.Ferries, 1)
	assert.Equal(t, 5, m.ItemCount())
	assert.Equal(t, 5, stats.Retained)
	assert.Equal(t, 16, stats.DecodedTotal())
	assert.Equal(t, 0, stats.Invalid)
}

func TestParsePreservesRecordOrder(t *testing.T) {
	items := [][]byte{
		sectortest.Road(3, 0, lookA, 1, 2, 0, 0),
		sectortest.Road(1, 0, lookA, 1, 2, 0, 0),
		sectortest.Road(2, 0, lookA, 1, 2, 0, 0),
	}
	m := model.NewMap()
	_, err := New("a.base", sectortest.Sector{Items: items}.Bytes()).Parse(m, Options{})
	require.NoError(t, err)

	require.Len(t, m.Roads, 3)
	assert.Equal(t, uint64(3), m.Roads[0].Header().Uid)
	assert.Equal(t, uint64(1), m.Roads[1].Header().Uid)
	assert.Equal(t, uint64(2), m.Roads[2].Header().Uid)
}

func TestParseZeroItems(t *testing.T) {
	sec := sectortest.Sector{
		Items:     [][]byte{sectortest.Road(1, 0, lookA, 1, 2, 0, 0)},
		ItemCount: sectortest.Count[uint32](0),
		Nodes:     []model.Node{node(5, 1)},
	}
	m := model.NewMap()
	s := New("a.base", sec.Bytes())
	stats, err := s.Parse(m, Options{})
	require.NoError(t, err)

	assert.True(t, s.Empty())
	assert.Equal(t, 0, m.ItemCount())
	assert.Empty(t, m.Nodes)
	assert.Equal(t, 0, stats.ItemCount)
}

func TestParseEmptySector(t *testing.T) {
	m := model.NewMap()
	s := NewEmpty("missing.base")
	_, err := s.Parse(m, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, m.ItemCount())
	assert.Empty(t, m.Nodes)

	// Still a no-op after release
	s.Release()
	_, err = s.Parse(m, Options{})
	require.NoError(t, err)
}

func TestParseDuplicateNodesAcrossSectors(t *testing.T) {
	first := sectortest.Sector{
		Items: [][]byte{sectortest.City(1, 0, berlin, 42)},
		Nodes: []model.Node{node(42, 1)},
	}
	second := sectortest.Sector{
		Items: [][]byte{sectortest.City(2, 0, berlin, 42)},
		Nodes: []model.Node{node(42, 99), node(43, 5)},
	}

	m := model.NewMap()
	_, err := New("a.base", first.Bytes()).Parse(m, Options{})
	require.NoError(t, err)
	stats, err := New("b.base", second.Bytes()).Parse(m, Options{})
	require.NoError(t, err)

	require.Len(t, m.Nodes, 2)
	assert.Equal(t, float32(1), m.Nodes[42].Position.X)
	assert.Equal(t, 1, stats.DuplicateNodes)
}

func TestParseDuplicateNodesWithinSector(t *testing.T) {
	sec := sectortest.Sector{
		Items: [][]byte{sectortest.City(1, 0, berlin, 42)},
		Nodes: []model.Node{node(42, 1), node(42, 2)},
	}
	m := model.NewMap()
	stats, err := New("a.base", sec.Bytes()).Parse(m, Options{})
	require.NoError(t, err)

	require.Len(t, m.Nodes, 1)
	assert.Equal(t, float32(1), m.Nodes[42].Position.X)
	assert.Equal(t, 2, stats.NodeCount)
	assert.Equal(t, 1, stats.DuplicateNodes)
}

func TestParseItemCountPastEnd(t *testing.T) {
	rec := sectortest.City(1, 0, berlin, 1)
	// Header plus exactly two records, but three declared
	data := sectortest.Sector{Items: [][]byte{rec, rec}, ItemCount: sectortest.Count[uint32](3)}.Bytes()
	data = data[:0x14+2*len(rec)]

	m := model.NewMap()
	s := New("a.base", data)
	_, err := s.Parse(m, Options{})
	require.ErrorIs(t, err, ErrTruncated)
	require.ErrorIs(t, err, binary.ErrOutOfBounds)

	// Nothing from the failed sector reaches the map
	assert.Equal(t, 0, m.ItemCount())
	assert.Equal(t, StateFailed, s.State())

	_, err = s.Parse(m, Options{})
	require.ErrorIs(t, err, ErrFailed)
}

func TestParseItemCountPastRecords(t *testing.T) {
	rec := sectortest.City(1, 0, berlin, 1)
	// Two records followed by an empty node table, three declared. The
	// count word and trailing bytes are shorter than an item header.
	sec := sectortest.Sector{Items: [][]byte{rec, rec}, ItemCount: sectortest.Count[uint32](3)}

	for _, policy := range []UnknownTagPolicy{UnknownTagFail, UnknownTagStop} {
		t.Run(string(policy), func(t *testing.T) {
			m := model.NewMap()
			stats, err := New("a.base", sec.Bytes()).Parse(m, Options{UnknownTags: policy})
			require.ErrorIs(t, err, ErrTruncated)
			require.ErrorIs(t, err, binary.ErrOutOfBounds)
			assert.NotErrorIs(t, err, ErrUnknownItemType)
			assert.Equal(t, 0, m.ItemCount())
			assert.False(t, stats.Stopped)
			assert.Equal(t, 0, stats.Unknown)
		})
	}
}

func TestParseHugeItemCount(t *testing.T) {
	data := sectortest.Sector{ItemCount: sectortest.Count[uint32](0xFFFFFFFF)}.Bytes()
	_, err := New("a.base", data).Parse(model.NewMap(), Options{})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestParseNodeTableTruncated(t *testing.T) {
	sec := sectortest.Sector{
		Items:    [][]byte{sectortest.City(1, 0, berlin, 1)},
		Nodes:    []model.Node{node(1, 0), node(2, 0)},
		Truncate: 4 + 1, // reserved word and one byte of the last record
	}
	m := model.NewMap()
	_, err := New("a.base", sec.Bytes()).Parse(m, Options{})
	require.ErrorIs(t, err, ErrTruncated)
	assert.Empty(t, m.Nodes)
	assert.Empty(t, m.Cities)
}

func TestParseNodeTableWithoutTrailingWord(t *testing.T) {
	sec := sectortest.Sector{
		Items:    [][]byte{sectortest.City(1, 0, berlin, 1)},
		Nodes:    []model.Node{node(1, 0)},
		Truncate: 4,
	}
	m := model.NewMap()
	stats, err := New("a.base", sec.Bytes()).Parse(m, Options{})
	require.NoError(t, err)
	assert.Len(t, m.Nodes, 1)
	assert.Equal(t, 0, stats.Trailing)
}

func TestParseNegativeNodeCount(t *testing.T) {
	sec := sectortest.Sector{
		Items:     [][]byte{sectortest.City(1, 0, berlin, 1)},
		NodeCount: sectortest.Count[int32](-5),
	}
	m := model.NewMap()
	stats, err := New("a.base", sec.Bytes()).Parse(m, Options{})
	require.NoError(t, err)
	assert.Empty(t, m.Nodes)
	assert.Equal(t, stats.RecordsEnd, stats.End)
}

func TestParseUnknownTagFails(t *testing.T) {
	var logs bytes.Buffer
	items := [][]byte{
		sectortest.City(1, 0, berlin, 1),
		sectortest.Unknown(uint32(model.ItemTerrain), 64),
	}
	m := model.NewMap()
	s := New("maps/europe/sec+0001-0002.base", sectortest.Sector{Items: items}.Bytes())
	stats, err := s.Parse(m, Options{Logger: log.NewLogfmtLogger(&logs)})
	require.ErrorIs(t, err, ErrUnknownItemType)

	assert.Equal(t, 0, m.ItemCount())
	assert.Equal(t, 1, stats.Unknown)

	offset := 0x14 + len(items[0])
	out := logs.String()
	assert.Contains(t, out, "unknown item type")
	assert.Contains(t, out, "type=0x1")
	assert.Contains(t, out, "file=sec+0001-0002.base")
	assert.Contains(t, out, "offset="+strconv.Itoa(offset))
}

func TestParseUnknownTagStops(t *testing.T) {
	items := [][]byte{
		sectortest.City(1, 0, berlin, 1),
		sectortest.Unknown(0x77, 64),
		sectortest.City(2, 0, berlin, 1),
	}
	sec := sectortest.Sector{Items: items, Nodes: []model.Node{node(1, 0)}}

	m := model.NewMap()
	stats, err := New("a.base", sec.Bytes()).Parse(m, Options{UnknownTags: UnknownTagStop})
	require.NoError(t, err)

	require.Len(t, m.Cities, 1)
	assert.Equal(t, uint64(1), m.Cities[0].Header().Uid)
	assert.Empty(t, m.Nodes)
	assert.True(t, stats.Stopped)
	assert.Len(t, stats.Warnings, 1)
	assert.Equal(t, 0x14+len(items[0]), stats.RecordsEnd)
}

func TestParseCatalogValidity(t *testing.T) {
	other := model.MustToken("paris")
	items := [][]byte{
		sectortest.City(1, 0, berlin, 1),
		sectortest.City(2, 0, other, 1),
	}
	cat := &model.Catalog{Cities: map[model.Token]struct{}{berlin: {}}}

	m := model.NewMap()
	stats, err := New("a.base", sectortest.Sector{Items: items}.Bytes()).Parse(m, Options{Catalog: cat})
	require.NoError(t, err)
	require.Len(t, m.Cities, 1)
	assert.Equal(t, berlin, m.Cities[0].Name)
	assert.Equal(t, 1, stats.Invalid)
}

func TestParseTwiceIsNoop(t *testing.T) {
	sec := sectortest.Sector{
		Items: [][]byte{sectortest.City(1, 0, berlin, 1)},
		Nodes: []model.Node{node(1, 0)},
	}
	m := model.NewMap()
	s := New("a.base", sec.Bytes())
	first, err := s.Parse(m, Options{})
	require.NoError(t, err)
	second, err := s.Parse(m, Options{})
	require.NoError(t, err)

	assert.Len(t, m.Cities, 1)
	assert.Same(t, first, second)
}

func TestParseAfterRelease(t *testing.T) {
	sec := sectortest.Sector{Items: [][]byte{sectortest.City(1, 0, berlin, 1)}}
	s := New("a.base", sec.Bytes())
	size, sum := s.Size(), s.Checksum()
	s.Release()

	_, err := s.Parse(model.NewMap(), Options{})
	require.ErrorIs(t, err, ErrReleased)
	assert.True(t, s.Released())
	assert.Equal(t, size, s.Size())
	assert.Equal(t, sum, s.Checksum())

	// Parsed sectors fail fast too once released
	s = New("b.base", sec.Bytes())
	_, err = s.Parse(model.NewMap(), Options{})
	require.NoError(t, err)
	s.Release()
	_, err = s.Parse(model.NewMap(), Options{})
	require.ErrorIs(t, err, ErrReleased)
}

func TestParseShortHeader(t *testing.T) {
	_, err := New("a.base", make([]byte, 0x10)).Parse(model.NewMap(), Options{})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestBatchMergeOrder(t *testing.T) {
	a := New("a.base", sectortest.Sector{
		Items: [][]byte{sectortest.City(1, 0, berlin, 1)},
		Nodes: []model.Node{node(42, 1)},
	}.Bytes())
	b := New("b.base", sectortest.Sector{
		Items: [][]byte{sectortest.City(2, 0, berlin, 1)},
		Nodes: []model.Node{node(42, 2)},
	}.Bytes())

	// Decode out of order, merge in order
	batchB, _, err := b.ParseBatch(Options{})
	require.NoError(t, err)
	batchA, _, err := a.ParseBatch(Options{})
	require.NoError(t, err)

	m := model.NewMap()
	assert.Equal(t, 0, batchA.MergeInto(m))
	assert.Equal(t, 1, batchB.MergeInto(m))

	require.Len(t, m.Cities, 2)
	assert.Equal(t, uint64(1), m.Cities[0].Header().Uid)
	assert.Equal(t, float32(1), m.Nodes[42].Position.X)
}

func TestParseUnknownTagPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want UnknownTagPolicy
		ok   bool
	}{
		{"", UnknownTagFail, true},
		{"fail", UnknownTagFail, true},
		{"stop", UnknownTagStop, true},
		{"skip", "", false},
		{"FAIL", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseUnknownTagPolicy(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
