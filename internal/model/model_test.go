package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	for _, name := range []string{"a", "road_1", "berlin", "ferry_port_9", "zzzzzzzzzzzz"} {
		tok, err := ParseToken(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, tok.String())
	}
}

func TestTokenKnownValue(t *testing.T) {
	// "a" is digit 11; "ab" is 11 + 12*38
	assert.Equal(t, Token(11), MustToken("a"))
	assert.Equal(t, Token(11+12*38), MustToken("ab"))
	assert.Equal(t, "", Token(0).String())
}

func TestParseTokenErrors(t *testing.T) {
	_, err := ParseToken("Upper")
	assert.Error(t, err)

	_, err = ParseToken("thirteen_char")
	assert.Error(t, err)

	for _, bad := range []string{"a b", "a-b", "a\x00b", "caf\u00e9"} {
		_, err = ParseToken(bad)
		assert.Error(t, err, bad)
	}
}

func TestItemTypeString(t *testing.T) {
	assert.Equal(t, "road", ItemRoad.String())
	assert.Equal(t, "terrain", ItemTerrain.String())
	assert.Equal(t, "unknown(0x99)", ItemType(0x99).String())
}

func TestItemTypeRetained(t *testing.T) {
	retained := 0
	for _, typ := range DecodedTypes {
		if typ.Retained() {
			retained++
		}
	}
	assert.Equal(t, 5, retained)
	assert.Len(t, DecodedTypes, 16)
	assert.False(t, ItemCompany.Retained())
}

func TestMapAddNodeFirstWins(t *testing.T) {
	m := NewMap()
	first := &Node{Uid: 42, Position: Position{X: 1}}
	second := &Node{Uid: 42, Position: Position{X: 2}}

	assert.True(t, m.AddNode(first))
	assert.False(t, m.AddNode(second))
	require.Len(t, m.Nodes, 1)
	assert.Same(t, first, m.Nodes[42])
	assert.Equal(t, float32(1), m.Nodes[42].Position.X)
}

func TestMapAddItem(t *testing.T) {
	m := NewMap()
	assert.True(t, m.AddItem(&Road{}))
	assert.True(t, m.AddItem(&Ferry{}))
	assert.False(t, m.AddItem(&Company{}))
	assert.Len(t, m.Roads, 1)
	assert.Len(t, m.Ferries, 1)
	assert.Equal(t, 2, m.ItemCount())
}

func TestLoadCatalog(t *testing.T) {
	src := `
road_looks: [look_a]
prefab_models: [junction_1]
cities: [berlin, paris]
overlays: [parking]
ferry_ports: [calais]
`
	c, err := LoadCatalog(strings.NewReader(src))
	require.NoError(t, err)

	assert.True(t, c.HasRoadLook(MustToken("look_a")))
	assert.False(t, c.HasRoadLook(MustToken("look_b")))
	assert.True(t, c.HasCity(MustToken("paris")))
	assert.True(t, c.HasPrefabModel(MustToken("junction_1")))
	assert.True(t, c.HasOverlay(MustToken("parking")))
	assert.True(t, c.HasFerryPort(MustToken("calais")))
	assert.False(t, c.HasFerryPort(0))
}

func TestLoadCatalogRejectsBadInput(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("cities: [Berlin]\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(strings.NewReader("rivers: [rhine]\n"))
	assert.Error(t, err)
}

func TestNilCatalogAcceptsNonZero(t *testing.T) {
	var c *Catalog
	assert.True(t, c.HasCity(MustToken("x")))
	assert.False(t, c.HasCity(0))
}
