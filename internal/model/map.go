package model

// Map owns the item collections and node registry that sector parsing fills.
// It is not safe for concurrent writes; parallel loaders collect into
// private batches and merge them from one goroutine.
type Map struct {
	Roads       []*Road
	Prefabs     []*Prefab
	Cities      []*City
	MapOverlays []*MapOverlay
	Ferries     []*Ferry
	Nodes       map[uint32]*Node // Keyed by Node.Uid, first insert wins
}

// NewMap creates an empty map aggregate
func NewMap() *Map {
	return &Map{
		Roads:       make([]*Road, 0),
		Prefabs:     make([]*Prefab, 0),
		Cities:      make([]*City, 0),
		MapOverlays: make([]*MapOverlay, 0),
		Ferries:     make([]*Ferry, 0),
		Nodes:       make(map[uint32]*Node),
	}
}

// AddItem appends a retained item to its collection. Items of types the
// map does not keep are ignored; it reports whether the item was stored.
func (m *Map) AddItem(item Item) bool {
	switch it := item.(type) {
	case *Road:
		m.Roads = append(m.Roads, it)
	case *Prefab:
		m.Prefabs = append(m.Prefabs, it)
	case *City:
		m.Cities = append(m.Cities, it)
	case *MapOverlay:
		m.MapOverlays = append(m.MapOverlays, it)
	case *Ferry:
		m.Ferries = append(m.Ferries, it)
	default:
		return false
	}
	return true
}

// AddNode registers n unless a node with the same Uid is already present.
// It reports whether n was stored.
func (m *Map) AddNode(n *Node) bool {
	if _, ok := m.Nodes[n.Uid]; ok {
		return false
	}
	m.Nodes[n.Uid] = n
	return true
}

// ItemCount returns the number of retained items
func (m *Map) ItemCount() int {
	return len(m.Roads) + len(m.Prefabs) + len(m.Cities) + len(m.MapOverlays) + len(m.Ferries)
}
