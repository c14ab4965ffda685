// Package text writes decoded map data in a human-readable sectioned format.
//
// Every retained item and node becomes one section:
//
//	[_road]
//	Uid=0x2a
//	Look=look_a
//	StartNode=42
//	EndNode=43
//	[end]
//
// Sections appear in collection order (roads, prefabs, cities, overlays,
// ferries), followed by the nodes sorted by uid.
package text

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dyuri/tsmap/internal/model"
)

// Writer handles writing map data to the text format
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a new text format writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write outputs every retained item and node of m
func (w *Writer) Write(m *model.Map) error {
	for _, r := range m.Roads {
		w.writeRoad(r)
	}
	for _, p := range m.Prefabs {
		w.writePrefab(p)
	}
	for _, c := range m.Cities {
		w.writeCity(c)
	}
	for _, o := range m.MapOverlays {
		w.writeOverlay(o)
	}
	for _, f := range m.Ferries {
		w.writeFerry(f)
	}

	uids := make([]uint32, 0, len(m.Nodes))
	for uid := range m.Nodes {
		uids = append(uids, uid)
	}
	slices.Sort(uids)
	for _, uid := range uids {
		w.writeNode(m.Nodes[uid])
	}

	if w.err != nil {
		return fmt.Errorf("write text: %w", w.err)
	}
	return nil
}

// printf writes one formatted line, keeping the first error
func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format+"\n", args...)
}

func (w *Writer) begin(section string, h model.ItemHeader) {
	w.printf("[%s]", section)
	w.printf("Uid=0x%x", h.Uid)
	if h.Flags != 0 {
		w.printf("Flags=0x%x", h.Flags)
	}
}

func (w *Writer) end() {
	w.printf("[end]\n")
}

// writeRoad writes a [_road] section
func (w *Writer) writeRoad(r *model.Road) {
	w.begin("_road", r.Header())
	w.printf("Look=%s", r.Look)
	w.printf("StartNode=%d", r.StartNode)
	w.printf("EndNode=%d", r.EndNode)
	if r.Length != 0 {
		w.printf("Length=%g", r.Length)
	}
	w.end()
}

// writePrefab writes a [_prefab] section
func (w *Writer) writePrefab(p *model.Prefab) {
	w.begin("_prefab", p.Header())
	w.printf("Model=%s", p.Model)
	if p.Variant != 0 {
		w.printf("Variant=%s", p.Variant)
	}
	w.printf("Origin=%d", p.Origin)
	w.printf("Nodes=%s", joinUints(p.Nodes))
	if len(p.Slaves) > 0 {
		w.printf("Slaves=%s", joinUints(p.Slaves))
	}
	w.end()
}

// writeCity writes a [_city] section
func (w *Writer) writeCity(c *model.City) {
	w.begin("_city", c.Header())
	w.printf("Name=%s", c.Name)
	w.printf("Size=%gx%g", c.Width, c.Height)
	w.printf("Node=%d", c.Node)
	w.end()
}

// writeOverlay writes an [_overlay] section
func (w *Writer) writeOverlay(o *model.MapOverlay) {
	w.begin("_overlay", o.Header())
	w.printf("Overlay=%s", o.Overlay)
	w.printf("Node=%d", o.Node)
	w.end()
}

// writeFerry writes a [_ferry] section
func (w *Writer) writeFerry(f *model.Ferry) {
	w.begin("_ferry", f.Header())
	w.printf("Port=%s", f.Port)
	w.printf("Node=%d", f.Node)
	w.printf("Landing=%g,%g", f.LandX, f.LandZ)
	w.end()
}

// writeNode writes a [_node] section
func (w *Writer) writeNode(n *model.Node) {
	w.printf("[_node]")
	w.printf("Uid=%d", n.Uid)
	w.printf("Position=%g,%g,%g", n.Position.X, n.Position.Y, n.Position.Z)
	if n.BackwardItemUid != 0 {
		w.printf("Backward=0x%x", n.BackwardItemUid)
	}
	if n.ForwardItemUid != 0 {
		w.printf("Forward=0x%x", n.ForwardItemUid)
	}
	w.end()
}

func joinUints[T uint32 | uint64](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
