package sector

import "github.com/dyuri/tsmap/internal/model"

// Sink receives retained items and nodes. *model.Map is the usual sink.
type Sink interface {
	AddItem(item model.Item) bool
	AddNode(node *model.Node) bool
}

// Batch collects the results of one sector so they can be merged into a
// shared map later, from a single goroutine
type Batch struct {
	Items []model.Item  // Retained items in record order
	Nodes []*model.Node // Node table entries in table order, duplicates kept
}

// AddItem keeps item if its type is retained by the map
func (b *Batch) AddItem(item model.Item) bool {
	if !item.Header().Type.Retained() {
		return false
	}
	b.Items = append(b.Items, item)
	return true
}

// AddNode appends node; deduplication happens on merge
func (b *Batch) AddNode(node *model.Node) bool {
	b.Nodes = append(b.Nodes, node)
	return true
}

// MergeInto adds the batch contents to dst in order. It returns how many
// nodes were dropped because dst already held their Uid.
func (b *Batch) MergeInto(dst Sink) (duplicates int) {
	for _, it := range b.Items {
		dst.AddItem(it)
	}
	for _, n := range b.Nodes {
		if !dst.AddNode(n) {
			duplicates++
		}
	}
	return duplicates
}
