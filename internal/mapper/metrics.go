package mapper

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dyuri/tsmap/internal/sector"
)

// Metrics holds all Prometheus metrics for map loading
type Metrics struct {
	Sectors        *prometheus.CounterVec
	BytesRead      prometheus.Counter
	ItemsDecoded   *prometheus.CounterVec
	ItemsRetained  *prometheus.CounterVec
	ItemsInvalid   prometheus.Counter
	UnknownItems   prometheus.Counter
	NodesRead      prometheus.Counter
	DuplicateNodes prometheus.Counter
}

// NewMetrics creates and registers all metrics with the provided registry
func NewMetrics(reg prometheus.Registerer) *Metrics {
	sectors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tsmap_sectors_total",
		Help: "Sectors processed, by outcome",
	}, []string{"state"})

	bytesRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tsmap_sector_bytes_read_total",
		Help: "Decompressed sector bytes read",
	})

	itemsDecoded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tsmap_items_decoded_total",
		Help: "Item records decoded, by item type",
	}, []string{"type"})

	itemsRetained := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tsmap_items_retained_total",
		Help: "Valid items added to the map, by item type",
	}, []string{"type"})

	itemsInvalid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tsmap_items_invalid_total",
		Help: "Item records that failed validation",
	})

	unknownItems := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tsmap_unknown_items_total",
		Help: "Item records with an unknown type tag",
	})

	nodesRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tsmap_nodes_read_total",
		Help: "Node table entries read",
	})

	duplicateNodes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tsmap_duplicate_nodes_total",
		Help: "Nodes dropped because their uid was already registered",
	})

	reg.MustRegister(sectors, bytesRead, itemsDecoded, itemsRetained, itemsInvalid, unknownItems, nodesRead, duplicateNodes)

	return &Metrics{
		Sectors:        sectors,
		BytesRead:      bytesRead,
		ItemsDecoded:   itemsDecoded,
		ItemsRetained:  itemsRetained,
		ItemsInvalid:   itemsInvalid,
		UnknownItems:   unknownItems,
		NodesRead:      nodesRead,
		DuplicateNodes: duplicateNodes,
	}
}

// observe records the per-sector statistics of a finished parse
func (m *Metrics) observe(stats *sector.Stats) {
	for typ, n := range stats.Decoded {
		m.ItemsDecoded.WithLabelValues(typ.String()).Add(float64(n))
	}
	m.ItemsInvalid.Add(float64(stats.Invalid))
	m.UnknownItems.Add(float64(stats.Unknown))
	m.NodesRead.Add(float64(stats.NodeCount))
}
