// Package mapper loads every sector of a map into one model.Map.
//
// Sectors are decoded in parallel, each into a private batch, and the
// batches are merged into the map from a single goroutine in sector order.
// The first sector in that order wins when two carry the same node uid.
package mapper

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dyuri/tsmap/internal/model"
	"github.com/dyuri/tsmap/internal/sector"
)

// Mapper coordinates loading and merging of sectors
type Mapper struct {
	cfg     Config
	metrics *Metrics
	logger  log.Logger
}

// Result is the outcome of a Load
type Result struct {
	Map     *model.Map
	Sectors []*sector.Stats // In merge order, one per input name
	Empty   int             // Missing sectors or sectors without items
}

// New creates a Mapper. metrics may be nil.
func New(cfg Config, metrics *Metrics, logger log.Logger) (*Mapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Mapper{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// LoadDir loads every sector file found in dir
func (m *Mapper) LoadDir(ctx context.Context, fsys fs.FS, dir string) (*Result, error) {
	names, err := SectorFiles(fsys, dir)
	if err != nil {
		return nil, err
	}
	return m.Load(ctx, fsys, names)
}

// Load decodes the named sectors and merges them in the given order. A
// missing sector is empty, not an error. Any other failure cancels the
// remaining work and is returned.
func (m *Mapper) Load(ctx context.Context, fsys fs.FS, names []string) (*Result, error) {
	logger := log.With(m.logger, "pass", uuid.NewString())
	start := time.Now()
	level.Info(logger).Log("msg", "loading sectors", "sectors", len(names), "workers", m.cfg.Workers)

	opts := sector.Options{
		Logger:      logger,
		Catalog:     m.cfg.Catalog,
		UnknownTags: m.cfg.UnknownTags,
	}

	batches := make([]*sector.Batch, len(names))
	stats := make([]*sector.Stats, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, st, err := m.decode(fsys, name, opts, logger)
			if err != nil {
				return err
			}
			batches[i], stats[i] = b, st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "load failed", "err", err)
		return nil, err
	}

	res := &Result{Map: model.NewMap(), Sectors: stats}
	for i, b := range batches {
		if b == nil {
			res.Empty++
			continue
		}
		dup := b.MergeInto(res.Map)
		stats[i].DuplicateNodes = dup
		if m.metrics != nil {
			m.metrics.DuplicateNodes.Add(float64(dup))
			for _, it := range b.Items {
				m.metrics.ItemsRetained.WithLabelValues(it.Header().Type.String()).Inc()
			}
		}
	}

	level.Info(logger).Log(
		"msg", "sectors loaded",
		"sectors", len(names),
		"empty", res.Empty,
		"items", res.Map.ItemCount(),
		"nodes", len(res.Map.Nodes),
		"duration", time.Since(start),
	)
	return res, nil
}

// decode loads and parses one sector, releasing its buffer before returning
func (m *Mapper) decode(fsys fs.FS, name string, opts sector.Options, logger log.Logger) (*sector.Batch, *sector.Stats, error) {
	s, err := sector.Load(fsys, name)
	if err != nil {
		m.countSector("failed")
		return nil, nil, err
	}
	defer s.Release()

	if m.metrics != nil {
		m.metrics.BytesRead.Add(float64(s.Size()))
	}
	level.Debug(logger).Log("msg", "sector loaded", "file", name, "bytes", s.Size(), "checksum", fmt.Sprintf("%016x", s.Checksum()))

	b, st, err := s.ParseBatch(opts)
	if st != nil && m.metrics != nil {
		m.metrics.observe(st)
	}
	if err != nil {
		m.countSector("failed")
		return nil, nil, err
	}
	if b == nil {
		m.countSector("empty")
	} else {
		m.countSector("parsed")
	}
	return b, st, nil
}

func (m *Mapper) countSector(state string) {
	if m.metrics != nil {
		m.metrics.Sectors.WithLabelValues(state).Inc()
	}
}
