package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dyuri/tsmap/internal/mapper"
	"github.com/dyuri/tsmap/internal/model"
	"github.com/dyuri/tsmap/internal/sector"
	"github.com/dyuri/tsmap/pkg/tsmap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tsmap",
	Short: "Decode map sector files",
	Long: `tsmap decodes the binary sector files of a truck simulator map.

It can inspect a single sector, dump its roads, prefabs, cities, overlays,
ferries and nodes, load a whole map directory in parallel, and check
sectors for structural problems.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("unknown-tags", string(sector.UnknownTagFail), "On unknown item types: fail, stop")
	rootCmd.PersistentFlags().String("catalog", "", "YAML catalog of known definition names")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the stderr logger for the --log-level flag
func newLogger(cmd *cobra.Command) (log.Logger, error) {
	lvl, _ := cmd.Flags().GetString("log-level")

	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level: %s", lvl)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC), nil
}

// sectorOptions builds parse options from the shared flags
func sectorOptions(cmd *cobra.Command) (sector.Options, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return sector.Options{}, err
	}

	policyName, _ := cmd.Flags().GetString("unknown-tags")
	policy, ok := sector.ParseUnknownTagPolicy(policyName)
	if !ok {
		return sector.Options{}, fmt.Errorf("unknown tag policy: %s", policyName)
	}

	catalogPath, _ := cmd.Flags().GetString("catalog")
	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		return sector.Options{}, err
	}

	return sector.Options{Logger: logger, Catalog: catalog, UnknownTags: policy}, nil
}

func loadCatalog(path string) (*model.Catalog, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return model.LoadCatalog(f)
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info <sector.base>",
	Short: "Show sector file information",
	Long: `Show header, record and node table information of a sector file.

The sector is fully parsed; compressed files (.zst, .lz4, .xz, .lzo) are
decompressed first.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().Bool("brief", false, "Show only summary")
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	brief, _ := cmd.Flags().GetBool("brief")

	opts, err := sectorOptions(cmd)
	if err != nil {
		return err
	}

	s, err := sector.LoadFile(inputPath)
	if err != nil {
		return fmt.Errorf("load sector: %w", err)
	}
	defer s.Release()

	m := model.NewMap()
	stats, err := s.Parse(m, opts)
	if err != nil {
		return fmt.Errorf("parse sector: %w", err)
	}

	p := message.NewPrinter(language.English)
	out := cmd.OutOrStdout()

	if brief {
		p.Fprintf(out, "%s: items=%d retained=%d nodes=%d bytes=%d\n",
			inputPath, stats.ItemCount, stats.Retained, stats.NodeCount, s.Size())
		return nil
	}

	fmt.Fprintf(out, "Sector: %s\n", inputPath)
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out)

	if coord, err := sector.ParseName(inputPath); err == nil {
		fmt.Fprintf(out, "Coordinates:        %d, %d\n", coord.X, coord.Z)
	}
	p.Fprintf(out, "Size:               %s (%d bytes)\n", formatBytes(s.Size()), s.Size())
	fmt.Fprintf(out, "Checksum:           %016x\n", s.Checksum())
	fmt.Fprintf(out, "State:              %s\n", s.State())
	if ts, err := times.Stat(inputPath); err == nil {
		fmt.Fprintf(out, "Modified:           %s\n", ts.ModTime().Format(time.RFC3339))
		if ts.HasBirthTime() {
			fmt.Fprintf(out, "Created:            %s\n", ts.BirthTime().Format(time.RFC3339))
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Records:")
	p.Fprintf(out, "  Declared:         %d\n", stats.ItemCount)
	p.Fprintf(out, "  Decoded:          %d\n", stats.DecodedTotal())
	p.Fprintf(out, "  Retained:         %d\n", stats.Retained)
	p.Fprintf(out, "  Invalid:          %d\n", stats.Invalid)
	if stats.Unknown > 0 {
		p.Fprintf(out, "  Unknown:          %d\n", stats.Unknown)
	}
	fmt.Fprintf(out, "  Records end:      0x%x\n", stats.RecordsEnd)
	fmt.Fprintln(out)

	if len(stats.Decoded) > 0 {
		fmt.Fprintln(out, "Item Types:")
		types := make([]model.ItemType, 0, len(stats.Decoded))
		for typ := range stats.Decoded {
			types = append(types, typ)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, typ := range types {
			p.Fprintf(out, "  0x%02x %-16s %d\n", uint32(typ), typ, stats.Decoded[typ])
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Nodes:")
	p.Fprintf(out, "  Entries:          %d\n", stats.NodeCount)
	p.Fprintf(out, "  Registered:       %d\n", len(m.Nodes))
	fmt.Fprintf(out, "  Table end:        0x%x\n", stats.End)
	fmt.Fprintf(out, "  Trailing bytes:   %d\n", stats.Trailing)

	for _, w := range stats.Warnings {
		fmt.Fprintf(out, "\nWarning: %s\n", w)
	}
	return nil
}

// formatBytes renders a buffer size with a binary unit, e.g. "1.5 KiB"
func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	size, prefixes := float64(n)/unit, "KMG"
	i := 0
	for size >= unit && i < len(prefixes)-1 {
		size /= unit
		i++
	}
	return fmt.Sprintf("%.1f %ciB", size, prefixes[i])
}

// dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <sector.base>",
	Short: "Dump the retained items and nodes of a sector",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	dumpCmd.Flags().String("format", "text", "Output format: text, json")
}

func runDump(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	opts, err := sectorOptions(cmd)
	if err != nil {
		return err
	}
	m, _, err := tsmap.ParseSectorFile(inputPath, opts)
	if err != nil {
		return fmt.Errorf("parse sector: %w", err)
	}

	var output io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if format == "json" {
		return writeJSONMap(output, m)
	}
	return tsmap.WriteText(output, m)
}

type jsonItem struct {
	Type  string   `json:"type"`
	Uid   string   `json:"uid"`
	Name  string   `json:"name"`
	Nodes []uint32 `json:"nodes"`
}

type jsonNode struct {
	Uid      uint32     `json:"uid"`
	Position [3]float32 `json:"position"`
	Backward string     `json:"backward,omitempty"`
	Forward  string     `json:"forward,omitempty"`
}

func writeJSONMap(w io.Writer, m *model.Map) error {
	items := make([]jsonItem, 0, m.ItemCount())
	add := func(it model.Item, name model.Token, nodes ...uint32) {
		h := it.Header()
		items = append(items, jsonItem{
			Type:  h.Type.String(),
			Uid:   fmt.Sprintf("0x%x", h.Uid),
			Name:  name.String(),
			Nodes: nodes,
		})
	}
	for _, r := range m.Roads {
		add(r, r.Look, r.StartNode, r.EndNode)
	}
	for _, p := range m.Prefabs {
		add(p, p.Model, p.Nodes...)
	}
	for _, c := range m.Cities {
		add(c, c.Name, c.Node)
	}
	for _, o := range m.MapOverlays {
		add(o, o.Overlay, o.Node)
	}
	for _, f := range m.Ferries {
		add(f, f.Port, f.Node)
	}

	nodes := make([]jsonNode, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		jn := jsonNode{Uid: n.Uid, Position: [3]float32{n.Position.X, n.Position.Y, n.Position.Z}}
		if n.BackwardItemUid != 0 {
			jn.Backward = fmt.Sprintf("0x%x", n.BackwardItemUid)
		}
		if n.ForwardItemUid != 0 {
			jn.Forward = fmt.Sprintf("0x%x", n.ForwardItemUid)
		}
		nodes = append(nodes, jn)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Uid < nodes[j].Uid })

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{
		"items": items,
		"nodes": nodes,
	})
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan <map-dir>",
	Short: "Load every sector of a map directory",
	Long: `Load every sec*.base file of a map directory in parallel and merge
the results into one map. Sectors are merged in coordinate order, so the
first sector holding a node uid wins.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntP("workers", "j", mapper.DefaultConfig().Workers, "Sectors decoded in parallel")
	scanCmd.Flags().Bool("metrics", false, "Print collected metrics after the scan")
}

func runScan(cmd *cobra.Command, args []string) error {
	dir := args[0]
	workers, _ := cmd.Flags().GetInt("workers")
	showMetrics, _ := cmd.Flags().GetBool("metrics")

	opts, err := sectorOptions(cmd)
	if err != nil {
		return err
	}

	cfg := mapper.DefaultConfig()
	cfg.Workers = workers
	cfg.UnknownTags = opts.UnknownTags
	cfg.Catalog = opts.Catalog

	reg := prometheus.NewRegistry()
	metrics := mapper.NewMetrics(reg)

	res, err := tsmap.LoadMap(context.Background(), dir, cfg, metrics, opts.Logger)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}

	p := message.NewPrinter(language.English)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Map: %s\n", filepath.Clean(dir))
	fmt.Fprintln(out, strings.Repeat("=", 50))
	p.Fprintf(out, "Sectors:            %d (%d empty)\n", len(res.Sectors), res.Empty)
	p.Fprintf(out, "Roads:              %d\n", len(res.Map.Roads))
	p.Fprintf(out, "Prefabs:            %d\n", len(res.Map.Prefabs))
	p.Fprintf(out, "Cities:             %d\n", len(res.Map.Cities))
	p.Fprintf(out, "Overlays:           %d\n", len(res.Map.MapOverlays))
	p.Fprintf(out, "Ferries:            %d\n", len(res.Map.Ferries))
	p.Fprintf(out, "Nodes:              %d\n", len(res.Map.Nodes))

	var warnings int
	for _, st := range res.Sectors {
		warnings += len(st.Warnings)
	}
	if warnings > 0 {
		p.Fprintf(out, "Warnings:           %d\n", warnings)
	}

	if showMetrics {
		fmt.Fprintln(out)
		return printMetrics(out, reg)
	}
	return nil
}

// printMetrics writes every gathered sample as name{labels} value
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}

// version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tsmap version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	},
}
