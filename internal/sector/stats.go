package sector

import "github.com/dyuri/tsmap/internal/model"

// Stats describes one parse
type Stats struct {
	Path           string
	ItemCount      int                    // Item count from the header
	Decoded        map[model.ItemType]int // Records decoded, per type
	Retained       int                    // Valid items of retained types
	Invalid        int                    // Records that failed validation
	Unknown        int                    // Records with an unknown type tag
	NodeCount      int                    // Entries in the node table
	DuplicateNodes int                    // Nodes dropped on merge
	RecordsEnd     int                    // Cursor after the record loop
	End            int                    // Cursor after the node loop
	Trailing       int                    // Bytes after End
	Stopped        bool                   // Walk stopped at an unknown tag
	Warnings       []string
}

func newStats(path string) *Stats {
	return &Stats{
		Path:    path,
		Decoded: make(map[model.ItemType]int),
	}
}

// DecodedTotal returns the number of records decoded
func (s *Stats) DecodedTotal() int {
	n := 0
	for _, c := range s.Decoded {
		n += c
	}
	return n
}
