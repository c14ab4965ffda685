package mapper

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/dyuri/tsmap/internal/sector"
)

// SectorFiles lists the sector files in dir, ordered by grid coordinate
// (X, then Z). When a sector exists in several encodings the uncompressed
// file wins, then the first compressed one in name order.
func SectorFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read sector directory: %w", err)
	}

	type found struct {
		coord sector.Coord
		name  string
	}
	byCoord := make(map[sector.Coord]found)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		c, err := sector.ParseName(e.Name())
		if err != nil {
			continue
		}
		if prev, ok := byCoord[c]; ok && !preferred(e.Name(), prev.name) {
			continue
		}
		byCoord[c] = found{coord: c, name: e.Name()}
	}

	list := make([]found, 0, len(byCoord))
	for _, f := range byCoord {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].coord.X != list[j].coord.X {
			return list[i].coord.X < list[j].coord.X
		}
		return list[i].coord.Z < list[j].coord.Z
	})

	names := make([]string, len(list))
	for i, f := range list {
		names[i] = path.Join(dir, f.name)
	}
	return names, nil
}

// preferred reports whether sector file a should replace b
func preferred(a, b string) bool {
	aPlain := a == sector.TrimCompressionExt(a)
	bPlain := b == sector.TrimCompressionExt(b)
	if aPlain != bPlain {
		return aPlain
	}
	return a < b
}
