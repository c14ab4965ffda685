package sector

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Coord is the grid position of a sector
type Coord struct {
	X int
	Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("sec%+05d%+05d", c.X, c.Z)
}

// FileName returns the base file name of the sector at c
func (c Coord) FileName() string {
	return c.String() + ".base"
}

// ParseName extracts grid coordinates from a file name such as
// "sec+0001-0002.base" or "sec-0010+0003.base.zst". Directories are ignored.
func ParseName(name string) (Coord, error) {
	base := TrimCompressionExt(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if !strings.HasPrefix(base, "sec") || !strings.HasSuffix(base, ".base") {
		return Coord{}, fmt.Errorf("sector name %q: want secXXXXXZZZZZ.base", name)
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(base, "sec"), ".base")
	if len(digits) != 10 {
		return Coord{}, fmt.Errorf("sector name %q: want 10 coordinate characters", name)
	}

	x, err := parseCoord(digits[:5])
	if err != nil {
		return Coord{}, fmt.Errorf("sector name %q: x: %w", name, err)
	}
	z, err := parseCoord(digits[5:])
	if err != nil {
		return Coord{}, fmt.Errorf("sector name %q: z: %w", name, err)
	}
	return Coord{X: x, Z: z}, nil
}

func parseCoord(s string) (int, error) {
	if s[0] != '+' && s[0] != '-' {
		return 0, fmt.Errorf("missing sign in %q", s)
	}
	return strconv.Atoi(s)
}
