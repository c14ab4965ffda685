package sector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/anchore/go-lzo"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compressed sector file extensions
const (
	ExtZstd = ".zst"
	ExtLZ4  = ".lz4"
	ExtXZ   = ".xz"
	ExtLZO  = ".lzo"
)

// maxSectorSize caps the decompressed length of a sector
const maxSectorSize = 1 << 30

// zstdDecoderPool reuses decoders across sectors; a warmed-up decoder
// decodes without allocating.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxSectorSize))
		if err != nil {
			panic(fmt.Sprintf("create zstd decoder: %v", err))
		}
		return dec
	},
}

// decompress inflates data when name carries a compression extension
func decompress(name string, data []byte) ([]byte, error) {
	return decompressLimit(name, data, maxSectorSize)
}

// decompressLimit is decompress with output capped at limit bytes
func decompressLimit(name string, data []byte, limit int) ([]byte, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ExtZstd:
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		if len(out) > limit {
			return nil, fmt.Errorf("zstd: %w: more than %d bytes", ErrTooLarge, limit)
		}
		return out, nil
	case ExtLZ4:
		out, err := readLimited(lz4.NewReader(bytes.NewReader(data)), limit)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		return out, nil
	case ExtXZ:
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		out, err := readLimited(r, limit)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return out, nil
	case ExtLZO:
		out, err := decompressLZO(data, limit)
		if err != nil {
			return nil, fmt.Errorf("lzo: %w", err)
		}
		return out, nil
	default:
		return data, nil
	}
}

// readLimited reads r to the end, failing once more than limit bytes come out
func readLimited(r io.Reader, limit int) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return out, nil
}

// TrimCompressionExt strips a known compression extension from name
func TrimCompressionExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ExtZstd, ExtLZ4, ExtXZ, ExtLZO:
		return name[:len(name)-len(path.Ext(name))]
	}
	return name
}

// decompressLZO inflates a raw LZO1X block prefixed with its decompressed
// length as a little-endian uint32
func decompressLZO(data []byte, limit int) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("missing length prefix")
	}
	size := binary.LittleEndian.Uint32(data)
	if uint64(size) > uint64(limit) {
		return nil, fmt.Errorf("%w: declared size %d", ErrTooLarge, size)
	}
	out := make([]byte, size)
	n, err := lzo.Decompress(data[4:], out)
	if err != nil {
		return nil, err
	}
	if n != int(size) {
		return nil, fmt.Errorf("decompressed %d bytes, header says %d", n, size)
	}
	return out, nil
}
