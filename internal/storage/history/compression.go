package history

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// Compressor compresses record values before they hit the backend.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NewCompressor returns the compressor for a configured name.
func NewCompressor(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return noCompressor{}, nil
	case "lz4":
		return lz4Compressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression: %s", name)
	}
}

// noCompressor is a pass-through.
type noCompressor struct{}

func (noCompressor) Name() string { return "none" }

func (noCompressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (noCompressor) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// lz4Compressor block-compresses values. A one-byte prefix records whether
// the value was stored compressed, since CompressBlock reports zero bytes
// written for incompressible input. Compressed values carry the uncompressed
// length as a uvarint after the prefix, so decompression allocates exactly
// instead of bounding the compression ratio.
type lz4Compressor struct{}

const (
	lz4Raw   byte = 0
	lz4Block byte = 1
)

func (lz4Compressor) Name() string { return "lz4" }

func (lz4Compressor) Compress(data []byte) ([]byte, error) {
	header := make([]byte, 1+binary.MaxVarintLen64)
	header[0] = lz4Block
	header = header[:1+binary.PutUvarint(header[1:], uint64(len(data)))]

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || len(header)+n >= 1+len(data) {
		out := make([]byte, 1+len(data))
		out[0] = lz4Raw
		copy(out[1:], data)
		return out, nil
	}
	return append(header, compressed[:n]...), nil
}

func (lz4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	body := data[1:]
	if data[0] == lz4Raw {
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	}
	size, read := binary.Uvarint(body)
	if read <= 0 {
		return nil, fmt.Errorf("lz4 decompression failed: truncated length header")
	}
	decompressed := make([]byte, size)
	n, err := lz4.UncompressBlock(body[read:], decompressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	return decompressed[:n], nil
}
