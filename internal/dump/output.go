package dump

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Compression selects the encoding of the dump stream.
type Compression string

const (
	// CompressionNone writes plain text.
	CompressionNone Compression = "none"
	// CompressionGzip wraps the stream in gzip.
	CompressionGzip Compression = "gzip"
	// CompressionZstd wraps the stream in zstandard.
	CompressionZstd Compression = "zstd"
)

// CompressionForPath infers a compression from a file extension.
func CompressionForPath(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(path, ".zst"):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type chainedCloser struct {
	io.WriteCloser
	underlying io.Closer
}

func (c chainedCloser) Close() error {
	if err := c.WriteCloser.Close(); err != nil {
		c.underlying.Close()
		return err
	}
	return c.underlying.Close()
}

// OpenOutput opens the dump destination. An empty path means stdout
// (which is never closed). The returned writer must be closed to flush
// any compression frames.
func OpenOutput(path string, compression Compression) (io.WriteCloser, error) {
	var out io.WriteCloser
	if path == "" {
		out = nopCloser{os.Stdout}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		out = f
	}

	switch compression {
	case CompressionNone, "":
		return out, nil
	case CompressionGzip:
		return chainedCloser{gzip.NewWriter(out), out}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(out)
		if err != nil {
			out.Close()
			return nil, err
		}
		return chainedCloser{zw, out}, nil
	default:
		out.Close()
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
}
