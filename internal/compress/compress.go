package compress

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/ranger/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const (
	Gzip = "gzip"
	Zstd = "zstd"

	DefaultThreshold = 10240
)

var extensions = map[string]string{
	Gzip: ".gz",
	Zstd: ".zst",
}

// skipped are never compressed: maps are only fetched by devtools and the
// rest are already compressed.
var skipped = map[string]bool{
	".map":   true,
	".gz":    true,
	".zst":   true,
	".br":    true,
	".png":   true,
	".jpg":   true,
	".jpeg":  true,
	".gif":   true,
	".webp":  true,
	".woff":  true,
	".woff2": true,
}

type Options struct {
	Algorithm string
	// Threshold is the minimum file size in bytes, 0 means DefaultThreshold.
	Threshold    int64
	DeleteOrigin bool
	Verbose      bool
	Logger       zerolog.Logger
}

// File describes one compressed copy.
type File struct {
	Path           string
	Size           int64
	CompressedSize int64
}

// Compress writes a compressed copy next to every large enough file under dir.
// Results are sorted by path.
func Compress(ctx context.Context, dir string, opts Options) ([]File, error) {
	ext, ok := extensions[opts.Algorithm]
	if !ok {
		return nil, fmt.Errorf("unknown compression algorithm %q", opts.Algorithm)
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var candidates []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || skipped[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() >= threshold {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	results := make([]File, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			size, compressed, err := compressFile(path, path+ext, opts.Algorithm)
			if err != nil {
				return fmt.Errorf("failed to compress %s: %w", path, err)
			}

			if opts.DeleteOrigin {
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to remove %s: %w", path, err)
				}
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			results[i] = File{Path: filepath.ToSlash(rel) + ext, Size: size, CompressedSize: compressed}

			telemetry.GetMetrics().CompressedBytesTotal.Add(ctx, compressed,
				metric.WithAttributes(attribute.String("algorithm", opts.Algorithm)))

			if opts.Verbose {
				opts.Logger.Info().
					Str("file", results[i].Path).
					Int64("size", size).
					Int64("compressed", compressed).
					Msg("Compressed file")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func compressFile(src, dst, algorithm string) (int64, int64, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, 0, err
	}

	var buf bytes.Buffer
	if err := encode(&buf, data, algorithm); err != nil {
		return 0, 0, err
	}

	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil { //nolint:gosec // build output is served publicly
		return 0, 0, err
	}
	return int64(len(data)), int64(buf.Len()), nil
}

func encode(w io.Writer, data []byte, algorithm string) error {
	var enc io.WriteCloser
	switch algorithm {
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return err
		}
		enc = zw
	default:
		zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return err
		}
		enc = zw
	}

	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// GzipSize returns the gzip compressed size of data, used for size reports.
func GzipSize(data []byte) (int64, error) {
	var buf bytes.Buffer
	if err := encode(&buf, data, Gzip); err != nil {
		return 0, err
	}
	return int64(buf.Len()), nil
}
