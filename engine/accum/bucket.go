package accum

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Tile is one bucket of the output image, in pixels.
type Tile struct {
	// X, Y is the tile origin in the full image.
	X, Y int

	// Width, Height is the tile extent; edge tiles may be smaller than the
	// configured tile size.
	Width, Height int
}

// Tiles subdivides an image into fixed-size buckets in raster order: left to
// right, top to bottom. The order is deterministic so repeated exports of the
// same scene render identically.
//
// Parameters:
//   - width: the image width in pixels
//   - height: the image height in pixels
//   - tileSize: the bucket edge length in pixels
//
// Returns:
//   - []Tile: the buckets in raster order
func Tiles(width, height, tileSize int) []Tile {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return nil
	}
	var tiles []Tile
	for y := 0; y < height; y += tileSize {
		th := tileSize
		if y+th > height {
			th = height - y
		}
		for x := 0; x < width; x += tileSize {
			tw := tileSize
			if x+tw > width {
				tw = width - x
			}
			tiles = append(tiles, Tile{X: x, Y: y, Width: tw, Height: th})
		}
	}
	return tiles
}

// TileRenderFunc renders one bucket to full convergence and returns its RGBA
// pixels, row-major, len = Width*Height*4. The sample count to converge to is
// the renderer's configured threshold.
type TileRenderFunc func(tile Tile, samples uint64) ([]byte, error)

// bucketRendererImpl is the implementation of the BucketRenderer interface.
type bucketRendererImpl struct {
	tileSize int
	samples  uint64
	workers  int

	// pool manages a bounded set of reusable goroutines for stitching finished
	// buckets into the output buffer; idle workers time out between exports.
	pool worker.DynamicWorkerPool
}

// BucketRenderer drives tiled export at resolutions larger than one viewport:
// each bucket is rendered and fully converged before the next one starts, and
// finished buckets are stitched into the output buffer off the render path.
type BucketRenderer interface {
	// Render produces the full image. Buckets are rendered sequentially in
	// raster order (the GPU render path is single-threaded); pixel assembly
	// into the output buffer runs on a worker pool. A render failure or an
	// output buffer that cannot be allocated is returned as an error without
	// touching any interactive render state.
	//
	// Parameters:
	//   - width: the output width in pixels
	//   - height: the output height in pixels
	//   - render: the per-bucket render callback
	//
	// Returns:
	//   - []byte: the assembled RGBA image, row-major
	//   - error: if any bucket fails or the dimensions are unusable
	Render(width, height int, render TileRenderFunc) ([]byte, error)
}

var _ BucketRenderer = &bucketRendererImpl{}

// maxExportPixels bounds output allocations; beyond this the buffer itself
// risks exhausting memory before any bucket renders.
const maxExportPixels = 1 << 30

// NewBucketRenderer creates a BucketRenderer.
//
// Parameters:
//   - options: functional options to configure the renderer
//
// Returns:
//   - BucketRenderer: the newly created renderer
func NewBucketRenderer(options ...BucketRendererBuilderOption) BucketRenderer {
	b := &bucketRendererImpl{
		tileSize: 256,
		samples:  256,
		workers:  runtime.NumCPU(),
	}
	for _, option := range options {
		option(b)
	}
	b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	return b
}

func (b *bucketRendererImpl) Render(width, height int, render TileRenderFunc) ([]byte, error) {
	if render == nil {
		return nil, fmt.Errorf("bucket render: no render callback")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bucket render: invalid dimensions %dx%d", width, height)
	}
	if width > maxExportPixels/height {
		return nil, fmt.Errorf("bucket render: %dx%d exceeds the export pixel budget", width, height)
	}
	out := make([]byte, width*height*4)

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	for i, tile := range Tiles(width, height, b.tileSize) {
		pixels, err := render(tile, b.samples)
		if err != nil {
			errMu.Lock()
			firstErr = fmt.Errorf("bucket %d at (%d,%d): %w", i, tile.X, tile.Y, err)
			errMu.Unlock()
			break
		}
		if len(pixels) != tile.Width*tile.Height*4 {
			errMu.Lock()
			firstErr = fmt.Errorf("bucket %d at (%d,%d): got %d bytes, want %d",
				i, tile.X, tile.Y, len(pixels), tile.Width*tile.Height*4)
			errMu.Unlock()
			break
		}

		t := tile
		px := pixels
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				for row := 0; row < t.Height; row++ {
					src := px[row*t.Width*4 : (row+1)*t.Width*4]
					dstOff := ((t.Y+row)*width + t.X) * 4
					n := copy(out[dstOff:dstOff+t.Width*4], src)
					if n != t.Width*4 {
						errMu.Lock()
						if firstErr == nil {
							firstErr = fmt.Errorf("bucket %s: short copy at row %d", t, row)
						}
						errMu.Unlock()
						return nil, nil
					}
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// String formats the tile for diagnostics.
func (t Tile) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", t.Width, t.Height, t.X, t.Y)
}
