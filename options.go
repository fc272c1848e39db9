package clouds

import "github.com/gogpu/clouds/internal/raster"

// CompareFunc is the depth comparison applied to the pass's far-plane
// fragments against the frame's stored depth.
type CompareFunc = raster.CompareFunc

// Depth comparisons.
const (
	CompareLessEqual = raster.CompareLessEqual
	CompareLess      = raster.CompareLess
	CompareAlways    = raster.CompareAlways
)

// defaultBandHeight is the number of rows per unit of parallel work.
const defaultBandHeight = 16

// Option configures a Renderer during creation.
//
// Example:
//
//	r := clouds.NewRenderer(clouds.WithWorkers(4), clouds.WithBandHeight(8))
type Option func(*options)

type options struct {
	workers      int
	bandHeight   int
	depthCompare CompareFunc
	depthWrite   bool
}

func defaultOptions() options {
	return options{
		workers:      0, // GOMAXPROCS
		bandHeight:   defaultBandHeight,
		depthCompare: CompareLessEqual,
	}
}

// WithWorkers sets the number of rasterization goroutines.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBandHeight sets how many rows each parallel work item covers.
// Values below 1 are treated as 1.
func WithBandHeight(rows int) Option {
	return func(o *options) {
		o.bandHeight = max(rows, 1)
	}
}

// WithDepthCompare sets the depth comparison. The default, LessEqual, lets
// the far-plane pass fill exactly the pixels no opaque geometry covered.
func WithDepthCompare(c CompareFunc) Option {
	return func(o *options) {
		o.depthCompare = c
	}
}

// WithDepthWrite enables writing fragment depth. Off by default.
func WithDepthWrite(enabled bool) Option {
	return func(o *options) {
		o.depthWrite = enabled
	}
}
