// Package raster rasterizes clip-space triangles carrying one vec3 varying,
// the way a fixed-function pipeline does between a vertex and a fragment
// stage.
package raster

// Vertex is a vertex-stage result in clip space.
type Vertex struct {
	// Position is the clip-space position (x, y, z, w).
	Position [4]float32
	// Varying is interpolated across the triangle.
	Varying [3]float32
}

// Triangle is three assembled vertices.
type Triangle [3]Vertex

// FragmentFunc shades one covered pixel. x and y are the pixel's integer
// coordinates; varying is the linearly interpolated vertex varying.
type FragmentFunc func(x, y int, varying [3]float32) [4]float32

// CompareFunc is a depth comparison.
type CompareFunc int

const (
	// CompareLessEqual passes when the fragment depth is <= the stored depth.
	CompareLessEqual CompareFunc = iota
	// CompareLess passes when the fragment depth is < the stored depth.
	CompareLess
	// CompareAlways always passes.
	CompareAlways
)

// String returns the comparison's name.
func (c CompareFunc) String() string {
	switch c {
	case CompareLessEqual:
		return "less-equal"
	case CompareLess:
		return "less"
	case CompareAlways:
		return "always"
	default:
		return "unknown"
	}
}

// Passes reports whether a fragment at depth z survives against stored.
func (c CompareFunc) Passes(z, stored float32) bool {
	switch c {
	case CompareLess:
		return z < stored
	case CompareAlways:
		return true
	default:
		return z <= stored
	}
}

// State is the fixed-function state for a draw.
type State struct {
	DepthCompare CompareFunc
	DepthWrite   bool
}

// Target is the color and depth storage a draw writes into.
// Color holds 4 float32 per pixel (RGBA), Depth one float32 per pixel.
type Target struct {
	Width, Height int
	Color         []float32
	Depth         []float32
}

// DrawBand rasterizes triangles into rows [y0, y1) of t. Triangles are
// processed in order, so a pixel touched by several triangles ends up with
// the result of the last one that passes the depth test. Bands covering
// disjoint rows never touch the same memory and may run concurrently.
func DrawBand(t *Target, tris []Triangle, y0, y1 int, st State, fs FragmentFunc) {
	y0 = max(y0, 0)
	y1 = min(y1, t.Height)
	if y0 >= y1 {
		return
	}
	for i := range tris {
		if s, ok := setup(&tris[i], t.Width, t.Height); ok {
			s.draw(t, y0, y1, st, fs)
		}
	}
}

// Draw rasterizes every row of t on the calling goroutine.
func Draw(t *Target, tris []Triangle, st State, fs FragmentFunc) {
	DrawBand(t, tris, 0, t.Height, st, fs)
}

// Bands splits height rows into chunks of at most rows each, returned as
// [y0, y1) pairs.
func Bands(height, rows int) [][2]int {
	if rows <= 0 {
		rows = 1
	}
	bands := make([][2]int, 0, (height+rows-1)/rows)
	for y := 0; y < height; y += rows {
		bands = append(bands, [2]int{y, min(y+rows, height)})
	}
	return bands
}
