package raster

import "math"

// Point is a window-space position.
// X grows right, Y grows down, pixel (x, y) has its center at (x+0.5, y+0.5).
type Point struct {
	X, Y float64
}

// edgeFunction returns twice the signed area of (a, b, p). It is positive
// when p lies to the left of a→b in window space.
func edgeFunction(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// ownsEdge decides which triangle gets a pixel center lying exactly on the
// edge a→b. Two triangles sharing an edge traverse it in opposite
// directions, so exactly one of them owns it.
func ownsEdge(a, b Point) bool {
	dy := b.Y - a.Y
	return dy > 0 || (dy == 0 && b.X < a.X)
}

// ToWindow maps a clip-space position to window coordinates and NDC depth.
// ok is false for w <= 0; such vertices are behind the eye and the pipeline
// does no clipping.
func ToWindow(clip [4]float32, width, height int) (p Point, z float64, ok bool) {
	w := float64(clip[3])
	if !(w > 0) {
		return Point{}, 0, false
	}
	nx := float64(clip[0]) / w
	ny := float64(clip[1]) / w
	return Point{
		X: (nx + 1) / 2 * float64(width),
		Y: (1 - ny) / 2 * float64(height),
	}, float64(clip[2]) / w, true
}

// triangleSetup holds a counter-clockwise (in window space) triangle ready
// to scan.
type triangleSetup struct {
	p       [3]Point
	z       [3]float64
	varying [3][3]float64
	area    float64
	owns    [3]bool
	minX    int
	maxX    int
	minY    int
	maxY    int
}

func setup(tri *Triangle, width, height int) (triangleSetup, bool) {
	var s triangleSetup
	for i := range tri {
		p, z, ok := ToWindow(tri[i].Position, width, height)
		if !ok {
			return s, false
		}
		s.p[i] = p
		s.z[i] = z
		for k := range 3 {
			s.varying[i][k] = float64(tri[i].Varying[k])
		}
	}

	s.area = edgeFunction(s.p[0], s.p[1], s.p[2])
	if s.area == 0 || math.IsNaN(s.area) {
		return s, false
	}
	if s.area < 0 {
		s.p[1], s.p[2] = s.p[2], s.p[1]
		s.z[1], s.z[2] = s.z[2], s.z[1]
		s.varying[1], s.varying[2] = s.varying[2], s.varying[1]
		s.area = -s.area
	}

	// owns[i] refers to the edge opposite vertex i.
	s.owns[0] = ownsEdge(s.p[1], s.p[2])
	s.owns[1] = ownsEdge(s.p[2], s.p[0])
	s.owns[2] = ownsEdge(s.p[0], s.p[1])

	lx := min(s.p[0].X, s.p[1].X, s.p[2].X)
	hx := max(s.p[0].X, s.p[1].X, s.p[2].X)
	ly := min(s.p[0].Y, s.p[1].Y, s.p[2].Y)
	hy := max(s.p[0].Y, s.p[1].Y, s.p[2].Y)

	// Pixel centers inside [lo, hi] satisfy lo <= x+0.5 <= hi.
	s.minX = max(int(math.Ceil(lx-0.5)), 0)
	s.maxX = min(int(math.Floor(hx-0.5)), width-1)
	s.minY = max(int(math.Ceil(ly-0.5)), 0)
	s.maxY = min(int(math.Floor(hy-0.5)), height-1)
	if s.minX > s.maxX || s.minY > s.maxY {
		return s, false
	}
	return s, true
}

func (s *triangleSetup) covers(w [3]float64) bool {
	for i := range w {
		if w[i] < 0 || (w[i] == 0 && !s.owns[i]) {
			return false
		}
	}
	return true
}

// interpolate blends three values with barycentric weights l1 and l2
// relative to the first vertex. Equal inputs produce that exact value.
func interpolate(a, b, c, l1, l2 float64) float64 {
	return a + l1*(b-a) + l2*(c-a)
}

func (s *triangleSetup) draw(t *Target, y0, y1 int, st State, fs FragmentFunc) {
	rowStart := max(s.minY, y0)
	rowEnd := min(s.maxY, y1-1)

	for y := rowStart; y <= rowEnd; y++ {
		py := float64(y) + 0.5
		for x := s.minX; x <= s.maxX; x++ {
			p := Point{X: float64(x) + 0.5, Y: py}
			w := [3]float64{
				edgeFunction(s.p[1], s.p[2], p),
				edgeFunction(s.p[2], s.p[0], p),
				edgeFunction(s.p[0], s.p[1], p),
			}
			if !s.covers(w) {
				continue
			}

			l1 := w[1] / s.area
			l2 := w[2] / s.area

			idx := y*t.Width + x
			z := float32(interpolate(s.z[0], s.z[1], s.z[2], l1, l2))
			if !st.DepthCompare.Passes(z, t.Depth[idx]) {
				continue
			}

			var varying [3]float32
			for k := range varying {
				varying[k] = float32(interpolate(s.varying[0][k], s.varying[1][k], s.varying[2][k], l1, l2))
			}

			c := fs(x, y, varying)
			copy(t.Color[idx*4:idx*4+4], c[:])
			if st.DepthWrite {
				t.Depth[idx] = z
			}
		}
	}
}
