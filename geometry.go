package scenery

import "math"

// BezierOutline is a single closed or open cubic Bézier contour in the
// Lottie vertex/tangent form: Vertices are on-curve points, OutTangents[i]
// and InTangents[j] are control-point offsets relative to their vertex for
// the segment from vertex i to vertex j.
type BezierOutline struct {
	Vertices    []Vec2
	InTangents  []Vec2
	OutTangents []Vec2
	Closed      bool
}

// flattenTolerance is the maximum deviation (in animation units) between a
// cubic segment and its polyline approximation.
const flattenTolerance = 0.25

// Flatten appends the outline's polyline approximation to dst and returns
// the extended slice. Adaptive subdivision: each cubic is split until its
// control points are within flattenTolerance of the chord.
func (o *BezierOutline) Flatten(dst []Vec2) []Vec2 {
	n := len(o.Vertices)
	if n == 0 {
		return dst
	}
	dst = append(dst, o.Vertices[0])
	segs := n - 1
	if o.Closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		j := (i + 1) % n
		p0 := o.Vertices[i]
		p3 := o.Vertices[j]
		c1 := Vec2{p0.X + o.OutTangents[i].X, p0.Y + o.OutTangents[i].Y}
		c2 := Vec2{p3.X + o.InTangents[j].X, p3.Y + o.InTangents[j].Y}
		dst = flattenCubic(dst, p0, c1, c2, p3, 0)
	}
	// Drop the duplicated closing vertex so the polygon is not degenerate.
	if o.Closed && len(dst) > 1 {
		last := dst[len(dst)-1]
		if nearlyEqual(last.X, dst[0].X) && nearlyEqual(last.Y, dst[0].Y) {
			dst = dst[:len(dst)-1]
		}
	}
	return dst
}

// maxCubicDepth bounds subdivision recursion; 2^16 segments per cubic is far
// beyond any tolerance the engine uses.
const maxCubicDepth = 16

// flattenCubic appends the polyline for one cubic segment (excluding p0,
// including p3).
func flattenCubic(dst []Vec2, p0, c1, c2, p3 Vec2, depth int) []Vec2 {
	if depth >= maxCubicDepth || cubicIsFlat(p0, c1, c2, p3) {
		return append(dst, p3)
	}
	// De Casteljau split at t = 0.5.
	ab := midpoint(p0, c1)
	bc := midpoint(c1, c2)
	cd := midpoint(c2, p3)
	abc := midpoint(ab, bc)
	bcd := midpoint(bc, cd)
	mid := midpoint(abc, bcd)
	dst = flattenCubic(dst, p0, ab, abc, mid, depth+1)
	return flattenCubic(dst, mid, bcd, cd, p3, depth+1)
}

// cubicIsFlat reports whether both control points lie within
// flattenTolerance of the chord p0-p3.
func cubicIsFlat(p0, c1, c2, p3 Vec2) bool {
	return pointLineDistSq(c1, p0, p3) <= flattenTolerance*flattenTolerance &&
		pointLineDistSq(c2, p0, p3) <= flattenTolerance*flattenTolerance
}

// pointLineDistSq is the squared distance from p to the (infinite) line
// through a and b. Degenerate chords fall back to point distance.
func pointLineDistSq(p, a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		px := p.X - a.X
		py := p.Y - a.Y
		return px*px + py*py
	}
	cross := dx*(p.Y-a.Y) - dy*(p.X-a.X)
	return cross * cross / lenSq
}

func midpoint(a, b Vec2) Vec2 {
	return Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- Ear clipping ---

// triangulate computes a triangle index list for a simple polygon using
// ear clipping. Returns nil if the polygon has fewer than 3 vertices or no
// ear can be clipped (self-intersecting input).
func triangulate(points []Vec2) []uint16 {
	n := len(points)
	if n < 3 {
		return nil
	}

	indices := make([]uint16, 0, (n-2)*3)
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	ccw := signedArea(points) < 0 // Y-down: negative signed area = CCW on screen

	for len(remaining) > 3 {
		clipped := false
		for i := 0; i < len(remaining); i++ {
			prev := remaining[(i+len(remaining)-1)%len(remaining)]
			cur := remaining[i]
			next := remaining[(i+1)%len(remaining)]
			if !isEar(points, remaining, prev, cur, next, ccw) {
				continue
			}
			indices = append(indices, uint16(prev), uint16(cur), uint16(next))
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Self-intersecting or degenerate outline.
			return nil
		}
	}
	indices = append(indices, uint16(remaining[0]), uint16(remaining[1]), uint16(remaining[2]))
	return indices
}

// signedArea computes twice the signed area of the polygon (shoelace).
func signedArea(points []Vec2) float64 {
	var sum float64
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum
}

// isEar reports whether the triangle (prev, cur, next) is a clippable ear:
// convex in the polygon's winding and containing no other remaining vertex.
func isEar(points []Vec2, remaining []int, prev, cur, next int, ccw bool) bool {
	a := points[prev]
	b := points[cur]
	c := points[next]
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if ccw {
		if cross >= 0 {
			return false
		}
	} else {
		if cross <= 0 {
			return false
		}
	}
	for _, idx := range remaining {
		if idx == prev || idx == cur || idx == next {
			continue
		}
		if pointInTriangle(points[idx], a, b, c) {
			return false
		}
	}
	return true
}

// pointInTriangle uses barycentric sign tests; points exactly on an edge are
// considered inside (conservative for ear rejection).
func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := triSign(p, a, b)
	d2 := triSign(p, b, c)
	d3 := triSign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func triSign(p, a, b Vec2) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}

// --- Even-odd point containment ---

// pointInPolygonEvenOdd classifies (x, y) against a flattened outline using
// the even-odd fill rule (ray crossing toward +X).
func pointInPolygonEvenOdd(points []Vec2, x, y float64) bool {
	inside := false
	n := len(points)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		yi := points[i].Y
		yj := points[j].Y
		if (yi > y) != (yj > y) {
			xCross := points[j].X + (y-yj)/(yi-yj)*(points[i].X-points[j].X)
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// --- Stroke expansion ---

// expandPolyline builds a ribbon mesh of the given width along a polyline,
// miter-joined with a 2x extension clamp. For N points: 2N positions,
// 6(N-1) indices (6N when closed). Round caps/joins are approximated by the miter ribbon;
// widths are small relative to canvas size in matte-source strokes.
func expandPolyline(points []Vec2, width float64, closed bool) ([]Vec2, []uint16) {
	n := len(points)
	if n < 2 {
		return nil, nil
	}
	halfW := width / 2
	positions := make([]Vec2, n*2)
	for i := 0; i < n; i++ {
		var nx, ny float64
		switch {
		case !closed && i == 0:
			nx, ny = segmentNormal(points[0], points[1])
		case !closed && i == n-1:
			nx, ny = segmentNormal(points[n-2], points[n-1])
		default:
			pi := (i + n - 1) % n
			ni := (i + 1) % n
			nx0, ny0 := segmentNormal(points[pi], points[i])
			nx1, ny1 := segmentNormal(points[i], points[ni])
			nx, ny = nx0+nx1, ny0+ny1
			ln := math.Sqrt(nx*nx + ny*ny)
			if ln > 1e-10 {
				nx /= ln
				ny /= ln
			}
			dot := nx0*nx + ny0*ny
			if dot > 0.1 {
				scale := 1.0 / dot
				if scale > 2.0 {
					scale = 2.0
				}
				nx *= scale
				ny *= scale
			}
		}
		positions[i*2] = Vec2{points[i].X + nx*halfW, points[i].Y + ny*halfW}
		positions[i*2+1] = Vec2{points[i].X - nx*halfW, points[i].Y - ny*halfW}
	}

	segs := n - 1
	if closed {
		segs = n
	}
	indices := make([]uint16, 0, segs*6)
	for i := 0; i < segs; i++ {
		v := uint16(i * 2)
		w := uint16(((i + 1) % n) * 2)
		indices = append(indices, v, v+1, w, v+1, w+1, w)
	}
	return positions, indices
}

// segmentNormal returns the unit left-perpendicular of the segment a→b.
func segmentNormal(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}
