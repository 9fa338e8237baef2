package scenery

import (
	"fmt"

	"github.com/tanema/gween/ease"
)

// PathID addresses a triangulated path in the scene-wide registry.
// IDs are sequential integers assigned by Register.
type PathID int

// PathKeyframe is one keyframe of a possibly animated path: the flattened
// outline positions as [x0, y0, x1, y1, ...]. Topology (vertex count and
// triangle indices) must match across keyframes.
type PathKeyframe struct {
	Time      float64
	Positions []float64
}

// PathResource is a triangulated, possibly keyframed path. The triangle
// index list is shared by all keyframes; per-segment easing interpolates
// positions component-wise.
type PathResource struct {
	Keyframes []PathKeyframe
	Indices   []uint16
	easing    []ease.TweenFunc // per segment, len = len(Keyframes)-1
}

// VertexCount returns the number of outline vertices.
func (p *PathResource) VertexCount() int {
	if len(p.Keyframes) == 0 {
		return 0
	}
	return len(p.Keyframes[0].Positions) / 2
}

// Static reports whether the path has a single keyframe.
func (p *PathResource) Static() bool {
	return len(p.Keyframes) <= 1
}

// SamplePositions interpolates the outline at frame into out, which is
// resized (reusing capacity) to VertexCount()*2 floats. Frames before the
// first and after the last keyframe clamp. The returned slice aliases out's
// backing array; steady-state calls do not allocate.
func (p *PathResource) SamplePositions(frame float64, out []float64) []float64 {
	n := len(p.Keyframes[0].Positions)
	if cap(out) < n {
		out = make([]float64, n)
	}
	out = out[:n]

	kfs := p.Keyframes
	if len(kfs) == 1 || frame <= kfs[0].Time {
		copy(out, kfs[0].Positions)
		return out
	}
	last := len(kfs) - 1
	if frame >= kfs[last].Time {
		copy(out, kfs[last].Positions)
		return out
	}
	i := segmentIndex(len(kfs), frame, func(j int) float64 { return kfs[j].Time })
	a, b := kfs[i], kfs[i+1]
	dur := b.Time - a.Time
	if dur <= 0 {
		copy(out, b.Positions)
		return out
	}
	fn := p.easing[i]
	t := float32(frame - a.Time)
	d := float32(dur)
	for c := 0; c < n; c++ {
		out[c] = float64(fn(t, float32(a.Positions[c]), float32(b.Positions[c]-a.Positions[c]), d))
	}
	return out
}

// buildPathResource flattens and triangulates one outline per keyframe.
// All keyframes must flatten to the same vertex count; triangulation runs on
// the first keyframe and the topology is shared.
func buildPathResource(outlines []BezierOutline, times []float64, eases []EaseDesc) (*PathResource, error) {
	if len(outlines) == 0 {
		return nil, fmt.Errorf("path has no keyframes")
	}
	res := &PathResource{Keyframes: make([]PathKeyframe, len(outlines))}
	var vertexCount int
	var scratch []Vec2
	for i := range outlines {
		scratch = outlines[i].Flatten(scratch[:0])
		if i == 0 {
			vertexCount = len(scratch)
			if vertexCount < 3 {
				return nil, fmt.Errorf("path outline has %d vertices, need at least 3", vertexCount)
			}
			res.Indices = triangulate(scratch)
			if res.Indices == nil {
				return nil, fmt.Errorf("path outline could not be triangulated")
			}
		} else if len(scratch) != vertexCount {
			return nil, fmt.Errorf("path topology mismatch: keyframe %d has %d vertices, keyframe 0 has %d",
				i, len(scratch), vertexCount)
		}
		positions := make([]float64, vertexCount*2)
		for v, p := range scratch {
			positions[v*2] = p.X
			positions[v*2+1] = p.Y
		}
		t := 0.0
		if i < len(times) {
			t = times[i]
		}
		res.Keyframes[i] = PathKeyframe{Time: t, Positions: positions}
	}
	if len(res.Keyframes) > 1 {
		res.easing = make([]ease.TweenFunc, len(res.Keyframes)-1)
		for i := range res.easing {
			desc := LinearEase
			if i < len(eases) {
				desc = eases[i]
			}
			res.easing[i] = desc.Func()
		}
	}
	return res, nil
}

// PathRegistry is the scene-wide table of triangulated paths. It is
// append-only during compilation and read-only afterwards; IDs are globally
// unique across all animations in a scene, and variant switching never
// re-registers paths.
type PathRegistry struct {
	paths []*PathResource
}

// NewPathRegistry returns an empty registry.
func NewPathRegistry() *PathRegistry {
	return &PathRegistry{}
}

// Register appends a path resource and returns its ID.
// Panics if res is nil — registering a nil path is a programming error.
func (r *PathRegistry) Register(res *PathResource) PathID {
	if res == nil {
		panic("scenery: cannot register nil path resource")
	}
	r.paths = append(r.paths, res)
	return PathID(len(r.paths) - 1)
}

// Lookup returns the path resource for id, or nil if the id was never
// registered.
func (r *PathRegistry) Lookup(id PathID) *PathResource {
	if id < 0 || int(id) >= len(r.paths) {
		return nil
	}
	return r.paths[id]
}

// Len returns the number of registered paths.
func (r *PathRegistry) Len() int {
	return len(r.paths)
}
