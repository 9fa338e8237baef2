package scenery

import (
	"github.com/tanema/gween/ease"
)

// EaseDesc describes the easing of one keyframe segment: either a hold
// (step) or a cubic Bézier timing curve through (0,0), (OutX,OutY),
// (InX,InY), (1,1) in normalized segment space.
type EaseDesc struct {
	Hold                 bool
	OutX, OutY, InX, InY float64
}

// LinearEase is the descriptor for a straight-line segment.
var LinearEase = EaseDesc{OutX: 1.0 / 3, OutY: 1.0 / 3, InX: 2.0 / 3, InY: 2.0 / 3}

// Func compiles the descriptor into a gween easing function.
func (e EaseDesc) Func() ease.TweenFunc {
	if e.Hold {
		return holdEase
	}
	// A Bézier whose control points lie on the diagonal is linear; skip the
	// solver entirely.
	if e.OutX == e.OutY && e.InX == e.InY {
		return ease.Linear
	}
	return cubicBezierEase(e.OutX, e.OutY, e.InX, e.InY)
}

// holdEase keeps the segment's start value for its entire duration. The
// sampler's inclusive-left / exclusive-right segment selection makes the
// next keyframe's value win at the exact boundary frame.
func holdEase(t, b, c, d float32) float32 {
	return b
}

// cubicBezierEase builds a gween easing function from a CSS-style timing
// curve through (0,0), (x1,y1), (x2,y2), (1,1). The curve's x axis is
// normalized time, its y axis the normalized value.
func cubicBezierEase(x1, y1, x2, y2 float64) ease.TweenFunc {
	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		u := float64(t) / float64(d)
		if u <= 0 {
			return b
		}
		if u >= 1 {
			return b + c
		}
		s := solveBezierParam(u, x1, x2)
		y := bezierComponent(s, y1, y2)
		return b + c*float32(y)
	}
}

// bezierComponent evaluates one axis of the unit cubic Bézier
// (0, p1, p2, 1) at parameter s.
func bezierComponent(s, p1, p2 float64) float64 {
	inv := 1 - s
	return 3*inv*inv*s*p1 + 3*inv*s*s*p2 + s*s*s
}

// solveBezierParam finds s such that x(s) = target, Newton first with a
// bisection fallback for flat derivatives.
func solveBezierParam(target, x1, x2 float64) float64 {
	s := target
	for i := 0; i < 8; i++ {
		x := bezierComponent(s, x1, x2) - target
		if x < 1e-7 && x > -1e-7 {
			return s
		}
		// dx/ds of the unit cubic.
		inv := 1 - s
		d := 3*inv*inv*x1 + 6*inv*s*(x2-x1) + 3*s*s*(1-x2)
		if d < 1e-6 && d > -1e-6 {
			break
		}
		s -= x / d
		if s < 0 {
			s = 0
		} else if s > 1 {
			s = 1
		}
	}
	// Bisection fallback.
	lo, hi := 0.0, 1.0
	for i := 0; i < 32; i++ {
		s = (lo + hi) / 2
		if bezierComponent(s, x1, x2) < target {
			lo = s
		} else {
			hi = s
		}
	}
	return s
}

// --- Scalar track ---

// ScalarKeyframe is one keyframe of a 1D track. Ease describes the segment
// leaving this keyframe.
type ScalarKeyframe struct {
	Time  float64
	Value float64
	Ease  EaseDesc
	fn    ease.TweenFunc
}

// ScalarTrack is a 1D animated property: either a static value or a
// keyframed sequence.
type ScalarTrack struct {
	Static    bool
	Value     float64
	Keyframes []ScalarKeyframe
}

// StaticScalar returns a track holding a constant value.
func StaticScalar(v float64) ScalarTrack {
	return ScalarTrack{Static: true, Value: v}
}

// compile resolves each segment's easing function once so sampling never
// allocates.
func (tr *ScalarTrack) compile() {
	for i := range tr.Keyframes {
		tr.Keyframes[i].fn = tr.Keyframes[i].Ease.Func()
	}
}

// Sample evaluates the track at frame, clamping before the first and after
// the last keyframe. Segment selection is inclusive-left / exclusive-right:
// at an exact boundary frame the later segment's start value wins.
func (tr *ScalarTrack) Sample(frame float64) float64 {
	if tr.Static || len(tr.Keyframes) == 0 {
		return tr.Value
	}
	kfs := tr.Keyframes
	if frame <= kfs[0].Time {
		return kfs[0].Value
	}
	last := len(kfs) - 1
	if frame >= kfs[last].Time {
		return kfs[last].Value
	}
	i := segmentIndex(len(kfs), frame, func(j int) float64 { return kfs[j].Time })
	a, b := kfs[i], kfs[i+1]
	dur := b.Time - a.Time
	if dur <= 0 {
		return b.Value
	}
	fn := a.fn
	if fn == nil {
		fn = a.Ease.Func()
	}
	return float64(fn(float32(frame-a.Time), float32(a.Value), float32(b.Value-a.Value), float32(dur)))
}

// --- Vec2 track ---

// Vec2Keyframe is one keyframe of a 2D track.
type Vec2Keyframe struct {
	Time  float64
	Value Vec2
	Ease  EaseDesc
	fn    ease.TweenFunc
}

// Vec2Track is a 2D animated property: either a static value or a keyframed
// sequence. Components interpolate with the same easing.
type Vec2Track struct {
	Static    bool
	Value     Vec2
	Keyframes []Vec2Keyframe
}

// StaticVec2 returns a track holding a constant value.
func StaticVec2(v Vec2) Vec2Track {
	return Vec2Track{Static: true, Value: v}
}

func (tr *Vec2Track) compile() {
	for i := range tr.Keyframes {
		tr.Keyframes[i].fn = tr.Keyframes[i].Ease.Func()
	}
}

// Sample evaluates the track at frame with the same clamping and boundary
// rules as [ScalarTrack.Sample].
func (tr *Vec2Track) Sample(frame float64) Vec2 {
	if tr.Static || len(tr.Keyframes) == 0 {
		return tr.Value
	}
	kfs := tr.Keyframes
	if frame <= kfs[0].Time {
		return kfs[0].Value
	}
	last := len(kfs) - 1
	if frame >= kfs[last].Time {
		return kfs[last].Value
	}
	i := segmentIndex(len(kfs), frame, func(j int) float64 { return kfs[j].Time })
	a, b := kfs[i], kfs[i+1]
	dur := b.Time - a.Time
	if dur <= 0 {
		return b.Value
	}
	fn := a.fn
	if fn == nil {
		fn = a.Ease.Func()
	}
	t := float32(frame - a.Time)
	d := float32(dur)
	return Vec2{
		X: float64(fn(t, float32(a.Value.X), float32(b.Value.X-a.Value.X), d)),
		Y: float64(fn(t, float32(a.Value.Y), float32(b.Value.Y-a.Value.Y), d)),
	}
}

// segmentIndex returns i such that time(i) <= frame < time(i+1).
// Callers guarantee frame is strictly inside the keyframe range.
func segmentIndex(n int, frame float64, time func(int) float64) int {
	lo, hi := 0, n-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if time(mid) <= frame {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// TransformTracks bundles the five per-layer animated transform properties.
// Scale is in percent, rotation in degrees, opacity in 0..100.
type TransformTracks struct {
	Position Vec2Track
	Scale    Vec2Track
	Rotation ScalarTrack
	Opacity  ScalarTrack
	Anchor   Vec2Track
}

// defaultTransformTracks returns the identity transform: zero position and
// anchor, 100% scale, zero rotation, full opacity.
func defaultTransformTracks() TransformTracks {
	return TransformTracks{
		Position: StaticVec2(Vec2{}),
		Scale:    StaticVec2(Vec2{X: 100, Y: 100}),
		Rotation: StaticScalar(0),
		Opacity:  StaticScalar(100),
		Anchor:   StaticVec2(Vec2{}),
	}
}

func (t *TransformTracks) compile() {
	t.Position.compile()
	t.Scale.compile()
	t.Rotation.compile()
	t.Opacity.compile()
	t.Anchor.compile()
}

// localMatrix samples all spatial tracks at frame and composes the layer's
// local matrix.
func (t *TransformTracks) localMatrix(frame float64) Mat2D {
	return layerLocalTransform(
		t.Position.Sample(frame),
		t.Rotation.Sample(frame),
		t.Scale.Sample(frame),
		t.Anchor.Sample(frame),
	)
}
