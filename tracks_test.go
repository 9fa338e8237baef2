package scenery

import "testing"

func keyframedScalar(kfs ...ScalarKeyframe) ScalarTrack {
	tr := ScalarTrack{Keyframes: kfs}
	tr.compile()
	return tr
}

func TestScalarTrackStatic(t *testing.T) {
	tr := StaticScalar(42)
	if got := tr.Sample(17); got != 42 {
		t.Fatalf("Sample = %g, want 42", got)
	}
}

func TestScalarTrackClamps(t *testing.T) {
	tr := keyframedScalar(
		ScalarKeyframe{Time: 10, Value: 0, Ease: LinearEase},
		ScalarKeyframe{Time: 20, Value: 100, Ease: LinearEase},
	)
	if got := tr.Sample(0); got != 0 {
		t.Errorf("before first keyframe: %g, want 0", got)
	}
	if got := tr.Sample(100); got != 100 {
		t.Errorf("after last keyframe: %g, want 100", got)
	}
}

func TestScalarTrackLinearMidpoint(t *testing.T) {
	tr := keyframedScalar(
		ScalarKeyframe{Time: 0, Value: 0, Ease: LinearEase},
		ScalarKeyframe{Time: 30, Value: 100, Ease: LinearEase},
	)
	if got := tr.Sample(15); !almostEqual(got, 50, 0.5) {
		t.Fatalf("midpoint = %g, want ≈50", got)
	}
}

func TestScalarTrackBoundaryLaterSegmentWins(t *testing.T) {
	// At the exact boundary frame the later segment's start value applies.
	tr := keyframedScalar(
		ScalarKeyframe{Time: 0, Value: 0, Ease: EaseDesc{Hold: true}},
		ScalarKeyframe{Time: 10, Value: 50, Ease: EaseDesc{Hold: true}},
		ScalarKeyframe{Time: 20, Value: 100, Ease: EaseDesc{Hold: true}},
	)
	if got := tr.Sample(9.999); got != 0 {
		t.Errorf("just before boundary: %g, want 0", got)
	}
	if got := tr.Sample(10); got != 50 {
		t.Errorf("at boundary: %g, want 50", got)
	}
}

func TestHoldEaseSteps(t *testing.T) {
	tr := keyframedScalar(
		ScalarKeyframe{Time: 0, Value: 7, Ease: EaseDesc{Hold: true}},
		ScalarKeyframe{Time: 100, Value: 99, Ease: EaseDesc{Hold: true}},
	)
	if got := tr.Sample(99.5); got != 7 {
		t.Fatalf("hold segment leaked: %g, want 7", got)
	}
}

func TestCubicBezierEaseEndpointsAndMonotonic(t *testing.T) {
	fn := EaseDesc{OutX: 0.42, OutY: 0, InX: 0.58, InY: 1}.Func() // ease-in-out
	if got := fn(0, 0, 1, 1); got != 0 {
		t.Errorf("t=0: %g, want 0", got)
	}
	if got := fn(1, 0, 1, 1); got != 1 {
		t.Errorf("t=d: %g, want 1", got)
	}
	prev := float32(0)
	for i := 1; i <= 10; i++ {
		v := fn(float32(i)/10, 0, 1, 1)
		if v < prev-1e-4 {
			t.Fatalf("easing not monotonic at step %d: %g < %g", i, v, prev)
		}
		prev = v
	}
	// Ease-in-out is slower than linear near the start.
	if v := fn(0.1, 0, 1, 1); v >= 0.1 {
		t.Errorf("ease-in-out at 0.1 = %g, want < 0.1", v)
	}
}

func TestVec2TrackInterpolates(t *testing.T) {
	tr := Vec2Track{Keyframes: []Vec2Keyframe{
		{Time: 30, Value: Vec2{X: 0, Y: -500}, Ease: LinearEase},
		{Time: 60, Value: Vec2{X: 0, Y: 0}, Ease: LinearEase},
	}}
	tr.compile()
	got := tr.Sample(45)
	if !almostEqual(got.Y, -250, 1) {
		t.Fatalf("Sample(45).Y = %g, want ≈-250", got.Y)
	}
	if got := tr.Sample(0); got.Y != -500 {
		t.Fatalf("clamp before first = %v, want Y=-500", got)
	}
}

func TestDefaultTransformTracksIdentity(t *testing.T) {
	tracks := defaultTransformTracks()
	m := tracks.localMatrix(0)
	if !m.IsIdentity() {
		t.Fatalf("default transform = %v, want identity", m)
	}
	if op := tracks.Opacity.Sample(0); op != 100 {
		t.Fatalf("default opacity = %g, want 100", op)
	}
}

func BenchmarkScalarTrackSample(b *testing.B) {
	tr := keyframedScalar(
		ScalarKeyframe{Time: 0, Value: 0, Ease: EaseDesc{OutX: 0.42, OutY: 0, InX: 0.58, InY: 1}},
		ScalarKeyframe{Time: 100, Value: 100, Ease: LinearEase},
		ScalarKeyframe{Time: 200, Value: 0, Ease: LinearEase},
	)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tr.Sample(float64(i % 200))
	}
}
