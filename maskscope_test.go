package scenery

import "testing"

// scenarioFCommands builds the scenario-F stream: ops [add(M0, 1.0),
// subtract(M1, 0.8), intersect(M2, 1.0)] emitted in LIFO order around one
// inner draw.
func scenarioFCommands() []Command {
	return []Command{
		BeginMask(MaskIntersect, false, 2, 1.0, 0),
		BeginMask(MaskSubtract, false, 1, 0.8, 0),
		BeginMask(MaskAdd, false, 0, 1.0, 0),
		DrawShape(3, ColorWhite, 1, 1, 0),
		EndMask(),
		EndMask(),
		EndMask(),
	}
}

func TestExtractMaskScopeScenarioF(t *testing.T) {
	cmds := scenarioFCommands()
	scope, ok := extractMaskScope(cmds, 0)
	if !ok {
		t.Fatal("extraction failed")
	}
	if scope.malformed {
		t.Fatal("scenario F scope is well-formed")
	}
	if len(scope.ops) != 3 {
		t.Fatalf("ops = %d, want 3", len(scope.ops))
	}

	ae := scope.opsInAEOrder()
	wantModes := []MaskMode{MaskAdd, MaskSubtract, MaskIntersect}
	wantPaths := []PathID{0, 1, 2}
	for i := range ae {
		if ae[i].MaskMode != wantModes[i] || ae[i].PathID != wantPaths[i] {
			t.Fatalf("AE op %d = (mode %v, path %d), want (%v, %d)",
				i, ae[i].MaskMode, ae[i].PathID, wantModes[i], wantPaths[i])
		}
	}
	if got := initAcc(ae); got != 0 {
		t.Fatalf("initAcc = %g, want 0 (first op adds)", got)
	}

	if scope.innerStart != 3 || scope.innerEnd != 4 {
		t.Fatalf("inner = [%d, %d), want [3, 4)", scope.innerStart, scope.innerEnd)
	}
	if scope.end != 7 {
		t.Fatalf("end = %d, want 7 (past the last EndMask)", scope.end)
	}
}

func TestInitAccPerLeadingMode(t *testing.T) {
	add := []Command{BeginMask(MaskAdd, false, 0, 1, 0)}
	sub := []Command{BeginMask(MaskSubtract, false, 0, 1, 0)}
	inter := []Command{BeginMask(MaskIntersect, false, 0, 1, 0)}
	if initAcc(add) != 0 {
		t.Error("initAcc([add, ...]) should be 0")
	}
	if initAcc(sub) != 1 || initAcc(inter) != 1 {
		t.Error("initAcc for subtract/intersect should be 1")
	}
}

func TestExtractMaskScopeMalformed(t *testing.T) {
	cmds := []Command{
		BeginMask(MaskAdd, false, 0, 1, 0),
		DrawShape(5, ColorWhite, 1, 1, 0),
		BeginMask(MaskAdd, false, 1, 1, 0), // nested begin inside inner content
		DrawShape(6, ColorWhite, 1, 1, 0),
		EndMask(),
		EndMask(),
	}
	scope, ok := extractMaskScope(cmds, 0)
	if !ok {
		t.Fatal("extraction must still find the matching closes")
	}
	if !scope.malformed {
		t.Fatal("nested begin inside inner content must flag malformed")
	}
	if scope.end != 6 {
		t.Fatalf("end = %d, want 6", scope.end)
	}
}

func TestExtractMaskScopeUnterminated(t *testing.T) {
	cmds := []Command{
		BeginMask(MaskAdd, false, 0, 1, 0),
		DrawShape(5, ColorWhite, 1, 1, 0),
	}
	if _, ok := extractMaskScope(cmds, 0); ok {
		t.Fatal("unterminated scope must fail extraction")
	}
}

func TestLegacyBeginMaskAddNormalizes(t *testing.T) {
	cmd := BeginMaskAdd(7, 0.5, 12)
	if cmd.Op != OpBeginMask || cmd.MaskMode != MaskAdd || cmd.MaskInverted {
		t.Fatalf("BeginMaskAdd = %+v, want BeginMask(add, false, ...)", cmd)
	}
	if cmd.PathID != 7 || cmd.Opacity != 0.5 || cmd.Frame != 12 {
		t.Fatalf("BeginMaskAdd payload = %+v", cmd)
	}
}

// maskAlgebra mirrors the compute combine per op, pointwise on a scalar
// coverage sample. Used to pin the accumulator semantics.
func maskAlgebra(opsAE []Command, cov func(PathID) float64) float64 {
	acc := initAcc(opsAE)
	for _, op := range opsAE {
		c := cov(op.PathID)
		if op.MaskInverted {
			c = 1 - c
		}
		c *= op.Opacity
		switch op.MaskMode {
		case MaskAdd:
			acc = min(acc+c, 1)
		case MaskSubtract:
			acc *= 1 - c
		case MaskIntersect:
			acc *= c
		}
	}
	return acc
}

func TestMaskAlgebraScenarioF(t *testing.T) {
	scope, _ := extractMaskScope(scenarioFCommands(), 0)
	ae := scope.opsInAEOrder()

	cov := map[PathID]float64{0: 1.0, 1: 0.5, 2: 0.9}
	got := maskAlgebra(ae, func(id PathID) float64 { return cov[id] })
	want := ((0 + cov[0]) * (1 - 0.8*cov[1])) * cov[2]
	if !almostEqual(got, want, 1.0/255) {
		t.Fatalf("mask algebra = %g, want %g", got, want)
	}
}

func TestMaskAlgebraSingleOps(t *testing.T) {
	full := func(PathID) float64 { return 1 }
	// A single full-coverage add at opacity 1 passes the inner through.
	if got := maskAlgebra([]Command{BeginMask(MaskAdd, false, 0, 1, 0)}, full); got != 1 {
		t.Errorf("add full coverage = %g, want 1", got)
	}
	// A single full-coverage subtract clears everything.
	if got := maskAlgebra([]Command{BeginMask(MaskSubtract, false, 0, 1, 0)}, full); got != 0 {
		t.Errorf("subtract full coverage = %g, want 0", got)
	}
	// Nested intersects multiply pointwise.
	ops := []Command{
		BeginMask(MaskIntersect, false, 0, 1, 0),
		BeginMask(MaskIntersect, false, 1, 1, 0),
	}
	cov := map[PathID]float64{0: 0.5, 1: 0.5}
	if got := maskAlgebra(ops, func(id PathID) float64 { return cov[id] }); !almostEqual(got, 0.25, 1e-9) {
		t.Errorf("intersect chain = %g, want 0.25", got)
	}
	// Inversion flips coverage before the op applies.
	if got := maskAlgebra([]Command{BeginMask(MaskIntersect, true, 0, 1, 0)},
		func(PathID) float64 { return 0.25 }); !almostEqual(got, 0.75, 1e-9) {
		t.Errorf("inverted intersect = %g, want 0.75", got)
	}
}
