package scenery

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// maskScope is the extracted shape of one mask-group scope.
type maskScope struct {
	ops        []Command // opening BeginMask prefix, emission order
	innerStart int       // inner commands [innerStart, innerEnd)
	innerEnd   int
	end        int  // index just past the scope's last EndMask
	malformed  bool // a nested BeginMask* appeared inside the inner content
}

// opsInAEOrder returns the ops reversed into application order. The emitter
// writes begins LIFO, so the first mask of the layer's array is the
// innermost begin.
func (s *maskScope) opsInAEOrder() []Command {
	out := make([]Command, len(s.ops))
	for i, op := range s.ops {
		out[len(s.ops)-1-i] = op
	}
	return out
}

// initAcc returns the accumulator clear value for an op list in AE order:
// 0 when the first op adds, 1 otherwise (subtract and intersect start from
// full coverage).
func initAcc(opsAE []Command) float64 {
	if len(opsAE) > 0 && opsAE[0].MaskMode == MaskAdd {
		return 0
	}
	return 1
}

// extractMaskScope collects the consecutive BeginMask prefix starting at
// start, then walks forward counting depth until all closes are found. A
// BeginMask appearing after the prefix marks the scope malformed: the
// executor renders the inner content without mask as the safe fallback.
func extractMaskScope(cmds []Command, start int) (maskScope, bool) {
	var s maskScope
	i := start
	for i < len(cmds) && cmds[i].Op == OpBeginMask {
		s.ops = append(s.ops, cmds[i])
		i++
	}
	if len(s.ops) == 0 {
		return s, false
	}
	s.innerStart = i

	depth := len(s.ops)
	for ; i < len(cmds); i++ {
		switch cmds[i].Op {
		case OpBeginMask:
			s.malformed = true
			depth++
		case OpEndMask:
			depth--
			if depth == 0 {
				s.end = i + 1
				// The closing chain is the trailing run of EndMask commands.
				closes := 0
				for j := s.end - 1; j >= s.innerStart && cmds[j].Op == OpEndMask && closes < len(s.ops); j-- {
					closes++
				}
				s.innerEnd = s.end - closes
				return s, true
			}
		}
	}
	return s, false // unterminated scope
}

// runMaskScope renders one mask-group scope and returns the index just past
// it. The inner content shares the caller's transform stack; target,
// animation mapping, and scissor are redirected to a bbox-local offscreen.
func (x *Executor) runMaskScope(cmds []Command, start int, st *execState) (int, error) {
	scope, ok := extractMaskScope(cmds, start)
	if !ok {
		return 0, renderErrorf(CodeInvalidCommandStack, "unterminated mask scope")
	}
	x.statMaskScopes++

	if scope.malformed {
		// Safe fallback: render the inner content unmasked, skip the closes.
		if globalDebug {
			debugf("malformed mask scope at %d: rendering without mask", start)
		}
		if err := x.run(cmds[scope.innerStart:scope.innerEnd], st); err != nil {
			return 0, err
		}
		return scope.end, nil
	}

	if err := x.enterOffscreen(); err != nil {
		return 0, err
	}
	defer x.leaveOffscreen()

	opsAE := scope.opsInAEOrder()
	entry := st.current()
	pathToViewport := st.animToViewport.Mul(entry)

	// Float bbox over every mask vertex, projected to target pixels.
	bbox, hasVerts, err := x.maskScopeBounds(opsAE, pathToViewport)
	if err != nil {
		return 0, err
	}
	if !hasVerts {
		if err := x.run(cmds[scope.innerStart:scope.innerEnd], st); err != nil {
			return 0, err
		}
		return scope.end, nil
	}

	// Round out, pad for anti-aliasing, clamp, intersect with the scissor.
	pixBox := image.Rect(
		int(math.Floor(bbox.X))-2, int(math.Floor(bbox.Y))-2,
		int(math.Ceil(bbox.X+bbox.Width))+2, int(math.Ceil(bbox.Y+bbox.Height))+2,
	)
	pixBox = pixBox.Intersect(st.target.Bounds()).Intersect(st.scissor())
	if pixBox.Empty() {
		// Fully clipped: nothing to draw, but the inner commands' stack
		// effects must still apply so the stream stays balanced.
		if err := x.runStateOnly(cmds[scope.innerStart:scope.innerEnd], st); err != nil {
			return 0, err
		}
		return scope.end, nil
	}
	bw, bh := pixBox.Dx(), pixBox.Dy()

	coverage := x.pool.Acquire(bw, bh)
	accA := x.pool.Acquire(bw, bh)
	accB := x.pool.Acquire(bw, bh)
	content := x.pool.Acquire(bw, bh)
	defer func() {
		x.pool.Release(coverage)
		x.pool.Release(accA)
		x.pool.Release(accB)
		x.pool.Release(content)
	}()

	if initAcc(opsAE) > 0 {
		accA.Fill(ColorWhite.toRGBA())
	}

	// Ping-pong the accumulator over each op's coverage.
	toBboxLocal := Translate(-float64(pixBox.Min.X), -float64(pixBox.Min.Y))
	covMVP := toBboxLocal.Mul(pathToViewport)
	accIn, accOut := accA, accB
	for _, op := range opsAE {
		coverage.Clear()
		if err := x.drawCoverage(&op, covMVP, coverage); err != nil {
			return 0, err
		}

		var shaderOp ebiten.DrawRectShaderOptions
		shaderOp.Blend = ebiten.BlendCopy
		shaderOp.Images[0] = coverage
		shaderOp.Images[1] = accIn
		shaderOp.Uniforms = map[string]any{
			"Mode":     float32(op.MaskMode),
			"Inverted": boolUniform(op.MaskInverted),
			"Opacity":  float32(clamp01(op.Opacity)),
		}
		accOut.DrawRectShader(bw, bh, x.shaders.ensureMaskCombine(), &shaderOp)
		accIn, accOut = accOut, accIn
	}

	// Render inner content into the bbox-local offscreen. The transform
	// stack is shared; target, mapping, and scissor are swapped.
	savedTarget := st.target
	savedMapping := st.animToViewport
	savedClips := st.clips
	st.target = content
	st.animToViewport = toBboxLocal.Mul(st.animToViewport)
	st.clips = []image.Rectangle{content.Bounds()}

	runErr := x.run(cmds[scope.innerStart:scope.innerEnd], st)
	innerBalanced := len(st.clips) == 1

	st.target = savedTarget
	st.animToViewport = savedMapping
	st.clips = savedClips
	if runErr != nil {
		return 0, runErr
	}
	if !innerBalanced {
		return 0, renderErrorf(CodeInvalidCommandStack, "clip stack unbalanced inside mask scope")
	}

	// Composite content × final mask at the bbox position, under the
	// parent scissor (not the bbox scissor).
	var compOp ebiten.DrawRectShaderOptions
	compOp.GeoM.Translate(float64(pixBox.Min.X), float64(pixBox.Min.Y))
	compOp.Images[0] = content
	compOp.Images[1] = accIn
	st.dst().DrawRectShader(bw, bh, x.shaders.ensureMaskComposite(), &compOp)

	return scope.end, nil
}

// maskScopeBounds accumulates the AABB of every op's triangulated vertices
// under the path-to-viewport mapping. hasVerts is false when no op
// contributes a vertex.
func (x *Executor) maskScopeBounds(opsAE []Command, pathToViewport Mat2D) (Rect, bool, error) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false
	for i := range opsAE {
		op := &opsAE[i]
		res := x.registry.Lookup(op.PathID)
		if res == nil {
			return Rect{}, false, renderErrorf(CodeMissingPathResource, "no path resource for mask id %d", op.PathID)
		}
		mesh := x.shapes.mesh(op.PathID)
		mesh.positions = res.SamplePositions(op.Frame, mesh.positions)
		for c := 0; c+1 < len(mesh.positions); c += 2 {
			px, py := pathToViewport.Apply(mesh.positions[c], mesh.positions[c+1])
			minX = min(minX, px)
			minY = min(minY, py)
			maxX = max(maxX, px)
			maxY = max(maxY, py)
			found = true
		}
	}
	if !found {
		return Rect{}, false, nil
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true, nil
}

// drawCoverage rasterizes one op's triangulated path into the coverage
// texture as opaque white.
func (x *Executor) drawCoverage(op *Command, mvp Mat2D, coverage *ebiten.Image) error {
	res := x.registry.Lookup(op.PathID)
	if res == nil {
		return renderErrorf(CodeMissingPathResource, "no path resource for mask id %d", op.PathID)
	}
	mesh := x.shapes.mesh(op.PathID)
	mesh.positions = res.SamplePositions(op.Frame, mesh.positions)
	mesh.verts = buildTriangleVerts(mesh.verts[:0], mesh.positions, mvp, 1, 1, 1, 1)

	var drawOp ebiten.DrawTrianglesOptions
	drawOp.AntiAlias = true
	coverage.DrawTriangles(mesh.verts, res.Indices, WhitePixel, &drawOp)
	return nil
}

func boolUniform(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
