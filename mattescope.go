package scenery

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// matteScope is the parsed shape of one track-matte scope: exactly two
// child group spans, source then consumer, each including its own
// BeginGroup/EndGroup commands.
type matteScope struct {
	mode               MatteMode
	srcStart, srcEnd   int
	consStart, consEnd int
	end                int // index just past EndMatte
}

// extractMatteScope parses the scope starting at the BeginMatte command.
// Any other structure than source group + consumer group + EndMatte is a
// fatal executor error.
func extractMatteScope(cmds []Command, start int) (matteScope, error) {
	s := matteScope{mode: cmds[start].MatteMode}
	i := start + 1

	var err error
	s.srcStart = i
	if s.srcEnd, err = groupSpanEnd(cmds, i); err != nil {
		return s, renderErrorf(CodeInvalidCommandStack, "matte scope: source: %v", err)
	}
	i = s.srcEnd

	s.consStart = i
	if s.consEnd, err = groupSpanEnd(cmds, i); err != nil {
		return s, renderErrorf(CodeInvalidCommandStack, "matte scope: consumer: %v", err)
	}
	i = s.consEnd

	if i >= len(cmds) || cmds[i].Op != OpEndMatte {
		return s, renderErrorf(CodeInvalidCommandStack, "matte scope is not closed by EndMatte")
	}
	s.end = i + 1
	return s, nil
}

// groupSpanEnd returns the index just past the EndGroup matching the
// BeginGroup at start, counting only group commands for depth.
func groupSpanEnd(cmds []Command, start int) (int, error) {
	if start >= len(cmds) || cmds[start].Op != OpBeginGroup {
		return 0, renderErrorf(CodeInvalidCommandStack, "expected BeginGroup at %d", start)
	}
	depth := 0
	for i := start; i < len(cmds); i++ {
		switch cmds[i].Op {
		case OpBeginGroup:
			depth++
		case OpEndGroup:
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, renderErrorf(CodeInvalidCommandStack, "unterminated group at %d", start)
}

// runMatteScope renders one track-matte scope and returns the index just
// past it. Source and consumer render into full-target-sized offscreens,
// inheriting the current transform and clip state; the composite modulates
// the consumer by the matte factor per pixel.
func (x *Executor) runMatteScope(cmds []Command, start int, st *execState) (int, error) {
	scope, err := extractMatteScope(cmds, start)
	if err != nil {
		return 0, err
	}
	x.statMattes++

	if err := x.enterOffscreen(); err != nil {
		return 0, err
	}
	defer x.leaveOffscreen()

	bounds := st.target.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	matteTex := x.pool.Acquire(w, h)
	consumerTex := x.pool.Acquire(w, h)
	defer func() {
		x.pool.Release(matteTex)
		x.pool.Release(consumerTex)
	}()

	// Source pass.
	savedTarget := st.target
	st.target = matteTex
	err = x.run(cmds[scope.srcStart:scope.srcEnd], st)
	st.target = savedTarget
	if err != nil {
		return 0, err
	}

	// Consumer pass.
	st.target = consumerTex
	err = x.run(cmds[scope.consStart:scope.consEnd], st)
	st.target = savedTarget
	if err != nil {
		return 0, err
	}

	// Composite under the parent scissor.
	var shaderOp ebiten.DrawRectShaderOptions
	shaderOp.Images[0] = consumerTex
	shaderOp.Images[1] = matteTex
	shaderOp.Uniforms = map[string]any{"Mode": float32(scope.mode)}
	st.dst().DrawRectShader(w, h, x.shaders.ensureMatte(), &shaderOp)

	return scope.end, nil
}
