package scenery

// OverlayShape is one block's edit-overlay geometry: the block rectangle,
// the media-input path in canvas space (nil when the active variant has no
// media-input geometry, whatever the block's hit mode), and
// the selection state. The overlay consumer maps these to view space with
// the same contain-fit formula the renderer uses.
type OverlayShape struct {
	BlockID string
	Rect    Rect
	Path    []Vec2
	State   SelectionState
}

// HitTest classifies a canvas-space point against the scene's blocks at the
// given frame, topmost first (reverse (zIndex, orderIndex) order). Blocks
// outside their visibility window are skipped. Returns the hit block, or
// nil.
//
// Hit geometry shares BlockTransform with the renderer, so targets are
// pixel-identical to rendered placeholders.
func (s *SceneRuntime) HitTest(x, y float64, frame int) *BlockRuntime {
	for i := len(s.Blocks) - 1; i >= 0; i-- {
		b := s.Blocks[i]
		if !b.Timing.Contains(frame) {
			continue
		}
		switch b.HitMode {
		case HitTestMask:
			path := s.mediaInputHitPath(b, frame)
			if path != nil {
				if pointInPolygonEvenOdd(path, x, y) {
					return b
				}
				continue
			}
			// No input geometry: fall back to the rect test.
			fallthrough
		default:
			if b.RectCanvas.Contains(x, y) {
				return b
			}
		}
	}
	return nil
}

// mediaInputHitPath returns the block's media-input outline in canvas
// space, sampled at the frame, or nil when the active variant carries no
// input geometry. In edit mode the "no-anim" variant supplies the geometry
// regardless of overrides.
func (s *SceneRuntime) mediaInputHitPath(b *BlockRuntime, frame int) []Vec2 {
	v := s.activeVariant(b)
	comp, layer := v.Anim.mediaInputLayer()
	if comp == nil || layer == nil || layer.Shape == nil {
		return nil
	}
	res := s.Registry.Lookup(layer.Shape.PathID)
	if res == nil {
		return nil
	}
	local, visible := variantLocalFrame(v, b, frame)
	if !visible {
		return nil
	}

	s.scratch = res.SamplePositions(local, s.scratch)

	// The input window deliberately ignores the user transform: the clip
	// stays fixed while pan/zoom/rotate moves content within it.
	world, _ := resolveWorld(comp, layer, local)
	m := BlockTransform(v.Anim.Meta.Size(), b.RectCanvas, s.Canvas.Size()).Mul(world)

	path := make([]Vec2, len(s.scratch)/2)
	for i := range path {
		px, py := m.Apply(s.scratch[i*2], s.scratch[i*2+1])
		path[i] = Vec2{X: px, Y: py}
	}
	return path
}

// OverlayShapes returns the overlay geometry for every block visible at the
// frame, in rendering order. selectedID and hoveredID classify each block's
// selection state.
func (s *SceneRuntime) OverlayShapes(frame int, selectedID, hoveredID string) []OverlayShape {
	shapes := make([]OverlayShape, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		if !b.Timing.Contains(frame) {
			continue
		}
		state := SelectionInactive
		switch b.ID {
		case selectedID:
			state = SelectionSelected
		case hoveredID:
			state = SelectionHover
		}
		shapes = append(shapes, OverlayShape{
			BlockID: b.ID,
			Rect:    b.RectCanvas,
			Path:    s.mediaInputHitPath(b, frame),
			State:   state,
		})
	}
	return shapes
}
