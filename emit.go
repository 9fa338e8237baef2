package scenery

// RenderCommands emits the ordered command list for one scene frame under
// the current mode, variant overrides, user transforms, and media flags.
// Output is bit-exact deterministic for a given input tuple; the returned
// slice is reused by the next call.
func (s *SceneRuntime) RenderCommands(frame int) ([]Command, error) {
	s.commands = s.commands[:0]
	canvasSize := s.Canvas.Size()

	for _, b := range s.Blocks {
		if !b.Timing.Contains(frame) {
			continue
		}
		v := s.activeVariant(b)
		local, visible := variantLocalFrame(v, b, frame)
		if !visible {
			continue
		}

		s.commands = append(s.commands, BeginGroup("Block:"+b.ID))
		if b.Clip == ClipToRect {
			s.commands = append(s.commands, PushClipRect(b.RectCanvas))
		}
		s.commands = append(s.commands, PushTransform(BlockTransform(v.Anim.Meta.Size(), b.RectCanvas, canvasSize)))

		e := airEmitter{
			anim:           v.Anim,
			userTransform:  s.UserTransform(b.ID),
			bindingVisible: s.userMediaPresent[b.ID],
			cmds:           s.commands,
		}
		e.emitComposition(v.Anim.Root, local, 1.0, map[CompID]bool{RootCompID: true})
		s.commands = e.cmds
		if e.err != nil {
			return nil, e.err
		}

		s.commands = append(s.commands, PopTransform())
		if b.Clip == ClipToRect {
			s.commands = append(s.commands, PopClipRect())
		}
		s.commands = append(s.commands, EndGroup())
	}
	return s.commands, nil
}

// airEmitter walks one animation's composition tree, appending commands.
type airEmitter struct {
	anim           *Animation
	userTransform  Mat2D
	bindingVisible bool
	cmds           []Command
	err            error
}

// emitComposition emits every eligible layer of comp in source order.
// baseOpacity is the container opacity accumulated across precomp descent;
// visited holds the compositions on the descent stack for cycle detection.
func (e *airEmitter) emitComposition(comp *Composition, frame float64, baseOpacity float64, visited map[CompID]bool) {
	for i := range comp.Layers {
		layer := &comp.Layers[i]
		if layer.IsMatteSource {
			continue // emitted only when referenced by its consumer
		}
		if layer.Hidden {
			continue
		}
		if e.isBinding(comp, layer) && !e.bindingVisible {
			continue
		}
		if e.isMediaInput(comp, layer) {
			continue // geometry source for the input clip, never drawn
		}
		if !layer.Timing.visibleAt(frame) {
			continue
		}

		world, opacity := resolveWorld(comp, layer, frame)
		opacity *= baseOpacity

		if layer.Matte != nil {
			e.emitMatteScope(comp, layer, frame, world, opacity, baseOpacity, visited, map[int]bool{})
			continue
		}
		e.emitLayerDraw(comp, layer, frame, world, opacity, visited)
	}
}

// resolveWorld walks the parent chain within comp, composing
// world = parentWorld × local and multiplying opacities. Parent chains are
// acyclic by contract; the walk is bounded by the layer count defensively.
func resolveWorld(comp *Composition, layer *Layer, frame float64) (Mat2D, float64) {
	world := layer.Transform.localMatrix(frame)
	opacity := layer.Transform.Opacity.Sample(frame) / 100

	parentID := layer.ParentID
	for steps := 0; parentID != nil && steps <= len(comp.Layers); steps++ {
		parent := comp.layerByID(*parentID)
		if parent == nil {
			break
		}
		world = parent.Transform.localMatrix(frame).Mul(world)
		opacity *= parent.Transform.Opacity.Sample(frame) / 100
		parentID = parent.ParentID
	}
	return world, opacity
}

// emitLayerDraw emits a single layer's draw, wrapped in its mask scope.
func (e *airEmitter) emitLayerDraw(comp *Composition, layer *Layer, frame float64, world Mat2D, opacity float64, visited map[CompID]bool) {
	if e.isBinding(comp, layer) {
		e.emitBindingDraw(comp, layer, frame, world, opacity)
		return
	}

	e.beginMasks(layer, frame)
	switch layer.Type {
	case LayerImage:
		e.cmds = append(e.cmds, PushTransform(world))
		e.cmds = append(e.cmds, DrawImage(layer.AssetID, opacity))
		e.cmds = append(e.cmds, PopTransform())
	case LayerShapeMatte:
		if layer.Shape != nil {
			e.cmds = append(e.cmds, PushTransform(world))
			sh := layer.Shape
			e.cmds = append(e.cmds, DrawShape(sh.PathID, sh.FillColor, sh.FillOpacity, opacity, frame))
			if sh.Stroke != nil {
				e.cmds = append(e.cmds, DrawStroke(sh.PathID, *sh.Stroke, opacity, frame))
			}
			e.cmds = append(e.cmds, PopTransform())
		}
	case LayerPrecomp:
		e.emitPrecomp(layer, frame, world, opacity, visited)
	case LayerNull:
		// No draw; transform and opacity reach children via their parent
		// chain.
	}
	e.endMasks(layer)
}

// emitPrecomp descends into the referenced composition at
// childFrame = frame - st, pushing the container transform once.
func (e *airEmitter) emitPrecomp(layer *Layer, frame float64, world Mat2D, opacity float64, visited map[CompID]bool) {
	child := e.anim.comp(layer.CompRef)
	if child == nil {
		e.err = renderErrorf(CodePrecompRefMissing,
			"precomp layer %q references unknown composition %q", layer.Name, layer.CompRef)
		return
	}
	if visited[layer.CompRef] {
		// PRECOMP_CYCLE: re-entering a composition already on the stack.
		// The subtree is skipped; the rest of the frame renders.
		if globalDebug {
			debugf("%s: skipping re-entered composition %q", CodePrecompCycle, layer.CompRef)
		}
		return
	}
	visited[layer.CompRef] = true
	e.cmds = append(e.cmds, PushTransform(world))
	e.emitComposition(child, frame-layer.Timing.StartTime, opacity, visited)
	e.cmds = append(e.cmds, PopTransform())
	delete(visited, layer.CompRef)
}

// emitBindingDraw wraps the binding layer's draw in the input-clip scope
// when the animation carries a mediaInput shape in the same composition.
// The clip window's transform deliberately excludes the user transform so
// pan/zoom/rotate moves content within a fixed window.
func (e *airEmitter) emitBindingDraw(comp *Composition, layer *Layer, frame float64, world Mat2D, opacity float64) {
	bindingWorld := world.Mul(e.userTransform)

	inputComp, inputLayer := e.anim.mediaInputLayer()
	if inputComp == nil || inputLayer == nil || inputComp.ID != comp.ID || inputLayer.Shape == nil {
		e.beginMasks(layer, frame)
		e.cmds = append(e.cmds, PushTransform(bindingWorld))
		e.cmds = append(e.cmds, DrawImage(layer.AssetID, opacity))
		e.cmds = append(e.cmds, PopTransform())
		e.endMasks(layer)
		return
	}

	inputWorld, _ := resolveWorld(comp, inputLayer, frame)
	e.cmds = append(e.cmds, PushTransform(inputWorld))
	e.cmds = append(e.cmds, BeginMask(MaskIntersect, false, inputLayer.Shape.PathID, 1, frame))
	e.cmds = append(e.cmds, PopTransform())
	e.cmds = append(e.cmds, PushTransform(bindingWorld))
	e.beginMasks(layer, frame)
	e.cmds = append(e.cmds, DrawImage(layer.AssetID, opacity))
	e.endMasks(layer)
	e.cmds = append(e.cmds, PopTransform())
	e.cmds = append(e.cmds, EndMask())
}

// emitMatteScope emits BeginMatte / source group / consumer group /
// EndMatte. The source may itself be a matte consumer (a chain); chainGuard
// detects cycles defensively even though compile-time ordering makes them
// impossible.
func (e *airEmitter) emitMatteScope(comp *Composition, consumer *Layer, frame float64, world Mat2D, opacity float64, baseOpacity float64, visited map[CompID]bool, chainGuard map[int]bool) {
	if chainGuard[consumer.ID] {
		if globalDebug {
			debugf("%s: skipping matte chain re-entry at layer %d", CodeMatteChainCycle, consumer.ID)
		}
		return
	}
	chainGuard[consumer.ID] = true

	source := comp.layerByID(consumer.Matte.SourceLayerID)
	if source == nil {
		e.err = renderErrorf(CodeMatteTargetNotFound,
			"matte consumer %q references unknown source layer %d", consumer.Name, consumer.Matte.SourceLayerID)
		return
	}

	e.cmds = append(e.cmds, BeginMatte(consumer.Matte.Mode))

	e.cmds = append(e.cmds, BeginGroup("MatteSource:"+source.Name))
	srcWorld, srcOpacity := resolveWorld(comp, source, frame)
	srcOpacity *= baseOpacity
	if !source.Hidden && source.Timing.visibleAt(frame) {
		if source.Matte != nil {
			e.emitMatteScope(comp, source, frame, srcWorld, srcOpacity, baseOpacity, visited, chainGuard)
		} else {
			e.emitLayerDraw(comp, source, frame, srcWorld, srcOpacity, visited)
		}
	}
	e.cmds = append(e.cmds, EndGroup())

	e.cmds = append(e.cmds, BeginGroup("MatteConsumer:"+consumer.Name))
	e.emitLayerDraw(comp, consumer, frame, world, opacity, visited)
	e.cmds = append(e.cmds, EndGroup())

	e.cmds = append(e.cmds, EndMatte())
	delete(chainGuard, consumer.ID)
}

// beginMasks opens the layer's mask scope. Masks are emitted in reverse
// order (LIFO): the first mask in the layer's array becomes the innermost
// begin, so scope extraction's reversal restores application order.
func (e *airEmitter) beginMasks(layer *Layer, frame float64) {
	for i := len(layer.Masks) - 1; i >= 0; i-- {
		m := layer.Masks[i]
		e.cmds = append(e.cmds, BeginMask(m.Mode, m.Inverted, m.PathID, m.Opacity, frame))
	}
}

// endMasks closes the layer's mask scope.
func (e *airEmitter) endMasks(layer *Layer) {
	for range layer.Masks {
		e.cmds = append(e.cmds, EndMask())
	}
}

func (e *airEmitter) isBinding(comp *Composition, layer *Layer) bool {
	b := e.anim.Binding
	return b != nil && b.CompID == comp.ID && b.LayerID == layer.ID
}

func (e *airEmitter) isMediaInput(comp *Composition, layer *Layer) bool {
	mi := e.anim.MediaInput
	return mi != nil && mi.CompID == comp.ID && mi.LayerID == layer.ID
}
