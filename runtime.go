package scenery

import (
	"fmt"
	"math"
	"sort"
)

// VariantRuntime is one compiled variant of a block.
type VariantRuntime struct {
	Def  VariantDoc
	Anim *Animation
	// Shorter is the overlap policy applied when the scene window outlasts
	// the animation. Longer is parsed and carried only; local-frame
	// derivation does not read it.
	Shorter OverlapPolicy
	Longer  OverlapPolicy
	Loop    *LoopRangeDoc
}

// BlockRuntime is one compiled placeholder block.
type BlockRuntime struct {
	Def        BlockDoc
	ID         string
	ZIndex     int
	OrderIndex int // array insertion order, the stable tie-break
	RectCanvas Rect
	InputRect  Rect // block-local
	Timing     FrameRange
	Clip       ContainerClip
	HitMode    HitTestMode
	BindingKey string

	Variants          []VariantRuntime
	EditVariantIdx    int
	SelectedVariantID string
}

// variantByID returns the variant with the given id, or nil.
func (b *BlockRuntime) variantByID(id string) *VariantRuntime {
	for i := range b.Variants {
		if b.Variants[i].Def.VariantID == id {
			return &b.Variants[i]
		}
	}
	return nil
}

// EditVariant returns the block's mandatory "no-anim" variant.
func (b *BlockRuntime) EditVariant() *VariantRuntime {
	return &b.Variants[b.EditVariantIdx]
}

// SceneRuntime is a compiled scene plus the mutable player state. The
// compiled arrays (blocks, variants, AIR, registry, asset index) are
// immutable after compile; userTransforms, variantOverrides, and
// userMediaPresent are scene-player state mutated between draws on the
// render thread.
type SceneRuntime struct {
	SceneID       string
	Canvas        CanvasDoc
	Blocks        []*BlockRuntime
	Registry      *PathRegistry
	Assets        map[string]AssetRef // merged, keyed by namespaced id
	BindingAssets map[string]bool     // whitelist for the texture preloader

	mode             RenderMode
	userTransforms   map[string]Mat2D
	variantOverrides map[string]string
	userMediaPresent map[string]bool

	commands []Command // reused emission buffer
	scratch  []float64 // reused path sampling buffer
}

// --- Player state ---

// SetMode switches between preview and edit emission policies.
func (s *SceneRuntime) SetMode(mode RenderMode) { s.mode = mode }

// Mode returns the current render mode.
func (s *SceneRuntime) Mode() RenderMode { return s.mode }

// SetSelectedVariant overrides a block's active variant for preview mode.
// Returns an error if the block or variant does not exist.
func (s *SceneRuntime) SetSelectedVariant(blockID, variantID string) error {
	b := s.blockByID(blockID)
	if b == nil {
		return fmt.Errorf("scenery: unknown block %q", blockID)
	}
	if b.variantByID(variantID) == nil {
		return fmt.Errorf("scenery: block %q has no variant %q", blockID, variantID)
	}
	s.variantOverrides[blockID] = variantID
	return nil
}

// ClearSelectedVariant removes a block's variant override.
func (s *SceneRuntime) ClearSelectedVariant(blockID string) {
	delete(s.variantOverrides, blockID)
}

// SetUserTransform sets a block's user pan/zoom/rotate matrix, applied to
// the binding layer in binding-local space. The core does not enforce the
// block's userTransformsAllowed flags; the UI layer filters gestures.
func (s *SceneRuntime) SetUserTransform(blockID string, m Mat2D) {
	s.userTransforms[blockID] = m
}

// UserTransform returns a block's user transform (identity by default).
func (s *SceneRuntime) UserTransform(blockID string) Mat2D {
	if m, ok := s.userTransforms[blockID]; ok {
		return m
	}
	return Identity
}

// SetUserMediaPresent records whether a block's binding slot holds user
// media. While false the binding layer is skipped entirely, so a missing
// binding texture is not an error.
func (s *SceneRuntime) SetUserMediaPresent(blockID string, present bool) {
	s.userMediaPresent[blockID] = present
}

// UserMediaPresent reports a block's media flag.
func (s *SceneRuntime) UserMediaPresent(blockID string) bool {
	return s.userMediaPresent[blockID]
}

func (s *SceneRuntime) blockByID(id string) *BlockRuntime {
	for _, b := range s.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// activeVariant resolves the variant a block renders this frame:
// the edit variant in edit mode, else override, else selection, else first.
func (s *SceneRuntime) activeVariant(b *BlockRuntime) *VariantRuntime {
	if s.mode == ModeEdit {
		return b.EditVariant()
	}
	if id, ok := s.variantOverrides[b.ID]; ok {
		if v := b.variantByID(id); v != nil {
			return v
		}
	}
	if v := b.variantByID(b.SelectedVariantID); v != nil {
		return v
	}
	return &b.Variants[0]
}

// --- Scene compilation ---

// CompileScene validates and compiles a scene package into a runtime.
//
// The returned report always carries every diagnostic found. When the
// validators report errors, no runtime is produced and err is nil — the
// caller decides whether warnings alone block. A non-nil err is either a
// scene JSON decode failure or a compile-time fatal (*CompileError):
// binding discovery, edit-variant defects, path topology, matte ordering.
func CompileScene(pkg *ScenePackage) (*SceneRuntime, *Report, error) {
	report := &Report{}

	scene, err := DecodeScene(pkg.SceneJSON)
	if err != nil {
		return nil, report, err
	}
	ValidateScene(scene, report)
	if report.HasErrors() {
		return nil, report, nil
	}

	// Decode and validate each referenced animation once.
	docs := make(map[string]*AnimationDoc)
	for bi := range scene.MediaBlocks {
		for vi := range scene.MediaBlocks[bi].Variants {
			ref := scene.MediaBlocks[bi].Variants[vi].AnimRef
			if _, done := docs[ref]; done {
				continue
			}
			raw, ok := pkg.AnimJSONByRef[ref]
			if !ok {
				report.Errorf(CodeAnimFileMissing, "anim("+ref+")",
					"animation file %q is not in the package", ref)
				continue
			}
			doc, err := DecodeAnimation(raw)
			if err != nil {
				report.Errorf(CodeAnimRootInvalid, "anim("+ref+")", "%v", err)
				continue
			}
			ValidateAnimation(doc, ref, report)
			if doc.FPS > 0 && int(doc.FPS) != scene.Canvas.FPS {
				report.Errorf(CodeAnimFPSMismatch, "anim("+ref+").fr",
					"animation fps %g does not match canvas fps %d", doc.FPS, scene.Canvas.FPS)
			}
			docs[ref] = doc
		}
	}
	if report.HasErrors() {
		return nil, report, nil
	}

	rt := &SceneRuntime{
		SceneID:          scene.SceneID,
		Canvas:           scene.Canvas,
		Registry:         NewPathRegistry(),
		Assets:           make(map[string]AssetRef),
		BindingAssets:    make(map[string]bool),
		userTransforms:   make(map[string]Mat2D),
		variantOverrides: make(map[string]string),
		userMediaPresent: make(map[string]bool),
	}

	for bi := range scene.MediaBlocks {
		block, err := compileBlock(&scene.MediaBlocks[bi], bi, scene.Canvas, docs, rt, report)
		if err != nil {
			return nil, report, err
		}
		rt.Blocks = append(rt.Blocks, block)
	}

	// Stable rendering order: ascending (zIndex, orderIndex).
	sort.SliceStable(rt.Blocks, func(i, j int) bool {
		if rt.Blocks[i].ZIndex != rt.Blocks[j].ZIndex {
			return rt.Blocks[i].ZIndex < rt.Blocks[j].ZIndex
		}
		return rt.Blocks[i].OrderIndex < rt.Blocks[j].OrderIndex
	})

	return rt, report, nil
}

func compileBlock(doc *BlockDoc, orderIndex int, canvas CanvasDoc, docs map[string]*AnimationDoc, rt *SceneRuntime, report *Report) (*BlockRuntime, error) {
	block := &BlockRuntime{
		Def:        *doc,
		ID:         doc.BlockID,
		ZIndex:     doc.ZIndex,
		OrderIndex: orderIndex,
		RectCanvas: doc.Rect.Rect(),
		InputRect:  doc.Input.Rect.Rect(),
		BindingKey: doc.Input.BindingKey,
	}
	if block.BindingKey == "" {
		block.BindingKey = DefaultBindingKey
	}
	switch doc.ContainerClip {
	case "slotRect", "slotRectAfterSettle":
		block.Clip = ClipToRect
	}
	if doc.Input.HitTest == "mask" {
		block.HitMode = HitTestMask
	}

	// Visibility window, clipped to canvas duration.
	block.Timing = FrameRange{Start: 0, End: canvas.DurationFrames}
	if doc.Timing != nil {
		block.Timing.Start = max(doc.Timing.StartFrame, 0)
		block.Timing.End = min(doc.Timing.EndFrame, canvas.DurationFrames)
	}

	for vi := range doc.Variants {
		vdoc := &doc.Variants[vi]
		animDoc := docs[vdoc.AnimRef]
		anim, err := CompileAnimation(animDoc, vdoc.AnimRef, block.BindingKey, rt.Registry)
		if err != nil {
			if ce, ok := err.(*CompileError); ok {
				ce.BlockID = block.ID
			}
			return nil, err
		}
		if aspectMismatch(anim.Meta.Size(), block.RectCanvas, canvas.Size()) {
			report.Warnf(CodeWarningAnimSizeMismatch,
				fmt.Sprintf("anim(%s)", vdoc.AnimRef),
				"animation %gx%g does not match block %q aspect",
				anim.Meta.Width, anim.Meta.Height, block.ID)
		}
		for id, ref := range anim.Assets {
			rt.Assets[id] = ref
		}
		rt.BindingAssets[anim.Binding.AssetID] = true

		block.Variants = append(block.Variants, VariantRuntime{
			Def:     *vdoc,
			Anim:    anim,
			Shorter: overlapPolicy(vdoc.IfAnimationShorter),
			Longer:  overlapPolicy(vdoc.IfAnimationLonger),
			Loop:    vdoc.LoopRange,
		})
	}

	if err := resolveEditVariant(block); err != nil {
		return nil, err
	}
	block.SelectedVariantID = block.Variants[0].Def.VariantID
	return block, nil
}

// overlapPolicy parses a policy tag, defaulting to holdLastFrame.
func overlapPolicy(tag string) OverlapPolicy {
	switch tag {
	case "loop":
		return LoopRange
	case "cut":
		return Cut
	default:
		return HoldLastFrame
	}
}

// aspectMismatch reports whether an animation neither matches the canvas
// size nor the block rect's aspect ratio.
func aspectMismatch(animSize Vec2, blockRect Rect, canvasSize Vec2) bool {
	if animSize == canvasSize {
		return false
	}
	if animSize.X <= 0 || animSize.Y <= 0 || blockRect.Height <= 0 {
		return true
	}
	return math.Abs(animSize.X/animSize.Y-blockRect.Width/blockRect.Height) > 1e-3
}

// resolveEditVariant locates and structurally validates the mandatory
// "no-anim" variant: it must exist, carry a mediaInput shape layer, and its
// binding layer must be visible at the edit frame.
func resolveEditVariant(block *BlockRuntime) error {
	idx := -1
	for i := range block.Variants {
		if block.Variants[i].Def.VariantID == EditVariantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &CompileError{
			Code:    CodeEditVariantMissing,
			Path:    "scene.mediaBlocks",
			Message: fmt.Sprintf("block %q has no %q variant", block.ID, EditVariantID),
			BlockID: block.ID,
		}
	}
	anim := block.Variants[idx].Anim
	animRef := block.Variants[idx].Def.AnimRef
	if anim.MediaInput == nil {
		return &CompileError{
			Code:    CodeEditVariantInvalid,
			Path:    fmt.Sprintf("anim(%s)", animRef),
			Message: fmt.Sprintf("edit variant has no %q shape layer", MediaInputLayerName),
			AnimRef: animRef,
			BlockID: block.ID,
		}
	}
	bindingComp := anim.Comps[anim.Binding.CompID]
	bindingLayer := bindingComp.layerByID(anim.Binding.LayerID)
	if bindingLayer == nil || bindingLayer.Hidden || !bindingLayer.Timing.visibleAt(EditFrame) {
		return &CompileError{
			Code:    CodeEditVariantInvalid,
			Path:    fmt.Sprintf("anim(%s)", animRef),
			Message: fmt.Sprintf("edit variant binding layer is not visible at frame %d", EditFrame),
			AnimRef: animRef,
			BlockID: block.ID,
		}
	}
	block.EditVariantIdx = idx
	return nil
}

// variantLocalFrame maps the scene frame to the variant's animation-local
// frame by the overlap policy. visible is false when the Cut policy ends the
// block before its window closes.
func variantLocalFrame(v *VariantRuntime, b *BlockRuntime, sceneFrame int) (local float64, visible bool) {
	frame := float64(sceneFrame - b.Timing.Start)
	in := v.Anim.Meta.InPoint
	out := v.Anim.Meta.OutPoint

	if frame < in {
		return in, true
	}
	if frame < out {
		return frame, true
	}

	switch v.Shorter {
	case LoopRange:
		start, end := in, out
		if v.Loop != nil {
			start = float64(v.Loop.StartFrame)
			end = float64(v.Loop.EndFrame)
		}
		span := end - start
		if span <= 0 {
			return out - 1, true
		}
		return start + math.Mod(frame-start, span), true
	case Cut:
		return 0, false
	default: // HoldLastFrame clamps to the animation's final frame.
		return out - 1, true
	}
}
