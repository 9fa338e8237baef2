package scenery

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

// NamespaceAssetID builds the scene-wide asset id "<animRef>|<originalId>".
// Namespacing prevents collisions between animations that reuse exporter
// default ids like "image_0".
func NamespaceAssetID(animRef, originalID string) string {
	return animRef + "|" + originalID
}

// CompileAnimation lowers a validated animation document into AIR. Mask and
// matte paths are registered into the scene-wide registry; asset ids are
// namespaced per animation. bindingKey names the user-replaceable layer.
func CompileAnimation(doc *AnimationDoc, animRef, bindingKey string, registry *PathRegistry) (*Animation, error) {
	anim := &Animation{
		Meta: AnimMeta{
			Width:         doc.Width,
			Height:        doc.Height,
			FPS:           doc.FPS,
			InPoint:       doc.InPoint,
			OutPoint:      doc.OutPoint,
			SourceAnimRef: animRef,
		},
		Comps:  make(map[CompID]*Composition),
		Assets: make(map[string]AssetRef),
	}

	// Index image assets first so image layers can resolve declared sizes.
	for _, a := range doc.Assets {
		if a.IsPrecomp() {
			continue
		}
		anim.Assets[NamespaceAssetID(animRef, a.ID)] = AssetRef{
			Path:     path.Join(a.Dir, a.File),
			Size:     Vec2{X: a.Width, Y: a.Height},
			Basename: trimExt(a.File),
		}
	}

	cc := &animCompiler{doc: doc, animRef: animRef, registry: registry, anim: anim}

	root, err := cc.compileComposition(RootCompID, doc.Layers, Vec2{X: doc.Width, Y: doc.Height})
	if err != nil {
		return nil, err
	}
	anim.Root = root
	anim.Comps[RootCompID] = root

	// Precomp compositions, in sorted id order for deterministic output.
	precompIDs := make([]string, 0, len(doc.Assets))
	precompSizes := cc.precompSizes()
	for _, a := range doc.Assets {
		if a.IsPrecomp() {
			precompIDs = append(precompIDs, a.ID)
		}
	}
	sort.Strings(precompIDs)
	for _, id := range precompIDs {
		asset := cc.assetByID(id)
		size := precompSizes[id]
		if size == (Vec2{}) {
			size = anim.Meta.Size()
		}
		comp, err := cc.compileComposition(CompID(id), asset.Layers, size)
		if err != nil {
			return nil, err
		}
		anim.Comps[CompID(id)] = comp
	}

	if err := cc.checkPrecompRefs(); err != nil {
		return nil, err
	}

	binding, err := discoverBinding(anim, bindingKey, animRef)
	if err != nil {
		return nil, err
	}
	anim.Binding = binding
	anim.MediaInput = discoverMediaInput(anim)

	return anim, nil
}

// animCompiler carries shared state for one animation's lowering.
type animCompiler struct {
	doc      *AnimationDoc
	animRef  string
	registry *PathRegistry
	anim     *Animation
}

func (cc *animCompiler) assetByID(id string) *AssetDoc {
	for i := range cc.doc.Assets {
		if cc.doc.Assets[i].ID == id {
			return &cc.doc.Assets[i]
		}
	}
	return nil
}

// precompSizes resolves each precomp composition's intrinsic size from the
// first referencing layer's declared w/h (Lottie stores the size on the
// layer, not the asset).
func (cc *animCompiler) precompSizes() map[string]Vec2 {
	sizes := make(map[string]Vec2)
	var scan func(layers []LottieLayer)
	scan = func(layers []LottieLayer) {
		for _, l := range layers {
			if l.Type == lottieLayerPrecomp && l.RefID != "" && l.Width > 0 && l.Height > 0 {
				if _, ok := sizes[l.RefID]; !ok {
					sizes[l.RefID] = Vec2{X: l.Width, Y: l.Height}
				}
			}
		}
	}
	scan(cc.doc.Layers)
	for _, a := range cc.doc.Assets {
		if a.IsPrecomp() {
			scan(a.Layers)
		}
	}
	return sizes
}

// checkPrecompRefs verifies every precomp layer resolves to a compiled
// composition.
func (cc *animCompiler) checkPrecompRefs() error {
	for _, comp := range cc.anim.Comps {
		for i := range comp.Layers {
			l := &comp.Layers[i]
			if l.Type != LayerPrecomp {
				continue
			}
			if cc.anim.Comps[l.CompRef] == nil {
				return &CompileError{
					Code:    CodePrecompRefMissing,
					Path:    fmt.Sprintf("anim(%s).%s.layers[%d].refId", cc.animRef, comp.ID, i),
					Message: fmt.Sprintf("precomp layer %q references unknown composition %q", l.Name, l.CompRef),
					AnimRef: cc.animRef,
				}
			}
		}
	}
	return nil
}

// compileComposition lowers one ordered layer list. Layers compile in source
// order; matte pairing runs afterwards over the complete list.
func (cc *animCompiler) compileComposition(id CompID, src []LottieLayer, size Vec2) (*Composition, error) {
	comp := &Composition{ID: id, Size: size, Layers: make([]Layer, 0, len(src))}
	for i := range src {
		layer, err := cc.compileLayer(&src[i], id, i)
		if err != nil {
			return nil, err
		}
		comp.Layers = append(comp.Layers, layer)
	}
	if err := cc.resolveMattes(comp, src); err != nil {
		return nil, err
	}
	return comp, nil
}

func (cc *animCompiler) compileLayer(src *LottieLayer, compID CompID, arrayIndex int) (Layer, error) {
	lpath := fmt.Sprintf("anim(%s).%s.layers[%d]", cc.animRef, compID, arrayIndex)

	layer := Layer{
		ID:     src.Index,
		Name:   src.Name,
		Hidden: src.Hidden,
		Timing: LayerTiming{
			InPoint:   src.InPoint,
			OutPoint:  src.OutPoint,
			StartTime: src.StartTime,
		},
		ParentID: src.Parent,
	}

	tracks, err := compileTransformTracks(&src.KS, lpath)
	if err != nil {
		return Layer{}, cc.wrapCompile(err, lpath+".ks")
	}
	layer.Transform = tracks

	switch src.Type {
	case lottieLayerPrecomp:
		layer.Type = LayerPrecomp
		layer.CompRef = CompID(src.RefID)
	case lottieLayerImage:
		layer.Type = LayerImage
		layer.AssetID = NamespaceAssetID(cc.animRef, src.RefID)
		if ref, ok := cc.anim.Assets[layer.AssetID]; ok {
			layer.AssetSize = ref.Size
		}
	case lottieLayerNull:
		layer.Type = LayerNull
	case lottieLayerShape:
		layer.Type = LayerShapeMatte
		shape, err := cc.compileShapeContent(src.Shapes, lpath+".shapes")
		if err != nil {
			return Layer{}, err
		}
		layer.Shape = shape
	default:
		return Layer{}, &CompileError{
			Code:    CodeUnsupportedLayerType,
			Path:    lpath + ".ty",
			Message: fmt.Sprintf("layer type %d is not supported", src.Type),
			AnimRef: cc.animRef,
		}
	}

	for mi := range src.Masks {
		mask, err := cc.compileMask(&src.Masks[mi], fmt.Sprintf("%s.masksProperties[%d]", lpath, mi))
		if err != nil {
			return Layer{}, err
		}
		layer.Masks = append(layer.Masks, mask)
	}

	return layer, nil
}

func (cc *animCompiler) wrapCompile(err error, jsonPath string) error {
	if ce, ok := err.(*CompileError); ok {
		if ce.AnimRef == "" {
			ce.AnimRef = cc.animRef
		}
		return ce
	}
	return &CompileError{
		Code:    CodeAnimRootInvalid,
		Path:    jsonPath,
		Message: err.Error(),
		AnimRef: cc.animRef,
	}
}

// --- Mask compilation ---

var lottieMaskModes = map[string]MaskMode{
	"a": MaskAdd,
	"s": MaskSubtract,
	"i": MaskIntersect,
}

func (cc *animCompiler) compileMask(src *LottieMask, jsonPath string) (Mask, error) {
	mode, ok := lottieMaskModes[src.Mode]
	if !ok {
		return Mask{}, &CompileError{
			Code:    CodeUnsupportedMaskMode,
			Path:    jsonPath + ".mode",
			Message: fmt.Sprintf("mask mode %q is not supported", src.Mode),
			AnimRef: cc.animRef,
		}
	}
	opacity := 100.0
	if src.Opacity != nil {
		if v, err := staticScalarValue(src.Opacity); err == nil {
			opacity = v
		}
	}
	if src.Path == nil {
		return Mask{}, &CompileError{
			Code:    CodeMaskPathBuildFailed,
			Path:    jsonPath + ".pt",
			Message: "mask has no path",
			AnimRef: cc.animRef,
		}
	}
	pathID, err := cc.registerPathProperty(src.Path, jsonPath+".pt")
	if err != nil {
		if ce, ok := err.(*CompileError); ok {
			ce.Code = CodeMaskPathBuildFailed
			return Mask{}, ce
		}
		return Mask{}, err
	}
	return Mask{Mode: mode, Inverted: src.Inverted, Opacity: opacity / 100, PathID: pathID}, nil
}

// registerPathProperty flattens, triangulates, and registers a (possibly
// keyframed) Bézier path property.
func (cc *animCompiler) registerPathProperty(prop *LottieProperty, jsonPath string) (PathID, error) {
	outlines, times, eases, err := decodePathProperty(prop)
	if err != nil {
		return 0, &CompileError{
			Code:    CodeMaskPathBuildFailed,
			Path:    jsonPath,
			Message: err.Error(),
			AnimRef: cc.animRef,
		}
	}
	res, err := buildPathResource(outlines, times, eases)
	if err != nil {
		return 0, &CompileError{
			Code:    CodeMaskPathBuildFailed,
			Path:    jsonPath,
			Message: err.Error(),
			AnimRef: cc.animRef,
		}
	}
	return cc.registry.Register(res), nil
}

// decodePathProperty decodes a shape property's static or keyframed value.
func decodePathProperty(prop *LottieProperty) (outlines []BezierOutline, times []float64, eases []EaseDesc, err error) {
	if prop.Animated == 1 {
		var kfs []LottieKeyframe
		if err := json.Unmarshal(prop.K, &kfs); err != nil {
			return nil, nil, nil, fmt.Errorf("keyframed path: %w", err)
		}
		if len(kfs) == 0 {
			return nil, nil, nil, fmt.Errorf("keyframed path has no keyframes")
		}
		for _, kf := range kfs {
			var vals []LottieShapeValue
			if kf.S != nil {
				if err := json.Unmarshal(kf.S, &vals); err != nil {
					// Some exporters store the shape directly, not wrapped in
					// an array.
					var one LottieShapeValue
					if err2 := json.Unmarshal(kf.S, &one); err2 != nil {
						return nil, nil, nil, fmt.Errorf("path keyframe value: %w", err)
					}
					vals = []LottieShapeValue{one}
				}
			}
			if len(vals) == 0 {
				// Trailing keyframe without a value ends the previous segment.
				continue
			}
			outlines = append(outlines, vals[0].Outline())
			times = append(times, kf.T)
			eases = append(eases, easeFromKeyframe(&kf))
		}
		if len(eases) > 0 {
			eases = eases[:len(eases)-1] // per-segment: one fewer than keyframes
		}
		return outlines, times, eases, nil
	}

	var sv LottieShapeValue
	if err := json.Unmarshal(prop.K, &sv); err != nil {
		return nil, nil, nil, fmt.Errorf("static path: %w", err)
	}
	return []BezierOutline{sv.Outline()}, []float64{0}, nil, nil
}

// --- Shape-matte content ---

// compileShapeContent extracts the supported matte-source items (gr, sh, fl,
// tr, plus decoded st) from a shape layer's item list.
func (cc *animCompiler) compileShapeContent(items []LottieShape, jsonPath string) (*ShapeContent, error) {
	var pathProp *LottieProperty
	var fill *LottieShape
	var stroke *LottieShape
	groupTransform := Identity

	var walk func(items []LottieShape, transform Mat2D)
	walk = func(items []LottieShape, transform Mat2D) {
		for i := range items {
			it := &items[i]
			switch it.Type {
			case "gr":
				inner := transform
				// A group's tr item applies to its siblings.
				for j := range it.Items {
					if it.Items[j].Type == "tr" {
						inner = transform.Mul(staticShapeTransform(&it.Items[j]))
					}
				}
				walk(it.Items, inner)
			case "sh":
				if pathProp == nil {
					pathProp = it.Shape
					groupTransform = transform
				}
			case "fl":
				if fill == nil {
					fill = it
				}
			case "st":
				if stroke == nil {
					stroke = it
				}
			}
		}
	}
	walk(items, Identity)

	if pathProp == nil {
		return nil, &CompileError{
			Code:    CodeMattePathBuildFailed,
			Path:    jsonPath,
			Message: "shape layer has no path item",
			AnimRef: cc.animRef,
		}
	}

	outlines, times, eases, err := decodePathProperty(pathProp)
	if err == nil && !groupTransform.IsIdentity() {
		for i := range outlines {
			bakeOutlineTransform(&outlines[i], groupTransform)
		}
	}
	if err != nil {
		return nil, &CompileError{
			Code:    CodeMattePathBuildFailed,
			Path:    jsonPath,
			Message: err.Error(),
			AnimRef: cc.animRef,
		}
	}
	res, err := buildPathResource(outlines, times, eases)
	if err != nil {
		return nil, &CompileError{
			Code:    CodeMattePathBuildFailed,
			Path:    jsonPath,
			Message: err.Error(),
			AnimRef: cc.animRef,
		}
	}

	content := &ShapeContent{
		PathID:      cc.registry.Register(res),
		FillColor:   ColorWhite,
		FillOpacity: 1,
	}
	if fill != nil {
		if fill.Color != nil {
			content.FillColor = staticColorValue(fill.Color)
		}
		if fill.Opacity != nil {
			if v, err := staticScalarValue(fill.Opacity); err == nil {
				content.FillOpacity = v / 100
			}
		}
	}
	if stroke != nil {
		st := &StrokeStyle{Color: ColorWhite, Opacity: 1, Width: 1, MiterLimit: stroke.MiterLimit}
		if stroke.Color != nil {
			st.Color = staticColorValue(stroke.Color)
		}
		if stroke.Opacity != nil {
			if v, err := staticScalarValue(stroke.Opacity); err == nil {
				st.Opacity = v / 100
			}
		}
		if stroke.Width != nil {
			if v, err := staticScalarValue(stroke.Width); err == nil {
				st.Width = v
			}
		}
		// Lottie: lc is 1-based butt/round/square, lj is 1-based
		// miter/round/bevel; other values keep the butt/miter zero values.
		switch stroke.LineCap {
		case 2:
			st.Cap = CapRound
		case 3:
			st.Cap = CapSquare
		}
		switch stroke.LineJoin {
		case 2:
			st.Join = JoinRound
		case 3:
			st.Join = JoinBevel
		}
		content.Stroke = st
	}
	return content, nil
}

// staticShapeTransform composes a shape group's static tr item into a
// matrix. Animated group transforms are outside the v0.1 contract; their
// first keyframe value applies.
func staticShapeTransform(tr *LottieShape) Mat2D {
	var pos, anchor Vec2
	scale := Vec2{X: 100, Y: 100}
	rotation := 0.0
	if tr.Position != nil {
		if t, err := decodeVec2Track(tr.Position); err == nil {
			pos = t.Sample(0)
		}
	}
	if tr.Anchor != nil {
		if t, err := decodeVec2Track(tr.Anchor); err == nil {
			anchor = t.Sample(0)
		}
	}
	if tr.ScaleProp != nil {
		if t, err := decodeVec2Track(tr.ScaleProp); err == nil {
			scale = t.Sample(0)
		}
	}
	if tr.Rotation != nil {
		if t, err := decodeScalarTrack(tr.Rotation); err == nil {
			rotation = t.Sample(0)
		}
	}
	return layerLocalTransform(pos, rotation, scale, anchor)
}

// bakeOutlineTransform applies a static matrix to an outline in place.
// Tangents are offsets, so only the linear part applies to them.
func bakeOutlineTransform(o *BezierOutline, m Mat2D) {
	lin := m
	lin[4], lin[5] = 0, 0
	for i := range o.Vertices {
		x, y := m.Apply(o.Vertices[i].X, o.Vertices[i].Y)
		o.Vertices[i] = Vec2{X: x, Y: y}
		x, y = lin.Apply(o.InTangents[i].X, o.InTangents[i].Y)
		o.InTangents[i] = Vec2{X: x, Y: y}
		x, y = lin.Apply(o.OutTangents[i].X, o.OutTangents[i].Y)
		o.OutTangents[i] = Vec2{X: x, Y: y}
	}
}

// --- Matte pairing ---

// resolveMattes runs the two-phase matte resolution over a compiled
// composition: explicit tp references with strict ordering, then the legacy
// adjacency fallback, then the implicit source set union.
func (cc *animCompiler) resolveMattes(comp *Composition, src []LottieLayer) error {
	indToArrayIdx := make(map[int]int, len(src))
	explicitSource := make(map[int]bool)
	for i, l := range src {
		indToArrayIdx[l.Index] = i
		if l.IsMatte == 1 {
			explicitSource[i] = true
		}
	}

	implicit := make(map[int]bool) // layer ids referenced by any consumer
	for i, l := range src {
		if l.MatteType == 0 {
			continue
		}
		mode, ok := lottieMatteModes[l.MatteType]
		if !ok {
			return &CompileError{
				Code:    CodeUnsupportedMatteType,
				Path:    fmt.Sprintf("anim(%s).%s.layers[%d].tt", cc.animRef, comp.ID, i),
				Message: fmt.Sprintf("track matte type %d is not supported", l.MatteType),
				AnimRef: cc.animRef,
			}
		}

		var sourceIdx int
		if l.MatteTarget != nil {
			idx, ok := indToArrayIdx[*l.MatteTarget]
			if !ok {
				return &CompileError{
					Code:    CodeMatteTargetNotFound,
					Path:    fmt.Sprintf("anim(%s).%s.layers[%d].tp", cc.animRef, comp.ID, i),
					Message: fmt.Sprintf("matte target ind=%d not found", *l.MatteTarget),
					AnimRef: cc.animRef,
				}
			}
			if idx >= i {
				return &CompileError{
					Code:    CodeMatteTargetInvalidOrder,
					Path:    fmt.Sprintf("anim(%s).%s.layers[%d].tp", cc.animRef, comp.ID, i),
					Message: fmt.Sprintf("matte target at index %d must precede consumer at index %d", idx, i),
					AnimRef: cc.animRef,
				}
			}
			sourceIdx = idx
		} else {
			// Legacy pairing: the immediately preceding layer, when it is an
			// explicit source.
			if i == 0 || !explicitSource[i-1] {
				continue
			}
			sourceIdx = i - 1
		}

		comp.Layers[i].Matte = &Matte{Mode: mode, SourceLayerID: comp.Layers[sourceIdx].ID}
		implicit[comp.Layers[sourceIdx].ID] = true
	}

	for i := range comp.Layers {
		comp.Layers[i].IsMatteSource = explicitSource[i] || implicit[comp.Layers[i].ID]
	}
	return nil
}

var lottieMatteModes = map[int]MatteMode{
	1: MatteAlpha,
	2: MatteAlphaInverted,
	3: MatteLuma,
	4: MatteLumaInverted,
}

// --- Binding discovery ---

// discoverBinding finds the unique replaceable image layer whose name equals
// the binding key: root composition first, then precomps by sorted id.
func discoverBinding(anim *Animation, bindingKey, animRef string) (*Binding, error) {
	compIDs := make([]CompID, 0, len(anim.Comps))
	for id := range anim.Comps {
		if id != RootCompID {
			compIDs = append(compIDs, id)
		}
	}
	sort.Slice(compIDs, func(i, j int) bool { return compIDs[i] < compIDs[j] })
	compIDs = append([]CompID{RootCompID}, compIDs...)

	var found *Binding
	for _, compID := range compIDs {
		comp := anim.Comps[compID]
		for i := range comp.Layers {
			l := &comp.Layers[i]
			if l.Name != bindingKey {
				continue
			}
			if found != nil {
				return nil, &CompileError{
					Code:    CodeBindingLayerAmbiguous,
					Path:    fmt.Sprintf("anim(%s).%s", animRef, compID),
					Message: fmt.Sprintf("binding key %q matches more than one layer", bindingKey),
					AnimRef: animRef,
				}
			}
			if l.Type != LayerImage {
				return nil, &CompileError{
					Code:    CodeBindingLayerNotImage,
					Path:    fmt.Sprintf("anim(%s).%s", animRef, compID),
					Message: fmt.Sprintf("binding layer %q is %s, want image", bindingKey, l.Type),
					AnimRef: animRef,
				}
			}
			if l.AssetID == "" {
				return nil, &CompileError{
					Code:    CodeBindingLayerNoAsset,
					Path:    fmt.Sprintf("anim(%s).%s", animRef, compID),
					Message: fmt.Sprintf("binding layer %q has no asset reference", bindingKey),
					AnimRef: animRef,
				}
			}
			found = &Binding{Key: bindingKey, LayerID: l.ID, AssetID: l.AssetID, CompID: compID}
		}
	}
	if found == nil {
		return nil, &CompileError{
			Code:    CodeBindingLayerNotFound,
			Path:    fmt.Sprintf("anim(%s)", animRef),
			Message: fmt.Sprintf("no layer named %q", bindingKey),
			AnimRef: animRef,
		}
	}
	return found, nil
}

// discoverMediaInput finds the reserved "mediaInput" shape layer, root
// composition first, then precomps by sorted id.
func discoverMediaInput(anim *Animation) *MediaInputRef {
	compIDs := make([]CompID, 0, len(anim.Comps))
	for id := range anim.Comps {
		if id != RootCompID {
			compIDs = append(compIDs, id)
		}
	}
	sort.Slice(compIDs, func(i, j int) bool { return compIDs[i] < compIDs[j] })
	compIDs = append([]CompID{RootCompID}, compIDs...)

	for _, compID := range compIDs {
		comp := anim.Comps[compID]
		for i := range comp.Layers {
			l := &comp.Layers[i]
			if l.Type == LayerShapeMatte && l.Name == MediaInputLayerName {
				return &MediaInputRef{CompID: compID, LayerID: l.ID}
			}
		}
	}
	return nil
}

// --- Property decoding ---

// compileTransformTracks lowers the ks group into sampled tracks, defaulting
// absent properties to the identity transform.
func compileTransformTracks(ks *LottieKS, jsonPath string) (TransformTracks, error) {
	out := defaultTransformTracks()
	var err error
	if ks.Position != nil {
		if out.Position, err = decodeVec2Track(ks.Position); err != nil {
			return out, fmt.Errorf("p: %w", err)
		}
	}
	if ks.Scale != nil {
		if out.Scale, err = decodeVec2Track(ks.Scale); err != nil {
			return out, fmt.Errorf("s: %w", err)
		}
	}
	if ks.Rotation != nil {
		if out.Rotation, err = decodeScalarTrack(ks.Rotation); err != nil {
			return out, fmt.Errorf("r: %w", err)
		}
	}
	if ks.Opacity != nil {
		if out.Opacity, err = decodeScalarTrack(ks.Opacity); err != nil {
			return out, fmt.Errorf("o: %w", err)
		}
	}
	if ks.Anchor != nil {
		if out.Anchor, err = decodeVec2Track(ks.Anchor); err != nil {
			return out, fmt.Errorf("a: %w", err)
		}
	}
	out.compile()
	return out, nil
}

// easeFromKeyframe builds the segment easing descriptor stored on the left
// keyframe.
func easeFromKeyframe(kf *LottieKeyframe) EaseDesc {
	if kf.H == 1 {
		return EaseDesc{Hold: true}
	}
	if kf.O == nil || kf.I == nil {
		return LinearEase
	}
	return EaseDesc{
		OutX: float64(kf.O.X), OutY: float64(kf.O.Y),
		InX: float64(kf.I.X), InY: float64(kf.I.Y),
	}
}

// decodeScalarTrack lowers a 1D property.
func decodeScalarTrack(prop *LottieProperty) (ScalarTrack, error) {
	if prop.Animated != 1 {
		v, err := staticScalarValue(prop)
		if err != nil {
			return ScalarTrack{}, err
		}
		return StaticScalar(v), nil
	}
	kfs, err := decodeKeyframes(prop)
	if err != nil {
		return ScalarTrack{}, err
	}
	track := ScalarTrack{Keyframes: make([]ScalarKeyframe, 0, len(kfs))}
	prev := 0.0
	for i := range kfs {
		v, ok := firstFloat(kfs[i].S)
		if !ok {
			// A trailing keyframe with no start value holds the previous end.
			if e, eok := firstFloat(kfs[i].E); eok {
				v = e
			} else {
				v = prev
			}
		}
		prev = v
		track.Keyframes = append(track.Keyframes, ScalarKeyframe{
			Time: kfs[i].T, Value: v, Ease: easeFromKeyframe(&kfs[i]),
		})
	}
	return track, nil
}

// decodeVec2Track lowers a 2D property.
func decodeVec2Track(prop *LottieProperty) (Vec2Track, error) {
	if prop.Animated != 1 {
		var arr []float64
		if err := json.Unmarshal(prop.K, &arr); err != nil {
			return Vec2Track{}, fmt.Errorf("static 2D value: %w", err)
		}
		return StaticVec2(vecFromSlice(arr)), nil
	}
	kfs, err := decodeKeyframes(prop)
	if err != nil {
		return Vec2Track{}, err
	}
	track := Vec2Track{Keyframes: make([]Vec2Keyframe, 0, len(kfs))}
	prev := Vec2{}
	for i := range kfs {
		v, ok := firstVec2(kfs[i].S)
		if !ok {
			if e, eok := firstVec2(kfs[i].E); eok {
				v = e
			} else {
				v = prev
			}
		}
		prev = v
		track.Keyframes = append(track.Keyframes, Vec2Keyframe{
			Time: kfs[i].T, Value: v, Ease: easeFromKeyframe(&kfs[i]),
		})
	}
	return track, nil
}

func decodeKeyframes(prop *LottieProperty) ([]LottieKeyframe, error) {
	var kfs []LottieKeyframe
	if err := json.Unmarshal(prop.K, &kfs); err != nil {
		return nil, fmt.Errorf("keyframe list: %w", err)
	}
	if len(kfs) == 0 {
		return nil, fmt.Errorf("keyframed property has no keyframes")
	}
	return kfs, nil
}

// staticScalarValue reads a static property's number (or one-element array).
func staticScalarValue(prop *LottieProperty) (float64, error) {
	var n float64
	if err := json.Unmarshal(prop.K, &n); err == nil {
		return n, nil
	}
	var arr []float64
	if err := json.Unmarshal(prop.K, &arr); err != nil {
		return 0, fmt.Errorf("static value is neither number nor array")
	}
	if len(arr) == 0 {
		return 0, fmt.Errorf("static value array is empty")
	}
	return arr[0], nil
}

// staticColorValue reads a static fill/stroke color [r, g, b(, a)] in 0..1.
func staticColorValue(prop *LottieProperty) Color {
	var arr []float64
	if err := json.Unmarshal(prop.K, &arr); err != nil || len(arr) < 3 {
		return ColorWhite
	}
	c := Color{R: arr[0], G: arr[1], B: arr[2], A: 1}
	if len(arr) > 3 {
		c.A = arr[3]
	}
	return c
}

func firstFloat(raw json.RawMessage) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) == 0 {
			return 0, false
		}
		return arr[0], true
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	return 0, false
}

func firstVec2(raw json.RawMessage) (Vec2, bool) {
	if raw == nil {
		return Vec2{}, false
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return Vec2{}, false
	}
	return vecFromSlice(arr), true
}

func trimExt(file string) string {
	base := path.Base(file)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
