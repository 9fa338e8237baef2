package scenery

// Op identifies the kind of render command.
type Op uint8

const (
	OpBeginGroup Op = iota
	OpEndGroup
	OpPushTransform
	OpPopTransform
	OpPushClipRect
	OpPopClipRect
	OpDrawImage
	OpDrawShape
	OpDrawStroke
	OpBeginMask
	OpEndMask
	OpBeginMatte
	OpEndMatte
)

// String returns the op name used in diagnostics and command dumps.
func (o Op) String() string {
	switch o {
	case OpBeginGroup:
		return "BeginGroup"
	case OpEndGroup:
		return "EndGroup"
	case OpPushTransform:
		return "PushTransform"
	case OpPopTransform:
		return "PopTransform"
	case OpPushClipRect:
		return "PushClipRect"
	case OpPopClipRect:
		return "PopClipRect"
	case OpDrawImage:
		return "DrawImage"
	case OpDrawShape:
		return "DrawShape"
	case OpDrawStroke:
		return "DrawStroke"
	case OpBeginMask:
		return "BeginMask"
	case OpEndMask:
		return "EndMask"
	case OpBeginMatte:
		return "BeginMatte"
	case OpEndMatte:
		return "EndMatte"
	default:
		return "Unknown"
	}
}

// Command is a single render instruction. One flat struct serves every op to
// keep command slices contiguous; only the fields relevant to an op are set.
type Command struct {
	Op Op

	// BeginGroup
	Name string

	// PushTransform
	Transform Mat2D

	// PushClipRect (animation space)
	Clip Rect

	// DrawImage
	AssetID string
	// DrawImage: world opacity. BeginMask: static mask opacity.
	Opacity float64

	// DrawShape / DrawStroke / BeginMask
	PathID PathID
	Frame  float64

	// DrawShape
	FillColor   Color
	FillOpacity float64
	// DrawShape / DrawStroke
	LayerOpacity float64

	// DrawStroke
	Stroke StrokeStyle

	// BeginMask
	MaskMode     MaskMode
	MaskInverted bool

	// BeginMatte
	MatteMode MatteMode
}

// --- Constructors ---

// BeginGroup opens a named command group. Groups carry no render state; they
// exist for structure (blocks, matte source/consumer) and debugging.
func BeginGroup(name string) Command {
	return Command{Op: OpBeginGroup, Name: name}
}

// EndGroup closes the innermost group.
func EndGroup() Command {
	return Command{Op: OpEndGroup}
}

// PushTransform multiplies m onto the executor's transform stack:
// newTop = top · m.
func PushTransform(m Mat2D) Command {
	return Command{Op: OpPushTransform, Transform: m}
}

// PopTransform restores the previous transform.
func PopTransform() Command {
	return Command{Op: OpPopTransform}
}

// PushClipRect intersects the scissor with rect, stated in animation space.
func PushClipRect(rect Rect) Command {
	return Command{Op: OpPushClipRect, Clip: rect}
}

// PopClipRect restores the previous scissor.
func PopClipRect() Command {
	return Command{Op: OpPopClipRect}
}

// DrawImage draws the asset's unit quad scaled to its declared size under
// the current transform, modulated by the world opacity.
func DrawImage(assetID string, opacity float64) Command {
	return Command{Op: OpDrawImage, AssetID: assetID, Opacity: opacity}
}

// DrawShape fills a registered path sampled at frame.
func DrawShape(pathID PathID, fillColor Color, fillOpacity, layerOpacity, frame float64) Command {
	return Command{
		Op: OpDrawShape, PathID: pathID, FillColor: fillColor,
		FillOpacity: fillOpacity, LayerOpacity: layerOpacity, Frame: frame,
	}
}

// DrawStroke strokes a registered path sampled at frame.
func DrawStroke(pathID PathID, style StrokeStyle, layerOpacity, frame float64) Command {
	return Command{
		Op: OpDrawStroke, PathID: pathID, Stroke: style,
		LayerOpacity: layerOpacity, Frame: frame,
	}
}

// BeginMask opens one boolean mask operation of a mask-group scope.
func BeginMask(mode MaskMode, inverted bool, pathID PathID, opacity, frame float64) Command {
	return Command{
		Op: OpBeginMask, MaskMode: mode, MaskInverted: inverted,
		PathID: pathID, Opacity: opacity, Frame: frame,
	}
}

// BeginMaskAdd is the legacy additive mask command. It is accepted and
// normalized to BeginMask(MaskAdd, false, ...).
func BeginMaskAdd(pathID PathID, opacity, frame float64) Command {
	return BeginMask(MaskAdd, false, pathID, opacity, frame)
}

// EndMask closes the innermost mask operation.
func EndMask() Command {
	return Command{Op: OpEndMask}
}

// BeginMatte opens a track-matte scope. The scope body must be exactly two
// groups: the matte source, then the matte consumer.
func BeginMatte(mode MatteMode) Command {
	return Command{Op: OpBeginMatte, MatteMode: mode}
}

// EndMatte closes a track-matte scope.
func EndMatte() Command {
	return Command{Op: OpEndMatte}
}
