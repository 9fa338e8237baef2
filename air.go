package scenery

// CompID identifies a composition within one animation. The root
// composition uses the reserved identifier RootCompID.
type CompID string

// RootCompID is the reserved identifier of an animation's root composition.
const RootCompID CompID = "__root__"

// LayerType distinguishes the supported AIR layer kinds.
type LayerType uint8

const (
	LayerPrecomp LayerType = iota
	LayerImage
	LayerNull
	LayerShapeMatte
)

// String returns the layer type name used in diagnostics.
func (t LayerType) String() string {
	switch t {
	case LayerPrecomp:
		return "precomp"
	case LayerImage:
		return "image"
	case LayerNull:
		return "null"
	case LayerShapeMatte:
		return "shape-matte"
	default:
		return "unknown"
	}
}

// LayerTiming is a layer's visibility window and precomp time offset, all in
// composition-local frames. StartTime is the offset applied when descending
// into a precomp: childFrame = parentFrame - StartTime.
type LayerTiming struct {
	InPoint   float64
	OutPoint  float64
	StartTime float64
}

// visibleAt reports whether the layer is live at the composition frame.
func (t LayerTiming) visibleAt(frame float64) bool {
	return frame >= t.InPoint && frame < t.OutPoint
}

// Mask is one boolean mask on a layer. Opacity is static per the v0.1
// contract; the path may be keyframed in the registry.
type Mask struct {
	Mode     MaskMode
	Inverted bool
	Opacity  float64
	PathID   PathID
}

// Matte marks a layer as a track-matte consumer referencing its source by
// layer id within the same composition.
type Matte struct {
	Mode          MatteMode
	SourceLayerID int
}

// StrokeStyle is the static stroke of a shape-matte layer.
type StrokeStyle struct {
	Color      Color
	Opacity    float64
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// ShapeContent is the drawable content of a shape-matte layer: one
// registered path with a fill and an optional stroke.
type ShapeContent struct {
	PathID      PathID
	FillColor   Color
	FillOpacity float64
	Stroke      *StrokeStyle
}

// Layer is one compiled AIR layer. A single flat struct is used for all
// layer types to avoid interface dispatch on the hot path.
type Layer struct {
	ID     int // the source layer index (Lottie ind), unique per composition
	Name   string
	Type   LayerType
	Hidden bool

	Timing   LayerTiming
	ParentID *int // references a layer id within the same composition

	Transform TransformTracks
	Masks     []Mask

	Matte         *Matte
	IsMatteSource bool

	// Content, by Type.
	AssetID   string // image: namespaced "<animRef>|<originalId>"
	AssetSize Vec2   // image: declared size in animation units
	CompRef   CompID // precomp
	Shape     *ShapeContent
}

// Composition is an ordered layer list with an intrinsic size.
type Composition struct {
	ID     CompID
	Size   Vec2
	Layers []Layer
}

// layerByID returns the layer with the given id, or nil.
func (c *Composition) layerByID(id int) *Layer {
	for i := range c.Layers {
		if c.Layers[i].ID == id {
			return &c.Layers[i]
		}
	}
	return nil
}

// Binding names the unique user-replaceable image layer of an animation.
type Binding struct {
	Key     string
	LayerID int
	AssetID string
	CompID  CompID
}

// AssetRef locates one image asset of an animation.
type AssetRef struct {
	Path     string
	Size     Vec2
	Basename string
}

// MediaInputRef locates the "mediaInput" shape layer providing a block's
// input-clip geometry.
type MediaInputRef struct {
	CompID  CompID
	LayerID int
}

// AnimMeta is the identifying metadata of one compiled animation.
type AnimMeta struct {
	Width         float64
	Height        float64
	FPS           float64
	InPoint       float64
	OutPoint      float64
	SourceAnimRef string
}

// Size returns the animation's intrinsic size.
func (m AnimMeta) Size() Vec2 {
	return Vec2{X: m.Width, Y: m.Height}
}

// DurationFrames returns the animation's frame count.
func (m AnimMeta) DurationFrames() int {
	return int(m.OutPoint - m.InPoint)
}

// Animation is the compiled intermediate representation (AIR) of one vector
// animation document. Immutable after compile.
type Animation struct {
	Meta       AnimMeta
	Comps      map[CompID]*Composition
	Root       *Composition
	Binding    *Binding
	Assets     map[string]AssetRef // keyed by namespaced asset id
	MediaInput *MediaInputRef      // nil when the animation has no input geometry
}

// comp returns the composition with the given id, or nil.
func (a *Animation) comp(id CompID) *Composition {
	return a.Comps[id]
}

// mediaInputLayer returns the composition and layer of the input geometry,
// or nils when absent.
func (a *Animation) mediaInputLayer() (*Composition, *Layer) {
	if a.MediaInput == nil {
		return nil, nil
	}
	comp := a.Comps[a.MediaInput.CompID]
	if comp == nil {
		return nil, nil
	}
	return comp, comp.layerByID(a.MediaInput.LayerID)
}
