package scenery

import "github.com/hajimehoshi/ebiten/v2"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// WhitePixel is a 1x1 white image used as the texture for solid-color
// triangle fills (shape draws, coverage passes).
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest Rect containing both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// FrameRange is a half-open frame window [Start, End).
type FrameRange struct {
	Start, End int
}

// Contains reports whether frame lies inside the half-open window.
func (fr FrameRange) Contains(frame int) bool {
	return frame >= fr.Start && frame < fr.End
}

// RenderMode selects the render plan emission policy.
type RenderMode uint8

const (
	// ModePreview renders each block's selected (or overridden) variant.
	ModePreview RenderMode = iota
	// ModeEdit renders each block's mandatory "no-anim" variant. User
	// transforms apply to the binding layer in both modes.
	ModeEdit
)

// MaskMode is the boolean operation a mask applies to the accumulated
// coverage.
type MaskMode uint8

const (
	MaskAdd       MaskMode = iota // acc + coverage
	MaskSubtract                  // acc * (1 - coverage)
	MaskIntersect                 // acc * coverage
)

// MatteMode selects how a track matte source modulates its consumer.
type MatteMode uint8

const (
	MatteAlpha         MatteMode = iota // factor = source alpha
	MatteAlphaInverted                  // factor = 1 - source alpha
	MatteLuma                           // factor = Rec. 709 luma of source
	MatteLumaInverted                   // factor = 1 - luma
)

// ContainerClip controls whether a block's content is clipped to the block
// rect at render time.
type ContainerClip uint8

const (
	ClipNone   ContainerClip = iota // content may overflow the block rect
	ClipToRect                      // content is scissored to the block rect
)

// HitTestMode selects how pointer hits are classified for a block.
type HitTestMode uint8

const (
	// HitTestRect uses point-in-rect on the block's canvas rectangle.
	HitTestRect HitTestMode = iota
	// HitTestMask uses even-odd point-in-polygon on the block's media input
	// outline, transformed to canvas space.
	HitTestMask
)

// OverlapPolicy maps the scene frame index to a variant-local frame when the
// variant's animation is shorter or longer than the block's window.
type OverlapPolicy uint8

const (
	// HoldLastFrame clamps the local frame to the animation's last frame
	// (out point minus one).
	// This is the default policy.
	HoldLastFrame OverlapPolicy = iota
	// LoopRange wraps the local frame inside the variant's loop range.
	LoopRange
	// Cut stops emitting the block once the animation's out point passes.
	Cut
)

// MediaType is a kind of user media a block accepts.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaColor MediaType = "color"
)

// FitMode controls how user media is initially fitted into the input rect.
type FitMode string

const (
	FitCover   FitMode = "cover"
	FitContain FitMode = "contain"
)

// LineCap is a stroke end-cap style.
type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin is a stroke corner style.
type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// SelectionState classifies a block's overlay highlight.
type SelectionState uint8

const (
	SelectionInactive SelectionState = iota
	SelectionHover
	SelectionSelected
)

// EditVariantID is the reserved variant identifier every block must expose
// for edit mode.
const EditVariantID = "no-anim"

// MediaInputLayerName is the reserved shape layer name providing a block's
// input-clip geometry inside the edit variant.
const MediaInputLayerName = "mediaInput"

// DefaultBindingKey is the layer name bound to user media when a block does
// not override input.bindingKey.
const DefaultBindingKey = "media"

// EditFrame is the fixed frame at which edit mode samples animations.
const EditFrame = 0

// toRGBA converts a scenery Color to a color.RGBA (premultiplied).
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface for image.Fill.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// globalDebug is the package-wide debug flag set by SetDebugMode, checked
// cheaply by helpers before formatting debug output. It is shared by every
// runtime and executor in the process; the last SetDebugMode call wins.
var globalDebug bool
