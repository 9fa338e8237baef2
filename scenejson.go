package scenery

import (
	"encoding/json"
	"fmt"
	"strings"
)

// supportedSchemaVersion is the scene JSON contract this engine implements.
const supportedSchemaVersion = "0.1"

// --- Scene document model (decode targets) ---

// SceneDoc is the decoded scene.json.
type SceneDoc struct {
	SchemaVersion string     `json:"schemaVersion"`
	SceneID       string     `json:"sceneId"`
	Canvas        CanvasDoc  `json:"canvas"`
	Background    string     `json:"background,omitempty"`
	MediaBlocks   []BlockDoc `json:"mediaBlocks"`
}

// CanvasDoc declares the scene's pixel size and timebase.
type CanvasDoc struct {
	Width          int `json:"width"`
	Height         int `json:"height"`
	FPS            int `json:"fps"`
	DurationFrames int `json:"durationFrames"`
}

// Size returns the canvas size as a vector.
func (c CanvasDoc) Size() Vec2 {
	return Vec2{X: float64(c.Width), Y: float64(c.Height)}
}

// RectDoc is a JSON rectangle.
type RectDoc struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect converts to the engine rectangle type.
func (r RectDoc) Rect() Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// TimingDoc is a block's visibility window in scene frames.
type TimingDoc struct {
	StartFrame int `json:"startFrame"`
	EndFrame   int `json:"endFrame"`
}

// BlockDoc is one media placeholder declaration.
type BlockDoc struct {
	BlockID       string       `json:"blockId"`
	ZIndex        int          `json:"zIndex"`
	Rect          RectDoc      `json:"rect"`
	ContainerClip string       `json:"containerClip,omitempty"`
	Timing        *TimingDoc   `json:"timing,omitempty"`
	Input         InputDoc     `json:"input"`
	Variants      []VariantDoc `json:"variants"`
}

// UserTransformsDoc declares which gestures the UI may apply to a block.
type UserTransformsDoc struct {
	Pan    bool `json:"pan"`
	Zoom   bool `json:"zoom"`
	Rotate bool `json:"rotate"`
}

// InputDoc declares a block's media input surface.
type InputDoc struct {
	Rect                  RectDoc           `json:"rect"`
	BindingKey            string            `json:"bindingKey,omitempty"`
	MaskRef               string            `json:"maskRef,omitempty"`
	HitTest               string            `json:"hitTest,omitempty"`
	AllowedMedia          []string          `json:"allowedMedia"`
	EmptyPolicy           string            `json:"emptyPolicy,omitempty"`
	FitModesAllowed       []string          `json:"fitModesAllowed,omitempty"`
	DefaultFit            string            `json:"defaultFit,omitempty"`
	UserTransformsAllowed UserTransformsDoc `json:"userTransformsAllowed"`
}

// LoopRangeDoc is a variant's loop window in animation frames.
type LoopRangeDoc struct {
	StartFrame int `json:"startFrame"`
	EndFrame   int `json:"endFrame"`
}

// VariantDoc is one animation variant of a block.
type VariantDoc struct {
	VariantID             string        `json:"variantId"`
	AnimRef               string        `json:"animRef"`
	DefaultDurationFrames int           `json:"defaultDurationFrames,omitempty"`
	LoopRange             *LoopRangeDoc `json:"loopRange,omitempty"`
	IfAnimationShorter    string        `json:"ifAnimationShorter,omitempty"`
	IfAnimationLonger     string        `json:"ifAnimationLonger,omitempty"`
}

// DecodeScene parses scene JSON bytes into a SceneDoc.
func DecodeScene(data []byte) (*SceneDoc, error) {
	var doc SceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scenery: failed to parse scene JSON: %w", err)
	}
	return &doc, nil
}

// --- Validation ---

// validMediaTypes is the closed set of allowedMedia values.
var validMediaTypes = map[string]bool{
	string(MediaPhoto): true,
	string(MediaVideo): true,
	string(MediaColor): true,
}

// ValidateScene checks the scene document against the v0.1 contract and
// appends all findings to report. Warnings never block compilation.
func ValidateScene(doc *SceneDoc, report *Report) {
	if doc.SchemaVersion != supportedSchemaVersion {
		report.Errorf(CodeSceneUnsupportedVersion, "scene.schemaVersion",
			"schema version %q is not supported (want %q)", doc.SchemaVersion, supportedSchemaVersion)
	}
	validateCanvas(doc.Canvas, report)

	if len(doc.MediaBlocks) == 0 {
		report.Errorf(CodeBlocksEmpty, "scene.mediaBlocks", "scene has no media blocks")
	}

	seenIDs := make(map[string]bool, len(doc.MediaBlocks))
	for i := range doc.MediaBlocks {
		b := &doc.MediaBlocks[i]
		path := fmt.Sprintf("scene.mediaBlocks[%d]", i)
		if seenIDs[b.BlockID] {
			report.Errorf(CodeBlockIDDuplicate, path+".blockId", "duplicate block id %q", b.BlockID)
		}
		seenIDs[b.BlockID] = true
		validateBlock(b, path, doc.Canvas, report)
	}
}

func validateCanvas(c CanvasDoc, report *Report) {
	if c.Width <= 0 || c.Height <= 0 {
		report.Errorf(CodeCanvasInvalidSize, "scene.canvas",
			"canvas size %dx%d is not positive", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		report.Errorf(CodeCanvasInvalidFPS, "scene.canvas.fps", "fps %d is not positive", c.FPS)
	}
	if c.DurationFrames <= 0 {
		report.Errorf(CodeCanvasInvalidDuration, "scene.canvas.durationFrames",
			"duration %d frames is not positive", c.DurationFrames)
	}
}

func validateBlock(b *BlockDoc, path string, canvas CanvasDoc, report *Report) {
	if b.Rect.Width <= 0 || b.Rect.Height <= 0 {
		report.Errorf(CodeRectInvalid, path+".rect",
			"block rect %gx%g is not positive", b.Rect.Width, b.Rect.Height)
	}

	switch b.ContainerClip {
	case "", "none", "slotRect":
	case "slotRectAfterSettle":
		// Underspecified in v0.1; treated as slotRect.
		report.Warnf(CodeContainerClipUnsupported, path+".containerClip",
			"slotRectAfterSettle is treated as slotRect")
	default:
		report.Errorf(CodeContainerClipUnsupported, path+".containerClip",
			"unknown containerClip %q", b.ContainerClip)
	}

	if b.Timing != nil {
		if b.Timing.StartFrame < 0 || b.Timing.EndFrame <= b.Timing.StartFrame {
			report.Errorf(CodeTimingInvalidRange, path+".timing",
				"timing [%d, %d) is not a valid range", b.Timing.StartFrame, b.Timing.EndFrame)
		}
	}

	validateInput(&b.Input, path+".input", report)

	if len(b.Variants) == 0 {
		report.Errorf(CodeVariantsEmpty, path+".variants", "block %q has no variants", b.BlockID)
	}
	seenVariants := make(map[string]bool, len(b.Variants))
	for vi := range b.Variants {
		v := &b.Variants[vi]
		vpath := fmt.Sprintf("%s.variants[%d]", path, vi)
		if v.VariantID == "" {
			report.Errorf(CodeVariantIDEmpty, vpath+".variantId", "variant id is empty")
		} else if seenVariants[v.VariantID] {
			report.Errorf(CodeVariantIDDuplicate, vpath+".variantId", "duplicate variant id %q", v.VariantID)
		}
		seenVariants[v.VariantID] = true
		if v.AnimRef == "" {
			report.Errorf(CodeVariantAnimRefEmpty, vpath+".animRef", "variant %q has an empty animRef", v.VariantID)
		}
		if v.DefaultDurationFrames < 0 {
			report.Errorf(CodeTimingInvalidRange, vpath+".defaultDurationFrames",
				"defaultDurationFrames %d is negative", v.DefaultDurationFrames)
		}
		if v.LoopRange != nil && v.LoopRange.StartFrame >= v.LoopRange.EndFrame {
			report.Errorf(CodeTimingInvalidRange, vpath+".loopRange",
				"loop range [%d, %d) is not a valid range", v.LoopRange.StartFrame, v.LoopRange.EndFrame)
		}
	}
}

func validateInput(in *InputDoc, path string, report *Report) {
	// An absent bindingKey decodes to "" and takes the documented default at
	// compile time, as does a present empty string; a whitespace-only key is
	// an authoring error.
	if in.BindingKey != "" && strings.TrimSpace(in.BindingKey) == "" {
		report.Errorf(CodeInputBindingKeyEmpty, path+".bindingKey", "bindingKey is blank")
	}
	if in.Rect.Width <= 0 || in.Rect.Height <= 0 {
		report.Errorf(CodeRectInvalid, path+".rect",
			"input rect %gx%g is not positive", in.Rect.Width, in.Rect.Height)
	}
	switch in.HitTest {
	case "", "mask", "rect":
	default:
		report.Errorf(CodeInputHitTestUnknown, path+".hitTest", "unknown hitTest %q", in.HitTest)
	}
	if len(in.AllowedMedia) == 0 {
		report.Errorf(CodeAllowedMediaEmpty, path+".allowedMedia", "allowedMedia is empty")
	}
	seen := make(map[string]bool, len(in.AllowedMedia))
	for _, m := range in.AllowedMedia {
		if !validMediaTypes[m] {
			report.Errorf(CodeAllowedMediaUnknown, path+".allowedMedia", "unknown media type %q", m)
		}
		if seen[m] {
			report.Errorf(CodeAllowedMediaDuplicate, path+".allowedMedia", "duplicate media type %q", m)
		}
		seen[m] = true
	}
}
