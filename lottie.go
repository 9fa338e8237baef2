package scenery

import (
	"encoding/json"
	"fmt"
)

// Lottie layer type tags (the supported subset).
const (
	lottieLayerPrecomp = 0
	lottieLayerImage   = 2
	lottieLayerNull    = 3
	lottieLayerShape   = 4
)

// --- Document model (decode targets) ---

// AnimationDoc is the decoded root of one vector animation JSON file.
// Decoding is permissive; the validator rejects unsupported constructs with
// stable codes.
type AnimationDoc struct {
	Name     string        `json:"nm,omitempty"`
	Width    float64       `json:"w"`
	Height   float64       `json:"h"`
	FPS      float64       `json:"fr"`
	InPoint  float64       `json:"ip"`
	OutPoint float64       `json:"op"`
	Assets   []AssetDoc    `json:"assets"`
	Layers   []LottieLayer `json:"layers"`
}

// AssetDoc is one entry of the root asset table: an image (u+p) or a
// precomp (layers).
type AssetDoc struct {
	ID     string        `json:"id"`
	Dir    string        `json:"u,omitempty"`
	File   string        `json:"p,omitempty"`
	Width  float64       `json:"w,omitempty"`
	Height float64       `json:"h,omitempty"`
	Layers []LottieLayer `json:"layers,omitempty"`
}

// IsPrecomp reports whether the asset is a sub-composition.
func (a *AssetDoc) IsPrecomp() bool {
	return len(a.Layers) > 0 || a.File == ""
}

// LottieLayer is one layer declaration.
type LottieLayer struct {
	Type        int           `json:"ty"`
	Index       int           `json:"ind"`
	Name        string        `json:"nm,omitempty"`
	RefID       string        `json:"refId,omitempty"`
	InPoint     float64       `json:"ip"`
	OutPoint    float64       `json:"op"`
	StartTime   float64       `json:"st"`
	Parent      *int          `json:"parent,omitempty"`
	Hidden      bool          `json:"hd,omitempty"`
	Width       float64       `json:"w,omitempty"`
	Height      float64       `json:"h,omitempty"`
	KS          LottieKS      `json:"ks"`
	Masks       []LottieMask  `json:"masksProperties,omitempty"`
	MatteType   int           `json:"tt,omitempty"`
	MatteTarget *int          `json:"tp,omitempty"`
	IsMatte     int           `json:"td,omitempty"`
	Shapes      []LottieShape `json:"shapes,omitempty"`
}

// LottieKS is the layer transform property group.
type LottieKS struct {
	Position *LottieProperty `json:"p,omitempty"`
	Scale    *LottieProperty `json:"s,omitempty"`
	Rotation *LottieProperty `json:"r,omitempty"`
	Opacity  *LottieProperty `json:"o,omitempty"`
	Anchor   *LottieProperty `json:"a,omitempty"`
}

// LottieProperty is a static (a=0) or keyframed (a=1) value. K stays raw
// until the compiler knows the property's arity.
type LottieProperty struct {
	Animated int             `json:"a"`
	K        json.RawMessage `json:"k"`
}

// LottieKeyframe is one entry of a keyframed property's k array.
type LottieKeyframe struct {
	T float64         `json:"t"`
	S json.RawMessage `json:"s,omitempty"`
	E json.RawMessage `json:"e,omitempty"`
	O *LottieTangent  `json:"o,omitempty"`
	I *LottieTangent  `json:"i,omitempty"`
	H int             `json:"h,omitempty"`
}

// LottieTangent is a keyframe easing handle. Lottie stores components as a
// number or a one-element array depending on exporter version.
type LottieTangent struct {
	X FloatOrFirst `json:"x"`
	Y FloatOrFirst `json:"y"`
}

// FloatOrFirst decodes a JSON number or takes the first element of a JSON
// number array.
type FloatOrFirst float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FloatOrFirst) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FloatOrFirst(n)
		return nil
	}
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("tangent component is neither number nor array: %w", err)
	}
	if len(arr) > 0 {
		*f = FloatOrFirst(arr[0])
	}
	return nil
}

// LottieMask is one entry of a layer's masksProperties.
type LottieMask struct {
	Mode     string          `json:"mode"`
	Inverted bool            `json:"inv,omitempty"`
	Opacity  *LottieProperty `json:"o,omitempty"`
	Path     *LottieProperty `json:"pt,omitempty"`
}

// LottieShapeValue is the vertex/tangent form of a Bézier path value.
type LottieShapeValue struct {
	Closed      bool        `json:"c"`
	Vertices    [][]float64 `json:"v"`
	InTangents  [][]float64 `json:"i"`
	OutTangents [][]float64 `json:"o"`
}

// Outline converts the shape value to a BezierOutline.
func (sv *LottieShapeValue) Outline() BezierOutline {
	o := BezierOutline{
		Closed:      sv.Closed,
		Vertices:    make([]Vec2, len(sv.Vertices)),
		InTangents:  make([]Vec2, len(sv.Vertices)),
		OutTangents: make([]Vec2, len(sv.Vertices)),
	}
	for i, v := range sv.Vertices {
		o.Vertices[i] = vecFromSlice(v)
		if i < len(sv.InTangents) {
			o.InTangents[i] = vecFromSlice(sv.InTangents[i])
		}
		if i < len(sv.OutTangents) {
			o.OutTangents[i] = vecFromSlice(sv.OutTangents[i])
		}
	}
	return o
}

func vecFromSlice(s []float64) Vec2 {
	var v Vec2
	if len(s) > 0 {
		v.X = s[0]
	}
	if len(s) > 1 {
		v.Y = s[1]
	}
	return v
}

// LottieShape is one shape item. Only gr, sh, fl, tr are supported (matte
// sources); everything else decodes and is rejected by the validator.
type LottieShape struct {
	Type       string          `json:"ty"`
	Name       string          `json:"nm,omitempty"`
	Items      []LottieShape   `json:"it,omitempty"` // gr
	Shape      *LottieProperty `json:"ks,omitempty"` // sh
	Color      *LottieProperty `json:"c,omitempty"`  // fl, st
	Opacity    *LottieProperty `json:"o,omitempty"`  // fl, st, tr
	Width      *LottieProperty `json:"w,omitempty"`  // st
	LineCap    int             `json:"lc,omitempty"` // st
	LineJoin   int             `json:"lj,omitempty"` // st
	MiterLimit float64         `json:"ml,omitempty"` // st
	Position   *LottieProperty `json:"p,omitempty"`  // tr
	Anchor     *LottieProperty `json:"a,omitempty"`  // tr
	ScaleProp  *LottieProperty `json:"s,omitempty"`  // tr
	Rotation   *LottieProperty `json:"r,omitempty"`  // tr
}

// supportedShapeTypes are the matte-source shape items the compiler lowers.
var supportedShapeTypes = map[string]bool{"gr": true, "sh": true, "fl": true, "tr": true}

// DecodeAnimation parses vector animation JSON bytes.
func DecodeAnimation(data []byte) (*AnimationDoc, error) {
	var doc AnimationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scenery: failed to parse animation JSON: %w", err)
	}
	return &doc, nil
}

// --- Validation ---

// ValidateAnimation checks one animation document against the supported
// Lottie subset and appends all findings to report. animRef names the file
// in diagnostic paths.
func ValidateAnimation(doc *AnimationDoc, animRef string, report *Report) {
	root := fmt.Sprintf("anim(%s)", animRef)
	if doc.Width <= 0 || doc.Height <= 0 || doc.FPS <= 0 || doc.OutPoint <= doc.InPoint {
		report.Errorf(CodeAnimRootInvalid, root,
			"root is invalid: w=%g h=%g fr=%g ip=%g op=%g",
			doc.Width, doc.Height, doc.FPS, doc.InPoint, doc.OutPoint)
	}

	imageAssets := make(map[string]bool)
	precompAssets := make(map[string]bool)
	for _, a := range doc.Assets {
		if a.IsPrecomp() {
			precompAssets[a.ID] = true
		} else {
			imageAssets[a.ID] = true
		}
	}

	validateLayerList(doc.Layers, root+".layers", imageAssets, precompAssets, report)
	for _, a := range doc.Assets {
		if a.IsPrecomp() {
			validateLayerList(a.Layers, fmt.Sprintf("%s.assets[%s].layers", root, a.ID),
				imageAssets, precompAssets, report)
		}
	}
}

func validateLayerList(layers []LottieLayer, path string, imageAssets, precompAssets map[string]bool, report *Report) {
	// Resolve which shape layers serve as matte sources: explicit td=1, any
	// tp target, or (legacy) the layer immediately preceding a consumer.
	matteSource := make(map[int]bool)
	indToIdx := make(map[int]int, len(layers))
	for i, l := range layers {
		indToIdx[l.Index] = i
	}
	for i, l := range layers {
		if l.IsMatte == 1 {
			matteSource[i] = true
		}
		if l.MatteType != 0 {
			if l.MatteTarget != nil {
				if idx, ok := indToIdx[*l.MatteTarget]; ok {
					matteSource[idx] = true
				}
			} else if i > 0 {
				matteSource[i-1] = true
			}
		}
	}

	for i, l := range layers {
		lpath := fmt.Sprintf("%s[%d]", path, i)
		switch l.Type {
		case lottieLayerPrecomp:
			if l.RefID == "" || !precompAssets[l.RefID] {
				report.Errorf(CodePrecompRefMissing, lpath+".refId",
					"precomp layer references unknown composition %q", l.RefID)
			}
		case lottieLayerImage:
			if l.RefID == "" || !imageAssets[l.RefID] {
				report.Errorf(CodeAssetMissing, lpath+".refId",
					"image layer references unknown asset %q", l.RefID)
			}
		case lottieLayerNull:
		case lottieLayerShape:
			// A shape layer is legal as a matte source or as the reserved
			// input-geometry layer.
			if !matteSource[i] && l.Name != MediaInputLayerName {
				report.Errorf(CodeUnsupportedLayerType, lpath+".ty",
					"shape layer %q is only supported as a matte source", l.Name)
			}
			validateShapeItems(l.Shapes, lpath+".shapes", report)
		default:
			report.Errorf(CodeUnsupportedLayerType, lpath+".ty", "layer type %d is not supported", l.Type)
		}

		if l.MatteType != 0 {
			if l.MatteType < 1 || l.MatteType > 4 {
				report.Errorf(CodeUnsupportedMatteType, lpath+".tt", "track matte type %d is not supported", l.MatteType)
			}
			if l.MatteTarget != nil {
				idx, ok := indToIdx[*l.MatteTarget]
				if !ok {
					report.Errorf(CodeMatteTargetNotFound, lpath+".tp",
						"matte target ind=%d not found", *l.MatteTarget)
				} else if idx >= i {
					report.Errorf(CodeMatteTargetInvalidOrder, lpath+".tp",
						"matte target at index %d must precede consumer at index %d", idx, i)
				}
			}
		}
		if l.IsMatte != 0 && l.IsMatte != 1 {
			report.Errorf(CodeUnsupportedMatteType, lpath+".td", "td=%d is not supported", l.IsMatte)
		}

		for mi, m := range l.Masks {
			mpath := fmt.Sprintf("%s.masksProperties[%d]", lpath, mi)
			switch m.Mode {
			case "a", "s", "i":
			default:
				report.Errorf(CodeUnsupportedMaskMode, mpath+".mode", "mask mode %q is not supported", m.Mode)
			}
			if m.Inverted {
				report.Errorf(CodeUnsupportedMaskInvert, mpath+".inv", "inverted masks are not supported")
			}
			if m.Opacity != nil && m.Opacity.Animated == 1 {
				report.Errorf(CodeUnsupportedMaskMode, mpath+".o", "animated mask opacity is not supported")
			}
			if m.Path == nil {
				report.Errorf(CodeMaskPathBuildFailed, mpath+".pt", "mask has no path")
			} else if m.Path.Animated == 1 {
				report.Errorf(CodeUnsupportedMaskPathAnimated, mpath+".pt", "animated mask paths are not supported")
			}
		}
	}
}

func validateShapeItems(items []LottieShape, path string, report *Report) {
	for i, it := range items {
		ipath := fmt.Sprintf("%s[%d]", path, i)
		if !supportedShapeTypes[it.Type] && it.Type != "st" {
			report.Errorf(CodeUnsupportedShapeItem, ipath+".ty", "shape item %q is not supported", it.Type)
			continue
		}
		if it.Type == "st" {
			// Stroke items are modeled in the runtime but stroke animation
			// beyond static values is out of contract for v0.1 sources.
			report.Errorf(CodeUnsupportedShapeItem, ipath+".ty", "stroke shape items are not supported")
			continue
		}
		if it.Type == "gr" {
			validateShapeItems(it.Items, ipath+".it", report)
		}
	}
}
