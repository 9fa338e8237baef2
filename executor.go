package scenery

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// RenderTarget is the executor's output surface: a texture plus the
// animation-space size it represents. The drawable scale is folded into the
// texture's pixel size.
type RenderTarget struct {
	Image    *ebiten.Image
	AnimSize Vec2
}

// Executor interprets render command lists against a target texture. It
// owns the texture pool, the shape vertex cache, and the compiled shaders;
// all of its state is mutated only during Execute, which is synchronous.
type Executor struct {
	registry *PathRegistry
	textures TextureProvider
	assets   map[string]AssetRef
	cfg      RendererConfig

	pool    *texturePool
	shapes  *shapeCache
	shaders shaderSet

	offscreenDepth int

	// Per-draw stats, reported in debug mode.
	statDraws      int
	statMaskScopes int
	statMattes     int
}

// NewExecutor builds an executor over a compiled scene's registry and asset
// index. textures supplies GPU textures per namespaced asset id.
func NewExecutor(registry *PathRegistry, assets map[string]AssetRef, textures TextureProvider, cfg RendererConfig) *Executor {
	if cfg.Debug {
		SetDebugMode(true)
	}
	return &Executor{
		registry: registry,
		textures: textures,
		assets:   assets,
		cfg:      cfg,
		pool:     newTexturePool(cfg.TexturePoolCap),
		shapes:   newShapeCache(cfg.ShapeCacheCap),
	}
}

// execState is the interpreter state: the current output surface, the
// animation-to-pixel mapping, and the transform/clip stacks. Offscreen
// scopes redirect target and mapping while sharing the transform stack, so
// transform pushes and pops may legally cross scope boundaries as long as
// the whole stream balances.
type execState struct {
	target         *ebiten.Image
	animToViewport Mat2D

	transforms []Mat2D
	clips      []image.Rectangle
	groupDepth int
}

// current returns the top of the transform stack.
func (st *execState) current() Mat2D {
	return st.transforms[len(st.transforms)-1]
}

// scissor returns the current clip rect in target pixels.
func (st *execState) scissor() image.Rectangle {
	return st.clips[len(st.clips)-1]
}

// dst returns the clipped drawing surface.
func (st *execState) dst() *ebiten.Image {
	sc := st.scissor()
	if sc == st.target.Bounds() {
		return st.target
	}
	return st.target.SubImage(sc).(*ebiten.Image)
}

// Execute interprets the command list into the target. On success every
// stack is back in its entry state; on error the draw is aborted and
// partial target contents may be observable.
func (x *Executor) Execute(cmds []Command, target *RenderTarget) error {
	if target == nil || target.Image == nil {
		return renderErrorf(CodeInvalidCommandStack, "execute with nil target")
	}
	st := &execState{
		target:         target.Image,
		animToViewport: animToViewport(target.AnimSize, target.Image.Bounds().Dx(), target.Image.Bounds().Dy()),
		transforms:     []Mat2D{Identity},
		clips:          []image.Rectangle{target.Image.Bounds()},
	}
	x.statDraws, x.statMaskScopes, x.statMattes = 0, 0, 0

	if err := x.run(cmds, st); err != nil {
		return err
	}
	if len(st.transforms) != 1 || len(st.clips) != 1 || st.groupDepth != 0 {
		return renderErrorf(CodeInvalidCommandStack,
			"unbalanced stacks after execution: transforms=%d clips=%d groups=%d",
			len(st.transforms)-1, len(st.clips)-1, st.groupDepth)
	}
	if globalDebug {
		debugf("draw: %d cmds, %d draws, %d mask scopes, %d mattes",
			len(cmds), x.statDraws, x.statMaskScopes, x.statMattes)
	}
	return nil
}

// run interprets a command span against the shared state. Mask and matte
// scopes are handled out-of-line and advance the cursor past their closes.
func (x *Executor) run(cmds []Command, st *execState) error {
	for i := 0; i < len(cmds); {
		cmd := &cmds[i]
		switch cmd.Op {
		case OpBeginGroup:
			st.groupDepth++
		case OpEndGroup:
			st.groupDepth--
			if st.groupDepth < 0 {
				return renderErrorf(CodeInvalidCommandStack, "EndGroup without BeginGroup")
			}
		case OpPushTransform:
			st.transforms = append(st.transforms, st.current().Mul(cmd.Transform))
		case OpPopTransform:
			if len(st.transforms) <= 1 {
				return renderErrorf(CodeInvalidCommandStack, "PopTransform below stack base")
			}
			st.transforms = st.transforms[:len(st.transforms)-1]
		case OpPushClipRect:
			st.clips = append(st.clips, x.clipRectToScissor(cmd.Clip, st))
		case OpPopClipRect:
			if len(st.clips) <= 1 {
				return renderErrorf(CodeInvalidCommandStack, "PopClipRect below stack base")
			}
			st.clips = st.clips[:len(st.clips)-1]
		case OpDrawImage:
			if err := x.drawImage(cmd, st); err != nil {
				return err
			}
		case OpDrawShape:
			if err := x.drawShape(cmd, st); err != nil {
				return err
			}
		case OpDrawStroke:
			if err := x.drawStroke(cmd, st); err != nil {
				return err
			}
		case OpBeginMask:
			next, err := x.runMaskScope(cmds, i, st)
			if err != nil {
				return err
			}
			i = next
			continue
		case OpEndMask:
			return renderErrorf(CodeInvalidCommandStack, "EndMask without BeginMask")
		case OpBeginMatte:
			next, err := x.runMatteScope(cmds, i, st)
			if err != nil {
				return err
			}
			i = next
			continue
		case OpEndMatte:
			return renderErrorf(CodeInvalidCommandStack, "EndMatte without BeginMatte")
		}
		i++
	}
	return nil
}

// clipRectToScissor projects a clip rect (animation space) into target
// pixels through animToViewport only — clips are stated in animation space
// but scissor operates on projected pixel coordinates, not the current
// model transform. Floor the mins, ceil the maxes, clamp to the target,
// intersect with the current scissor.
func (x *Executor) clipRectToScissor(r Rect, st *execState) image.Rectangle {
	corners := [4][2]float64{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		px, py := st.animToViewport.Apply(c[0], c[1])
		minX = min(minX, px)
		minY = min(minY, py)
		maxX = max(maxX, px)
		maxY = max(maxY, py)
	}
	scissor := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
	return scissor.Intersect(st.target.Bounds()).Intersect(st.scissor())
}

// drawImage draws the asset's quad, scaled from texture pixels to its
// declared animation-space size, under MVP = animToViewport · current.
func (x *Executor) drawImage(cmd *Command, st *execState) error {
	tex := x.textures.Texture(cmd.AssetID)
	if tex == nil {
		return renderErrorf(CodeNoTextureForAsset, "no texture for asset %q", cmd.AssetID)
	}
	tb := tex.Bounds()
	texW := float64(tb.Dx())
	texH := float64(tb.Dy())

	declW, declH := texW, texH
	if ref, ok := x.assets[cmd.AssetID]; ok && ref.Size.X > 0 && ref.Size.Y > 0 {
		declW, declH = ref.Size.X, ref.Size.Y
	}

	mvp := st.animToViewport.Mul(st.current())
	alpha := float32(clamp01(cmd.Opacity))

	corners := [4][2]float64{{0, 0}, {declW, 0}, {declW, declH}, {0, declH}}
	uvs := [4][2]float32{{0, 0}, {float32(texW), 0}, {float32(texW), float32(texH)}, {0, float32(texH)}}
	var verts [4]ebiten.Vertex
	for i := range corners {
		px, py := mvp.Apply(corners[i][0], corners[i][1])
		verts[i] = ebiten.Vertex{
			DstX: float32(px), DstY: float32(py),
			SrcX: uvs[i][0], SrcY: uvs[i][1],
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: alpha,
		}
	}
	indices := []uint16{0, 1, 2, 0, 2, 3}

	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	st.dst().DrawTriangles(verts[:], indices, tex, &op)
	x.statDraws++
	return nil
}

// drawShape fills a registered path sampled at the command's frame.
func (x *Executor) drawShape(cmd *Command, st *execState) error {
	res := x.registry.Lookup(cmd.PathID)
	if res == nil {
		return renderErrorf(CodeMissingPathResource, "no path resource for id %d", cmd.PathID)
	}
	mesh := x.shapes.mesh(cmd.PathID)
	mesh.positions = res.SamplePositions(cmd.Frame, mesh.positions)

	alpha := clamp01(cmd.FillColor.A * cmd.FillOpacity * cmd.LayerOpacity)
	mesh.verts = buildTriangleVerts(mesh.verts[:0], mesh.positions,
		st.animToViewport.Mul(st.current()),
		float32(cmd.FillColor.R), float32(cmd.FillColor.G), float32(cmd.FillColor.B), float32(alpha))

	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	st.dst().DrawTriangles(mesh.verts, res.Indices, WhitePixel, &op)
	x.statDraws++
	return nil
}

// drawStroke expands the sampled outline to a ribbon and fills it.
func (x *Executor) drawStroke(cmd *Command, st *execState) error {
	res := x.registry.Lookup(cmd.PathID)
	if res == nil {
		return renderErrorf(CodeMissingPathResource, "no path resource for id %d", cmd.PathID)
	}
	mesh := x.shapes.mesh(cmd.PathID)
	mesh.positions = res.SamplePositions(cmd.Frame, mesh.positions)

	points := make([]Vec2, len(mesh.positions)/2)
	for i := range points {
		points[i] = Vec2{X: mesh.positions[i*2], Y: mesh.positions[i*2+1]}
	}
	ribbon, indices := expandPolyline(points, cmd.Stroke.Width, true)
	if ribbon == nil {
		return nil
	}

	flat := make([]float64, len(ribbon)*2)
	for i, p := range ribbon {
		flat[i*2] = p.X
		flat[i*2+1] = p.Y
	}
	alpha := clamp01(cmd.Stroke.Color.A * cmd.Stroke.Opacity * cmd.LayerOpacity)
	verts := buildTriangleVerts(nil, flat,
		st.animToViewport.Mul(st.current()),
		float32(cmd.Stroke.Color.R), float32(cmd.Stroke.Color.G), float32(cmd.Stroke.Color.B), float32(alpha))

	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	st.dst().DrawTriangles(verts, indices, WhitePixel, &op)
	x.statDraws++
	return nil
}

// buildTriangleVerts appends transformed, tinted vertices for a flattened
// [x, y, ...] position array, sampling the white pixel's center.
func buildTriangleVerts(dst []ebiten.Vertex, positions []float64, mvp Mat2D, r, g, b, a float32) []ebiten.Vertex {
	for i := 0; i+1 < len(positions); i += 2 {
		px, py := mvp.Apply(positions[i], positions[i+1])
		dst = append(dst, ebiten.Vertex{
			DstX: float32(px), DstY: float32(py),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}
	return dst
}

// runStateOnly applies a span's stack effects (transforms, clips, groups)
// without drawing. Used when a scope's output is fully clipped away but the
// stream's balance must be preserved.
func (x *Executor) runStateOnly(cmds []Command, st *execState) error {
	for i := range cmds {
		switch cmds[i].Op {
		case OpBeginGroup:
			st.groupDepth++
		case OpEndGroup:
			st.groupDepth--
			if st.groupDepth < 0 {
				return renderErrorf(CodeInvalidCommandStack, "EndGroup without BeginGroup")
			}
		case OpPushTransform:
			st.transforms = append(st.transforms, st.current().Mul(cmds[i].Transform))
		case OpPopTransform:
			if len(st.transforms) <= 1 {
				return renderErrorf(CodeInvalidCommandStack, "PopTransform below stack base")
			}
			st.transforms = st.transforms[:len(st.transforms)-1]
		case OpPushClipRect:
			st.clips = append(st.clips, x.clipRectToScissor(cmds[i].Clip, st))
		case OpPopClipRect:
			if len(st.clips) <= 1 {
				return renderErrorf(CodeInvalidCommandStack, "PopClipRect below stack base")
			}
			st.clips = st.clips[:len(st.clips)-1]
		}
	}
	return nil
}

// enterOffscreen bumps the mask/matte depth and enforces the configured
// offscreen limit.
func (x *Executor) enterOffscreen() error {
	x.offscreenDepth++
	if x.offscreenDepth > x.cfg.MaxOffscreenDepth {
		return renderErrorf(CodeInvalidCommandStack,
			"offscreen depth %d exceeds limit %d", x.offscreenDepth, x.cfg.MaxOffscreenDepth)
	}
	return nil
}

func (x *Executor) leaveOffscreen() {
	x.offscreenDepth--
}
