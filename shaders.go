package scenery

import "github.com/hajimehoshi/ebiten/v2"

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine. Ebitengine
// textures are premultiplied; the mask and matte math below operates on
// premultiplied values directly, preserving source-over semantics.

// maskCombineShaderSrc folds one coverage pass into the ping-pong
// accumulator. Src0 is the op's coverage, src1 the incoming accumulator.
// Mode: 0 = add, 1 = subtract, 2 = intersect.
const maskCombineShaderSrc = `//kage:unit pixels

package main

var Mode float
var Inverted float
var Opacity float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	cov := imageSrc0At(src).a
	acc := imageSrc1At(src).a
	if Inverted > 0.5 {
		cov = 1.0 - cov
	}
	cov *= Opacity
	out := acc
	if Mode < 0.5 {
		out = clamp(acc+cov, 0.0, 1.0)
	} else if Mode < 1.5 {
		out = acc * (1.0 - cov)
	} else {
		out = acc * cov
	}
	return vec4(out)
}
`

// maskCompositeShaderSrc multiplies rendered content by the final mask and
// writes the result at the bbox position in the parent target.
const maskCompositeShaderSrc = `//kage:unit pixels

package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	content := imageSrc0At(src)
	mask := imageSrc1At(src).a
	return content * mask
}
`

// matteCompositeShaderSrc modulates the consumer by a per-pixel factor
// computed from the matte source. Mode: 0 = alpha, 1 = alphaInverted,
// 2 = luma, 3 = lumaInverted.
const matteCompositeShaderSrc = `//kage:unit pixels

package main

var Mode float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	consumer := imageSrc0At(src)
	matte := imageSrc1At(src)
	luma := 0.2126*matte.r + 0.7152*matte.g + 0.0722*matte.b
	f := matte.a
	if Mode > 2.5 {
		f = 1.0 - luma
	} else if Mode > 1.5 {
		f = luma
	} else if Mode > 0.5 {
		f = 1.0 - matte.a
	}
	return consumer * f
}
`

// shaderSet lazily compiles the executor's shaders. No sync.Once — the
// engine is single-threaded.
type shaderSet struct {
	maskCombine   *ebiten.Shader
	maskComposite *ebiten.Shader
	matte         *ebiten.Shader
}

func (s *shaderSet) ensureMaskCombine() *ebiten.Shader {
	if s.maskCombine == nil {
		s.maskCombine = mustCompileShader("mask combine", maskCombineShaderSrc)
	}
	return s.maskCombine
}

func (s *shaderSet) ensureMaskComposite() *ebiten.Shader {
	if s.maskComposite == nil {
		s.maskComposite = mustCompileShader("mask composite", maskCompositeShaderSrc)
	}
	return s.maskComposite
}

func (s *shaderSet) ensureMatte() *ebiten.Shader {
	if s.matte == nil {
		s.matte = mustCompileShader("matte composite", matteCompositeShaderSrc)
	}
	return s.matte
}

func mustCompileShader(name, src string) *ebiten.Shader {
	sh, err := ebiten.NewShader([]byte(src))
	if err != nil {
		panic("scenery: failed to compile " + name + " shader: " + err.Error())
	}
	return sh
}
