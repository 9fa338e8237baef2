package scenery

import (
	"errors"
	"testing"
)

func compileTestAnimation(t *testing.T, data, animRef string) (*Animation, *PathRegistry) {
	t.Helper()
	doc, err := DecodeAnimation([]byte(data))
	if err != nil {
		t.Fatalf("DecodeAnimation: %v", err)
	}
	reg := NewPathRegistry()
	anim, err := CompileAnimation(doc, animRef, DefaultBindingKey, reg)
	if err != nil {
		t.Fatalf("CompileAnimation: %v", err)
	}
	return anim, reg
}

func TestCompileAnimationMeta(t *testing.T) {
	anim, _ := compileTestAnimation(t, animFadeJSON, "anim-1.json")
	if anim.Meta.Width != 540 || anim.Meta.Height != 960 || anim.Meta.FPS != 30 {
		t.Fatalf("meta = %+v", anim.Meta)
	}
	if anim.Meta.SourceAnimRef != "anim-1.json" {
		t.Fatalf("sourceAnimRef = %q", anim.Meta.SourceAnimRef)
	}
	if anim.Root == nil || len(anim.Root.Layers) != 1 {
		t.Fatal("root composition should hold one layer")
	}
}

func TestCompileAnimationNamespacesAssets(t *testing.T) {
	anim, _ := compileTestAnimation(t, animFadeJSON, "anim-1.json")
	ref, ok := anim.Assets["anim-1.json|image_0"]
	if !ok {
		t.Fatalf("assets = %v, want namespaced image_0", anim.Assets)
	}
	if ref.Basename != "img0" {
		t.Fatalf("basename = %q, want img0", ref.Basename)
	}
	if anim.Root.Layers[0].AssetID != "anim-1.json|image_0" {
		t.Fatalf("layer asset id = %q", anim.Root.Layers[0].AssetID)
	}
}

func TestCompileAnimationRegistersMaskPath(t *testing.T) {
	_, reg := compileTestAnimation(t, animFadeJSON, "anim-1.json")
	if reg.Len() != 1 {
		t.Fatalf("registry holds %d paths, want 1", reg.Len())
	}
}

func TestCompileAnimationBindingDiscovery(t *testing.T) {
	anim, _ := compileTestAnimation(t, animFadeJSON, "anim-1.json")
	b := anim.Binding
	if b == nil || b.Key != "media" || b.CompID != RootCompID {
		t.Fatalf("binding = %+v", b)
	}
	if b.AssetID != "anim-1.json|image_0" {
		t.Fatalf("binding asset = %q", b.AssetID)
	}
}

func TestCompileAnimationBindingInPrecomp(t *testing.T) {
	anim, _ := compileTestAnimation(t, animNestedJSON, "anim-4.json")
	if anim.Binding == nil || anim.Binding.CompID != "comp_inner" {
		t.Fatalf("binding = %+v, want discovery inside comp_inner", anim.Binding)
	}
}

func TestCompileAnimationBindingNotFound(t *testing.T) {
	doc, err := DecodeAnimation([]byte(`{"w":540,"h":960,"fr":30,"ip":0,"op":300,
		"assets":[` + imageAssetJSON + `],
		"layers":[{"ty":2,"ind":1,"nm":"poster","refId":"image_0","ip":0,"op":300,"st":0,"ks":{}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = CompileAnimation(doc, "x.json", DefaultBindingKey, NewPathRegistry())
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Code != CodeBindingLayerNotFound {
		t.Fatalf("err = %v, want %s", err, CodeBindingLayerNotFound)
	}
}

func TestCompileAnimationBindingNotImage(t *testing.T) {
	doc, err := DecodeAnimation([]byte(`{"w":540,"h":960,"fr":30,"ip":0,"op":300,"assets":[],
		"layers":[{"ty":3,"ind":1,"nm":"media","ip":0,"op":300,"st":0,"ks":{}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = CompileAnimation(doc, "x.json", DefaultBindingKey, NewPathRegistry())
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Code != CodeBindingLayerNotImage {
		t.Fatalf("err = %v, want %s", err, CodeBindingLayerNotImage)
	}
}

func TestCompileAnimationMattePairingExplicitTarget(t *testing.T) {
	anim, _ := compileTestAnimation(t, `{"w":540,"h":960,"fr":30,"ip":0,"op":300,
		"assets":[`+imageAssetJSON+`],
		"layers":[`+matteShapeLayerJSON+`,
		{"ty":2,"ind":7,"nm":"filler","refId":"image_0","ip":0,"op":300,"st":0,"ks":{}},
		{"ty":2,"ind":2,"nm":"media","refId":"image_0","tt":3,"tp":1,"ip":0,"op":300,"st":0,"ks":{}}]}`,
		"x.json")

	consumer := anim.Root.layerByID(2)
	if consumer == nil || consumer.Matte == nil {
		t.Fatal("consumer layer should carry a matte")
	}
	if consumer.Matte.Mode != MatteLuma || consumer.Matte.SourceLayerID != 1 {
		t.Fatalf("matte = %+v, want luma of layer 1", consumer.Matte)
	}
	if !anim.Root.layerByID(1).IsMatteSource {
		t.Error("tp target should be an implicit matte source")
	}
	if anim.Root.layerByID(7).IsMatteSource {
		t.Error("unreferenced layer must not be a matte source")
	}
}

func TestCompileAnimationMattePairingAdjacency(t *testing.T) {
	anim, _ := compileTestAnimation(t, animSlideJSON, "anim-2.json")
	consumer := anim.Root.layerByID(2)
	if consumer.Matte == nil || consumer.Matte.Mode != MatteAlpha || consumer.Matte.SourceLayerID != 1 {
		t.Fatalf("matte = %+v, want alpha of preceding source", consumer.Matte)
	}
	if !anim.Root.layerByID(1).IsMatteSource {
		t.Error("td=1 layer should stay a matte source")
	}
}

func TestCompileAnimationMatteTargetOrderFatal(t *testing.T) {
	doc, err := DecodeAnimation([]byte(`{"w":540,"h":960,"fr":30,"ip":0,"op":300,
		"assets":[` + imageAssetJSON + `],
		"layers":[
		{"ty":2,"ind":1,"nm":"media","refId":"image_0","tt":1,"tp":2,"ip":0,"op":300,"st":0,"ks":{}},
		{"ty":2,"ind":2,"nm":"late","refId":"image_0","ip":0,"op":300,"st":0,"ks":{}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = CompileAnimation(doc, "x.json", DefaultBindingKey, NewPathRegistry())
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Code != CodeMatteTargetInvalidOrder {
		t.Fatalf("err = %v, want %s", err, CodeMatteTargetInvalidOrder)
	}
}

func TestCompileAnimationPrecompStructure(t *testing.T) {
	anim, _ := compileTestAnimation(t, animNestedJSON, "anim-4.json")
	if len(anim.Comps) != 3 {
		t.Fatalf("compiled %d comps, want 3 (root + 2 precomps)", len(anim.Comps))
	}
	outer := anim.Root.Layers[0]
	if outer.Type != LayerPrecomp || outer.CompRef != "comp_outer" {
		t.Fatalf("root layer = %+v", outer)
	}
	inner := anim.Comps["comp_outer"].Layers[0]
	if inner.Type != LayerPrecomp || inner.CompRef != "comp_inner" {
		t.Fatalf("outer layer = %+v", inner)
	}
}

func TestCompileAnimationMediaInputDiscovery(t *testing.T) {
	anim, reg := compileTestAnimation(t, animNoAnimJSON, "no-anim-all.json")
	if anim.MediaInput == nil {
		t.Fatal("no-anim animation should expose mediaInput")
	}
	comp, layer := anim.mediaInputLayer()
	if comp == nil || layer == nil || layer.Shape == nil {
		t.Fatal("mediaInput layer should carry shape content")
	}
	if reg.Lookup(layer.Shape.PathID) == nil {
		t.Fatal("mediaInput path should be registered")
	}
}

func TestCompileAnimationOpacityTrack(t *testing.T) {
	anim, _ := compileTestAnimation(t, animFadeJSON, "anim-1.json")
	op := &anim.Root.Layers[0].Transform.Opacity
	if got := op.Sample(0); !almostEqual(got, 0, 1e-6) {
		t.Errorf("opacity at 0 = %g, want 0", got)
	}
	if got := op.Sample(15); !almostEqual(got, 50, 0.5) {
		t.Errorf("opacity at 15 = %g, want ≈50", got)
	}
	if got := op.Sample(30); !almostEqual(got, 100, 1e-6) {
		t.Errorf("opacity at 30 = %g, want 100", got)
	}
}
