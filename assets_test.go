package scenery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAssetResolverBasenameKeys(t *testing.T) {
	local := t.TempDir()
	shared := t.TempDir()
	writeFile(t, local, "img0.png")
	writeFile(t, shared, "img1.jpg")

	r, err := NewAssetResolver(local, shared)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := r.Resolve("img0"); !ok || filepath.Dir(p) != local {
		t.Fatalf("img0 resolved to %q (%v)", p, ok)
	}
	if p, ok := r.Resolve("img1"); !ok || filepath.Dir(p) != shared {
		t.Fatalf("img1 resolved to %q (%v)", p, ok)
	}
	if _, ok := r.Resolve("ghost"); ok {
		t.Error("unknown basename should not resolve")
	}
}

func TestAssetResolverLocalWinsOverShared(t *testing.T) {
	local := t.TempDir()
	shared := t.TempDir()
	writeFile(t, local, "img0.png")
	writeFile(t, shared, "img0.png")

	r, err := NewAssetResolver(local, shared)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := r.Resolve("img0")
	if !ok || filepath.Dir(p) != local {
		t.Fatalf("img0 resolved to %q, want the package-local copy", p)
	}
}

func TestValidateAssetsBindingExemption(t *testing.T) {
	r, err := NewAssetResolver(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	assets := map[string]AssetRef{
		"a.json|image_0": {Basename: "img0"},
		"a.json|image_1": {Basename: "img1"},
	}
	binding := map[string]bool{"a.json|image_0": true}

	report := &Report{}
	r.ValidateAssets(assets, binding, report)
	missing := report.ByCode(CodeAssetMissing)
	if len(missing) != 1 {
		t.Fatalf("missing diagnostics = %v, want only the non-binding asset", report.Diagnostics)
	}
}

func TestImageTextureProviderUserMediaWins(t *testing.T) {
	r, err := NewAssetResolver("", "")
	if err != nil {
		t.Fatal(err)
	}
	p := NewImageTextureProvider(r, map[string]AssetRef{})

	if p.Texture("a.json|image_0") != nil {
		t.Error("unknown asset should yield nil")
	}
	media := ebiten.NewImage(4, 4)
	p.SetUserMedia("a.json|image_0", media)
	if p.Texture("a.json|image_0") != media {
		t.Error("user media should win")
	}
	p.SetUserMedia("a.json|image_0", nil)
	if p.Texture("a.json|image_0") != nil {
		t.Error("cleared user media should yield nil again")
	}
}
