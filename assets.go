package scenery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/hajimehoshi/ebiten/v2"
)

// ScenePackage is the loader's hand-off to the compiler: the decoded-or-raw
// scene description, the animation files keyed by animRef, and the package's
// image root. Archive expansion, path-traversal hardening, and size limits
// are the loader's responsibility.
type ScenePackage struct {
	SceneJSON     []byte
	AnimJSONByRef map[string][]byte
	ImagesRoot    string
}

// AssetResolver maps asset basenames (without extension) to file paths. The
// package-local index is consulted first, then the shared process-scoped
// catalog.
type AssetResolver struct {
	local  map[string]string
	shared map[string]string
}

// NewAssetResolver builds a resolver over a package-local directory and an
// optional shared catalog directory. Either may be empty.
func NewAssetResolver(localRoot, sharedRoot string) (*AssetResolver, error) {
	r := &AssetResolver{
		local:  make(map[string]string),
		shared: make(map[string]string),
	}
	if localRoot != "" {
		if err := indexDir(localRoot, r.local); err != nil {
			return nil, fmt.Errorf("scenery: failed to index package images: %w", err)
		}
	}
	if sharedRoot != "" {
		if err := indexDir(sharedRoot, r.shared); err != nil {
			return nil, fmt.Errorf("scenery: failed to index shared catalog: %w", err)
		}
	}
	return r, nil
}

// indexDir maps each file's basename (without extension) to its full path.
// Later entries with the same basename win, matching directory order.
func indexDir(root string, index map[string]string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		key := strings.TrimSuffix(name, filepath.Ext(name))
		index[key] = filepath.Join(root, name)
	}
	return nil
}

// Resolve returns the file path for an asset basename, package-local first.
func (r *AssetResolver) Resolve(basename string) (string, bool) {
	if p, ok := r.local[basename]; ok {
		return p, true
	}
	p, ok := r.shared[basename]
	return p, ok
}

// ValidateAssets checks that every referenced asset resolves. Binding assets
// are exempt: their slots are filled with user media at runtime, so an
// unresolved binding asset is a legitimate placeholder, not a corrupt
// package.
func (r *AssetResolver) ValidateAssets(assets map[string]AssetRef, bindingAssets map[string]bool, report *Report) {
	for _, id := range sortedKeys(assets) {
		if bindingAssets[id] {
			continue
		}
		if _, ok := r.Resolve(assets[id].Basename); !ok {
			report.Errorf(CodeAssetMissing, "assets."+id,
				"asset %q does not resolve in the package or shared catalog", assets[id].Basename)
		}
	}
}

// TextureProvider supplies GPU textures for namespaced asset ids. The
// platform texture loader implements this; tests substitute fakes.
type TextureProvider interface {
	// Texture returns the texture for a namespaced asset id, or nil when the
	// asset has no texture loaded.
	Texture(assetID string) *ebiten.Image
}

// ImageTextureProvider is the default TextureProvider: it decodes files
// through the resolver on first use and keeps decoded textures for the
// process lifetime. User media is injected per binding asset id.
type ImageTextureProvider struct {
	resolver  *AssetResolver
	assets    map[string]AssetRef
	textures  map[string]*ebiten.Image
	userMedia map[string]*ebiten.Image
}

// NewImageTextureProvider builds a provider over a compiled scene's asset
// index.
func NewImageTextureProvider(resolver *AssetResolver, assets map[string]AssetRef) *ImageTextureProvider {
	return &ImageTextureProvider{
		resolver:  resolver,
		assets:    assets,
		textures:  make(map[string]*ebiten.Image),
		userMedia: make(map[string]*ebiten.Image),
	}
}

// SetUserMedia injects (or clears, with nil) the user's media texture for a
// binding asset id.
func (p *ImageTextureProvider) SetUserMedia(assetID string, img *ebiten.Image) {
	if img == nil {
		delete(p.userMedia, assetID)
		return
	}
	p.userMedia[assetID] = img
}

// Texture implements TextureProvider. User media wins over package assets.
func (p *ImageTextureProvider) Texture(assetID string) *ebiten.Image {
	if img, ok := p.userMedia[assetID]; ok {
		return img
	}
	if img, ok := p.textures[assetID]; ok {
		return img
	}
	ref, ok := p.assets[assetID]
	if !ok {
		return nil
	}
	path, ok := p.resolver.Resolve(ref.Basename)
	if !ok {
		return nil
	}
	src, err := imaging.Open(path)
	if err != nil {
		if globalDebug {
			debugf("failed to decode asset %q: %v", assetID, err)
		}
		return nil
	}
	img := ebiten.NewImageFromImage(src)
	p.textures[assetID] = img
	return img
}

// Preload decodes every resolvable non-binding asset up front so the first
// rendered frame pays no decode cost. Binding assets are always skipped (the
// binding slot shows user media, and the layer is hidden while media is
// absent).
func (p *ImageTextureProvider) Preload(bindingAssets map[string]bool) error {
	for _, id := range sortedKeys(p.assets) {
		if bindingAssets[id] {
			continue
		}
		if p.Texture(id) == nil {
			return fmt.Errorf("scenery: %s: no texture for asset %q", CodeNoTextureForAsset, id)
		}
	}
	return nil
}

// sortedKeys returns map keys in sorted order. Map iterations that affect
// output must be sorted for bit-exact determinism.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
