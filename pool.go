package scenery

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru"
)

// texturePool manages reusable offscreen ebiten.Images keyed by exact size.
// Size classes are tracked in an LRU cache; when the class cap is reached
// the least-recently-used class is deallocated. Releases are synchronous —
// all executor passes complete within their command buffer, so a released
// texture can never still be read by the GPU.
type texturePool struct {
	classes *lru.Cache // poolKey -> *poolBucket
}

// poolBucket is the free stack for one size class.
type poolBucket struct {
	free []*ebiten.Image
}

// maxPerBucket bounds how many free textures one size class retains.
const maxPerBucket = 4

// poolKey packs width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// newTexturePool creates a pool bounded to cap size classes.
func newTexturePool(cap int) *texturePool {
	if cap < 1 {
		cap = 1
	}
	cache, err := lru.NewWithEvict(cap, func(_, value any) {
		bucket := value.(*poolBucket)
		for _, img := range bucket.free {
			img.Deallocate()
		}
		bucket.free = nil
	})
	if err != nil {
		panic("scenery: failed to create texture pool: " + err.Error())
	}
	return &texturePool{classes: cache}
}

// Acquire returns a cleared offscreen image of exactly (w, h) pixels.
func (p *texturePool) Acquire(w, h int) *ebiten.Image {
	key := poolKey(w, h)
	if v, ok := p.classes.Get(key); ok {
		bucket := v.(*poolBucket)
		if n := len(bucket.free); n > 0 {
			img := bucket.free[n-1]
			bucket.free = bucket.free[:n-1]
			img.Clear()
			return img
		}
	}
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, w, h),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool for reuse. The image is cleared on
// next Acquire, not here (avoids redundant GPU work if released then
// immediately re-acquired).
func (p *texturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())
	if v, ok := p.classes.Get(key); ok {
		bucket := v.(*poolBucket)
		if len(bucket.free) >= maxPerBucket {
			img.Deallocate()
			return
		}
		bucket.free = append(bucket.free, img)
		return
	}
	p.classes.Add(key, &poolBucket{free: []*ebiten.Image{img}})
}

// --- Shape vertex cache ---

// shapeMesh is the reusable CPU-side mesh for one registered path: sampled
// positions and the transformed vertex buffer handed to DrawTriangles.
type shapeMesh struct {
	positions []float64
	verts     []ebiten.Vertex
}

// shapeCache keeps one shapeMesh per recently drawn path so steady-state
// frames allocate nothing. LRU-capped by entry count.
type shapeCache struct {
	entries *lru.Cache // PathID -> *shapeMesh
}

func newShapeCache(cap int) *shapeCache {
	if cap < 1 {
		cap = 1
	}
	cache, err := lru.New(cap)
	if err != nil {
		panic("scenery: failed to create shape cache: " + err.Error())
	}
	return &shapeCache{entries: cache}
}

// mesh returns the reusable mesh for a path, creating it on first use.
func (c *shapeCache) mesh(id PathID) *shapeMesh {
	if v, ok := c.entries.Get(id); ok {
		return v.(*shapeMesh)
	}
	m := &shapeMesh{}
	c.entries.Add(id, m)
	return m
}
