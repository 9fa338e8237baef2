package scenery

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func newTestPlayer(t *testing.T) *Player {
	t.Helper()
	rt := compileTestScene(t)
	media := ebiten.NewImage(540, 960)
	media.Fill(ColorWhite.toRGBA())
	textures := fakeTextures{}
	for id := range rt.Assets {
		textures[id] = media
	}
	for _, b := range rt.Blocks {
		rt.SetUserMediaPresent(b.ID, true)
	}
	return NewPlayer(rt, NewExecutor(rt.Registry, rt.Assets, textures, DefaultRendererConfig()))
}

func TestPlayerSetFrameClamps(t *testing.T) {
	p := newTestPlayer(t)
	p.SetFrame(-5)
	if p.Frame() != 0 {
		t.Fatalf("frame = %d, want 0", p.Frame())
	}
	p.SetFrame(1000)
	if p.Frame() != 299 {
		t.Fatalf("frame = %d, want 299", p.Frame())
	}
}

func TestPlayerEditModeSeeksEditFrame(t *testing.T) {
	p := newTestPlayer(t)
	p.SetFrame(120)
	p.Play()
	p.SetMode(ModeEdit)
	if p.Frame() != EditFrame {
		t.Fatalf("frame = %d, want %d", p.Frame(), EditFrame)
	}
	p.Update()
	if p.Frame() != EditFrame {
		t.Fatal("edit mode must not advance the playhead")
	}
}

func TestPlayerUpdateAdvances(t *testing.T) {
	p := newTestPlayer(t)
	p.Play()
	// One second of ticks should move the playhead close to one second of
	// scene time (30 frames at 30 fps).
	for i := 0; i < ebiten.TPS(); i++ {
		p.Update()
	}
	if p.Frame() < 25 || p.Frame() > 35 {
		t.Fatalf("frame after 1s = %d, want ≈30", p.Frame())
	}
}

func TestPlayerDraw(t *testing.T) {
	p := newTestPlayer(t)
	screen := ebiten.NewImage(540, 960)
	if err := p.Draw(screen); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	p.SetMode(ModeEdit)
	if err := p.Draw(screen); err != nil {
		t.Fatalf("Draw (edit): %v", err)
	}
}
