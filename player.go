package scenery

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Player drives a compiled scene: a frame clock, mode switching, and a
// single synchronous Draw per frame. It implements the Update/Draw pair the
// ebiten game loop expects:
//
//	func (g *Game) Update() error              { g.player.Update(); return nil }
//	func (g *Game) Draw(screen *ebiten.Image)  { _ = g.player.Draw(screen) }
type Player struct {
	runtime  *SceneRuntime
	executor *Executor

	frame    int
	playing  bool
	looping  bool
	playhead *gween.Tween // drives fractional frame advance at canvas fps
}

// NewPlayer wires a runtime to an executor.
func NewPlayer(rt *SceneRuntime, exec *Executor) *Player {
	return &Player{runtime: rt, executor: exec, looping: true}
}

// Runtime returns the scene runtime for state mutation (variants, user
// transforms, media flags).
func (p *Player) Runtime() *SceneRuntime { return p.runtime }

// Frame returns the current scene frame index.
func (p *Player) Frame() int { return p.frame }

// SetFrame seeks the playhead to a scene frame, clamped to the canvas
// duration.
func (p *Player) SetFrame(frame int) {
	if frame < 0 {
		frame = 0
	}
	if frame >= p.runtime.Canvas.DurationFrames {
		frame = p.runtime.Canvas.DurationFrames - 1
	}
	p.frame = frame
	p.playhead = nil
}

// Play starts preview playback from the current frame.
func (p *Player) Play() {
	p.playing = true
	p.startPlayhead()
}

// Pause stops playback, keeping the current frame.
func (p *Player) Pause() {
	p.playing = false
	p.playhead = nil
}

// SetLooping controls whether playback wraps at the canvas duration.
func (p *Player) SetLooping(looping bool) { p.looping = looping }

// SetMode switches preview/edit. Entering edit mode pauses playback and
// seeks the edit frame, matching the editor surface's expectations.
func (p *Player) SetMode(mode RenderMode) {
	p.runtime.SetMode(mode)
	if mode == ModeEdit {
		p.Pause()
		p.frame = EditFrame
	}
}

// startPlayhead builds a linear tween covering the frames remaining in the
// scene at the canvas frame rate.
func (p *Player) startPlayhead() {
	remaining := p.runtime.Canvas.DurationFrames - p.frame
	if remaining <= 0 {
		remaining = p.runtime.Canvas.DurationFrames
		p.frame = 0
	}
	duration := float32(remaining) / float32(p.runtime.Canvas.FPS)
	p.playhead = gween.New(float32(p.frame), float32(p.runtime.Canvas.DurationFrames-1), duration, ease.Linear)
}

// Update advances the playhead by one tick. Call once per ebiten Update.
func (p *Player) Update() {
	if !p.playing || p.playhead == nil {
		return
	}
	dt := float32(1.0 / float64(ebiten.TPS()))
	value, finished := p.playhead.Update(dt)
	p.frame = int(value)
	if finished {
		if p.looping {
			p.frame = 0
			p.startPlayhead()
		} else {
			p.Pause()
		}
	}
}

// Draw emits the current frame's commands and executes them into screen as
// one straight-line synchronous pass.
func (p *Player) Draw(screen *ebiten.Image) error {
	cmds, err := p.runtime.RenderCommands(p.frame)
	if err != nil {
		return err
	}
	target := &RenderTarget{Image: screen, AnimSize: p.runtime.Canvas.Size()}
	return p.executor.Execute(cmds, target)
}
