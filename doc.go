// Package scenery is a scene template rendering engine for [Ebitengine].
//
// Scenery plays editable, variant-aware animated scenes compiled from a scene
// package: a scene description plus one or more vector animation JSON files
// (a Lottie subset) and image assets. For every integer frame index it emits
// a deterministic render command list and executes it on the GPU, including
// boolean mask groups, track mattes, and per-block user pan/zoom/rotate in
// edit mode.
//
// # Pipeline
//
// A scene package is compiled once into an immutable [SceneRuntime]:
//
//	pkg := &scenery.ScenePackage{
//		SceneJSON:     sceneBytes,
//		AnimJSONByRef: map[string][]byte{"anim-1.json": animBytes},
//	}
//	rt, report, err := scenery.CompileScene(pkg)
//	if err != nil { ... }          // compile-time fatal (*CompileError)
//	if report.HasErrors() { ... }  // validator diagnostics
//
// Per frame, the runtime emits commands and an [Executor] interprets them
// into a render target:
//
//	cmds, err := rt.RenderCommands(frame)
//	err = exec.Execute(cmds, target)
//
// The [Player] wraps both behind an [ebiten.Game]-friendly Update/Draw pair
// with a frame clock.
//
// # Edit mode
//
// Each block in a scene is a media placeholder. In edit mode the mandatory
// "no-anim" variant is rendered regardless of the selected variant, the
// binding layer shows the user's media clipped to the block's input window,
// and [SceneRuntime.HitTest] classifies pointer hits using the exact same
// block transform the renderer uses, so tap targets are pixel-identical to
// rendered placeholders.
//
// Scenery is single-threaded: compile once, then mutate player state
// (variant overrides, user transforms, media flags) and render from one
// logical thread. Keyframe easing uses [gween]'s easing vocabulary.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package scenery
