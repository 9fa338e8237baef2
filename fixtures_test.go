package scenery

import (
	"fmt"
	"testing"
)

// --- JSON fixtures ---
// All scenario fixtures assume a 1080x1920 canvas at 30 fps, 300 frames,
// with 540x960 animations rendered into 540x960 blocks.

// squarePathJSON is a closed 100x100 square path value at the animation
// origin.
const squarePathJSON = `{"c":true,"v":[[0,0],[100,0],[100,100],[0,100]],"i":[[0,0],[0,0],[0,0],[0,0]],"o":[[0,0],[0,0],[0,0],[0,0]]}`

// matteShapeLayerJSON is a td=1 shape layer with a filled square, usable as
// an explicit matte source (ind 1).
const matteShapeLayerJSON = `{"ty":4,"ind":1,"nm":"matteShape","td":1,"ip":0,"op":300,"st":0,"ks":{},
	"shapes":[{"ty":"gr","it":[
		{"ty":"sh","ks":{"a":0,"k":` + squarePathJSON + `}},
		{"ty":"fl","c":{"a":0,"k":[1,1,1]},"o":{"a":0,"k":100}}]}]}`

// imageAssetJSON declares the shared 540x960 image asset.
const imageAssetJSON = `{"id":"image_0","u":"images/","p":"img0.png","w":540,"h":960}`

// animFadeJSON: binding image layer with opacity 0→100 over frames 0–30 and
// one static add mask (scenario A).
const animFadeJSON = `{"w":540,"h":960,"fr":30,"ip":0,"op":300,
	"assets":[` + imageAssetJSON + `],
	"layers":[{"ty":2,"ind":1,"nm":"media","refId":"image_0","ip":0,"op":300,"st":0,
		"ks":{"o":{"a":1,"k":[
			{"t":0,"s":[0],"o":{"x":[0.333],"y":[0.333]},"i":{"x":[0.667],"y":[0.667]}},
			{"t":30,"s":[100]}]}},
		"masksProperties":[{"mode":"a","o":{"a":0,"k":100},"pt":{"a":0,"k":` + squarePathJSON + `}}]}]}`

// animSlideJSON: explicit matte source followed by a tt=1 consumer parented
// to a null sliding in from (0,-500) over frames 30–60 (scenario B).
const animSlideJSON = `{"w":540,"h":960,"fr":30,"ip":0,"op":300,
	"assets":[` + imageAssetJSON + `],
	"layers":[` + matteShapeLayerJSON + `,
	{"ty":2,"ind":2,"nm":"media","refId":"image_0","tt":1,"parent":3,"ip":30,"op":300,"st":0,"ks":{}},
	{"ty":3,"ind":3,"nm":"mover","ip":0,"op":300,"st":0,
		"ks":{"p":{"a":1,"k":[
			{"t":30,"s":[0,-500],"o":{"x":[0.333],"y":[0.333]},"i":{"x":[0.667],"y":[0.667]}},
			{"t":60,"s":[0,0]}]}}}]}`

// animInvertedJSON: tt=2 inverted alpha matte (scenario C).
const animInvertedJSON = `{"w":540,"h":960,"fr":30,"ip":0,"op":300,
	"assets":[` + imageAssetJSON + `],
	"layers":[` + matteShapeLayerJSON + `,
	{"ty":2,"ind":2,"nm":"media","refId":"image_0","tt":2,"ip":0,"op":300,"st":0,"ks":{}}]}`

// animNestedJSON: two-level precomp chain with a rotated outer precomp and
// an inner image with its own anchor/rotation (scenario D).
const animNestedJSON = `{"w":540,"h":960,"fr":30,"ip":0,"op":300,
	"assets":[` + imageAssetJSON + `,
	{"id":"comp_outer","layers":[
		{"ty":0,"ind":1,"nm":"inner","refId":"comp_inner","w":540,"h":960,"ip":0,"op":300,"st":0,
			"ks":{"p":{"a":0,"k":[20,20]}}}]},
	{"id":"comp_inner","layers":[
		{"ty":2,"ind":1,"nm":"media","refId":"image_0","ip":0,"op":300,"st":0,
			"ks":{"p":{"a":0,"k":[50,50]},"a":{"a":0,"k":[50,50]},"r":{"a":0,"k":45}}}]}],
	"layers":[{"ty":0,"ind":1,"nm":"outer","refId":"comp_outer","w":540,"h":960,"ip":0,"op":300,"st":0,
		"ks":{"p":{"a":0,"k":[100,50]},"r":{"a":0,"k":30}}}]}`

// animPlainJSON is the minimal valid animation: one binding image layer.
const animPlainJSON = `{"w":540,"h":960,"fr":30,"ip":0,"op":300,
	"assets":[` + imageAssetJSON + `],
	"layers":[{"ty":2,"ind":1,"nm":"media","refId":"image_0","ip":0,"op":300,"st":0,"ks":{}}]}`

// animNoAnimJSON is the mandatory edit variant: a mediaInput shape layer
// plus the binding layer, both visible at frame 0.
const animNoAnimJSON = `{"w":540,"h":960,"fr":30,"ip":0,"op":300,
	"assets":[` + imageAssetJSON + `],
	"layers":[
	{"ty":4,"ind":1,"nm":"mediaInput","ip":0,"op":300,"st":0,"ks":{},
		"shapes":[{"ty":"gr","it":[
			{"ty":"sh","ks":{"a":0,"k":` + squarePathJSON + `}},
			{"ty":"fl","c":{"a":0,"k":[1,1,1]},"o":{"a":0,"k":100}}]}]},
	{"ty":2,"ind":2,"nm":"media","refId":"image_0","ip":0,"op":300,"st":0,"ks":{}}]}`

// testAnimFiles maps every fixture animRef to its JSON.
func testAnimFiles() map[string][]byte {
	return map[string][]byte{
		"anim-1.json":      []byte(animFadeJSON),
		"anim-2.json":      []byte(animSlideJSON),
		"anim-3.json":      []byte(animInvertedJSON),
		"anim-4.json":      []byte(animNestedJSON),
		"anim-v2.json":     []byte(animPlainJSON),
		"anim-b2.json":     []byte(animPlainJSON),
		"no-anim-all.json": []byte(animNoAnimJSON),
	}
}

// blockJSON builds one media block declaration.
func blockJSON(id string, z int, x, y float64, variants string, extra string) string {
	return fmt.Sprintf(`{"blockId":%q,"zIndex":%d,
		"rect":{"x":%g,"y":%g,"width":540,"height":960},
		"input":{"rect":{"x":0,"y":0,"width":540,"height":960},
			"hitTest":"mask","allowedMedia":["photo","video"]},
		"variants":[%s]%s}`, id, z, x, y, variants, extra)
}

func variantJSON(id, animRef string) string {
	return fmt.Sprintf(`{"variantId":%q,"animRef":%q}`, id, animRef)
}

// fourBlockSceneJSON is the scenario scene: four 540x960 blocks in a 2x2
// grid on a 1080x1920, 30 fps, 300 frame canvas.
func fourBlockSceneJSON() []byte {
	noAnim := variantJSON("no-anim", "no-anim-all.json")
	blocks := blockJSON("block_01", 0, 0, 0,
		variantJSON("v1", "anim-1.json")+","+variantJSON("v2", "anim-v2.json")+","+noAnim, "") + "," +
		blockJSON("block_02", 0, 540, 0,
			variantJSON("v1", "anim-2.json")+","+noAnim, "") + "," +
		blockJSON("block_03", 0, 0, 960,
			variantJSON("v1", "anim-3.json")+","+noAnim, "") + "," +
		blockJSON("block_04", 0, 540, 960,
			variantJSON("v1", "anim-4.json")+","+noAnim, "")
	return []byte(`{"schemaVersion":"0.1","sceneId":"scene-test",
		"canvas":{"width":1080,"height":1920,"fps":30,"durationFrames":300},
		"mediaBlocks":[` + blocks + `]}`)
}

// compileTestScene compiles the scenario scene, failing the test on any
// validator error or fatal.
func compileTestScene(t *testing.T) *SceneRuntime {
	t.Helper()
	rt, report, err := CompileScene(&ScenePackage{
		SceneJSON:     fourBlockSceneJSON(),
		AnimJSONByRef: testAnimFiles(),
	})
	if err != nil {
		t.Fatalf("CompileScene: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("CompileScene diagnostics: %v", report.Diagnostics)
	}
	if rt == nil {
		t.Fatal("CompileScene returned no runtime")
	}
	return rt
}

// --- Command stream helpers ---

// blockCommands extracts the command span of one block's group, excluding
// the BeginGroup/EndGroup pair itself.
func blockCommands(t *testing.T, cmds []Command, blockID string) []Command {
	t.Helper()
	name := "Block:" + blockID
	for i := range cmds {
		if cmds[i].Op == OpBeginGroup && cmds[i].Name == name {
			depth := 0
			for j := i; j < len(cmds); j++ {
				switch cmds[j].Op {
				case OpBeginGroup:
					depth++
				case OpEndGroup:
					depth--
					if depth == 0 {
						return cmds[i+1 : j]
					}
				}
			}
		}
	}
	t.Fatalf("no group for block %q", blockID)
	return nil
}

// findOp returns the index of the first command with the given op, or -1.
func findOp(cmds []Command, op Op) int {
	for i := range cmds {
		if cmds[i].Op == op {
			return i
		}
	}
	return -1
}

// countOp counts commands with the given op.
func countOp(cmds []Command, op Op) int {
	n := 0
	for i := range cmds {
		if cmds[i].Op == op {
			n++
		}
	}
	return n
}

// transformAtDraw replays the transform stack and returns the current
// matrix at the first command matching op (excluding the command's own
// push). Fails if the op is absent.
func transformAtDraw(t *testing.T, cmds []Command, op Op) Mat2D {
	t.Helper()
	stack := []Mat2D{Identity}
	for i := range cmds {
		switch cmds[i].Op {
		case OpPushTransform:
			stack = append(stack, stack[len(stack)-1].Mul(cmds[i].Transform))
		case OpPopTransform:
			stack = stack[:len(stack)-1]
		case op:
			return stack[len(stack)-1]
		}
	}
	t.Fatalf("no %v command found", op)
	return Identity
}
