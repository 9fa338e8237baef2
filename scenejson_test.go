package scenery

import "testing"

func validateSceneJSON(t *testing.T, data string) *Report {
	t.Helper()
	doc, err := DecodeScene([]byte(data))
	if err != nil {
		t.Fatalf("DecodeScene: %v", err)
	}
	report := &Report{}
	ValidateScene(doc, report)
	return report
}

func hasCode(report *Report, code string) bool {
	return len(report.ByCode(code)) > 0
}

func TestValidateSceneAcceptsFixture(t *testing.T) {
	report := validateSceneJSON(t, string(fourBlockSceneJSON()))
	if report.HasErrors() {
		t.Fatalf("fixture scene should validate, got %v", report.Diagnostics)
	}
}

func TestValidateSceneUnsupportedVersion(t *testing.T) {
	report := validateSceneJSON(t, `{"schemaVersion":"2.0","sceneId":"s",
		"canvas":{"width":100,"height":100,"fps":30,"durationFrames":10},
		"mediaBlocks":[`+blockJSON("b", 0, 0, 0, variantJSON("v", "a.json"), "")+`]}`)
	if !hasCode(report, CodeSceneUnsupportedVersion) {
		t.Fatalf("want %s, got %v", CodeSceneUnsupportedVersion, report.Diagnostics)
	}
}

func TestValidateSceneCanvasAndBlocks(t *testing.T) {
	report := validateSceneJSON(t, `{"schemaVersion":"0.1","sceneId":"s",
		"canvas":{"width":0,"height":100,"fps":0,"durationFrames":0},
		"mediaBlocks":[]}`)
	for _, code := range []string{
		CodeCanvasInvalidSize, CodeCanvasInvalidFPS, CodeCanvasInvalidDuration, CodeBlocksEmpty,
	} {
		if !hasCode(report, code) {
			t.Errorf("want %s, got %v", code, report.Diagnostics)
		}
	}
}

func TestValidateSceneDuplicateBlockIDs(t *testing.T) {
	b := blockJSON("dup", 0, 0, 0, variantJSON("v", "a.json"), "")
	report := validateSceneJSON(t, `{"schemaVersion":"0.1","sceneId":"s",
		"canvas":{"width":1080,"height":1920,"fps":30,"durationFrames":300},
		"mediaBlocks":[`+b+`,`+b+`]}`)
	if !hasCode(report, CodeBlockIDDuplicate) {
		t.Fatalf("want %s, got %v", CodeBlockIDDuplicate, report.Diagnostics)
	}
}

func TestValidateSceneVariantDefects(t *testing.T) {
	block := `{"blockId":"b","zIndex":0,
		"rect":{"x":0,"y":0,"width":540,"height":960},
		"input":{"rect":{"x":0,"y":0,"width":540,"height":960},"allowedMedia":["photo"]},
		"variants":[
			{"variantId":"","animRef":"a.json"},
			{"variantId":"v","animRef":""},
			{"variantId":"v","animRef":"a.json"}]}`
	report := validateSceneJSON(t, `{"schemaVersion":"0.1","sceneId":"s",
		"canvas":{"width":1080,"height":1920,"fps":30,"durationFrames":300},
		"mediaBlocks":[`+block+`]}`)
	for _, code := range []string{
		CodeVariantIDEmpty, CodeVariantAnimRefEmpty, CodeVariantIDDuplicate,
	} {
		if !hasCode(report, code) {
			t.Errorf("want %s, got %v", code, report.Diagnostics)
		}
	}
}

func TestValidateSceneSlotRectAfterSettleWarns(t *testing.T) {
	b := blockJSON("b", 0, 0, 0, variantJSON("v", "a.json"), `,"containerClip":"slotRectAfterSettle"`)
	report := validateSceneJSON(t, `{"schemaVersion":"0.1","sceneId":"s",
		"canvas":{"width":1080,"height":1920,"fps":30,"durationFrames":300},
		"mediaBlocks":[`+b+`]}`)
	if report.HasErrors() {
		t.Fatalf("slotRectAfterSettle must not be an error: %v", report.Diagnostics)
	}
	found := false
	for _, d := range report.ByCode(CodeContainerClipUnsupported) {
		if d.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("want %s warning, got %v", CodeContainerClipUnsupported, report.Diagnostics)
	}
}

func TestValidateSceneAllowedMedia(t *testing.T) {
	block := `{"blockId":"b","zIndex":0,
		"rect":{"x":0,"y":0,"width":540,"height":960},
		"input":{"rect":{"x":0,"y":0,"width":540,"height":960},
			"allowedMedia":["photo","photo","hologram"]},
		"variants":[{"variantId":"v","animRef":"a.json"}]}`
	report := validateSceneJSON(t, `{"schemaVersion":"0.1","sceneId":"s",
		"canvas":{"width":1080,"height":1920,"fps":30,"durationFrames":300},
		"mediaBlocks":[`+block+`]}`)
	if !hasCode(report, CodeAllowedMediaDuplicate) || !hasCode(report, CodeAllowedMediaUnknown) {
		t.Fatalf("want allowedMedia diagnostics, got %v", report.Diagnostics)
	}
}

func TestValidateSceneUnknownHitTest(t *testing.T) {
	block := `{"blockId":"b","zIndex":0,
		"rect":{"x":0,"y":0,"width":540,"height":960},
		"input":{"rect":{"x":0,"y":0,"width":540,"height":960},
			"hitTest":"sphere","allowedMedia":["photo"]},
		"variants":[{"variantId":"v","animRef":"a.json"}]}`
	report := validateSceneJSON(t, `{"schemaVersion":"0.1","sceneId":"s",
		"canvas":{"width":1080,"height":1920,"fps":30,"durationFrames":300},
		"mediaBlocks":[`+block+`]}`)
	if !hasCode(report, CodeInputHitTestUnknown) {
		t.Fatalf("want %s, got %v", CodeInputHitTestUnknown, report.Diagnostics)
	}
	if hasCode(report, CodeRectInvalid) {
		t.Fatalf("hitTest defect must not report %s: %v", CodeRectInvalid, report.Diagnostics)
	}
}

func TestValidateSceneTimingRange(t *testing.T) {
	b := blockJSON("b", 0, 0, 0, variantJSON("v", "a.json"), `,"timing":{"startFrame":50,"endFrame":20}`)
	report := validateSceneJSON(t, `{"schemaVersion":"0.1","sceneId":"s",
		"canvas":{"width":1080,"height":1920,"fps":30,"durationFrames":300},
		"mediaBlocks":[`+b+`]}`)
	if !hasCode(report, CodeTimingInvalidRange) {
		t.Fatalf("want %s, got %v", CodeTimingInvalidRange, report.Diagnostics)
	}
}
