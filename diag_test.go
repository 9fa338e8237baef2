package scenery

import (
	"strings"
	"testing"
)

func TestReportSeverities(t *testing.T) {
	r := &Report{}
	r.Warnf(CodeWarningAnimSizeMismatch, "anim(a.json)", "size off")
	if r.HasErrors() {
		t.Fatal("warnings alone must not set HasErrors")
	}
	r.Errorf(CodeRectInvalid, "scene.mediaBlocks[0].rect", "zero width")
	if !r.HasErrors() {
		t.Fatal("errors must set HasErrors")
	}
	if len(r.ByCode(CodeRectInvalid)) != 1 {
		t.Fatalf("ByCode = %v", r.Diagnostics)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Code: CodeUnsupportedMatteType, Severity: SeverityError,
		Path: "anim(anim-1.json).layers[3].tt", Message: "type 9",
	}
	s := d.String()
	for _, part := range []string{"error", CodeUnsupportedMatteType, "layers[3].tt", "type 9"} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}

func TestCompileErrorPreservesStructure(t *testing.T) {
	err := &CompileError{
		Code:    CodeBindingLayerNotFound,
		Path:    "anim(anim-1.json)",
		Message: "no layer named \"media\"",
		AnimRef: "anim-1.json",
		BlockID: "block_01",
	}
	s := err.Error()
	for _, part := range []string{CodeBindingLayerNotFound, "block_01", "anim-1.json"} {
		if !strings.Contains(s, part) {
			t.Errorf("Error() = %q, missing %q", s, part)
		}
	}
}

func TestRenderErrorCode(t *testing.T) {
	err := renderErrorf(CodeInvalidCommandStack, "depth %d", 9)
	if err.Code != CodeInvalidCommandStack || !strings.Contains(err.Error(), "depth 9") {
		t.Fatalf("err = %v", err)
	}
}
