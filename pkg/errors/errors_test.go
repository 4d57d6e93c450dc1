package errors

import (
	"fmt"
	"testing"
)

func TestCodePropagatesThroughWrap(t *testing.T) {
	base := WithCode(CodeQuotaExceeded, "quota exceeded")
	wrapped := Wrap(base, "transcription failed")

	if got := GetCode(wrapped); got != CodeQuotaExceeded {
		t.Errorf("expected code %d, got %d", CodeQuotaExceeded, got)
	}
	if !HasCode(wrapped, CodeQuotaExceeded) {
		t.Error("HasCode should see the wrapped code")
	}
}

func TestWrapCodeOverrides(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := WrapCode(CodeUpstream, base, "AI API unreachable")

	if GetCode(err) != CodeUpstream {
		t.Errorf("expected upstream code, got %d", GetCode(err))
	}
	if Cause(err) != base {
		t.Error("Cause should return the original error")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "whatever") != nil {
		t.Error("wrapping nil must return nil")
	}
	if WrapCode(CodeConflict, nil, "whatever") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestWithContextCopies(t *testing.T) {
	base := WithCode(CodeConflict, "email already registered")
	withCtx := base.WithContext("email", "a@b.fr")

	if len(base.Context) != 0 {
		t.Error("original error must not be mutated")
	}
	if len(withCtx.Context) != 1 || withCtx.Context[0].Key != "email" {
		t.Errorf("unexpected context: %+v", withCtx.Context)
	}
}
