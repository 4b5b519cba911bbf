package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code     Code
		kind     Kind
		contains string
		exit     int
	}{
		{code: CodeInvalidStatus, kind: KindValidation, contains: "valid HTTP status code", exit: 2},
		{code: CodeInvalidMessage, kind: KindValidation, contains: "Message must be a string", exit: 2},
		{code: CodeInvalidData, kind: KindValidation, contains: "Data must be an array or null", exit: 2},
		{code: CodeSerialization, kind: KindRuntime, contains: "marshal", exit: 3},
		{code: CodeInternal, kind: KindRuntime, contains: "internal", exit: 1},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.Kind != tt.kind {
			t.Fatalf("code %s expected kind %s got %s", tt.code, tt.kind, meta.Kind)
		}
		if !strings.Contains(meta.PublicMessage, tt.contains) {
			t.Fatalf("code %s public message %q missing %q", tt.code, meta.PublicMessage, tt.contains)
		}
		if meta.ExitCode != tt.exit {
			t.Fatalf("code %s expected exit %d got %d", tt.code, tt.exit, meta.ExitCode)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.Kind != KindRuntime || meta.ExitCode != 1 {
		t.Fatalf("expected internal metadata, got %+v", meta)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := NewPublic(CodeInvalidStatus)
	if base.Code() != CodeInvalidStatus {
		t.Fatalf("expected status code, got %s", base.Code())
	}
	if base.Message() != "Status must be a valid HTTP status code (100-599)" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"status": 600})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeSerialization, cause, "failed to marshal JSON")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if !strings.Contains(wrapped.Error(), "boom") {
		t.Fatalf("wrapped error text should include cause, got %q", wrapped.Error())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInvalidMessage, "Message must be a string"))
	if got := As(err); got == nil || got.Code() != CodeInvalidMessage {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if !HasCode(err, CodeInvalidMessage) || HasCode(err, CodeInvalidStatus) {
		t.Fatalf("HasCode mismatch")
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(NewPublic(CodeInvalidData)) {
		t.Fatalf("invalid data should be a validation error")
	}
	if IsValidation(NewPublic(CodeSerialization)) {
		t.Fatalf("serialization should not be a validation error")
	}
	if IsValidation(stdErrors.New("plain")) {
		t.Fatalf("untyped error should not be a validation error")
	}
}

func TestDumpIncludesChain(t *testing.T) {
	err := Wrap(CodeSerialization, stdErrors.New("json: unsupported type: chan int"), "failed to marshal JSON")
	d := Dump(err)
	if d.Code != CodeSerialization || d.Kind != KindRuntime {
		t.Fatalf("unexpected dump %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(d.Chain))
	}
	if d.Fields()["error_code"] != CodeSerialization {
		t.Fatalf("fields missing code")
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil dump should be empty")
	}
}
