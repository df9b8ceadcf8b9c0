package error

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestOIErrorFormat(t *testing.T) {
	err := New(ErrCategoryIntegrity, CodeDanglingTarget, "TARGET_ID 9 does not resolve").
		WithDetail("%s #%d record %d", "OI_VIS2", 2, 17).
		WithOperation("Merge", "merge")

	want := "[DANGLING_TARGET] TARGET_ID 9 does not resolve: OI_VIS2 #2 record 17 (operation: Merge, component: merge)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if err.Category.String() != "integrity" {
		t.Errorf("Category = %s, want integrity", err.Category)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCode     string
		wantCategory ErrorCategory
		wantCause    bool
	}{
		{
			name:         "plain error",
			err:          fmt.Errorf("disk full"),
			wantCode:     CodeWriteFailed,
			wantCategory: ErrCategoryIO,
			wantCause:    true,
		},
		{
			name:         "existing OIError keeps its code",
			err:          New(ErrCategoryMalformed, CodeMissingTarget, "no OI_TARGET"),
			wantCode:     CodeMissingTarget,
			wantCategory: ErrCategoryMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, CodeWriteFailed, "Write", "oiio")
			if got.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %s, want %s", got.Category, tt.wantCategory)
			}
			if got.Operation != "Write" || got.Component != "oiio" {
				t.Errorf("operation/component = %s/%s", got.Operation, got.Component)
			}
			if (got.Cause != nil) != tt.wantCause {
				t.Errorf("Cause = %v, wantCause %v", got.Cause, tt.wantCause)
			}
		})
	}

	if Wrap(nil, CodeWriteFailed, "Write", "oiio") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapDoesNotOverrideOperation(t *testing.T) {
	inner := New(ErrCategoryUsage, CodeBadPattern, "bad glob").WithOperation("Apply", "filter")
	got := Wrap(inner, CodeBadSpec, "Filter", "cmd")
	if got.Operation != "Apply" || got.Component != "filter" {
		t.Errorf("operation/component = %s/%s, want Apply/filter", got.Operation, got.Component)
	}
}

func TestHasCodeAndIs(t *testing.T) {
	base := New(ErrCategoryIO, CodeReadFailed, "short read")
	wrapped := fmt.Errorf("reading input: %w", base)

	if !HasCode(wrapped, CodeReadFailed) {
		t.Error("HasCode should find the wrapped code")
	}
	if HasCode(wrapped, CodeWriteFailed) {
		t.Error("HasCode matched the wrong code")
	}
	if HasCode(nil, CodeReadFailed) {
		t.Error("HasCode(nil) should be false")
	}
	if !errors.Is(wrapped, &OIError{Code: CodeReadFailed}) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(wrapped, &OIError{}) {
		t.Error("errors.Is should not match an empty code")
	}
}

func TestFormatStack(t *testing.T) {
	err := New(ErrCategoryUsage, CodeNoInput, "nothing to do")
	s := err.FormatStack()
	if !strings.HasPrefix(s, "Stack trace:") {
		t.Errorf("FormatStack() = %q", s)
	}
	if (&OIError{}).FormatStack() != "" {
		t.Error("empty stack should format as empty string")
	}
}
