package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeUnresolvedReference, "node not found: %q", "ghost"), `UNRESOLVED_REFERENCE: node not found: "ghost"`},
		{"wrap", Wrap(ErrCodeNetwork, cause, "fetch %s", "map.json"), "NETWORK_ERROR: fetch map.json: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch")
	if !errors.Is(err, cause) || errors.Unwrap(err) != cause {
		t.Error("cause should be reachable through the standard errors package")
	}
}

func TestCodes(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "inner")
	tests := []struct {
		name string
		err  error
		code Code
		msg  string
	}{
		{"coded", New(ErrCodeInvalidDocument, "node 0 has no id"), ErrCodeInvalidDocument, "node 0 has no id"},
		{"outermost wins", Wrap(ErrCodeNetwork, inner, "outer"), ErrCodeNetwork, "outer"},
		{"fmt wrapped", fmt.Errorf("load: %w", New(ErrCodeDuplicateNode, "dup")), ErrCodeDuplicateNode, "dup"},
		{"plain", errors.New("plain"), "", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeTimeout) {
				t.Error("Is should not match another code")
			}
			if got := UserMessage(tt.err); got != tt.msg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
			}
		})
	}

	if Is(nil, ErrCodeInvalidInput) || GetCode(nil) != "" {
		t.Error("nil has no code")
	}
}
