package chat

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("connection refused")
	transport := &TransportError{Service: "ollama", Err: base}
	wrapped := fmt.Errorf("classify: %w", transport)

	if !IsTransport(wrapped) {
		t.Error("IsTransport should see through wrapping")
	}
	if IsMalformed(wrapped) {
		t.Error("transport error reported as malformed")
	}
	if !errors.Is(wrapped, base) {
		t.Error("TransportError should unwrap to its cause")
	}

	malformed := &MalformedResponseError{Service: "gemini-image", Reason: "no candidates"}
	if !IsMalformed(malformed) || IsTransport(malformed) {
		t.Error("malformed error misclassified")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&TransportError{Service: "ollama", Err: errors.New("timeout")}, "ollama: timeout"},
		{&TransportError{Service: "ollama", StatusCode: 502, Err: errors.New("bad gateway")}, "ollama: status 502: bad gateway"},
		{&MalformedResponseError{Service: "gemini-image", Reason: "no candidates"}, "gemini-image: malformed response: no candidates"},
		{&MalformedResponseError{Service: "ollama", Reason: "invalid JSON", Err: errors.New("eof")}, "ollama: malformed response: invalid JSON: eof"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncateString("abcdefghij", 4); got != "abcd..." {
		t.Errorf("got %q", got)
	}
}
