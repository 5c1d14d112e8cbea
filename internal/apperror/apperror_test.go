package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_ErrorMessagePriority(t *testing.T) {
	base := errors.New("base")
	err := &Error{Kind: KindServer, Msg: "msg", Err: base}
	if err.Error() != "msg" {
		t.Fatalf("expected msg, got %q", err.Error())
	}
}

func TestError_ErrorFallsBackToWrapped(t *testing.T) {
	base := errors.New("base")
	err := &Error{Kind: KindTransport, Err: base}
	if err.Error() != "base" {
		t.Fatalf("expected base, got %q", err.Error())
	}
}

func TestError_ErrorFallsBackToKind(t *testing.T) {
	err := &Error{Kind: KindDecode}
	if err.Error() != string(KindDecode) {
		t.Fatalf("expected kind string, got %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	base := errors.New("base")
	err := &Error{Kind: KindTransport, Err: base}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to be reachable via errors.Is")
	}
}

func TestIs_MatchesWrappedKind(t *testing.T) {
	err := Server(http.StatusNotFound, "not found", nil)
	wrapped := fmt.Errorf("wrap: %w", err)
	if !Is(wrapped, KindServer) {
		t.Fatalf("expected Is to match wrapped kind")
	}
	if Is(wrapped, KindTransport) {
		t.Fatalf("expected Is to be false for different kind")
	}
}

func TestMessage(t *testing.T) {
	if got := Message(Server(http.StatusNotFound, "not found", nil)); got != "not found" {
		t.Fatalf("expected server message, got %q", got)
	}
	if got := Message(errors.New("plain")); got != GenericMessage {
		t.Fatalf("expected generic message for untyped error, got %q", got)
	}
	if got := Message(Transport("", errors.New("dial"))); got != GenericMessage {
		t.Fatalf("expected generic message for empty msg, got %q", got)
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(fmt.Errorf("x: %w", Server(http.StatusConflict, "c", nil))); got != http.StatusConflict {
		t.Fatalf("expected 409, got %d", got)
	}
	if got := StatusCode(Transport("t", nil)); got != 0 {
		t.Fatalf("expected 0 for transport error, got %d", got)
	}
}
