package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	meta := MetadataFor(CodeDependency)
	if meta.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", meta.HTTPStatus)
	}
	if !meta.Retryable {
		t.Fatal("dependency errors should be retryable")
	}

	fallback := MetadataFor(Code("SOMETHING_ELSE"))
	if fallback.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes should map to internal, got %d", fallback.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "list orders")
	if !stdErrors.Is(err, cause) {
		t.Fatal("cause lost in wrap")
	}

	typed := As(fmt.Errorf("outer: %w", err))
	if typed == nil {
		t.Fatal("As failed to find typed error")
	}
	if typed.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(CodeValidation, nil, "empty body")
	if err.Unwrap() != nil {
		t.Fatal("nil cause should not be wrapped")
	}
	if err.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestChain(t *testing.T) {
	inner := stdErrors.New("dial tcp: refused")
	err := Wrap(CodeDependency, inner, "fetch vehicles")
	chain := Chain(err)
	if len(chain) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(chain), chain)
	}
	if chain[1] != "dial tcp: refused" {
		t.Fatalf("unexpected root %q", chain[1])
	}
}
