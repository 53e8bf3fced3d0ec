package trace

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	if got := FromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("expected empty trace id, got %q", got)
	}
}

func TestFromHeader(t *testing.T) {
	if got := FromHeader("given"); got != "given" {
		t.Fatalf("expected header value, got %q", got)
	}
	generated := FromHeader("")
	if len(generated) != 32 {
		t.Fatalf("expected 32 hex chars, got %q", generated)
	}
	if generated == FromHeader("") {
		t.Fatalf("expected distinct generated ids")
	}
}
