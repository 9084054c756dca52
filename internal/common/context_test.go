package common

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext on empty context = %q, want empty", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %q, want req-123", got)
	}
}

func TestDocumentIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := DocumentIDFromContext(ctx); got != "" {
		t.Errorf("DocumentIDFromContext on empty context = %q, want empty", got)
	}

	ctx = WithDocumentID(ctx, "doc-456")
	if got := DocumentIDFromContext(ctx); got != "doc-456" {
		t.Errorf("DocumentIDFromContext = %q, want doc-456", got)
	}

	// ids live under distinct keys
	ctx = WithRequestID(ctx, "req-123")
	if got := DocumentIDFromContext(ctx); got != "doc-456" {
		t.Errorf("document id clobbered by request id: %q", got)
	}
}
