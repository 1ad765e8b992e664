package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRunID(t *testing.T) {
	ctx := context.Background()
	if got := RunIDFromContext(ctx); got != "" {
		t.Errorf("RunIDFromContext(empty) = %q, want empty", got)
	}

	ctx = WithRunID(ctx, "run-1")
	if got := RunIDFromContext(ctx); got != "run-1" {
		t.Errorf("RunIDFromContext = %q, want run-1", got)
	}

	fresh := RunIDFromContext(WithNewRunID(context.Background()))
	if _, err := uuid.Parse(fresh); err != nil {
		t.Errorf("WithNewRunID produced %q: %v", fresh, err)
	}
}
