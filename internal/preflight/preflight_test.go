package preflight

import (
	"errors"
	"testing"
)

func TestCheckEmptyListDisablesProbe(t *testing.T) {
	if err := Check(nil); err != nil {
		t.Fatalf("nil list should pass: %v", err)
	}
	if err := Check([]string{}); err != nil {
		t.Fatalf("empty list should pass: %v", err)
	}
}

func TestCheckResolvableTool(t *testing.T) {
	// sh is present on every platform the launcher's tests run on.
	if err := Check([]string{"sh"}); err != nil {
		t.Fatalf("expected sh to resolve: %v", err)
	}
}

func TestCheckMissingToolReturnsTypedError(t *testing.T) {
	err := Check([]string{"sh", "definitely-not-a-real-tool-xyz"})
	if err == nil {
		t.Fatal("expected error for missing tool")
	}
	var toolErr *ToolNotFoundError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolNotFoundError, got %T: %v", err, err)
	}
	if toolErr.Tool != "definitely-not-a-real-tool-xyz" {
		t.Fatalf("unexpected tool in error: %s", toolErr.Tool)
	}
	if toolErr.Unwrap() == nil {
		t.Fatal("expected wrapped LookPath error")
	}
}

func TestCheckStopsAtFirstMiss(t *testing.T) {
	err := Check([]string{"missing-tool-one", "missing-tool-two"})
	var toolErr *ToolNotFoundError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolNotFoundError, got %v", err)
	}
	if toolErr.Tool != "missing-tool-one" {
		t.Fatalf("expected first missing tool reported, got %s", toolErr.Tool)
	}
}
