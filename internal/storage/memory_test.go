package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	type record struct {
		Name  string  `json:"name"`
		Count int     `json:"count"`
		Score float64 `json:"score"`
	}

	in := []record{{"first", 1, 0.5}, {"second", 2, 1.25}}
	if err := store.Save(ctx, "test/records", in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var out []record
	if err := store.Load(ctx, "test/records", &out); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestMemoryNotFound(t *testing.T) {
	store := NewMemory()

	var dest []string
	err := store.Load(context.Background(), "missing", &dest)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryOverwrite(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Save(ctx, "key", "old"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "key", "new"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var got string
	if err := store.Load(ctx, "key", &got); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != "new" {
		t.Errorf("got %q, want %q", got, "new")
	}
}

func TestMemoryIsolation(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	in := map[string]int{"a": 1}
	if err := store.Save(ctx, "key", in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	in["a"] = 99

	var out map[string]int
	if err := store.Load(ctx, "key", &out); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out["a"] != 1 {
		t.Error("stored value must not alias the caller's map")
	}
}
