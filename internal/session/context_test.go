package session

import (
	"context"
	"testing"
)

func TestWithSessionAndFromContext(t *testing.T) {
	ctx := WithSession(context.Background(), Info{KitchenID: "k-1", New: true})
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected Info in context")
	}
	if got.KitchenID != "k-1" {
		t.Errorf("KitchenID = %q, want %q", got.KitchenID, "k-1")
	}
	if !got.New {
		t.Error("New = false, want true")
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected false for missing Info")
	}
}

func TestKitchenID(t *testing.T) {
	ctx := WithSession(context.Background(), Info{KitchenID: "k-42"})
	if KitchenID(ctx) != "k-42" {
		t.Errorf("KitchenID = %q, want k-42", KitchenID(ctx))
	}
}

func TestKitchenIDMissing(t *testing.T) {
	if KitchenID(context.Background()) != "" {
		t.Error("expected empty id for missing context")
	}
}
