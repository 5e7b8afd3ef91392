package memory

import (
	"context"
	"testing"

	"vocab-drill-service/internal/domain"
	"vocab-drill-service/internal/quiz"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	state := quiz.SessionState{ID: "s1", Username: "amy", Kind: domain.KindDrill, Mode: domain.ModeMemory}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Get(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("expected session present, ok=%v err=%v", ok, err)
	}
	if got.Username != "amy" {
		t.Fatalf("unexpected session %+v", got)
	}

	_ = store.Delete(ctx, "s1")
	if _, ok, _ := store.Get(ctx, "s1"); ok {
		t.Fatalf("expected session removed")
	}
}
