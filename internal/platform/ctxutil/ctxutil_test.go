package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
)

func TestActorFrom(t *testing.T) {
	if _, ok := ActorFrom(context.Background()); ok {
		t.Fatalf("empty context must not carry an actor")
	}
	want := identity.Actor{ID: uuid.New(), Role: identity.RoleCoach}
	ctx := WithRequestData(context.Background(), &RequestData{Actor: want})
	got, ok := ActorFrom(ctx)
	if !ok || got != want {
		t.Fatalf("ActorFrom: got %+v ok=%v", got, ok)
	}
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t", RequestID: "r"})
	if td := GetTraceData(ctx); td == nil || td.RequestID != "r" {
		t.Fatalf("trace data lost")
	}
}
