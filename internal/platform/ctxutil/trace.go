package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
)

type traceDataKey struct{}

// TraceData correlates one request across logs and spans. Actor fields stay
// empty until authentication succeeds.
type TraceData struct {
	TraceID   string
	RequestID string
	ActorID   uuid.UUID
	Role      identity.Role
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// TagActor records the authenticated caller on the request's trace data.
func TagActor(ctx context.Context, actor identity.Actor) {
	if td := GetTraceData(ctx); td != nil {
		td.ActorID = actor.ID
		td.Role = actor.Role
	}
}
