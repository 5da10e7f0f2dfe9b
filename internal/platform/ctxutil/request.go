package ctxutil

import (
	"context"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
)

type requestDataKey struct{}

// RequestData carries the authenticated caller for the lifetime of a request.
type RequestData struct {
	TokenString string
	Actor       identity.Actor
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(ctx context.Context) (identity.Actor, bool) {
	rd := GetRequestData(ctx)
	if rd == nil || rd.Actor.Role == "" {
		return identity.Actor{}, false
	}
	return rd.Actor, true
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
