package session

import (
	"context"
)

type ctxKey struct{}

func IntoContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, &sess)
}

func FromContext(ctx context.Context) *Session {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok {
		return nil
	}
	return sess
}
