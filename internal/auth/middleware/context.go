package auth

import "context"

type ctxKey string

const ctxKeySub ctxKey = "sub"

func WithAccountID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKeySub, id)
}

// AccountIDFromContext returns 0 when the request is unauthenticated.
func AccountIDFromContext(ctx context.Context) int64 {
	if v := ctx.Value(ctxKeySub); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
