package actorctx

import "context"

type ctxKey string

const keyUserID ctxKey = "actor_user_id"

// WithUserID stamps the acting user onto a std context so repo/mail layers
// below the gin boundary can pick it up for logging.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyUserID).(string)

	return v, ok && v != ""
}
