package httpapi

import (
	"context"

	"github.com/dmitrijs2005/userkeeper/internal/server/models"
)

type (
	actorKey     struct{}
	requestIDKey struct{}
)

func withActor(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

// actorFrom returns the authenticated user set by requireAuth.
func actorFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(actorKey{}).(*models.User)
	return u, ok && u != nil
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
