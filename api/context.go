package api

import (
	"context"
)

type keyType string

const (
	adminKey keyType = "admin"
)

// ctxWithAdmin records the authenticated admin username on the context
func ctxWithAdmin(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, adminKey, username)
}

// ctxGetAdmin returns the admin username set by the auth middleware, if any
func ctxGetAdmin(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(adminKey).(string)
	return username, ok && username != ""
}
