package interceptor

import (
	"context"

	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
)

type actorContextKey struct{}

// WithActor は認証済みの社員をコンテキストに格納します。
func WithActor(ctx context.Context, actor *employee.Employee) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext はコンテキストから認証済みの社員を取り出します。
func ActorFromContext(ctx context.Context) (*employee.Employee, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(*employee.Employee)
	return actor, ok && actor != nil
}
