package interceptor

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
	"github.com/ogurasousui/daily-report-grpc/internal/platform/token"
)

const (
	authorizationHeader = "authorization"
	bearerPrefix        = "bearer "
)

// EmployeeFinder は社員コードから社員を取得します。
type EmployeeFinder interface {
	FindByCode(ctx context.Context, code string) (*employee.Employee, error)
}

// TokenParser はアクセストークンを検証します。
type TokenParser interface {
	ParseAccessToken(raw string) (*token.Claims, error)
}

// AuthPolicy は認証不要のメソッドと管理者専用のメソッドをフルメソッド名で指定します。
type AuthPolicy struct {
	Public []string
	Admin  []string
}

// NewAuth はアクセストークンから操作者を解決するインターセプターを生成します。
// 操作者のロールと氏名はトークンではなく現在の社員情報から取得します。
func NewAuth(finder EmployeeFinder, tokens TokenParser, policy AuthPolicy, logger *zap.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	public := toSet(policy.Public)
	admin := toSet(policy.Admin)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		raw, err := bearerToken(ctx)
		if err != nil {
			return nil, err
		}

		claims, err := tokens.ParseAccessToken(raw)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				return nil, status.Error(codes.Unauthenticated, "access token expired")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid access token")
		}

		actor, err := finder.FindByCode(ctx, claims.EmployeeCode)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return nil, status.Error(codes.Unauthenticated, "employee not found")
			}
			logger.Error("resolve actor", zap.String("code", claims.EmployeeCode), zap.Error(err))
			return nil, status.Error(codes.Internal, "failed to resolve employee")
		}
		if actor.State() == employee.StateDeleted {
			return nil, status.Error(codes.Unauthenticated, "employee has been deleted")
		}

		if _, ok := admin[info.FullMethod]; ok && !actor.IsAdmin() {
			return nil, status.Error(codes.PermissionDenied, "administrator role is required")
		}

		return handler(WithActor(ctx, actor), req)
	}
}

func bearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "authorization metadata is required")
	}

	values := md.Get(authorizationHeader)
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization metadata is required")
	}

	value := strings.TrimSpace(values[0])
	if len(value) <= len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return "", status.Error(codes.Unauthenticated, "bearer token is required")
	}

	return strings.TrimSpace(value[len(bearerPrefix):]), nil
}

func toSet(methods []string) map[string]struct{} {
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		set[m] = struct{}{}
	}
	return set
}
