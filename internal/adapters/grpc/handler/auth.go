package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/daily-report-grpc/internal/adapters/grpc/interceptor"
	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
)

// Authenticator は社員コードとパスワードを照合します。
type Authenticator interface {
	Authenticate(ctx context.Context, in employee.AuthenticateInput) (*employee.Employee, error)
}

// TokenIssuer はアクセストークンを発行します。
type TokenIssuer interface {
	IssueAccessToken(employeeCode, role string) (string, time.Time, error)
}

// AuthGrpcHandler は AuthService の gRPC 実装です。
type AuthGrpcHandler struct {
	auth   Authenticator
	tokens TokenIssuer
}

// NewAuthGrpcHandler は AuthGrpcHandler を生成します。
func NewAuthGrpcHandler(auth Authenticator, tokens TokenIssuer) *AuthGrpcHandler {
	return &AuthGrpcHandler{auth: auth, tokens: tokens}
}

// Login は認証に成功した社員へアクセストークンを発行します。
func (h *AuthGrpcHandler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	emp, err := h.auth.Authenticate(ctx, employee.AuthenticateInput{
		Code:     stringField(req, "code"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	accessToken, expiresAt, err := h.tokens.IssueAccessToken(emp.Code, string(emp.Role))
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to issue access token")
	}

	return newStruct(map[string]any{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_at":   expiresAt.UTC().Format(time.RFC3339),
		"employee":     employeeFields(emp),
	})
}

func actorFromContext(ctx context.Context) (*employee.Employee, error) {
	actor, ok := interceptor.ActorFromContext(ctx)
	if !ok {
		return nil, toStatusError(employee.ErrActorRequired)
	}
	return actor, nil
}
