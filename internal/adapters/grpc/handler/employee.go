package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
)

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
}

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// CreateEmployee は社員を作成します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.svc.CreateEmployee(ctx, employee.CreateEmployeeInput{
		Code:     stringField(req, "code"),
		Name:     stringField(req, "name"),
		Password: stringField(req, "password"),
		Role:     employee.Role(stringField(req, "role")),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"employee": employeeFields(created)})
}

// UpdateEmployee は社員情報を更新します。password を省略した場合は現在のパスワードを維持します。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	updated, err := h.svc.UpdateEmployee(ctx, employee.UpdateEmployeeInput{
		Code:     stringField(req, "code"),
		Name:     stringField(req, "name"),
		Password: stringField(req, "password"),
		Role:     employee.Role(stringField(req, "role")),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"employee": employeeFields(updated)})
}

// DeleteEmployee は社員と所有する日報を論理削除します。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{Code: stringField(req, "code")}, actor); err != nil {
		return nil, toStatusError(err)
	}

	return &structpb.Struct{}, nil
}

// GetEmployee は社員を取得します。論理削除済みの社員も返します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.svc.FindByCode(ctx, stringField(req, "code"))
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"employee": employeeFields(found)})
}

// ListEmployees は社員の一覧を返します。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	employees, err := h.svc.ListEmployees(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(employees))
	for _, e := range employees {
		items = append(items, employeeFields(e))
	}

	return newStruct(map[string]any{"employees": items})
}
