package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/daily-report-grpc/internal/core/report"
)

// ReportGrpcHandler は ReportService の gRPC 実装です。
type ReportGrpcHandler struct {
	svc report.UseCase
}

// NewReportGrpcHandler は ReportGrpcHandler を生成します。
func NewReportGrpcHandler(svc report.UseCase) *ReportGrpcHandler {
	return &ReportGrpcHandler{svc: svc}
}

// CreateReport はログイン中の社員の日報を作成します。
func (h *ReportGrpcHandler) CreateReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	reportDate, err := dateField(req, "report_date")
	if err != nil {
		return nil, invalidArgument(err)
	}

	created, err := h.svc.CreateReport(ctx, report.CreateReportInput{
		ReportDate: reportDate,
		Title:      stringField(req, "title"),
		Content:    stringField(req, "content"),
	}, actor)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"report": reportFields(created)})
}

// UpdateReport は日報を更新します。
func (h *ReportGrpcHandler) UpdateReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	id, err := int64Field(req, "id")
	if err != nil {
		return nil, invalidArgument(err)
	}
	reportDate, err := dateField(req, "report_date")
	if err != nil {
		return nil, invalidArgument(err)
	}

	updated, err := h.svc.UpdateReport(ctx, report.UpdateReportInput{
		ID:         id,
		ReportDate: reportDate,
		Title:      stringField(req, "title"),
		Content:    stringField(req, "content"),
	}, actor)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"report": reportFields(updated)})
}

// DeleteReport は日報を論理削除します。
func (h *ReportGrpcHandler) DeleteReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	id, err := int64Field(req, "id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	if err := h.svc.DeleteReport(ctx, report.DeleteReportInput{ID: id}, actor); err != nil {
		return nil, toStatusError(err)
	}

	return &structpb.Struct{}, nil
}

// GetReport は日報を取得します。論理削除済みの日報も delete_flg 付きで返します。
func (h *ReportGrpcHandler) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := int64Field(req, "id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	found, err := h.svc.GetReport(ctx, id)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"report": reportFields(found)})
}

// ListReports はログイン中の社員が閲覧できる日報を返します。
func (h *ReportGrpcHandler) ListReports(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	reports, err := h.svc.ListReportsForUser(ctx, actor)
	if err != nil {
		return nil, toStatusError(err)
	}

	return reportList(reports)
}

// ListAllReports は未削除の全日報を返します。
func (h *ReportGrpcHandler) ListAllReports(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	reports, err := h.svc.ListAllReports(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	return reportList(reports)
}

func reportList(reports []*report.Report) (*structpb.Struct, error) {
	items := make([]any, 0, len(reports))
	for _, r := range reports {
		items = append(items, reportFields(r))
	}
	return newStruct(map[string]any{"reports": items})
}
