package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
	"github.com/ogurasousui/daily-report-grpc/internal/core/report"
)

const dateLayout = "2006-01-02"

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// int64Field は数値または数字文字列の項目を読み取ります。未指定の場合は 0 です。
func int64Field(req *structpb.Struct, key string) (int64, error) {
	v, ok := req.GetFields()[key]
	if !ok || v == nil {
		return 0, nil
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(kind.StringValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return n, nil
	case *structpb.Value_NullValue:
		return 0, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

// dateField は YYYY-MM-DD 形式の日付を読み取ります。未指定の場合はゼロ値です。
func dateField(req *structpb.Struct, key string) (time.Time, error) {
	raw := strings.TrimSpace(stringField(req, key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be formatted as YYYY-MM-DD", key)
	}
	return t, nil
}

func invalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return s, nil
}

func employeeFields(e *employee.Employee) map[string]any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"code":       e.Code,
		"name":       e.Name,
		"role":       string(e.Role),
		"delete_flg": e.DeleteFlg,
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func reportFields(r *report.Report) map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"id":            r.ID,
		"employee_code": r.EmployeeCode,
		"name":          r.Name,
		"report_date":   r.ReportDate.Format(dateLayout),
		"title":         r.Title,
		"content":       r.Content,
		"delete_flg":    r.DeleteFlg,
		"created_at":    r.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":    r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
