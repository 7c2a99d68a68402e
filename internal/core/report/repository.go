package report

import (
	"context"
	"time"
)

// ListFilter は日報一覧の絞り込み条件です。nil の項目は条件に含めません。
type ListFilter struct {
	EmployeeCode   *string
	ReportDate     *time.Time
	IncludeDeleted bool
	// ExcludeID が 0 以外の場合、その ID の日報を結果から除外します。
	ExcludeID int64
}

// Repository は日報永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, report *Report) (*Report, error)
	Update(ctx context.Context, report *Report) (*Report, error)
	// FindByID は論理削除済みの日報も返します。存在しない場合は ErrReportNotFound です。
	FindByID(ctx context.Context, id int64) (*Report, error)
	// List は日付の降順、同日内は ID の降順で返します。
	List(ctx context.Context, filter ListFilter) ([]*Report, error)
}
