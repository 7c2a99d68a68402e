package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
	"github.com/ogurasousui/daily-report-grpc/internal/core/report"
	pgdb "github.com/ogurasousui/daily-report-grpc/internal/platform/db/postgres"
)

const (
	reportsActiveDateKey  = "reports_employee_date_active_key"
	reportsEmployeeCodeFK = "reports_employee_code_fkey"
	reportColumns         = "id, employee_code, name, report_date, title, content, delete_flg, created_at, updated_at"
)

// ReportRepository は PostgreSQL を利用した日報永続化の実装です。
type ReportRepository struct {
	pool pgdb.Queryer
}

// NewReportRepository は ReportRepository を生成します。
func NewReportRepository(pool pgdb.Queryer) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create は日報を新規作成します。ID はデータベースで採番されます。
func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) (*report.Report, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO reports (employee_code, name, report_date, title, content, delete_flg, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+reportColumns,
		rep.EmployeeCode,
		rep.Name,
		rep.ReportDate,
		rep.Title,
		rep.Content,
		rep.DeleteFlg,
		rep.CreatedAt,
		rep.UpdatedAt,
	)

	created, err := scanReport(row)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return created, nil
}

// Update は日報を更新します。作成日時は変更しません。
func (r *ReportRepository) Update(ctx context.Context, rep *report.Report) (*report.Report, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE reports
           SET employee_code = $1,
               name = $2,
               report_date = $3,
               title = $4,
               content = $5,
               delete_flg = $6,
               updated_at = $7
         WHERE id = $8
        RETURNING `+reportColumns,
		rep.EmployeeCode,
		rep.Name,
		rep.ReportDate,
		rep.Title,
		rep.Content,
		rep.DeleteFlg,
		rep.UpdatedAt,
		rep.ID,
	)

	updated, err := scanReport(row)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return updated, nil
}

// FindByID は ID で日報を取得します。論理削除済みの日報も対象です。
func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*report.Report, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+reportColumns+`
          FROM reports
         WHERE id = $1
    `, id)

	found, err := scanReport(row)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return found, nil
}

// List は条件に一致する日報を日付の降順で返します。
func (r *ReportRepository) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	query, args := buildReportListQuery(filter)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	defer rows.Close()

	reports := make([]*report.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, translateReportPgError(err)
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, translateReportPgError(err)
	}

	return reports, nil
}

func buildReportListQuery(filter report.ListFilter) (string, []any) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 4)

	if !filter.IncludeDeleted {
		conditions = append(conditions, "delete_flg = FALSE")
	}
	if filter.EmployeeCode != nil {
		args = append(args, *filter.EmployeeCode)
		conditions = append(conditions, "employee_code = $"+strconv.Itoa(len(args)))
	}
	if filter.ReportDate != nil {
		args = append(args, *filter.ReportDate)
		conditions = append(conditions, "report_date = $"+strconv.Itoa(len(args)))
	}
	if filter.ExcludeID != 0 {
		args = append(args, filter.ExcludeID)
		conditions = append(conditions, "id <> $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + reportColumns + `
          FROM reports` + whereClause + `
         ORDER BY report_date DESC, id DESC
    `
	return query, args
}

func scanReport(row pgx.Row) (*report.Report, error) {
	var (
		id           int64
		employeeCode string
		name         string
		reportDate   time.Time
		title        string
		content      string
		deleteFlg    bool
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(&id, &employeeCode, &name, &reportDate, &title, &content, &deleteFlg, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrReportNotFound
		}
		return nil, err
	}

	return &report.Report{
		ID:           id,
		EmployeeCode: employeeCode,
		Name:         name,
		ReportDate:   report.NormalizeDate(reportDate),
		Title:        title,
		Content:      content,
		DeleteFlg:    deleteFlg,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateReportPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return report.ErrReportNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == reportsActiveDateKey:
			return report.ErrDuplicateReportDate
		case pgErr.Code == foreignKeyViolationCode && pgErr.ConstraintName == reportsEmployeeCodeFK:
			return employee.ErrEmployeeNotFound
		}
	}

	return err
}
