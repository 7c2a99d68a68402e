package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// ConflictDetector は並行トランザクションとの競合で失敗したエラーを判別します。
// TransactionManager が実装している場合、競合後に重複を確認し直して業務エラーへ変換します。
type ConflictDetector interface {
	IsConflict(err error) bool
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

var validate = validator.New()

type body struct {
	Title   string `validate:"required,max=100"`
	Content string `validate:"required,max=600"`
}

// Service は日報に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	logger *zap.Logger
}

// UseCase は日報ユースケースの公開インターフェースです。
type UseCase interface {
	CreateReport(ctx context.Context, in CreateReportInput, actor *employee.Employee) (*Report, error)
	UpdateReport(ctx context.Context, in UpdateReportInput, actor *employee.Employee) (*Report, error)
	DeleteReport(ctx context.Context, in DeleteReportInput, actor *employee.Employee) error
	GetReport(ctx context.Context, id int64) (*Report, error)
	ListAllReports(ctx context.Context) ([]*Report, error)
	ListReportsForUser(ctx context.Context, actor *employee.Employee) ([]*Report, error)
}

var (
	_ UseCase                 = (*Service)(nil)
	_ employee.ReportCascader = (*Service)(nil)
)

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, logger *zap.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, clock: clock, tx: tx, logger: logger}
}

// CreateReportInput は日報作成時の入力です。社員名は入力として受け付けません。
type CreateReportInput struct {
	ReportDate time.Time
	Title      string
	Content    string
}

// UpdateReportInput は日報更新時の入力です。
type UpdateReportInput struct {
	ID         int64
	ReportDate time.Time
	Title      string
	Content    string
}

// DeleteReportInput は日報削除時の入力です。
type DeleteReportInput struct {
	ID int64
}

// CreateReport はログイン中の社員の日報を作成します。
func (s *Service) CreateReport(ctx context.Context, in CreateReportInput, actor *employee.Employee) (*Report, error) {
	if actor == nil {
		return nil, ErrActorRequired
	}

	date, b, err := normalizeContent(in.ReportDate, in.Title, in.Content)
	if err != nil {
		return nil, err
	}

	var created *Report
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureDateAvailable(txCtx, actor.Code, date, 0); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Report{
			EmployeeCode: actor.Code,
			Name:         actor.Name,
			ReportDate:   date,
			Title:        b.Title,
			Content:      b.Content,
			DeleteFlg:    false,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, s.resolveConflict(ctx, err, actor.Code, date, 0)
	}

	return created, nil
}

// UpdateReport は日報を更新します。同じ日付のままの更新は重複扱いになりません。
func (s *Service) UpdateReport(ctx context.Context, in UpdateReportInput, actor *employee.Employee) (*Report, error) {
	if actor == nil {
		return nil, ErrActorRequired
	}
	if in.ID <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	date, b, err := normalizeContent(in.ReportDate, in.Title, in.Content)
	if err != nil {
		return nil, err
	}

	var updated *Report
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.findActive(txCtx, in.ID)
		if err != nil {
			return err
		}
		if err := authorize(existing, actor); err != nil {
			return err
		}
		if err := s.ensureDateAvailable(txCtx, actor.Code, date, existing.ID); err != nil {
			return err
		}

		existing.EmployeeCode = actor.Code
		existing.Name = actor.Name
		existing.ReportDate = date
		existing.Title = b.Title
		existing.Content = b.Content
		existing.DeleteFlg = false
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, s.resolveConflict(ctx, err, actor.Code, date, in.ID)
	}

	return updated, nil
}

// DeleteReport は日報を論理削除します。一般社員は自分の日報のみ削除できます。
func (s *Service) DeleteReport(ctx context.Context, in DeleteReportInput, actor *employee.Employee) error {
	if actor == nil {
		return ErrActorRequired
	}
	if in.ID <= 0 {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.findActive(txCtx, in.ID)
		if err != nil {
			return err
		}
		if err := authorize(existing, actor); err != nil {
			return err
		}
		if err := s.softDelete(txCtx, existing); err != nil {
			return err
		}

		s.logger.Info("report deleted",
			zap.Int64("id", existing.ID),
			zap.String("owner", existing.EmployeeCode),
			zap.String("deleted_by", actor.Code),
		)
		return nil
	})
}

// DeleteReportUnconditionally は権限確認を行わずに日報を論理削除します。
// 論理削除済みの日報に対しては何もしません。
func (s *Service) DeleteReportUnconditionally(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.State() == StateDeleted {
			return nil
		}
		return s.softDelete(txCtx, existing)
	})
}

// DeleteReportsByEmployee は社員が所有する未削除の日報をすべて論理削除し、その件数を返します。
// 呼び出し元のトランザクションがコンテキストにあればそれに参加します。
func (s *Service) DeleteReportsByEmployee(ctx context.Context, code string) (int, error) {
	var deleted int
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		reports, err := s.ListReportsByEmployee(txCtx, code)
		if err != nil {
			return err
		}

		for _, r := range reports {
			if r.State() == StateDeleted {
				continue
			}
			if err := s.DeleteReportUnconditionally(txCtx, r.ID); err != nil {
				return err
			}
			deleted++
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return deleted, nil
}

// GetReport は ID で日報を取得します。論理削除済みの日報も返します。
func (s *Service) GetReport(ctx context.Context, id int64) (*Report, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Report
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListAllReports は未削除の日報をすべて返します。
func (s *Service) ListAllReports(ctx context.Context) ([]*Report, error) {
	return s.list(ctx, ListFilter{})
}

// ListReportsForUser は管理者なら未削除の全日報、一般社員なら自分の未削除の日報を返します。
func (s *Service) ListReportsForUser(ctx context.Context, actor *employee.Employee) ([]*Report, error) {
	if actor == nil {
		return nil, ErrActorRequired
	}
	if actor.IsAdmin() {
		return s.ListAllReports(ctx)
	}

	code := actor.Code
	return s.list(ctx, ListFilter{EmployeeCode: &code})
}

// ListReportsByEmployee は論理削除済みを含む、社員のすべての日報を返します。
func (s *Service) ListReportsByEmployee(ctx context.Context, code string) ([]*Report, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, fmt.Errorf("employee_code: %w", ErrInvalidEmployeeCode)
	}
	return s.list(ctx, ListFilter{EmployeeCode: &trimmed, IncludeDeleted: true})
}

func (s *Service) list(ctx context.Context, filter ListFilter) ([]*Report, error) {
	var reports []*Report
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		reports = result
		return nil
	}); err != nil {
		return nil, err
	}

	return reports, nil
}

func (s *Service) findActive(ctx context.Context, id int64) (*Report, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found.State() == StateDeleted {
		return nil, ErrReportNotFound
	}
	return found, nil
}

func (s *Service) softDelete(ctx context.Context, r *Report) error {
	r.DeleteFlg = true
	r.UpdatedAt = s.clock.Now()
	_, err := s.repo.Update(ctx, r)
	return err
}

// ensureDateAvailable は社員・日付ごとに未削除の日報が一件までであることを確認します。
// excludeID の日報は重複判定から除外します。
func (s *Service) ensureDateAvailable(ctx context.Context, code string, date time.Time, excludeID int64) error {
	existing, err := s.repo.List(ctx, ListFilter{
		EmployeeCode: &code,
		ReportDate:   &date,
		ExcludeID:    excludeID,
	})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrDuplicateReportDate
	}
	return nil
}

// resolveConflict は競合で失敗した書き込みについて、競合相手が同じ日付の日報を
// 登録していれば ErrDuplicateReportDate を返します。それ以外は元のエラーを返します。
func (s *Service) resolveConflict(ctx context.Context, err error, code string, date time.Time, excludeID int64) error {
	detector, ok := s.tx.(ConflictDetector)
	if !ok || !detector.IsConflict(err) {
		return err
	}

	recheck := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		return s.ensureDateAvailable(txCtx, code, date, excludeID)
	})
	if errors.Is(recheck, ErrDuplicateReportDate) {
		s.logger.Debug("write conflict resolved as duplicate report date",
			zap.String("employee_code", code),
			zap.Time("report_date", date),
		)
		return ErrDuplicateReportDate
	}
	return err
}

func authorize(r *Report, actor *employee.Employee) error {
	if actor.IsAdmin() || r.OwnedBy(actor.Code) {
		return nil
	}
	return ErrForbidden
}

// NormalizeDate は日付部分のみを UTC の 0 時として返します。
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeContent(date time.Time, title, content string) (time.Time, body, error) {
	if date.IsZero() {
		return time.Time{}, body{}, fmt.Errorf("report_date: %w", ErrInvalidReportDate)
	}

	b := body{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
	}
	if err := validate.Struct(b); err != nil {
		return time.Time{}, body{}, translateValidationError(err)
	}

	return NormalizeDate(date), b, nil
}

func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	var target error
	switch fe.Field() {
	case "Title":
		target = ErrInvalidTitle
	case "Content":
		target = ErrInvalidContent
	default:
		return err
	}
	return fmt.Errorf("%s (%s): %w", strings.ToLower(fe.Field()), fe.Tag(), target)
}
