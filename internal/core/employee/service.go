package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
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
// fn に渡されるコンテキストがトランザクションを保持し、同じコンテキストを使う
// 他サービスの呼び出しも同一トランザクションで実行されます。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// ConflictDetector は並行トランザクションとの競合で失敗したエラーを判別します。
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

// profile は社員の入力項目の検証ルールです。
type profile struct {
	Code string `validate:"required,max=10"`
	Name string `validate:"required,max=20"`
	Role Role   `validate:"oneof=ADMIN GENERAL"`
}

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo    Repository
	reports ReportCascader
	hasher  PasswordHasher
	clock   Clock
	tx      TransactionManager
	logger  *zap.Logger
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput, actor *Employee) error
	FindByCode(ctx context.Context, code string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]*Employee, error)
	Authenticate(ctx context.Context, in AuthenticateInput) (*Employee, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, reports ReportCascader, hasher PasswordHasher, clock Clock, tx TransactionManager, logger *zap.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, reports: reports, hasher: hasher, clock: clock, tx: tx, logger: logger}
}

// CreateEmployeeInput は社員登録時の入力です。
type CreateEmployeeInput struct {
	Code     string
	Name     string
	Password string
	Role     Role
}

// UpdateEmployeeInput は社員更新時の入力です。Password が空の場合は既存のパスワードを維持します。
type UpdateEmployeeInput struct {
	Code     string
	Name     string
	Password string
	Role     Role
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	Code string
}

// AuthenticateInput はログイン時の入力です。
type AuthenticateInput struct {
	Code     string
	Password string
}

// CreateEmployee は新しい社員を登録します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	p, err := normalizeProfile(in.Code, in.Name, in.Role)
	if err != nil {
		return nil, err
	}

	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureCodeNotExists(txCtx, p.Code); err != nil {
			return err
		}

		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return fmt.Errorf("employee: hash password: %w", err)
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			Code:         p.Code,
			Name:         p.Name,
			PasswordHash: hash,
			Role:         p.Role,
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
		return nil, s.resolveConflict(ctx, err, p.Code)
	}

	return created, nil
}

// UpdateEmployee は社員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	p, err := normalizeProfile(in.Code, in.Name, in.Role)
	if err != nil {
		return nil, err
	}

	if in.Password != "" {
		if err := ValidatePassword(in.Password); err != nil {
			return nil, err
		}
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.findActive(txCtx, p.Code)
		if err != nil {
			return err
		}

		hash := existing.PasswordHash
		if in.Password != "" {
			hash, err = s.hasher.Hash(in.Password)
			if err != nil {
				return fmt.Errorf("employee: hash password: %w", err)
			}
		}

		existing.Name = p.Name
		existing.Role = p.Role
		existing.PasswordHash = hash
		existing.DeleteFlg = false
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員と、その社員が所有する日報を同一トランザクションで論理削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput, actor *Employee) error {
	if actor == nil {
		return ErrActorRequired
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return fmt.Errorf("code: %w", ErrInvalidCode)
	}
	if code == actor.Code {
		return ErrSelfDelete
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		target, err := s.findActive(txCtx, code)
		if err != nil {
			return err
		}

		cascaded, err := s.reports.DeleteReportsByEmployee(txCtx, target.Code)
		if err != nil {
			return fmt.Errorf("employee: cascade reports of %s: %w", target.Code, err)
		}

		target.DeleteFlg = true
		target.UpdatedAt = s.clock.Now()
		if _, err := s.repo.Update(txCtx, target); err != nil {
			return err
		}

		s.logger.Info("employee deleted",
			zap.String("code", target.Code),
			zap.String("deleted_by", actor.Code),
			zap.Int("cascaded_reports", cascaded),
		)
		return nil
	})
}

// FindByCode は社員コードで社員を取得します。論理削除済みの社員も返します。
func (s *Service) FindByCode(ctx context.Context, code string) (*Employee, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, fmt.Errorf("code: %w", ErrInvalidCode)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByCode(txCtx, trimmed)
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

// ListEmployees は論理削除済みを含む全社員を返します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		employees = result
		return nil
	}); err != nil {
		return nil, err
	}

	return employees, nil
}

// Authenticate は社員コードとパスワードを照合します。論理削除済みの社員はログインできません。
func (s *Service) Authenticate(ctx context.Context, in AuthenticateInput) (*Employee, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	found, err := s.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if found.State() == StateDeleted {
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(found.PasswordHash, in.Password); err != nil {
		s.logger.Debug("password mismatch", zap.String("code", code))
		return nil, ErrInvalidCredentials
	}

	return found, nil
}

func (s *Service) findActive(ctx context.Context, code string) (*Employee, error) {
	found, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if found.State() == StateDeleted {
		return nil, ErrEmployeeNotFound
	}
	return found, nil
}

// ensureCodeNotExists は論理削除済みを含めて社員コードの重複を確認します。
func (s *Service) ensureCodeNotExists(ctx context.Context, code string) error {
	emp, err := s.repo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrEmployeeCodeAlreadyExists
	}
	return nil
}

// resolveConflict は競合で失敗した登録について、同じ社員コードが登録済みであれば
// ErrEmployeeCodeAlreadyExists を返します。
func (s *Service) resolveConflict(ctx context.Context, err error, code string) error {
	detector, ok := s.tx.(ConflictDetector)
	if !ok || !detector.IsConflict(err) {
		return err
	}

	recheck := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		return s.ensureCodeNotExists(txCtx, code)
	})
	if errors.Is(recheck, ErrEmployeeCodeAlreadyExists) {
		return ErrEmployeeCodeAlreadyExists
	}
	return err
}

func normalizeProfile(code, name string, role Role) (profile, error) {
	p := profile{
		Code: strings.TrimSpace(code),
		Name: strings.TrimSpace(name),
		Role: Role(strings.ToUpper(strings.TrimSpace(string(role)))),
	}

	if err := validate.Struct(p); err != nil {
		return profile{}, translateValidationError(err)
	}
	return p, nil
}

func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	var target error
	switch fe.Field() {
	case "Code":
		target = ErrInvalidCode
	case "Name":
		target = ErrInvalidName
	case "Role":
		target = ErrInvalidRole
	default:
		return err
	}
	return fmt.Errorf("%s (%s): %w", strings.ToLower(fe.Field()), fe.Tag(), target)
}
