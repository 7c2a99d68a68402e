package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	// FindByCode は論理削除済みの社員も返します。存在しない場合は ErrEmployeeNotFound です。
	FindByCode(ctx context.Context, code string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
}

// PasswordHasher はパスワードの一方向ハッシュを提供します。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// ReportCascader は社員削除時に、その社員が所有する日報を論理削除します。
// 戻り値は新たに論理削除した件数です。
type ReportCascader interface {
	DeleteReportsByEmployee(ctx context.Context, code string) (int, error)
}
