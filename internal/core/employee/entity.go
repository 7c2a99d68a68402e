package employee

import "time"

// Role は社員の権限区分を表します。
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleGeneral Role = "GENERAL"
)

// State は論理削除の状態を表します。永続化上は DeleteFlg として保持します。
type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// Employee は社員エンティティです。
type Employee struct {
	Code         string
	Name         string
	PasswordHash string
	Role         Role
	DeleteFlg    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// State は社員の論理削除状態を返します。
func (e *Employee) State() State {
	if e.DeleteFlg {
		return StateDeleted
	}
	return StateActive
}

// IsAdmin は管理者かどうかを返します。
func (e *Employee) IsAdmin() bool {
	return e != nil && e.Role == RoleAdmin
}
