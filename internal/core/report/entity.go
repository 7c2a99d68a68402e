package report

import "time"

// State は論理削除の状態を表します。
type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// Report は日報エンティティです。
// Name は保存時点の社員名のスナップショットで、作成・更新のたびに社員情報から上書きされます。
type Report struct {
	ID           int64
	EmployeeCode string
	Name         string
	ReportDate   time.Time
	Title        string
	Content      string
	DeleteFlg    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// State は日報の論理削除状態を返します。
func (r *Report) State() State {
	if r.DeleteFlg {
		return StateDeleted
	}
	return StateActive
}

// OwnedBy は指定社員の日報かどうかを返します。
func (r *Report) OwnedBy(code string) bool {
	return r.EmployeeCode == code
}
