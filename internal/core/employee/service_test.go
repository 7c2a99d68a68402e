package employee

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	updateErr error
	updates   int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.Code]; ok {
		return nil, ErrEmployeeCodeAlreadyExists
	}
	clone := *e
	r.employees[e.Code] = &clone
	out := clone
	return &out, nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, ok := r.employees[e.Code]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.updates++
	clone := *e
	r.employees[e.Code] = &clone
	out := clone
	return &out, nil
}

func (r *fakeEmployeeRepo) FindByCode(_ context.Context, code string) (*Employee, error) {
	emp, ok := r.employees[code]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	clone := *emp
	return &clone, nil
}

func (r *fakeEmployeeRepo) List(_ context.Context) ([]*Employee, error) {
	codes := make([]string, 0, len(r.employees))
	for code := range r.employees {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]*Employee, 0, len(codes))
	for _, code := range codes {
		clone := *r.employees[code]
		out = append(out, &clone)
	}
	return out, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (fakeHasher) Compare(hash, plain string) error {
	if hash != "hashed:"+plain {
		return errors.New("mismatch")
	}
	return nil
}

type fakeCascader struct {
	calls []string
	count int
	err   error
}

func (c *fakeCascader) DeleteReportsByEmployee(_ context.Context, code string) (int, error) {
	c.calls = append(c.calls, code)
	return c.count, c.err
}

type recordingTx struct {
	readWrite int
	readOnly  int
}

func (r *recordingTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	r.readOnly++
	return fn(ctx)
}

func (r *recordingTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	r.readWrite++
	return fn(ctx)
}

func newTestService(now time.Time) (*Service, *fakeEmployeeRepo, *fakeCascader, *stubClock) {
	repo := newFakeEmployeeRepo()
	cascader := &fakeCascader{}
	clk := &stubClock{now: now}
	return NewService(repo, cascader, fakeHasher{}, clk, nil, nil), repo, cascader, clk
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestService(now)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		Code:     " E001 ",
		Name:     "  山田 太郎 ",
		Password: "validPass1",
		Role:     "general",
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.Code != "E001" || created.Name != "山田 太郎" {
		t.Fatalf("expected trimmed code and name, got %q %q", created.Code, created.Name)
	}
	if created.Role != RoleGeneral {
		t.Fatalf("expected role GENERAL, got %s", created.Role)
	}
	if created.PasswordHash == "validPass1" || created.PasswordHash != "hashed:validPass1" {
		t.Fatalf("expected hashed password, got %q", created.PasswordHash)
	}
	if created.DeleteFlg || created.State() != StateActive {
		t.Fatal("expected active employee")
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatal("expected timestamps to use clock now")
	}
	if _, ok := repo.employees["E001"]; !ok {
		t.Fatal("expected employee to be persisted")
	}
}

func TestService_CreateEmployee_PasswordPolicy(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(time.Now().UTC())

	cases := map[string]error{
		"abc123":    ErrPasswordLength,
		"pässword1": ErrPasswordFormat,
	}
	for password, want := range cases {
		_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
			Code: "E001", Name: "Taro", Password: password, Role: RoleGeneral,
		})
		if !errors.Is(err, want) {
			t.Fatalf("password %q: expected %v, got %v", password, want, err)
		}
	}
	if len(repo.employees) != 0 {
		t.Fatal("no employee must be stored when password is rejected")
	}
}

func TestService_CreateEmployee_DuplicateCode(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(time.Now().UTC())

	in := CreateEmployeeInput{Code: "E001", Name: "Taro", Password: "Passw0rd", Role: RoleGeneral}
	if _, err := svc.CreateEmployee(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateEmployee(context.Background(), in)
	if !errors.Is(err, ErrEmployeeCodeAlreadyExists) {
		t.Fatalf("expected ErrEmployeeCodeAlreadyExists, got %v", err)
	}
}

func TestService_CreateEmployee_DuplicateCodeOfDeletedEmployee(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(time.Now().UTC())
	repo.employees["E009"] = &Employee{Code: "E009", Name: "Gone", Role: RoleGeneral, DeleteFlg: true}

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		Code: "E009", Name: "New", Password: "Passw0rd", Role: RoleGeneral,
	})
	if !errors.Is(err, ErrEmployeeCodeAlreadyExists) {
		t.Fatalf("expected soft-deleted code to stay reserved, got %v", err)
	}
}

func TestService_CreateEmployee_InvalidProfile(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(time.Now().UTC())

	cases := []struct {
		in   CreateEmployeeInput
		want error
	}{
		{in: CreateEmployeeInput{Code: " ", Name: "Taro", Password: "Passw0rd", Role: RoleGeneral}, want: ErrInvalidCode},
		{in: CreateEmployeeInput{Code: "E0000000001", Name: "Taro", Password: "Passw0rd", Role: RoleGeneral}, want: ErrInvalidCode},
		{in: CreateEmployeeInput{Code: "E001", Name: "", Password: "Passw0rd", Role: RoleGeneral}, want: ErrInvalidName},
		{in: CreateEmployeeInput{Code: "E001", Name: "Taro", Password: "Passw0rd", Role: "OWNER"}, want: ErrInvalidRole},
	}
	for _, tc := range cases {
		if _, err := svc.CreateEmployee(context.Background(), tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("input %+v: expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestService_UpdateEmployee_KeepsPasswordWhenEmpty(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc, repo, _, clk := newTestService(created)

	if _, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		Code: "E001", Name: "Taro", Password: "Passw0rd", Role: RoleGeneral,
	}); err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	clk.now = created.Add(48 * time.Hour)
	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		Code: "E001", Name: "Hanako", Role: RoleAdmin,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	if updated.PasswordHash != "hashed:Passw0rd" {
		t.Fatalf("expected password hash to be retained, got %q", updated.PasswordHash)
	}
	if updated.Name != "Hanako" || updated.Role != RoleAdmin {
		t.Fatalf("expected name and role to be updated, got %+v", updated)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at preserved, got %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated_at to use clock, got %v", updated.UpdatedAt)
	}
	if repo.employees["E001"].Name != "Hanako" {
		t.Fatal("expected update to be persisted")
	}
}

func TestService_UpdateEmployee_RehashesNewPassword(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(time.Now().UTC())

	if _, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		Code: "E001", Name: "Taro", Password: "Passw0rd", Role: RoleGeneral,
	}); err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		Code: "E001", Name: "Taro", Password: "short", Role: RoleGeneral,
	}); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected ErrPasswordLength, got %v", err)
	}

	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		Code: "E001", Name: "Taro", Password: "NewPassw0rd", Role: RoleGeneral,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.PasswordHash != "hashed:NewPassw0rd" {
		t.Fatalf("expected new hash, got %q", updated.PasswordHash)
	}
}

func TestService_UpdateEmployee_NotFound(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(time.Now().UTC())
	repo.employees["E002"] = &Employee{Code: "E002", Name: "Gone", Role: RoleGeneral, DeleteFlg: true}

	for _, code := range []string{"E404", "E002"} {
		_, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{Code: code, Name: "X", Role: RoleGeneral})
		if !errors.Is(err, ErrEmployeeNotFound) {
			t.Fatalf("code %s: expected ErrEmployeeNotFound, got %v", code, err)
		}
	}
}

func TestService_DeleteEmployee_SelfDelete(t *testing.T) {
	t.Parallel()

	svc, repo, cascader, _ := newTestService(time.Now().UTC())
	actor := &Employee{Code: "E001", Name: "Admin", Role: RoleAdmin}
	repo.employees["E001"] = actor

	err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{Code: "E001"}, actor)
	if !errors.Is(err, ErrSelfDelete) {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}
	if len(cascader.calls) != 0 || repo.updates != 0 {
		t.Fatal("self delete must not change state")
	}
	if repo.employees["E001"].DeleteFlg {
		t.Fatal("actor must remain active")
	}
}

func TestService_DeleteEmployee_CascadesReports(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeEmployeeRepo()
	cascader := &fakeCascader{count: 3}
	tx := &recordingTx{}
	svc := NewService(repo, cascader, fakeHasher{}, &stubClock{now: now}, tx, nil)

	createdAt := now.Add(-24 * time.Hour)
	repo.employees["E002"] = &Employee{Code: "E002", Name: "Taro", Role: RoleGeneral, CreatedAt: createdAt, UpdatedAt: createdAt}
	actor := &Employee{Code: "E001", Name: "Admin", Role: RoleAdmin}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{Code: "E002"}, actor); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}

	if len(cascader.calls) != 1 || cascader.calls[0] != "E002" {
		t.Fatalf("expected cascade for E002, got %v", cascader.calls)
	}
	stored := repo.employees["E002"]
	if !stored.DeleteFlg || stored.State() != StateDeleted {
		t.Fatal("expected employee to be soft deleted")
	}
	if !stored.UpdatedAt.Equal(now) || !stored.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected timestamps: created %v updated %v", stored.CreatedAt, stored.UpdatedAt)
	}
	if tx.readWrite != 1 {
		t.Fatalf("expected a single read-write unit of work, got %d", tx.readWrite)
	}
}

func TestService_DeleteEmployee_CascadeFailureKeepsEmployee(t *testing.T) {
	t.Parallel()

	svc, repo, cascader, _ := newTestService(time.Now().UTC())
	repo.employees["E002"] = &Employee{Code: "E002", Name: "Taro", Role: RoleGeneral}
	cascader.err = errors.New("boom")

	err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{Code: "E002"}, &Employee{Code: "E001", Role: RoleAdmin})
	if !errors.Is(err, cascader.err) {
		t.Fatalf("expected cascade error, got %v", err)
	}
	if repo.employees["E002"].DeleteFlg {
		t.Fatal("employee must not be deleted when cascade fails")
	}
}

func TestService_DeleteEmployee_NotFound(t *testing.T) {
	t.Parallel()

	svc, repo, cascader, _ := newTestService(time.Now().UTC())
	repo.employees["E003"] = &Employee{Code: "E003", DeleteFlg: true}
	actor := &Employee{Code: "E001", Role: RoleAdmin}

	for _, code := range []string{"E404", "E003"} {
		err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{Code: code}, actor)
		if !errors.Is(err, ErrEmployeeNotFound) {
			t.Fatalf("code %s: expected ErrEmployeeNotFound, got %v", code, err)
		}
	}
	if len(cascader.calls) != 0 {
		t.Fatal("cascade must not run for missing employees")
	}
}

func TestService_DeleteEmployee_RequiresActor(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(time.Now().UTC())
	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{Code: "E002"}, nil); !errors.Is(err, ErrActorRequired) {
		t.Fatalf("expected ErrActorRequired, got %v", err)
	}
}

func TestService_ListEmployees_IncludesDeleted(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(time.Now().UTC())
	repo.employees["E001"] = &Employee{Code: "E001", Role: RoleAdmin}
	repo.employees["E002"] = &Employee{Code: "E002", Role: RoleGeneral, DeleteFlg: true}

	employees, err := svc.ListEmployees(context.Background())
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}
}

func TestService_FindByCode(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(time.Now().UTC())
	repo.employees["E001"] = &Employee{Code: "E001", Name: "Taro"}

	found, err := svc.FindByCode(context.Background(), "E001")
	if err != nil || found.Name != "Taro" {
		t.Fatalf("unexpected result: %+v, %v", found, err)
	}

	if _, err := svc.FindByCode(context.Background(), "E404"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(time.Now().UTC())
	repo.employees["E001"] = &Employee{Code: "E001", PasswordHash: "hashed:Passw0rd", Role: RoleGeneral}
	repo.employees["E002"] = &Employee{Code: "E002", PasswordHash: "hashed:Passw0rd", Role: RoleGeneral, DeleteFlg: true}

	if _, err := svc.Authenticate(context.Background(), AuthenticateInput{Code: "E001", Password: "Passw0rd"}); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	failures := []AuthenticateInput{
		{Code: "E001", Password: "wrong"},
		{Code: "E002", Password: "Passw0rd"},
		{Code: "E404", Password: "Passw0rd"},
		{Code: "", Password: "Passw0rd"},
	}
	for _, in := range failures {
		if _, err := svc.Authenticate(context.Background(), in); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("input %+v: expected ErrInvalidCredentials, got %v", in, err)
		}
	}
}

var errConflict = errors.New("conflict")

// conflictingTx は読み書きトランザクションの実行前に競合相手の書き込みを反映し、競合エラーで失敗させます。
type conflictingTx struct {
	winner func()
}

func (c *conflictingTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (c *conflictingTx) WithinReadWrite(context.Context, func(context.Context) error) error {
	if c.winner != nil {
		c.winner()
	}
	return errConflict
}

func (c *conflictingTx) IsConflict(err error) bool {
	return errors.Is(err, errConflict)
}

func TestService_CreateEmployee_ConflictResolvesToDuplicateCode(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	tx := &conflictingTx{winner: func() {
		_, _ = repo.Create(context.Background(), &Employee{Code: "E001", Name: "先着", Role: RoleGeneral})
	}}
	svc := NewService(repo, &fakeCascader{}, fakeHasher{}, &stubClock{now: time.Now().UTC()}, tx, nil)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Code: "E001", Name: "山田", Password: "Passw0rd", Role: RoleGeneral})
	if !errors.Is(err, ErrEmployeeCodeAlreadyExists) {
		t.Fatalf("expected ErrEmployeeCodeAlreadyExists, got %v", err)
	}
}

func TestService_CreateEmployee_ConflictWithoutDuplicateKeepsError(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &fakeCascader{}, fakeHasher{}, &stubClock{now: time.Now().UTC()}, &conflictingTx{}, nil)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Code: "E001", Name: "山田", Password: "Passw0rd", Role: RoleGeneral})
	if !errors.Is(err, errConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}
