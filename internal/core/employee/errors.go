package employee

import "errors"

var (
	ErrInvalidCode               = errors.New("employee: invalid code")
	ErrInvalidName               = errors.New("employee: invalid name")
	ErrInvalidRole               = errors.New("employee: invalid role")
	ErrPasswordFormat            = errors.New("employee: password must contain only half-width letters and digits")
	ErrPasswordLength            = errors.New("employee: password must be 8 to 16 characters")
	ErrEmployeeNotFound          = errors.New("employee: not found")
	ErrEmployeeCodeAlreadyExists = errors.New("employee: code already exists")
	ErrSelfDelete                = errors.New("employee: cannot delete the logged-in employee")
	ErrActorRequired             = errors.New("employee: acting employee is required")
	ErrInvalidCredentials        = errors.New("employee: invalid code or password")
)
