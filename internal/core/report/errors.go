package report

import "errors"

var (
	ErrInvalidID           = errors.New("report: invalid id")
	ErrInvalidReportDate   = errors.New("report: invalid report date")
	ErrInvalidTitle        = errors.New("report: invalid title")
	ErrInvalidContent      = errors.New("report: invalid content")
	ErrInvalidEmployeeCode = errors.New("report: invalid employee code")
	ErrReportNotFound      = errors.New("report: not found")
	ErrDuplicateReportDate = errors.New("report: a report already exists for the date")
	ErrForbidden           = errors.New("report: operation not permitted for the acting employee")
	ErrActorRequired       = errors.New("report: acting employee is required")
)
