package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
	"github.com/ogurasousui/daily-report-grpc/internal/core/report"
	pgdb "github.com/ogurasousui/daily-report-grpc/internal/platform/db/postgres"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, employee.ErrInvalidCode),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidRole),
		errors.Is(err, employee.ErrPasswordFormat),
		errors.Is(err, employee.ErrPasswordLength),
		errors.Is(err, report.ErrInvalidID),
		errors.Is(err, report.ErrInvalidReportDate),
		errors.Is(err, report.ErrInvalidTitle),
		errors.Is(err, report.ErrInvalidContent),
		errors.Is(err, report.ErrInvalidEmployeeCode):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrEmployeeCodeAlreadyExists), errors.Is(err, report.ErrDuplicateReportDate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrSelfDelete):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound), errors.Is(err, report.ErrReportNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, report.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, employee.ErrActorRequired),
		errors.Is(err, report.ErrActorRequired),
		errors.Is(err, employee.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, pgdb.ErrSerializationFailure):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
