// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"

	"cookconnect/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify converts a driver or gorm error into an AppError. Errors that are
// already AppErrors pass through unchanged.
func classify(err error, resource string, id any) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if isUniqueViolation(err) {
		return &models.AppError{Code: models.CodeConflict, Message: resource + " already exists", Err: err}
	}
	if isForeignKeyViolation(err) {
		return &models.AppError{Code: models.CodeNotFound, Message: "referenced record not found", Err: err}
	}
	return models.NewStorageError(err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
