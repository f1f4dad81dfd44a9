package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"sigo-api/internal/apperrors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

// translate maps driver errors onto the shared taxonomy so services never
// inspect pq codes themselves.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperrors.ErrConflict
		case pqForeignKeyViolation, pqInvalidText:
			return apperrors.ErrNotFound
		}
	}
	return err
}
