package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
)

// Códigos SQLSTATE que el motor trata de forma especial.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeNumericOverflow      = "22003"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool { return pgCode(err) == codeUniqueViolation }

// isCheckViolation verifica si un error es una violación de CHECK (23514), p. ej. quantity >= 0.
func isCheckViolation(err error) bool { return pgCode(err) == codeCheckViolation }

// wrap anota la operación y convierte la contención (serialización, deadlock, lock_timeout)
// en ConflictError para que el motor reintente. El desborde numérico es entrada inválida.
func wrap(op string, err error) error {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return domain.Conflict(op+": contención de concurrencia", err)
	case codeNumericOverflow:
		return &domain.Error{Kind: domain.KindValidation, Message: op + ": cantidad fuera de rango", Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
