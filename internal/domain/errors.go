package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind clasifica los errores de dominio; la capa HTTP decide el status a partir de él.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindConflict          Kind = "CONFLICT"
	KindInternal          Kind = "INTERNAL"
)

// Error es el error de dominio: tipo de la taxonomía + mensaje legible.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind, así errors.Is(err, ErrNotFound) funciona con cualquier NotFound.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errores de dominio (sentinelas por tipo).
var (
	ErrInvalidInput      = &Error{Kind: KindValidation, Message: "entrada inválida"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "recurso no encontrado"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Message: "stock insuficiente"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflicto con el estado actual"}
	ErrInternal          = &Error{Kind: KindInternal, Message: "error interno"}
)

// Validation construye un ValidationError con mensaje.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound construye un NotFoundError con mensaje.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict envuelve la causa de una contención que agotó los reintentos.
func Conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// Internal envuelve fallos de almacenamiento o transporte.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// InsufficientStockError detalla el faltante de una tupla.
type InsufficientStockError struct {
	Key       string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en %s: disponible %s, solicitado %s",
		e.Key, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// KindOf devuelve el tipo de la taxonomía; cualquier error desconocido es INTERNAL.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, ErrInsufficientStock) {
		return KindInsufficientStock
	}
	return KindInternal
}

// AsDomain garantiza que err pertenezca a la taxonomía, envolviendo lo desconocido como INTERNAL.
func AsDomain(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return Internal("fallo de almacenamiento", err)
}
