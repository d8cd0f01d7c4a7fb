package repository

import "context"

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Movements MovementRepository
	Stock     StockRepository
	Orders    OrderRepository
	Rules     ReorderRuleRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Run hace Commit si fn devuelve nil y Rollback en cualquier otro caso (incluida la cancelación del ctx).
// RunReadOnly abre una instantánea consistente de solo lectura.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
	RunReadOnly(ctx context.Context, fn func(repos Repos) error) error
}
