package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// TransferUseCase mueve stock entre dos tuplas como una sola transacción: o se anexan
// las dos patas (transfer_out y transfer_in con la misma referencia) o ninguna.
type TransferUseCase struct {
	txRunner repository.TxRunner
	guard    *guard
	cfg      EngineConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewTransferUseCase construye el coordinador de traslados.
func NewTransferUseCase(
	txRunner repository.TxRunner,
	catalog repository.CatalogRepository,
	settings repository.SettingsRepository,
	cfg EngineConfig,
	log *logger.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner: txRunner,
		guard:    &guard{catalog: catalog, settings: settings, defaults: cfg.Dimensions},
		cfg:      cfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TransferInput origen y destino de un traslado. El TenantID de las tuplas se toma de TenantID.
type TransferInput struct {
	TenantID  string
	From      entity.StockKey
	To        entity.StockKey
	Quantity  decimal.Decimal
	Reference string
	ActorID   string
	Note      string
}

// TransferResult las dos patas confirmadas.
type TransferResult struct {
	Reference string
	Out       *entity.MovementEntry
	In        *entity.MovementEntry
}

// Transfer ejecuta el traslado. Las tuplas se bloquean en el orden total de StockKey,
// así dos traslados cruzados nunca se interbloquean.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	ctx, cancel := uc.cfg.bound(ctx)
	defer cancel()

	in.From.TenantID = in.TenantID
	in.To.TenantID = in.TenantID
	if !in.Quantity.IsPositive() {
		return nil, uc.reject(in, domain.Validation("la cantidad a trasladar debe ser positiva"))
	}
	if err := entity.CheckQuantity("la cantidad a trasladar", in.Quantity); err != nil {
		return nil, uc.reject(in, err)
	}
	if in.From.ProductID != in.To.ProductID {
		return nil, uc.reject(in, domain.Validation("origen y destino deben ser del mismo producto"))
	}
	from, err := uc.guard.resolve(ctx, in.From)
	if err != nil {
		return nil, uc.reject(in, Finish(err))
	}
	to, err := uc.guard.resolve(ctx, in.To)
	if err != nil {
		return nil, uc.reject(in, Finish(err))
	}
	if from == to {
		return nil, uc.reject(in, domain.Validation("origen y destino son la misma tupla"))
	}
	generated := in.Reference == ""
	if generated {
		in.Reference = uuid.New().String()
	}

	var result *TransferResult
	err = uc.cfg.Retry.Do(ctx, func() error {
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			if !generated {
				if err := claimReference(ctx, repos.Movements, in.TenantID, in.Reference, true); err != nil {
					return err
				}
			}
			first, second := from, to
			if to.Less(from) {
				first, second = to, from
			}
			if _, err := repos.Stock.GetForUpdate(ctx, first); err != nil {
				return err
			}
			if _, err := repos.Stock.GetForUpdate(ctx, second); err != nil {
				return err
			}

			now := uc.now()
			out := entity.NewMovementEntry(from, entity.MovementTransferOut, in.Quantity.Neg(), in.Reference, in.ActorID, now)
			out.Note = in.Note
			if err := applyEntry(ctx, repos, out); err != nil {
				return err
			}
			inbound := entity.NewMovementEntry(to, entity.MovementTransferIn, in.Quantity, in.Reference, in.ActorID, now)
			inbound.Note = in.Note
			if err := applyEntry(ctx, repos, inbound); err != nil {
				return err
			}
			result = &TransferResult{Reference: in.Reference, Out: out, In: inbound}
			return nil
		})
	})
	if err != nil {
		return nil, uc.reject(in, Finish(err))
	}

	uc.log.Debug().
		Str("tenant_id", in.TenantID).
		Str("product_id", from.ProductID).
		Str("from", from.String()).
		Str("to", to.String()).
		Str("quantity", in.Quantity.String()).
		Str("reference", in.Reference).
		Msg("traslado registrado")
	return result, nil
}

func (uc *TransferUseCase) reject(in TransferInput, err error) error {
	ev := uc.log.Info()
	if domain.KindOf(err) == domain.KindInternal {
		ev = uc.log.Error()
	}
	ev.Err(err).
		Str("tenant_id", in.TenantID).
		Str("product_id", in.From.ProductID).
		Str("from_location_id", in.From.LocationID).
		Str("to_location_id", in.To.LocationID).
		Str("reference", in.Reference).
		Str("error_kind", string(domain.KindOf(err))).
		Msg("traslado rechazado")
	return err
}
