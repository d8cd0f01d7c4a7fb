package reorder

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/orders"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// UseCase motor de reorden: reglas de mínimo por (producto, bodega) y recomendaciones
// calculadas sobre el stock agregado más lo ya pedido. Nunca escribe en el libro.
type UseCase struct {
	txRunner repository.TxRunner
	catalog  repository.CatalogRepository
	orders   *orders.UseCase
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el motor de reorden.
func NewUseCase(
	txRunner repository.TxRunner,
	catalog repository.CatalogRepository,
	orderUC *orders.UseCase,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		catalog:  catalog,
		orders:   orderUC,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RuleInput datos de una regla de reorden.
type RuleInput struct {
	ProductID     string
	LocationID    string
	Minimum       decimal.Decimal
	ReorderAmount decimal.Decimal
}

// CreateReorderRule crea o reemplaza la regla de (producto, bodega).
func (uc *UseCase) CreateReorderRule(ctx context.Context, tenantID string, in RuleInput) (*entity.ReorderRule, error) {
	if tenantID == "" || in.ProductID == "" || in.LocationID == "" {
		return nil, domain.Validation("empresa, producto y bodega son obligatorios")
	}
	if in.Minimum.IsNegative() || in.ReorderAmount.IsNegative() {
		return nil, domain.Validation("mínimo y cantidad de reorden no pueden ser negativos")
	}
	if err := entity.CheckQuantity("el mínimo", in.Minimum); err != nil {
		return nil, err
	}
	if err := entity.CheckQuantity("la cantidad de reorden", in.ReorderAmount); err != nil {
		return nil, err
	}
	product, err := uc.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, domain.Internal("no se pudo leer el producto", err)
	}
	if product == nil || product.TenantID != tenantID {
		return nil, domain.NotFound("producto %s no encontrado", in.ProductID)
	}
	location, err := uc.catalog.GetLocation(ctx, in.LocationID)
	if err != nil {
		return nil, domain.Internal("no se pudo leer la bodega", err)
	}
	if location == nil || location.TenantID != tenantID {
		return nil, domain.NotFound("bodega %s no encontrada", in.LocationID)
	}

	rule := &entity.ReorderRule{
		TenantID:      tenantID,
		ProductID:     in.ProductID,
		LocationID:    in.LocationID,
		Minimum:       in.Minimum,
		ReorderAmount: in.ReorderAmount,
		UpdatedAt:     uc.now(),
	}
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		return repos.Rules.Upsert(ctx, rule)
	})
	if err != nil {
		return nil, inventory.Finish(err)
	}
	return rule, nil
}

// ListRules reglas de la empresa; locationID vacío = todas las bodegas.
func (uc *UseCase) ListRules(ctx context.Context, tenantID, locationID string) ([]*entity.ReorderRule, error) {
	if tenantID == "" {
		return nil, domain.Validation("la empresa es obligatoria")
	}
	var rules []*entity.ReorderRule
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		rules, err = repos.Rules.List(ctx, tenantID, locationID)
		return err
	})
	if err != nil {
		return nil, inventory.Finish(err)
	}
	return rules, nil
}

// DeleteRule elimina la regla; NotFound si no existía.
func (uc *UseCase) DeleteRule(ctx context.Context, tenantID, productID, locationID string) error {
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		rule, err := repos.Rules.Get(ctx, tenantID, productID, locationID)
		if err != nil {
			return err
		}
		if rule == nil {
			return domain.NotFound("no hay regla para el producto %s en la bodega %s", productID, locationID)
		}
		return repos.Rules.Delete(ctx, tenantID, productID, locationID)
	})
	return inventory.Finish(err)
}

// ListFlagged devuelve los productos bajo mínimo, mayor déficit primero.
// Stock, órdenes y reglas se leen en una única instantánea, así las dos patas de un
// traslado nunca se observan por separado.
func (uc *UseCase) ListFlagged(ctx context.Context, tenantID, locationID string) ([]entity.ReorderRecommendation, error) {
	if tenantID == "" {
		return nil, domain.Validation("la empresa es obligatoria")
	}
	flagged := []entity.ReorderRecommendation{}
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		rules, err := repos.Rules.List(ctx, tenantID, locationID)
		if err != nil {
			return err
		}
		for _, rule := range rules {
			stock, err := repos.Stock.SumByProductLocation(ctx, tenantID, rule.ProductID, rule.LocationID)
			if err != nil {
				return err
			}
			open, err := repos.Orders.OpenQuantity(ctx, tenantID, rule.ProductID, rule.LocationID)
			if err != nil {
				return err
			}
			if rec := rule.Recommend(stock, open); rec.Recommended.IsPositive() {
				flagged = append(flagged, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, inventory.Finish(err)
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		a, b := flagged[i], flagged[j]
		if !a.Recommended.Equal(b.Recommended) {
			return a.Recommended.GreaterThan(b.Recommended)
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.LocationID < b.LocationID
	})
	return flagged, nil
}

// BulkCreateOrders crea una orden por bodega con una línea por producto a partir de
// recomendaciones. Delegado por completo al seguimiento de órdenes.
func (uc *UseCase) BulkCreateOrders(ctx context.Context, tenantID, actorID string, recs []entity.ReorderRecommendation) ([]*entity.Order, error) {
	if tenantID == "" {
		return nil, domain.Validation("la empresa es obligatoria")
	}
	if len(recs) == 0 {
		return nil, domain.Validation("no hay recomendaciones para ordenar")
	}

	type lineKey struct{ location, product string }
	qty := make(map[lineKey]decimal.Decimal)
	var locations []string
	products := make(map[string][]string)
	for _, r := range recs {
		if r.TenantID != "" && r.TenantID != tenantID {
			return nil, domain.NotFound("producto %s no encontrado", r.ProductID)
		}
		q := r.OrderQuantity
		if !q.IsPositive() {
			q = r.Recommended
		}
		if !q.IsPositive() {
			return nil, domain.Validation("la recomendación de %s en %s no tiene cantidad a pedir", r.ProductID, r.LocationID)
		}
		k := lineKey{r.LocationID, r.ProductID}
		if _, ok := qty[k]; !ok {
			if _, seen := products[r.LocationID]; !seen {
				locations = append(locations, r.LocationID)
			}
			products[r.LocationID] = append(products[r.LocationID], r.ProductID)
		}
		qty[k] = qty[k].Add(q)
	}

	sort.Strings(locations)
	inputs := make([]orders.CreateOrderInput, 0, len(locations))
	for _, loc := range locations {
		in := orders.CreateOrderInput{TenantID: tenantID, LocationID: loc, ActorID: actorID}
		for _, p := range products[loc] {
			in.Lines = append(in.Lines, orders.LineInput{ProductID: p, Quantity: qty[lineKey{loc, p}]})
		}
		inputs = append(inputs, in)
	}
	created, err := uc.orders.CreateOrders(ctx, inputs)
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Int("orders", len(created)).
		Int("recommendations", len(recs)).
		Msg("órdenes de reposición creadas")
	return created, nil
}

// Tenants empresas con al menos una regla de reorden.
func (uc *UseCase) Tenants(ctx context.Context) ([]string, error) {
	var tenants []string
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		tenants, err = repos.Rules.ListTenants(ctx)
		return err
	})
	if err != nil {
		return nil, inventory.Finish(err)
	}
	return tenants, nil
}
