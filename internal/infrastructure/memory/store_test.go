package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

const tenant = "t1"

var (
	keyA = entity.StockKey{TenantID: tenant, ProductID: "p1", LocationID: "l1"}
	keyB = entity.StockKey{TenantID: tenant, ProductID: "p1", LocationID: "l2"}
)

// snapshot lo visible por los repositorios, para comparar antes y después.
type snapshot struct {
	movements []*entity.MovementEntry
	stock     []*entity.StockLevel
	order     *entity.Order
	rules     []*entity.ReorderRule
}

func take(t *testing.T, s *memory.Store) snapshot {
	t.Helper()
	var snap snapshot
	err := s.RunReadOnly(context.Background(), func(repos repository.Repos) error {
		var err error
		ctx := context.Background()
		if snap.movements, err = repos.Movements.List(ctx, repository.MovementFilter{TenantID: tenant}, 0, 0); err != nil {
			return err
		}
		if snap.stock, err = repos.Stock.List(ctx, repository.StockFilter{TenantID: tenant, IncludeZero: true}); err != nil {
			return err
		}
		if snap.order, err = repos.Orders.GetByID(ctx, "o1"); err != nil {
			return err
		}
		snap.rules, err = repos.Rules.List(ctx, tenant, "")
		return err
	})
	require.NoError(t, err)
	return snap
}

func appendMovement(ctx context.Context, repos repository.Repos, key entity.StockKey, qty int64) error {
	m := entity.NewMovementEntry(key, entity.MovementIncoming, decimal.NewFromInt(qty), "", "", time.Now().UTC())
	if err := repos.Movements.Append(ctx, m); err != nil {
		return err
	}
	_, err := repos.Stock.ApplyDelta(ctx, key, m.Delta)
	return err
}

func seed(t *testing.T, s *memory.Store) {
	t.Helper()
	err := s.Run(context.Background(), func(repos repository.Repos) error {
		ctx := context.Background()
		for i := 0; i < 20; i++ {
			if err := appendMovement(ctx, repos, keyA, 1); err != nil {
				return err
			}
		}
		order := &entity.Order{ID: "o1", TenantID: tenant, LocationID: "l1", Lines: []*entity.OrderLine{
			{ID: "ln1", OrderID: "o1", ProductID: "p1", Quantity: decimal.NewFromInt(5), Received: decimal.Zero, Status: entity.OrderLineOpen},
		}}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		return repos.Rules.Upsert(ctx, &entity.ReorderRule{TenantID: tenant, ProductID: "p1", LocationID: "l1", Minimum: decimal.NewFromInt(3), ReorderAmount: decimal.NewFromInt(10)})
	})
	require.NoError(t, err)
}

func TestRun_FalloDeshaceTodoLoTocado(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	before := take(t, s)
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(repos repository.Repos) error {
		ctx := context.Background()
		if err := appendMovement(ctx, repos, keyA, 4); err != nil {
			return err
		}
		if err := appendMovement(ctx, repos, keyB, 2); err != nil {
			return err
		}
		line := &entity.OrderLine{ID: "ln1", OrderID: "o1", ProductID: "p1", Quantity: decimal.NewFromInt(5), Received: decimal.NewFromInt(5), Status: entity.OrderLineReceived}
		if err := repos.Orders.UpdateLine(ctx, line); err != nil {
			return err
		}
		if err := repos.Orders.Create(ctx, &entity.Order{ID: "o2", TenantID: tenant, LocationID: "l1"}); err != nil {
			return err
		}
		if err := repos.Rules.Delete(ctx, tenant, "p1", "l1"); err != nil {
			return err
		}
		if err := repos.Rules.Upsert(ctx, &entity.ReorderRule{TenantID: tenant, ProductID: "p1", LocationID: "l2", Minimum: decimal.NewFromInt(1), ReorderAmount: decimal.NewFromInt(1)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, before, take(t, s))
	err = s.RunReadOnly(context.Background(), func(repos repository.Repos) error {
		o, err := repos.Orders.GetByID(context.Background(), "o2")
		assert.Nil(t, o)
		return err
	})
	require.NoError(t, err)
}

func TestRun_ReconstruccionFallidaRestauraLaProyeccion(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	before := take(t, s)

	err := s.Run(context.Background(), func(repos repository.Repos) error {
		levels := []*entity.StockLevel{{Key: keyB, Quantity: decimal.NewFromInt(7)}}
		if err := repos.Stock.Replace(context.Background(), tenant, levels); err != nil {
			return err
		}
		return domain.Internal("fallo simulado", nil)
	})
	require.Error(t, err)
	assert.Equal(t, before.stock, take(t, s).stock)
}

// Tras deshacer, los identificadores del libro continúan sin huecos.
func TestRun_IdentificadoresContinuanTrasDeshacer(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)

	err := s.Run(context.Background(), func(repos repository.Repos) error {
		if err := appendMovement(context.Background(), repos, keyA, 1); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	require.NoError(t, s.Run(context.Background(), func(repos repository.Repos) error {
		return appendMovement(context.Background(), repos, keyA, 1)
	}))
	after := take(t, s)
	require.Len(t, after.movements, 21)
	assert.Equal(t, int64(21), after.movements[0].ID)
	assert.True(t, after.stock[0].Quantity.Equal(decimal.NewFromInt(21)))
}

func TestRun_ContextoCanceladoDeshace(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	before := take(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	err := s.Run(ctx, func(repos repository.Repos) error {
		m := entity.NewMovementEntry(keyA, entity.MovementIncoming, decimal.NewFromInt(1), "", "", time.Now().UTC())
		if err := repos.Movements.Append(ctx, m); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, take(t, s))
}

func TestRunReadOnly_RechazaEscrituras(t *testing.T) {
	s := memory.NewStore()
	err := s.RunReadOnly(context.Background(), func(repos repository.Repos) error {
		_, err := repos.Stock.ApplyDelta(context.Background(), keyA, decimal.NewFromInt(1))
		return err
	})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
