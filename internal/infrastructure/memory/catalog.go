package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.CatalogRepository  = (*Catalog)(nil)
	_ repository.SettingsRepository = (*Settings)(nil)
)

// Catalog maestro en memoria. Tiene su propio candado: se consulta fuera de las transacciones.
type Catalog struct {
	mu         sync.RWMutex
	products   map[string]entity.Product
	locations  map[string]entity.Location
	placements map[string]entity.Placement
	batches    map[string]entity.Batch
}

// NewCatalog crea un catálogo vacío.
func NewCatalog() *Catalog {
	return &Catalog{
		products:   make(map[string]entity.Product),
		locations:  make(map[string]entity.Location),
		placements: make(map[string]entity.Placement),
		batches:    make(map[string]entity.Batch),
	}
}

func (c *Catalog) PutProduct(p entity.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *Catalog) PutLocation(l entity.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locations[l.ID] = l
}

func (c *Catalog) PutPlacement(p entity.Placement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placements[p.ID] = p
}

func (c *Catalog) PutBatch(b entity.Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches[b.ID] = b
}

// SetPlacementBarred marca o desmarca una ubicación.
func (c *Catalog) SetPlacementBarred(id string, barred bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.placements[id]; ok {
		p.Barred = barred
		c.placements[id] = p
	}
}

// SetBatchBarred marca o desmarca un lote.
func (c *Catalog) SetBatchBarred(id string, barred bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.batches[id]; ok {
		b.Barred = barred
		c.batches[id] = b
	}
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *Catalog) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (c *Catalog) GetPlacement(ctx context.Context, id string) (*entity.Placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.placements[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *Catalog) GetBatch(ctx context.Context, id string) (*entity.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.batches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// Settings configuración por empresa en memoria.
type Settings struct {
	mu       sync.RWMutex
	policies map[string]entity.DimensionPolicy
}

// NewSettings crea la configuración vacía (todas las empresas usan los valores por defecto).
func NewSettings() *Settings {
	return &Settings{policies: make(map[string]entity.DimensionPolicy)}
}

// Put fija la política de dimensiones de una empresa.
func (s *Settings) Put(tenantID string, policy entity.DimensionPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[tenantID] = policy
}

func (s *Settings) DimensionPolicy(ctx context.Context, tenantID string) (entity.DimensionPolicy, bool, error) {
	if err := ctx.Err(); err != nil {
		return entity.DimensionPolicy{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[tenantID]
	return p, ok, nil
}

// Seeder adapta catálogo y configuración en memoria a la interfaz de siembra del maestro.
type Seeder struct {
	catalog  *Catalog
	settings *Settings
}

// Seeder devuelve el destino de siembra del almacén.
func (s *Store) Seeder() *Seeder {
	return &Seeder{catalog: s.catalog, settings: s.settings}
}

func (s *Seeder) UpsertProduct(ctx context.Context, p entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.catalog.PutProduct(p)
	return nil
}

func (s *Seeder) UpsertLocation(ctx context.Context, l entity.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.catalog.PutLocation(l)
	return nil
}

func (s *Seeder) UpsertPlacement(ctx context.Context, p entity.Placement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.catalog.PutPlacement(p)
	return nil
}

func (s *Seeder) UpsertBatch(ctx context.Context, b entity.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.catalog.PutBatch(b)
	return nil
}

func (s *Seeder) PutDimensionPolicy(ctx context.Context, tenantID string, p entity.DimensionPolicy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.settings.Put(tenantID, p)
	return nil
}
