package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
)

// BatchFilter predicados combinables para listar lotes; los campos vacíos no filtran.
type BatchFilter struct {
	BatchNumber          string // subcadena, sin distinguir mayúsculas
	BatchType            entity.BatchType
	ProductID            string
	OriginCountry        string
	Status               entity.BatchStatus // EXPIRED se evalúa como predicado derivado
	ParentBatchID        string
	QualityCertificateID string
	HarvestFrom          *time.Time
	HarvestTo            *time.Time
	ExpiryFrom           *time.Time
	ExpiryTo             *time.Time
	IsExpired            *bool
	IsExpiringSoon       *bool
	ExpiringWithinDays   int    // ventana para IsExpiringSoon; 0 = entity.DefaultExpiringSoonDays
	Search               string // texto libre sobre número de lote y notas
}

// ExpiringWindow devuelve la ventana efectiva de "próximo a vencer".
func (f BatchFilter) ExpiringWindow() int {
	if f.ExpiringWithinDays > 0 {
		return f.ExpiringWithinDays
	}
	return entity.DefaultExpiringSoonDays
}

// SortField campo de ordenamiento del listado.
type SortField string

const (
	SortByCreatedAt         SortField = "createdAt"
	SortByUpdatedAt         SortField = "updatedAt"
	SortByBatchNumber       SortField = "batchNumber"
	SortByExpiryDate        SortField = "expiryDate"
	SortByHarvestDate       SortField = "harvestDate"
	SortByRemainingQuantity SortField = "remainingQuantity"
	SortByInitialQuantity   SortField = "initialQuantity"
)

// Valid indica si el campo es ordenable.
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByBatchNumber, SortByExpiryDate,
		SortByHarvestDate, SortByRemainingQuantity, SortByInitialQuantity:
		return true
	}
	return false
}

// SortOrder dirección del ordenamiento.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// BatchSort ordenamiento por un solo campo; el desempate es el orden de inserción.
type BatchSort struct {
	Field SortField
	Order SortOrder
}

// Normalize aplica valores por defecto (createdAt desc).
func (s BatchSort) Normalize() BatchSort {
	if !s.Field.Valid() {
		s.Field = SortByCreatedAt
	}
	if s.Order != SortAsc && s.Order != SortDesc {
		s.Order = SortDesc
	}
	return s
}

// Límites de paginación.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest paginación por offset (Page empieza en 1).
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize aplica valores por defecto y límites.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset devuelve la cantidad de elementos a saltar.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// BatchPage resultado paginado.
type BatchPage struct {
	Items      []*entity.Batch
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// NewBatchPage arma los metadatos de página a partir del total.
func NewBatchPage(items []*entity.Batch, total int, p PageRequest) *BatchPage {
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = (total + p.PageSize - 1) / p.PageSize
	}
	if items == nil {
		items = []*entity.Batch{}
	}
	return &BatchPage{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}

// BatchStatistics agregados de un recorrido completo del repositorio.
type BatchStatistics struct {
	Total             int
	ByStatus          map[entity.BatchStatus]int
	ByType            map[entity.BatchType]int
	Expired           int
	ExpiringSoon      int
	TotalQuantity     decimal.Decimal // suma de Remaining
	AllocatedQuantity decimal.Decimal
	AvailableQuantity decimal.Decimal // TotalQuantity - AllocatedQuantity
}

// NewBatchStatistics inicializa los contadores en cero.
func NewBatchStatistics() *BatchStatistics {
	s := &BatchStatistics{
		ByStatus:          make(map[entity.BatchStatus]int, len(entity.BatchStatuses)),
		ByType:            make(map[entity.BatchType]int, len(entity.BatchTypes)),
		TotalQuantity:     decimal.Zero,
		AllocatedQuantity: decimal.Zero,
		AvailableQuantity: decimal.Zero,
	}
	for _, st := range entity.BatchStatuses {
		s.ByStatus[st] = 0
	}
	for _, t := range entity.BatchTypes {
		s.ByType[t] = 0
	}
	return s
}

// Add acumula un lote en las estadísticas.
func (s *BatchStatistics) Add(b *entity.Batch, now time.Time) {
	s.Total++
	s.ByStatus[b.Status]++
	s.ByType[b.BatchType]++
	if b.IsExpiredAt(now) {
		s.Expired++
	}
	if b.IsExpiringSoonAt(now, entity.DefaultExpiringSoonDays) {
		s.ExpiringSoon++
	}
	s.TotalQuantity = s.TotalQuantity.Add(b.RemainingQuantity)
	s.AllocatedQuantity = s.AllocatedQuantity.Add(b.AllocatedQuantity)
	s.AvailableQuantity = s.TotalQuantity.Sub(s.AllocatedQuantity)
}

// BatchRepository define el puerto de persistencia para Batch (DIP).
// El repositorio no aplica reglas de negocio: solo unicidad del número de lote y versión.
type BatchRepository interface {
	// Create falla con domain.ErrDuplicate si el número de lote ya existe y con
	// domain.ErrInvalidInput si el padre indicado no existe.
	Create(ctx context.Context, batch *entity.Batch) error
	// Update es compare-and-swap sobre (ID, expectedVersion): domain.ErrStaleVersion si la
	// versión almacenada avanzó, domain.ErrNotFound si el ID no existe.
	Update(ctx context.Context, batch *entity.Batch, expectedVersion int64) error
	// FindByID devuelve (nil, nil) si no existe.
	FindByID(ctx context.Context, id string) (*entity.Batch, error)
	FindByBatchNumber(ctx context.Context, batchNumber string) (*entity.Batch, error)
	// FindByParentBatchID hijos directos en orden de creación; vacío (nunca error) para hojas.
	FindByParentBatchID(ctx context.Context, parentID string) ([]*entity.Batch, error)
	FindByProductID(ctx context.Context, productID string) ([]*entity.Batch, error)
	FindByStatus(ctx context.Context, status entity.BatchStatus) ([]*entity.Batch, error)
	FindExpired(ctx context.Context) ([]*entity.Batch, error)
	FindExpiringSoon(ctx context.Context, days int) ([]*entity.Batch, error)
	List(ctx context.Context, filter BatchFilter, sort BatchSort, page PageRequest) (*BatchPage, error)
	Statistics(ctx context.Context) (*BatchStatistics, error)
	// Delete falla con domain.ErrHasChildren si el lote tiene derivados, de forma atómica
	// respecto de Create.
	Delete(ctx context.Context, id string) error
}
