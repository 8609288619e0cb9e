// Package traceability orquesta el ciclo de vida de los lotes y su linaje
// (árbol descendente, cadena ascendente) sobre el puerto BatchRepository.
package traceability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
)

// Operaciones registradas en métricas y logs.
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpAllocate   = "allocate"
	OpDeallocate = "deallocate"
	OpConsume    = "consume"
	OpHold       = "hold"
	OpRelease    = "release"
	OpBlock      = "block"
)

// Resultados de una operación.
const (
	OutcomeOK       = "ok"
	OutcomeNoop     = "noop"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics puerto de métricas de operaciones. Un nil se reemplaza por un no-op.
type Metrics interface {
	RecordOperation(operation, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(string, string) {}

// CreateBatchInput datos de alta de un lote.
type CreateBatchInput struct {
	BatchNumber          string
	BatchType            entity.BatchType
	ProductID            string
	OriginCountry        string
	HarvestDate          *time.Time
	ExpiryDate           *time.Time
	ParentBatchID        string
	QualityCertificateID string
	InitialQuantity      decimal.Decimal
	UnitOfMeasure        string
	Notes                string
	CustomFields         map[string]any
}

// BatchTraceabilityService casos de uso de lotes. Cada mutación es leer, aplicar el método
// del lote y escribir con compare-and-swap sobre la versión leída; ante ErrStaleVersion
// el llamador reintenta.
type BatchTraceabilityService struct {
	repo    repository.BatchRepository
	log     zerolog.Logger
	metrics Metrics
}

// NewBatchTraceabilityService construye el servicio.
func NewBatchTraceabilityService(repo repository.BatchRepository, log zerolog.Logger, metrics Metrics) *BatchTraceabilityService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &BatchTraceabilityService{
		repo:    repo,
		log:     log.With().Str("component", "traceability").Logger(),
		metrics: metrics,
	}
}

// CreateBatch crea un lote. Si trae padre, éste debe existir y estar ACTIVE.
func (s *BatchTraceabilityService) CreateBatch(ctx context.Context, in CreateBatchInput, createdBy string) (*entity.Batch, error) {
	parentID := strings.TrimSpace(in.ParentBatchID)
	if parentID != "" {
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			return nil, s.fail(OpCreate, "", fmt.Errorf("obtener lote padre: %w", err))
		}
		if parent == nil {
			return nil, s.fail(OpCreate, "", domain.Invalid("el lote padre %s no existe", parentID))
		}
		if parent.Status != entity.BatchStatusActive {
			return nil, s.fail(OpCreate, "", domain.Invalid("el lote padre %s no está ACTIVE (estado %s)", parent.BatchNumber, parent.Status))
		}
	}

	b, err := entity.NewBatch(in.BatchNumber, in.BatchType, in.InitialQuantity, in.UnitOfMeasure, createdBy, entity.BatchOptions{
		ProductID:            in.ProductID,
		OriginCountry:        in.OriginCountry,
		HarvestDate:          in.HarvestDate,
		ExpiryDate:           in.ExpiryDate,
		ParentBatchID:        parentID,
		QualityCertificateID: in.QualityCertificateID,
		Notes:                in.Notes,
		CustomFields:         in.CustomFields,
	})
	if err != nil {
		return nil, s.fail(OpCreate, "", err)
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, s.fail(OpCreate, "", err)
	}
	s.succeed(OpCreate, b)
	return b, nil
}

// GetBatch devuelve el lote o domain.ErrNotFound.
func (s *BatchTraceabilityService) GetBatch(ctx context.Context, id string) (*entity.Batch, error) {
	return s.load(ctx, id)
}

// GetBatchByNumber busca por número de lote exacto; domain.ErrNotFound si no existe.
func (s *BatchTraceabilityService) GetBatchByNumber(ctx context.Context, batchNumber string) (*entity.Batch, error) {
	b, err := s.repo.FindByBatchNumber(ctx, strings.TrimSpace(batchNumber))
	if err != nil {
		return nil, fmt.Errorf("obtener lote: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, batchNumber)
	}
	return b, nil
}

// UpdateBatch aplica cambios de información básica (solo lotes ACTIVE).
func (s *BatchTraceabilityService) UpdateBatch(ctx context.Context, id string, u entity.BatchUpdate, updatedBy string) (*entity.Batch, error) {
	return s.mutate(ctx, OpUpdate, id, func(b *entity.Batch) (bool, error) {
		return true, b.UpdateBasicInfo(u, updatedBy)
	})
}

// DeleteBatch elimina un lote sin hijos; con hijos devuelve domain.ErrHasChildren.
// El repositorio repite la verificación de forma atómica.
func (s *BatchTraceabilityService) DeleteBatch(ctx context.Context, id string) error {
	b, err := s.load(ctx, id)
	if err != nil {
		return s.fail(OpDelete, id, err)
	}
	children, err := s.repo.FindByParentBatchID(ctx, id)
	if err != nil {
		return s.fail(OpDelete, id, fmt.Errorf("obtener hijos: %w", err))
	}
	if len(children) > 0 {
		return s.fail(OpDelete, id, fmt.Errorf("%w: el lote %s tiene %d lote(s) derivado(s)", domain.ErrHasChildren, b.BatchNumber, len(children)))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(OpDelete, id, err)
	}
	s.succeed(OpDelete, b)
	return nil
}

// AllocateBatch reserva cantidad del lote.
func (s *BatchTraceabilityService) AllocateBatch(ctx context.Context, id string, qty decimal.Decimal, by string) (*entity.Batch, error) {
	return s.mutate(ctx, OpAllocate, id, func(b *entity.Batch) (bool, error) {
		return true, b.Allocate(qty, by)
	})
}

// DeallocateBatch libera cantidad reservada (acotada a cero).
func (s *BatchTraceabilityService) DeallocateBatch(ctx context.Context, id string, qty decimal.Decimal, by string) (*entity.Batch, error) {
	return s.mutate(ctx, OpDeallocate, id, func(b *entity.Batch) (bool, error) {
		return b.Deallocate(qty, by)
	})
}

// ConsumeBatch consume cantidad reservada.
func (s *BatchTraceabilityService) ConsumeBatch(ctx context.Context, id string, qty decimal.Decimal, by string) (*entity.Batch, error) {
	return s.mutate(ctx, OpConsume, id, func(b *entity.Batch) (bool, error) {
		return true, b.Consume(qty, by)
	})
}

// PutBatchOnHold retiene un lote ACTIVE.
func (s *BatchTraceabilityService) PutBatchOnHold(ctx context.Context, id, reason, by string) (*entity.Batch, error) {
	return s.mutate(ctx, OpHold, id, func(b *entity.Batch) (bool, error) {
		return true, b.PutOnHold(reason, by)
	})
}

// ReleaseBatchHold libera la retención; fuera de ON_HOLD no escribe nada.
func (s *BatchTraceabilityService) ReleaseBatchHold(ctx context.Context, id, by string) (*entity.Batch, error) {
	return s.mutate(ctx, OpRelease, id, func(b *entity.Batch) (bool, error) {
		return b.ReleaseHold(by), nil
	})
}

// BlockBatch bloquea el lote.
func (s *BatchTraceabilityService) BlockBatch(ctx context.Context, id, reason, by string) (*entity.Batch, error) {
	return s.mutate(ctx, OpBlock, id, func(b *entity.Batch) (bool, error) {
		return true, b.Block(reason, by)
	})
}

// ListBatches filtra, ordena y pagina.
func (s *BatchTraceabilityService) ListBatches(ctx context.Context, f repository.BatchFilter, sort repository.BatchSort, page repository.PageRequest) (*repository.BatchPage, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.Invalid("estado desconocido: %q", f.Status)
	}
	if f.BatchType != "" && !f.BatchType.Valid() {
		return nil, domain.Invalid("tipo de lote desconocido: %q", f.BatchType)
	}
	return s.repo.List(ctx, f, sort, page)
}

// GetBatchesByProduct lotes de un producto.
func (s *BatchTraceabilityService) GetBatchesByProduct(ctx context.Context, productID string) ([]*entity.Batch, error) {
	return s.repo.FindByProductID(ctx, productID)
}

// GetBatchesByStatus lotes por estado (EXPIRED es derivado).
func (s *BatchTraceabilityService) GetBatchesByStatus(ctx context.Context, status entity.BatchStatus) ([]*entity.Batch, error) {
	if !status.Valid() {
		return nil, domain.Invalid("estado desconocido: %q", status)
	}
	return s.repo.FindByStatus(ctx, status)
}

// GetExpiredBatches lotes vencidos.
func (s *BatchTraceabilityService) GetExpiredBatches(ctx context.Context) ([]*entity.Batch, error) {
	return s.repo.FindExpired(ctx)
}

// GetExpiringSoonBatches lotes que vencen dentro de days días (<= 0 usa 30).
func (s *BatchTraceabilityService) GetExpiringSoonBatches(ctx context.Context, days int) ([]*entity.Batch, error) {
	if days <= 0 {
		days = entity.DefaultExpiringSoonDays
	}
	return s.repo.FindExpiringSoon(ctx, days)
}

// GetChildBatches hijos directos de un lote existente.
func (s *BatchTraceabilityService) GetChildBatches(ctx context.Context, id string) ([]*entity.Batch, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.FindByParentBatchID(ctx, id)
}

// GetBatchStatistics agregados del repositorio.
func (s *BatchTraceabilityService) GetBatchStatistics(ctx context.Context) (*repository.BatchStatistics, error) {
	return s.repo.Statistics(ctx)
}

// GetTraceabilityTree árbol descendente con raíz en el lote. Depth es la mayor cantidad de
// aristas raíz-hoja y Chain el recorrido en preorden.
func (s *BatchTraceabilityService) GetTraceabilityTree(ctx context.Context, id string) (*entity.TraceabilityTree, error) {
	root, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	visited := make(map[string]struct{})
	tree := &entity.TraceabilityTree{}
	node, depth, err := s.buildNode(ctx, root, visited, &tree.Chain)
	if err != nil {
		return nil, err
	}
	tree.Root = node
	tree.Depth = depth
	tree.TotalBatches = len(visited)
	return tree, nil
}

func (s *BatchTraceabilityService) buildNode(ctx context.Context, b *entity.Batch, visited map[string]struct{}, chain *[]*entity.Batch) (*entity.TraceabilityNode, int, error) {
	if _, seen := visited[b.ID]; seen {
		return nil, 0, s.corrupted(b, "árbol")
	}
	visited[b.ID] = struct{}{}
	*chain = append(*chain, b)

	children, err := s.repo.FindByParentBatchID(ctx, b.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("obtener hijos de %s: %w", b.ID, err)
	}
	node := &entity.TraceabilityNode{Batch: b}
	depth := 0
	for _, child := range children {
		sub, d, err := s.buildNode(ctx, child, visited, chain)
		if err != nil {
			return nil, 0, err
		}
		node.Children = append(node.Children, sub)
		if d+1 > depth {
			depth = d + 1
		}
	}
	return node, depth, nil
}

// GetTraceabilityChain camino ascendente raíz -> ... -> lote. Un padre inexistente
// corta el recorrido en el último lote encontrado.
func (s *BatchTraceabilityService) GetTraceabilityChain(ctx context.Context, id string) ([]*entity.Batch, error) {
	cur, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	visited := make(map[string]struct{})
	var path []*entity.Batch
	for cur != nil {
		if _, seen := visited[cur.ID]; seen {
			return nil, s.corrupted(cur, "cadena")
		}
		visited[cur.ID] = struct{}{}
		path = append(path, cur)
		if cur.ParentBatchID == "" {
			break
		}
		parent, err := s.repo.FindByID(ctx, cur.ParentBatchID)
		if err != nil {
			return nil, fmt.Errorf("obtener padre de %s: %w", cur.ID, err)
		}
		if parent == nil {
			s.log.Warn().Str("batch_id", cur.ID).Str("parent_batch_id", cur.ParentBatchID).
				Msg("padre inexistente, la cadena se corta")
		}
		cur = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// load obtiene el lote o domain.ErrNotFound.
func (s *BatchTraceabilityService) load(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener lote: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return b, nil
}

// mutate lee, aplica fn y escribe con la versión leída. Si fn informa que no hubo cambio
// no se escribe y se devuelve el lote tal cual.
func (s *BatchTraceabilityService) mutate(ctx context.Context, op, id string, fn func(b *entity.Batch) (bool, error)) (*entity.Batch, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, s.fail(op, id, err)
	}
	readVersion := b.Version
	changed, err := fn(b)
	if err != nil {
		return nil, s.fail(op, id, err)
	}
	if !changed {
		s.metrics.RecordOperation(op, OutcomeNoop)
		return b, nil
	}
	if err := s.repo.Update(ctx, b, readVersion); err != nil {
		return nil, s.fail(op, id, err)
	}
	s.succeed(op, b)
	return b, nil
}

func (s *BatchTraceabilityService) succeed(op string, b *entity.Batch) {
	s.metrics.RecordOperation(op, OutcomeOK)
	s.log.Info().
		Str("operation", op).
		Str("batch_id", b.ID).
		Str("batch_number", b.BatchNumber).
		Str("status", string(b.Status)).
		Int64("version", b.Version).
		Msg("lote actualizado")
}

func (s *BatchTraceabilityService) fail(op, id string, err error) error {
	s.metrics.RecordOperation(op, Outcome(err))
	s.log.Warn().Err(err).Str("operation", op).Str("batch_id", id).Msg("operación rechazada")
	return err
}

func (s *BatchTraceabilityService) corrupted(b *entity.Batch, walk string) error {
	s.log.Error().Str("batch_id", b.ID).Str("walk", walk).Msg("ciclo detectado en el linaje")
	return fmt.Errorf("%w: el lote %s aparece dos veces en el recorrido de %s", domain.ErrLineageCorrupted, b.BatchNumber, walk)
}

// Outcome clasifica un error para métricas.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
