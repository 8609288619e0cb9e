// Package memory implementa el repositorio de lotes en memoria: un mapa principal por ID
// más índices secundarios (número de lote, padre, estado, producto). Sirve para desarrollo,
// pruebas y como base del almacén SQLite.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// ChangeKind tipo de cambio confirmado.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change cambio a punto de aplicarse. Batch es una copia; Seq es el orden de inserción.
type Change struct {
	Kind  ChangeKind
	Batch *entity.Batch
	Seq   uint64
}

// CommitHook se invoca bajo el lock, después de validar y antes de aplicar el cambio.
// Si devuelve error el cambio se descarta.
type CommitHook func(ctx context.Context, ch Change) error

// Option configura el repositorio.
type Option func(*BatchRepo)

// WithCommitHook registra un hook de confirmación (p. ej. persistencia write-through).
func WithCommitHook(h CommitHook) Option {
	return func(r *BatchRepo) { r.hook = h }
}

// WithClock reemplaza el reloj usado para vencimientos.
func WithClock(now func() time.Time) Option {
	return func(r *BatchRepo) { r.now = now }
}

type record struct {
	batch *entity.Batch
	seq   uint64
}

type idSet map[string]struct{}

// BatchRepo implementación en memoria de BatchRepository. Guarda copias: nunca comparte
// punteros con el llamador.
type BatchRepo struct {
	mu        sync.RWMutex
	seq       uint64
	records   map[string]*record
	byNumber  map[string]string
	byParent  map[string]idSet
	byStatus  map[entity.BatchStatus]idSet
	byProduct map[string]idSet
	hook      CommitHook
	now       func() time.Time
}

// NewBatchRepository construye un repositorio vacío.
func NewBatchRepository(opts ...Option) *BatchRepo {
	r := &BatchRepo{
		records:   make(map[string]*record),
		byNumber:  make(map[string]string),
		byParent:  make(map[string]idSet),
		byStatus:  make(map[entity.BatchStatus]idSet),
		byProduct: make(map[string]idSet),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create inserta un lote nuevo. El padre, si se indica, debe existir en el momento de insertar.
func (r *BatchRepo) Create(ctx context.Context, batch *entity.Batch) error {
	if batch == nil {
		return domain.Invalid("lote nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[batch.ID]; ok {
		return fmt.Errorf("%w: id %s", domain.ErrDuplicate, batch.ID)
	}
	if owner, ok := r.byNumber[batch.BatchNumber]; ok && owner != batch.ID {
		return fmt.Errorf("%w: número de lote %s", domain.ErrDuplicate, batch.BatchNumber)
	}
	if batch.ParentBatchID != "" {
		if _, ok := r.records[batch.ParentBatchID]; !ok {
			return domain.Invalid("el lote padre %s no existe", batch.ParentBatchID)
		}
	}
	rec := &record{batch: batch.Clone(), seq: r.seq + 1}
	if err := r.commit(ctx, ChangeCreate, rec); err != nil {
		return err
	}
	r.seq = rec.seq
	r.records[batch.ID] = rec
	r.index(rec.batch)
	return nil
}

// Update reemplaza el lote si la versión almacenada es expectedVersion.
func (r *BatchRepo) Update(ctx context.Context, batch *entity.Batch, expectedVersion int64) error {
	if batch == nil {
		return domain.Invalid("lote nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.records[batch.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.batch.Version != expectedVersion {
		return fmt.Errorf("%w: lote %s (esperada %d, actual %d)", domain.ErrStaleVersion, batch.ID, expectedVersion, cur.batch.Version)
	}
	if owner, ok := r.byNumber[batch.BatchNumber]; ok && owner != batch.ID {
		return fmt.Errorf("%w: número de lote %s", domain.ErrDuplicate, batch.BatchNumber)
	}
	next := &record{batch: batch.Clone(), seq: cur.seq}
	if err := r.commit(ctx, ChangeUpdate, next); err != nil {
		return err
	}
	r.unindex(cur.batch)
	r.records[batch.ID] = next
	r.index(next.batch)
	return nil
}

// Delete elimina el lote y lo saca de todos los índices. Un lote con derivados
// devuelve domain.ErrHasChildren; la verificación ocurre bajo el mismo lock.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if n := len(r.byParent[id]); n > 0 {
		return fmt.Errorf("%w: el lote %s tiene %d lote(s) derivado(s)", domain.ErrHasChildren, cur.batch.BatchNumber, n)
	}
	if err := r.commit(ctx, ChangeDelete, &record{batch: cur.batch.Clone(), seq: cur.seq}); err != nil {
		return err
	}
	r.unindex(cur.batch)
	delete(r.records, id)
	return nil
}

// FindByID devuelve una copia del lote o (nil, nil).
func (r *BatchRepo) FindByID(_ context.Context, id string) (*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[id]; ok {
		return rec.batch.Clone(), nil
	}
	return nil, nil
}

// FindByBatchNumber búsqueda exacta por número de lote.
func (r *BatchRepo) FindByBatchNumber(_ context.Context, batchNumber string) (*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byNumber[batchNumber]; ok {
		return r.records[id].batch.Clone(), nil
	}
	return nil, nil
}

// FindByParentBatchID hijos directos en orden de inserción.
func (r *BatchRepo) FindByParentBatchID(_ context.Context, parentID string) ([]*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs := r.collect(r.byParent[parentID])
	sortRecords(recs, repository.BatchSort{})
	return clones(recs), nil
}

// FindByProductID lotes del producto, más recientes primero.
func (r *BatchRepo) FindByProductID(_ context.Context, productID string) ([]*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs := r.collect(r.byProduct[productID])
	sortRecords(recs, repository.BatchSort{Field: repository.SortByCreatedAt, Order: repository.SortDesc})
	return clones(recs), nil
}

// FindByStatus lotes en el estado dado, más recientes primero.
// EXPIRED devuelve los ACTIVE/ON_HOLD cuya fecha de vencimiento pasó.
func (r *BatchRepo) FindByStatus(_ context.Context, status entity.BatchStatus) ([]*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var recs []*record
	if status == entity.BatchStatusExpired {
		now := r.now()
		recs = r.scan(func(b *entity.Batch) bool { return matchesStatus(b, status, now) })
	} else {
		recs = r.collect(r.byStatus[status])
	}
	sortRecords(recs, repository.BatchSort{Field: repository.SortByCreatedAt, Order: repository.SortDesc})
	return clones(recs), nil
}

// FindExpired lotes vencidos ordenados por vencimiento ascendente.
func (r *BatchRepo) FindExpired(_ context.Context) ([]*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	recs := r.scan(func(b *entity.Batch) bool { return b.IsExpiredAt(now) })
	sortRecords(recs, repository.BatchSort{Field: repository.SortByExpiryDate, Order: repository.SortAsc})
	return clones(recs), nil
}

// FindExpiringSoon lotes que vencen dentro de days días, por vencimiento ascendente.
func (r *BatchRepo) FindExpiringSoon(_ context.Context, days int) ([]*entity.Batch, error) {
	if days <= 0 {
		days = entity.DefaultExpiringSoonDays
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	recs := r.scan(func(b *entity.Batch) bool { return b.IsExpiringSoonAt(now, days) })
	sortRecords(recs, repository.BatchSort{Field: repository.SortByExpiryDate, Order: repository.SortAsc})
	return clones(recs), nil
}

// List filtra, ordena y pagina.
func (r *BatchRepo) List(_ context.Context, filter repository.BatchFilter, s repository.BatchSort, page repository.PageRequest) (*repository.BatchPage, error) {
	page = page.Normalize()
	s = s.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	recs := r.scan(func(b *entity.Batch) bool { return matches(b, filter, now) })
	sortRecords(recs, s)
	total := len(recs)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return repository.NewBatchPage(clones(recs[start:end]), total, page), nil
}

// Statistics agregados en un solo recorrido.
func (r *BatchRepo) Statistics(_ context.Context) (*repository.BatchStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	stats := repository.NewBatchStatistics()
	for _, rec := range r.records {
		stats.Add(rec.batch, now)
	}
	return stats, nil
}

// Restore carga lotes ya persistidos respetando el orden recibido como orden de inserción.
// No invoca el hook de confirmación.
func (r *BatchRepo) Restore(batches []*entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range batches {
		if _, ok := r.records[b.ID]; ok {
			return fmt.Errorf("%w: id %s", domain.ErrDuplicate, b.ID)
		}
		if _, ok := r.byNumber[b.BatchNumber]; ok {
			return fmt.Errorf("%w: número de lote %s", domain.ErrDuplicate, b.BatchNumber)
		}
		r.seq++
		rec := &record{batch: b.Clone(), seq: r.seq}
		r.records[b.ID] = rec
		r.index(rec.batch)
	}
	return nil
}

// Len cantidad de lotes almacenados.
func (r *BatchRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *BatchRepo) commit(ctx context.Context, kind ChangeKind, rec *record) error {
	if r.hook == nil {
		return nil
	}
	return r.hook(ctx, Change{Kind: kind, Batch: rec.batch.Clone(), Seq: rec.seq})
}

func (r *BatchRepo) index(b *entity.Batch) {
	r.byNumber[b.BatchNumber] = b.ID
	if b.ParentBatchID != "" {
		addTo(r.byParent, b.ParentBatchID, b.ID)
	}
	if b.ProductID != "" {
		addTo(r.byProduct, b.ProductID, b.ID)
	}
	addTo(r.byStatus, b.Status, b.ID)
}

func (r *BatchRepo) unindex(b *entity.Batch) {
	if r.byNumber[b.BatchNumber] == b.ID {
		delete(r.byNumber, b.BatchNumber)
	}
	removeFrom(r.byParent, b.ParentBatchID, b.ID)
	removeFrom(r.byProduct, b.ProductID, b.ID)
	removeFrom(r.byStatus, b.Status, b.ID)
}

func (r *BatchRepo) collect(ids idSet) []*record {
	out := make([]*record, 0, len(ids))
	for id := range ids {
		if rec, ok := r.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func (r *BatchRepo) scan(pred func(*entity.Batch) bool) []*record {
	out := make([]*record, 0)
	for _, rec := range r.records {
		if pred(rec.batch) {
			out = append(out, rec)
		}
	}
	return out
}

func addTo[K comparable](m map[K]idSet, key K, id string) {
	set, ok := m[key]
	if !ok {
		set = make(idSet)
		m[key] = set
	}
	set[id] = struct{}{}
}

func removeFrom[K comparable](m map[K]idSet, key K, id string) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m, key)
	}
}

func clones(recs []*record) []*entity.Batch {
	out := make([]*entity.Batch, len(recs))
	for i, rec := range recs {
		out[i] = rec.batch.Clone()
	}
	return out
}

// sortRecords ordena por el campo indicado; empates (y Field vacío) por orden de inserción.
func sortRecords(recs []*record, s repository.BatchSort) {
	sort.SliceStable(recs, func(i, j int) bool {
		c := compareField(recs[i].batch, recs[j].batch, s.Field)
		if c != 0 {
			if c == nilLast || c == -nilLast {
				return c < 0
			}
			if s.Order == repository.SortDesc {
				return c > 0
			}
			return c < 0
		}
		return recs[i].seq < recs[j].seq
	})
}
