package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
// Update usa el bloqueo optimista nativo: UPDATE ... WHERE id = $1 AND version = $2.
type BatchRepo struct {
	q   Querier
	now func() time.Time
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q, now: time.Now}
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	fields, err := marshalFields(b.CustomFields)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err = r.q.Exec(ctx, query,
		b.ID, b.BatchNumber, string(b.BatchType), nullString(b.ProductID), nullString(b.OriginCountry),
		b.HarvestDate, b.ExpiryDate, nullString(b.ParentBatchID), nullString(b.QualityCertificateID),
		string(b.Status), b.InitialQuantity, b.RemainingQuantity, b.AllocatedQuantity,
		b.UnitOfMeasure, nullString(b.Notes), fields, b.Version, b.CreatedAt, b.UpdatedAt,
		b.CreatedBy, nullString(b.UpdatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de lote %s", domain.ErrDuplicate, b.BatchNumber)
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("el lote padre %s no existe", b.ParentBatchID)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// Update compare-and-swap sobre (id, expectedVersion).
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch, expectedVersion int64) error {
	fields, err := marshalFields(b.CustomFields)
	if err != nil {
		return err
	}
	query := `
		UPDATE batches SET batch_number = $3, product_id = $4, origin_country = $5, harvest_date = $6,
			expiry_date = $7, quality_certificate_id = $8, status = $9, remaining_quantity = $10,
			allocated_quantity = $11, unit_of_measure = $12, notes = $13, custom_fields = $14,
			version = $15, updated_at = $16, updated_by = $17
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		b.ID, expectedVersion, b.BatchNumber, nullString(b.ProductID), nullString(b.OriginCountry),
		b.HarvestDate, b.ExpiryDate, nullString(b.QualityCertificateID), string(b.Status),
		b.RemainingQuantity, b.AllocatedQuantity, b.UnitOfMeasure, nullString(b.Notes), fields,
		b.Version, b.UpdatedAt, nullString(b.UpdatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de lote %s", domain.ErrDuplicate, b.BatchNumber)
		}
		return fmt.Errorf("update batch: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM batches WHERE id = $1)`, b.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check batch: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: lote %s (esperada %d)", domain.ErrStaleVersion, b.ID, expectedVersion)
}

// FindByID obtiene un lote por ID; (nil, nil) si no existe.
func (r *BatchRepo) FindByID(ctx context.Context, id string) (*entity.Batch, error) {
	return r.findOne(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
}

// FindByBatchNumber obtiene un lote por número; (nil, nil) si no existe.
func (r *BatchRepo) FindByBatchNumber(ctx context.Context, batchNumber string) (*entity.Batch, error) {
	return r.findOne(ctx, `SELECT `+batchColumns+` FROM batches WHERE batch_number = $1`, batchNumber)
}

// FindByParentBatchID hijos directos en orden de inserción.
func (r *BatchRepo) FindByParentBatchID(ctx context.Context, parentID string) ([]*entity.Batch, error) {
	return r.findMany(ctx, `SELECT `+batchColumns+` FROM batches WHERE parent_batch_id = $1 ORDER BY seq ASC`, parentID)
}

// FindByProductID lotes del producto, más recientes primero.
func (r *BatchRepo) FindByProductID(ctx context.Context, productID string) ([]*entity.Batch, error) {
	return r.findMany(ctx, `SELECT `+batchColumns+` FROM batches WHERE product_id = $1 ORDER BY created_at DESC, seq ASC`, productID)
}

// FindByStatus lotes en el estado; EXPIRED se deriva de la fecha de vencimiento.
func (r *BatchRepo) FindByStatus(ctx context.Context, status entity.BatchStatus) ([]*entity.Batch, error) {
	where, args := buildBatchWhere(repository.BatchFilter{Status: status}, r.now())
	return r.findMany(ctx, `SELECT `+batchColumns+` FROM batches`+where+` ORDER BY created_at DESC, seq ASC`, args...)
}

// FindExpired lotes vencidos, por vencimiento ascendente.
func (r *BatchRepo) FindExpired(ctx context.Context) ([]*entity.Batch, error) {
	expired := true
	where, args := buildBatchWhere(repository.BatchFilter{IsExpired: &expired}, r.now())
	return r.findMany(ctx, `SELECT `+batchColumns+` FROM batches`+where+` ORDER BY expiry_date ASC, seq ASC`, args...)
}

// FindExpiringSoon lotes que vencen dentro de days días, por vencimiento ascendente.
func (r *BatchRepo) FindExpiringSoon(ctx context.Context, days int) ([]*entity.Batch, error) {
	soon := true
	where, args := buildBatchWhere(repository.BatchFilter{IsExpiringSoon: &soon, ExpiringWithinDays: days}, r.now())
	return r.findMany(ctx, `SELECT `+batchColumns+` FROM batches`+where+` ORDER BY expiry_date ASC, seq ASC`, args...)
}

// List filtra, ordena y pagina en la base de datos.
func (r *BatchRepo) List(ctx context.Context, filter repository.BatchFilter, s repository.BatchSort, page repository.PageRequest) (*repository.BatchPage, error) {
	page = page.Normalize()
	where, args := buildBatchWhere(filter, r.now())

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM batches`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count batches: %w", err)
	}
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM batches%s%s LIMIT $%d OFFSET $%d`, batchColumns, where, buildOrderBy(s), n+1, n+2)
	items, err := r.findMany(ctx, query, append(args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, err
	}
	return repository.NewBatchPage(items, total, page), nil
}

// Statistics agregados calculados en una sola consulta agrupada.
func (r *BatchRepo) Statistics(ctx context.Context) (*repository.BatchStatistics, error) {
	now := r.now()
	soon := now.Add(time.Duration(entity.DefaultExpiringSoonDays) * 24 * time.Hour)
	rows, err := r.q.Query(ctx, `
		SELECT status, batch_type, count(*),
			count(*) FILTER (WHERE expiry_date < $1),
			count(*) FILTER (WHERE expiry_date > $1 AND expiry_date <= $2),
			COALESCE(sum(remaining_quantity), 0), COALESCE(sum(allocated_quantity), 0)
		FROM batches GROUP BY status, batch_type`, now, soon)
	if err != nil {
		return nil, fmt.Errorf("batch statistics: %w", err)
	}
	defer rows.Close()
	stats := repository.NewBatchStatistics()
	for rows.Next() {
		var (
			status, batchType        string
			count, expired, expiring int
			remaining, allocated     decimal.Decimal
		)
		if err := rows.Scan(&status, &batchType, &count, &expired, &expiring, &remaining, &allocated); err != nil {
			return nil, fmt.Errorf("scan batch statistics: %w", err)
		}
		stats.Total += count
		stats.ByStatus[entity.BatchStatus(status)] += count
		stats.ByType[entity.BatchType(batchType)] += count
		stats.Expired += expired
		stats.ExpiringSoon += expiring
		stats.TotalQuantity = stats.TotalQuantity.Add(remaining)
		stats.AllocatedQuantity = stats.AllocatedQuantity.Add(allocated)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("batch statistics: %w", err)
	}
	stats.AvailableQuantity = stats.TotalQuantity.Sub(stats.AllocatedQuantity)
	return stats, nil
}

// Delete elimina un lote por ID.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el lote %s tiene lotes derivados", domain.ErrHasChildren, id)
		}
		return fmt.Errorf("delete batch: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BatchRepo) findOne(ctx context.Context, query string, args ...any) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

func (r *BatchRepo) findMany(ctx context.Context, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (*entity.Batch, error) {
	var (
		b                                          entity.Batch
		batchType, status                          string
		productID, origin, parentID, certID, notes *string
		updatedBy                                  *string
		fields                                     []byte
	)
	err := row.Scan(
		&b.ID, &b.BatchNumber, &batchType, &productID, &origin, &b.HarvestDate, &b.ExpiryDate,
		&parentID, &certID, &status, &b.InitialQuantity, &b.RemainingQuantity, &b.AllocatedQuantity,
		&b.UnitOfMeasure, &notes, &fields, &b.Version, &b.CreatedAt, &b.UpdatedAt, &b.CreatedBy, &updatedBy,
	)
	if err != nil {
		return nil, err
	}
	b.BatchType = entity.BatchType(batchType)
	b.Status = entity.BatchStatus(status)
	b.ProductID = deref(productID)
	b.OriginCountry = deref(origin)
	b.ParentBatchID = deref(parentID)
	b.QualityCertificateID = deref(certID)
	b.Notes = deref(notes)
	b.UpdatedBy = deref(updatedBy)
	if len(fields) > 0 && string(fields) != "null" {
		if err := json.Unmarshal(fields, &b.CustomFields); err != nil {
			return nil, fmt.Errorf("decode custom_fields: %w", err)
		}
	}
	return &b, nil
}

// marshalFields devuelve nil (NULL) si no hay campos personalizados.
func marshalFields(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode custom_fields: %w", err)
	}
	return json.RawMessage(raw), nil
}

func nullString(s string) *string {
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
