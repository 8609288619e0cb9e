package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/textnorm"
)

const batchColumns = `id, batch_number, batch_type, product_id, origin_country, harvest_date, expiry_date,
	parent_batch_id, quality_certificate_id, status, initial_quantity, remaining_quantity, allocated_quantity,
	unit_of_measure, notes, custom_fields, version, created_at, updated_at, created_by, updated_by`

// whereBuilder acumula condiciones y argumentos posicionales ($1, $2, ...).
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// buildBatchWhere traduce BatchFilter a SQL con la misma semántica que el repositorio en memoria.
// Vencido: expiry_date < now. Próximo a vencer en d días: now < expiry_date <= now + d días.
func buildBatchWhere(f repository.BatchFilter, now time.Time) (string, []any) {
	w := &whereBuilder{}
	if f.BatchNumber != "" {
		w.add(foldedCol("batch_number") + " LIKE " + w.arg(foldedPattern(f.BatchNumber)))
	}
	if f.BatchType != "" {
		w.add("batch_type = " + w.arg(string(f.BatchType)))
	}
	if f.ProductID != "" {
		w.add("product_id = " + w.arg(f.ProductID))
	}
	if f.OriginCountry != "" {
		w.add("lower(origin_country) = lower(" + w.arg(f.OriginCountry) + ")")
	}
	if f.Status != "" {
		if f.Status == entity.BatchStatusExpired {
			w.add("status IN ('ACTIVE', 'ON_HOLD') AND expiry_date < " + w.arg(now))
		} else {
			w.add("status = " + w.arg(string(f.Status)))
		}
	}
	if f.ParentBatchID != "" {
		w.add("parent_batch_id = " + w.arg(f.ParentBatchID))
	}
	if f.QualityCertificateID != "" {
		w.add("quality_certificate_id = " + w.arg(f.QualityCertificateID))
	}
	if f.HarvestFrom != nil {
		w.add("harvest_date >= " + w.arg(*f.HarvestFrom))
	}
	if f.HarvestTo != nil {
		w.add("harvest_date <= " + w.arg(*f.HarvestTo))
	}
	if f.ExpiryFrom != nil {
		w.add("expiry_date >= " + w.arg(*f.ExpiryFrom))
	}
	if f.ExpiryTo != nil {
		w.add("expiry_date <= " + w.arg(*f.ExpiryTo))
	}
	if f.IsExpired != nil {
		p := w.arg(now)
		if *f.IsExpired {
			w.add("expiry_date < " + p)
		} else {
			w.add("(expiry_date IS NULL OR expiry_date >= " + p + ")")
		}
	}
	if f.IsExpiringSoon != nil {
		from := w.arg(now)
		to := w.arg(now.Add(time.Duration(f.ExpiringWindow()) * 24 * time.Hour))
		if *f.IsExpiringSoon {
			w.add("expiry_date > " + from + " AND expiry_date <= " + to)
		} else {
			w.add("(expiry_date IS NULL OR expiry_date <= " + from + " OR expiry_date > " + to + ")")
		}
	}
	if f.Search != "" {
		p := w.arg(foldedPattern(f.Search))
		w.add("(" + foldedCol("batch_number") + " LIKE " + p + " OR " + foldedCol("notes") + " LIKE " + p + ")")
	}
	return w.sql(), w.args
}

var sortColumns = map[repository.SortField]string{
	repository.SortByCreatedAt:         "created_at",
	repository.SortByUpdatedAt:         "updated_at",
	repository.SortByBatchNumber:       "batch_number",
	repository.SortByExpiryDate:        "expiry_date",
	repository.SortByHarvestDate:       "harvest_date",
	repository.SortByRemainingQuantity: "remaining_quantity",
	repository.SortByInitialQuantity:   "initial_quantity",
}

// buildOrderBy ordena por un campo (nulos al final) y desempata por orden de inserción (seq).
func buildOrderBy(s repository.BatchSort) string {
	s = s.Normalize()
	dir := "DESC"
	if s.Order == repository.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, seq ASC", sortColumns[s.Field], dir)
}

// foldedCol compara sin tildes ni mayúsculas (extensión unaccent), igual que textnorm.Fold.
func foldedCol(col string) string {
	return "unaccent(lower(" + col + "))"
}

// foldedPattern normaliza el texto buscado del lado de Go antes de armar el patrón LIKE.
func foldedPattern(s string) string {
	return likePattern(textnorm.Fold(strings.TrimSpace(s)))
}

// likePattern escapa comodines y envuelve en %...%.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
