package memory

import (
	"strings"
	"time"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/textnorm"
)

// matches evalúa todos los predicados del filtro (AND).
func matches(b *entity.Batch, f repository.BatchFilter, now time.Time) bool {
	if f.BatchNumber != "" && !textnorm.Contains(b.BatchNumber, f.BatchNumber) {
		return false
	}
	if f.BatchType != "" && b.BatchType != f.BatchType {
		return false
	}
	if f.ProductID != "" && b.ProductID != f.ProductID {
		return false
	}
	if f.OriginCountry != "" && !strings.EqualFold(b.OriginCountry, f.OriginCountry) {
		return false
	}
	if f.Status != "" && !matchesStatus(b, f.Status, now) {
		return false
	}
	if f.ParentBatchID != "" && b.ParentBatchID != f.ParentBatchID {
		return false
	}
	if f.QualityCertificateID != "" && b.QualityCertificateID != f.QualityCertificateID {
		return false
	}
	if !inRange(b.HarvestDate, f.HarvestFrom, f.HarvestTo) {
		return false
	}
	if !inRange(b.ExpiryDate, f.ExpiryFrom, f.ExpiryTo) {
		return false
	}
	if f.IsExpired != nil && b.IsExpiredAt(now) != *f.IsExpired {
		return false
	}
	if f.IsExpiringSoon != nil && b.IsExpiringSoonAt(now, f.ExpiringWindow()) != *f.IsExpiringSoon {
		return false
	}
	if f.Search != "" && !textnorm.Contains(b.BatchNumber+"\n"+b.Notes, f.Search) {
		return false
	}
	return true
}

// matchesStatus: EXPIRED no se persiste, se deriva sobre ACTIVE/ON_HOLD vencidos.
func matchesStatus(b *entity.Batch, status entity.BatchStatus, now time.Time) bool {
	if status == entity.BatchStatusExpired {
		return (b.Status == entity.BatchStatusActive || b.Status == entity.BatchStatusOnHold) && b.IsExpiredAt(now)
	}
	return b.Status == status
}

// inRange: rango cerrado; si hay límite y la fecha es nil, no coincide.
func inRange(t, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if t == nil {
		return false
	}
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// nilLast magnitud reservada para comparar una fecha nil contra una presente:
// las nil van al final sin importar la dirección del ordenamiento.
const nilLast = 2

func compareField(a, b *entity.Batch, field repository.SortField) int {
	switch field {
	case repository.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case repository.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case repository.SortByBatchNumber:
		return strings.Compare(a.BatchNumber, b.BatchNumber)
	case repository.SortByExpiryDate:
		return compareOptional(a.ExpiryDate, b.ExpiryDate)
	case repository.SortByHarvestDate:
		return compareOptional(a.HarvestDate, b.HarvestDate)
	case repository.SortByRemainingQuantity:
		return a.RemainingQuantity.Cmp(b.RemainingQuantity)
	case repository.SortByInitialQuantity:
		return a.InitialQuantity.Cmp(b.InitialQuantity)
	}
	return 0
}

func compareOptional(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return nilLast
	case b == nil:
		return -nilLast
	}
	return a.Compare(*b)
}
