package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
)

// CreateBatchRequest body para POST /api/batches.
type CreateBatchRequest struct {
	BatchNumber          string          `json:"batchNumber"`
	BatchType            string          `json:"batchType"`
	ProductID            string          `json:"productId,omitempty"`
	OriginCountry        string          `json:"originCountry,omitempty"`
	HarvestDate          *time.Time      `json:"harvestDate,omitempty"`
	ExpiryDate           *time.Time      `json:"expiryDate,omitempty"`
	ParentBatchID        string          `json:"parentBatchId,omitempty"`
	QualityCertificateID string          `json:"qualityCertificateId,omitempty"`
	InitialQuantity      decimal.Decimal `json:"initialQuantity" swaggertype:"string"`
	UnitOfMeasure        string          `json:"unitOfMeasure,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	CustomFields         map[string]any  `json:"customFields,omitempty"`
}

// UpdateBatchRequest body para PUT /api/batches/:id. Campos ausentes no se modifican.
type UpdateBatchRequest struct {
	BatchNumber          *string        `json:"batchNumber,omitempty"`
	ProductID            *string        `json:"productId,omitempty"`
	OriginCountry        *string        `json:"originCountry,omitempty"`
	HarvestDate          *time.Time     `json:"harvestDate,omitempty"`
	ExpiryDate           *time.Time     `json:"expiryDate,omitempty"`
	ClearHarvestDate     bool           `json:"clearHarvestDate,omitempty"`
	ClearExpiryDate      bool           `json:"clearExpiryDate,omitempty"`
	QualityCertificateID *string        `json:"qualityCertificateId,omitempty"`
	UnitOfMeasure        *string        `json:"unitOfMeasure,omitempty"`
	Notes                *string        `json:"notes,omitempty"`
	CustomFields         map[string]any `json:"customFields,omitempty"`
}

// ToEntity convierte la petición en cambios de dominio.
func (r UpdateBatchRequest) ToEntity() entity.BatchUpdate {
	return entity.BatchUpdate{
		BatchNumber:          r.BatchNumber,
		ProductID:            r.ProductID,
		OriginCountry:        r.OriginCountry,
		HarvestDate:          r.HarvestDate,
		ExpiryDate:           r.ExpiryDate,
		ClearHarvestDate:     r.ClearHarvestDate,
		ClearExpiryDate:      r.ClearExpiryDate,
		QualityCertificateID: r.QualityCertificateID,
		UnitOfMeasure:        r.UnitOfMeasure,
		Notes:                r.Notes,
		CustomFields:         r.CustomFields,
	}
}

// QuantityRequest body para allocate, deallocate y consume.
type QuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" swaggertype:"string"`
}

// ReasonRequest body para hold y block.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// BatchResponse proyección pública de un lote.
type BatchResponse struct {
	ID                   string          `json:"id"`
	BatchNumber          string          `json:"batchNumber"`
	BatchType            string          `json:"batchType"`
	ProductID            string          `json:"productId"`
	OriginCountry        string          `json:"originCountry"`
	HarvestDate          *time.Time      `json:"harvestDate,omitempty"`
	ExpiryDate           *time.Time      `json:"expiryDate,omitempty"`
	ParentBatchID        string          `json:"parentBatchId,omitempty"`
	QualityCertificateID string          `json:"qualityCertificateId,omitempty"`
	Status               string          `json:"status"`
	InitialQuantity      decimal.Decimal `json:"initialQuantity" swaggertype:"string"`
	RemainingQuantity    decimal.Decimal `json:"remainingQuantity" swaggertype:"string"`
	AllocatedQuantity    decimal.Decimal `json:"allocatedQuantity" swaggertype:"string"`
	AvailableQuantity    decimal.Decimal `json:"availableQuantity" swaggertype:"string"`
	UnitOfMeasure        string          `json:"unitOfMeasure"`
	Notes                string          `json:"notes,omitempty"`
	CustomFields         map[string]any  `json:"customFields,omitempty"`
	IsExpired            bool            `json:"isExpired"`
	IsExpiringSoon       bool            `json:"isExpiringSoon"`
	DaysUntilExpiry      *int            `json:"daysUntilExpiry"` // null si no tiene vencimiento
	AgeInDays            int             `json:"ageInDays"`
	Version              int64           `json:"version"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	CreatedBy            string          `json:"createdBy"`
	UpdatedBy            string          `json:"updatedBy,omitempty"`
}

// NewBatchResponse proyecta un lote evaluando los campos derivados en now.
func NewBatchResponse(b *entity.Batch, now time.Time) BatchResponse {
	out := BatchResponse{
		ID:                   b.ID,
		BatchNumber:          b.BatchNumber,
		BatchType:            string(b.BatchType),
		ProductID:            b.ProductID,
		OriginCountry:        b.OriginCountry,
		HarvestDate:          b.HarvestDate,
		ExpiryDate:           b.ExpiryDate,
		ParentBatchID:        b.ParentBatchID,
		QualityCertificateID: b.QualityCertificateID,
		Status:               string(b.Status),
		InitialQuantity:      b.InitialQuantity,
		RemainingQuantity:    b.RemainingQuantity,
		AllocatedQuantity:    b.AllocatedQuantity,
		AvailableQuantity:    b.AvailableQuantity(),
		UnitOfMeasure:        b.UnitOfMeasure,
		Notes:                b.Notes,
		CustomFields:         b.CustomFields,
		IsExpired:            b.IsExpiredAt(now),
		IsExpiringSoon:       b.IsExpiringSoonAt(now, entity.DefaultExpiringSoonDays),
		AgeInDays:            b.AgeInDaysAt(now),
		Version:              b.Version,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
		CreatedBy:            b.CreatedBy,
		UpdatedBy:            b.UpdatedBy,
	}
	if d, ok := b.DaysUntilExpiryAt(now); ok {
		out.DaysUntilExpiry = &d
	}
	return out
}

// NewBatchList proyecta una lista; nunca devuelve nil.
func NewBatchList(bs []*entity.Batch, now time.Time) []BatchResponse {
	out := make([]BatchResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, NewBatchResponse(b, now))
	}
	return out
}

// BatchPageResponse respuesta paginada de GET /api/batches.
type BatchPageResponse struct {
	Items      []BatchResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
	HasNext    bool            `json:"hasNext"`
	HasPrev    bool            `json:"hasPrev"`
}

// NewBatchPageResponse proyecta una página del repositorio.
func NewBatchPageResponse(p *repository.BatchPage, now time.Time) BatchPageResponse {
	return BatchPageResponse{
		Items:      NewBatchList(p.Items, now),
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
	}
}

// TraceabilityNodeResponse lote con sus derivados directos. Las hojas omiten children.
type TraceabilityNodeResponse struct {
	BatchResponse
	Children []TraceabilityNodeResponse `json:"children,omitempty"`
}

// TraceabilityTreeResponse árbol descendente desde un lote.
type TraceabilityTreeResponse struct {
	Root              TraceabilityNodeResponse `json:"root"`
	Depth             int                      `json:"depth"`
	TotalBatches      int                      `json:"totalBatches"`
	TraceabilityChain []BatchResponse          `json:"traceabilityChain"`
}

// NewTraceabilityTreeResponse proyecta el árbol.
func NewTraceabilityTreeResponse(t *entity.TraceabilityTree, now time.Time) TraceabilityTreeResponse {
	return TraceabilityTreeResponse{
		Root:              newNode(t.Root, now),
		Depth:             t.Depth,
		TotalBatches:      t.TotalBatches,
		TraceabilityChain: NewBatchList(t.Chain, now),
	}
}

func newNode(n *entity.TraceabilityNode, now time.Time) TraceabilityNodeResponse {
	out := TraceabilityNodeResponse{
		BatchResponse: NewBatchResponse(n.Batch, now),
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, newNode(c, now))
	}
	return out
}

// BatchStatisticsResponse agregados de GET /api/batches/statistics.
type BatchStatisticsResponse struct {
	Total             int             `json:"total"`
	ByStatus          map[string]int  `json:"byStatus"`
	ByType            map[string]int  `json:"byType"`
	Expired           int             `json:"expired"`
	ExpiringSoon      int             `json:"expiringSoon"`
	TotalQuantity     decimal.Decimal `json:"totalQuantity" swaggertype:"string"`
	AllocatedQuantity decimal.Decimal `json:"allocatedQuantity" swaggertype:"string"`
	AvailableQuantity decimal.Decimal `json:"availableQuantity" swaggertype:"string"`
}

// NewBatchStatisticsResponse proyecta las estadísticas.
func NewBatchStatisticsResponse(s *repository.BatchStatistics) BatchStatisticsResponse {
	out := BatchStatisticsResponse{
		Total:             s.Total,
		ByStatus:          make(map[string]int, len(s.ByStatus)),
		ByType:            make(map[string]int, len(s.ByType)),
		Expired:           s.Expired,
		ExpiringSoon:      s.ExpiringSoon,
		TotalQuantity:     s.TotalQuantity,
		AllocatedQuantity: s.AllocatedQuantity,
		AvailableQuantity: s.AvailableQuantity,
	}
	for k, v := range s.ByStatus {
		out.ByStatus[string(k)] = v
	}
	for k, v := range s.ByType {
		out.ByType[string(k)] = v
	}
	return out
}
