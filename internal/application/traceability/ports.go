package traceability

import (
	"context"
	"time"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
)

// TraceabilityReport datos de un informe de trazabilidad: el lote, su cadena ascendente
// (raíz -> lote) y su árbol descendente.
type TraceabilityReport struct {
	Batch       *entity.Batch
	Chain       []*entity.Batch
	Tree        *entity.TraceabilityTree
	GeneratedAt time.Time
	GeneratedBy string
}

// ReportPDFGenerator genera la representación PDF del informe.
type ReportPDFGenerator interface {
	GenerateTraceabilityPDF(ctx context.Context, r *TraceabilityReport) ([]byte, error)
}

// ManifestBuilder arma y verifica el manifiesto XML con digest canónico del linaje.
type ManifestBuilder interface {
	Build(r *TraceabilityReport) ([]byte, error)
	Verify(data []byte) error
}
