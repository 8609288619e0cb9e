package traceability

import (
	"context"
	"fmt"
	"time"
)

// ReportUseCase genera los entregables de trazabilidad de un lote (PDF y manifiesto XML).
type ReportUseCase struct {
	svc      *BatchTraceabilityService
	pdf      ReportPDFGenerator
	manifest ManifestBuilder
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso inyectando sus generadores.
func NewReportUseCase(svc *BatchTraceabilityService, pdf ReportPDFGenerator, manifest ManifestBuilder) *ReportUseCase {
	return &ReportUseCase{svc: svc, pdf: pdf, manifest: manifest, now: time.Now}
}

// BuildReport carga lote, cadena ascendente y árbol descendente.
//
// Retorna domain.ErrNotFound si el lote no existe y domain.ErrLineageCorrupted si
// algún recorrido encuentra un ciclo.
func (uc *ReportUseCase) BuildReport(ctx context.Context, batchID, requestedBy string) (*TraceabilityReport, error) {
	b, err := uc.svc.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	chain, err := uc.svc.GetTraceabilityChain(ctx, batchID)
	if err != nil {
		return nil, err
	}
	tree, err := uc.svc.GetTraceabilityTree(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return &TraceabilityReport{
		Batch:       b,
		Chain:       chain,
		Tree:        tree,
		GeneratedAt: uc.now().UTC(),
		GeneratedBy: requestedBy,
	}, nil
}

// GeneratePDF devuelve (pdfBytes, filename, nil).
func (uc *ReportUseCase) GeneratePDF(ctx context.Context, batchID, requestedBy string) ([]byte, string, error) {
	r, err := uc.BuildReport(ctx, batchID, requestedBy)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.pdf.GenerateTraceabilityPDF(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar informe: %w", err)
	}
	return data, fmt.Sprintf("trazabilidad-%s.pdf", r.Batch.BatchNumber), nil
}

// GenerateManifest devuelve (xmlBytes, filename, nil).
func (uc *ReportUseCase) GenerateManifest(ctx context.Context, batchID, requestedBy string) ([]byte, string, error) {
	r, err := uc.BuildReport(ctx, batchID, requestedBy)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.manifest.Build(r)
	if err != nil {
		return nil, "", fmt.Errorf("manifiesto: generar: %w", err)
	}
	return data, fmt.Sprintf("trazabilidad-%s.xml", r.Batch.BatchNumber), nil
}

// VerifyManifest recalcula el digest del linaje de un manifiesto recibido.
func (uc *ReportUseCase) VerifyManifest(data []byte) error {
	return uc.manifest.Verify(data)
}
