package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/memory"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/pdf"
)

func TestGenerateTraceabilityPDF(t *testing.T) {
	ctx := context.Background()
	svc := traceability.NewBatchTraceabilityService(memory.NewBatchRepository(), zerolog.Nop(), nil)
	expiry := time.Now().Add(40 * 24 * time.Hour)
	root, err := svc.CreateBatch(ctx, traceability.CreateBatchInput{
		BatchNumber: "CROP-2026-01", BatchType: entity.BatchTypeCrop, InitialQuantity: decimal.NewFromInt(1200),
		OriginCountry: "CO", ExpiryDate: &expiry,
	}, "user-1")
	require.NoError(t, err)
	for _, n := range []string{"PROD-01", "PROD-02"} {
		_, err := svc.CreateBatch(ctx, traceability.CreateBatchInput{
			BatchNumber: n, BatchType: entity.BatchTypeProduct, InitialQuantity: decimal.NewFromInt(100), ParentBatchID: root.ID,
		}, "user-1")
		require.NoError(t, err)
	}

	uc := traceability.NewReportUseCase(svc, pdf.NewMarotoReportGenerator(), nil)
	data, filename, err := uc.GeneratePDF(ctx, root.ID, "auditor")
	require.NoError(t, err)
	assert.Equal(t, "trazabilidad-CROP-2026-01.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "debe ser un PDF")
}

func TestGenerateTraceabilityPDF_RequiresBatch(t *testing.T) {
	_, err := pdf.NewMarotoReportGenerator().GenerateTraceabilityPDF(context.Background(), &traceability.TraceabilityReport{})
	assert.Error(t, err)
}
