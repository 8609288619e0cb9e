// Package pdf genera el informe de trazabilidad de un lote en PDF (Maroto v2).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + N° de lote  │  Estado + Fecha de emisión   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LOTE: tipo / producto / origen / fechas / certificado       │
//	│  CANTIDADES: inicial | restante | asignada | disponible      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: cadena ascendente raíz -> lote                      │
//	│  DERIVADOS: árbol descendente indentado por nivel            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID del lote + leyenda                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 102, Blue: 51}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const dateLayout = "02/01/2006"

// ── Generator ─────────────────────────────────────────────────────────────────

var _ traceability.ReportPDFGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa traceability.ReportPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateTraceabilityPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateTraceabilityPDF(_ context.Context, r *traceability.TraceabilityReport) ([]byte, error) {
	if r == nil || r.Batch == nil {
		return nil, fmt.Errorf("pdf: informe sin lote")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Informe de trazabilidad "+r.Batch.BatchNumber, true).
		WithAuthor(nonEmpty(r.GeneratedBy, "agro-trazabilidad"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r.Batch, r.GeneratedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(batchInfoRow(r.Batch))
	m.AddRows(quantitiesRow(r.Batch))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Cadena ascendente
	m.AddRows(sectionRow(fmt.Sprintf("ORIGEN (%d lote(s), raíz primero)", len(r.Chain))))
	m.AddRows(tableHeaderRow())
	for i, b := range r.Chain {
		m.AddRows(batchTableRow(b, i))
	}

	// Árbol descendente
	if r.Tree != nil && r.Tree.Root != nil {
		m.AddRows(line.NewRow(3))
		m.AddRows(sectionRow(fmt.Sprintf("DERIVADOS (profundidad %d, %d lote(s))", r.Tree.Depth, r.Tree.TotalBatches)))
		m.AddRows(tableHeaderRow())
		m.AddRows(treeRows(r.Tree.Root, 0)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(r)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + número de lote (izq), estado + fecha de emisión (der).
func headerRow(b *entity.Batch, generatedAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("INFORME DE TRAZABILIDAD", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Lote: "+b.BatchNumber, props.Text{
				Size: 10, Top: 9, Style: fontstyle.Bold,
			}),
		),
		col.New(5).Add(
			text.New(statusLabel(b), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+generatedAt.Format(dateLayout+" 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// batchInfoRow: datos descriptivos del lote.
func batchInfoRow(b *entity.Batch) core.Row {
	return row.New(18).Add(
		col.New(12).Add(
			text.New("DATOS DEL LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Tipo: %s   |   Producto: %s   |   Origen: %s   |   Certificado: %s",
				b.BatchType,
				nonEmpty(b.ProductID, "-"),
				nonEmpty(b.OriginCountry, "-"),
				nonEmpty(b.QualityCertificateID, "-"),
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
			text.New(fmt.Sprintf("Cosecha: %s   |   Vencimiento: %s   |   Versión: %d   |   Creado por: %s",
				formatDate(b.HarvestDate),
				formatDate(b.ExpiryDate),
				b.Version,
				b.CreatedBy,
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

// quantitiesRow: libro de cantidades.
func quantitiesRow(b *entity.Batch) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(value+" "+b.UnitOfMeasure, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 5,
			}),
		)
	}
	return row.New(14).Add(
		cell("Inicial", b.InitialQuantity.String()),
		cell("Restante", b.RemainingQuantity.String()),
		cell("Asignada", b.AllocatedQuantity.String()),
		cell("Disponible", b.AvailableQuantity().String()),
	)
}

func sectionRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

// tableHeaderRow: cabecera de las tablas de lotes.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("N° de lote", 4, align.Left),
		h("Tipo", 2, align.Center),
		h("Estado", 2, align.Center),
		h("Restante", 2, align.Right),
		h("Vence", 2, align.Center),
	)
}

// batchTableRow: una fila por lote; level indenta el número de lote.
func batchTableRow(b *entity.Batch, level int) core.Row {
	prefix := ""
	if level > 0 {
		prefix = strings.Repeat("  ", level) + "└ "
	}
	return row.New(7).Add(
		col.New(4).Add(text.New(prefix+b.BatchNumber, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
		col.New(2).Add(text.New(string(b.BatchType), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(statusLabel(b), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(b.RemainingQuantity.String()+" "+b.UnitOfMeasure, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(2).Add(text.New(formatDate(b.ExpiryDate), props.Text{Size: 8, Align: align.Center, Top: 1})),
	)
}

// treeRows recorre el árbol en preorden.
func treeRows(n *entity.TraceabilityNode, level int) []core.Row {
	rows := []core.Row{batchTableRow(n.Batch, level)}
	for _, child := range n.Children {
		rows = append(rows, treeRows(child, level+1)...)
	}
	return rows
}

// footerRows: QR con el ID del lote + leyenda.
func footerRows(r *traceability.TraceabilityReport) []core.Row {
	return []core.Row{
		row.New(40).Add(
			col.New(3).Add(code.NewQr("batch:"+r.Batch.ID, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(9).Add(
				text.New("ID del lote: "+r.Batch.ID, props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Escanee el código para consultar el lote y verificar su manifiesto XML.", props.Text{
					Size: 8, Top: 10, Left: 3, Color: colorGray,
				}),
				text.New(fmt.Sprintf("Generado por %s", nonEmpty(r.GeneratedBy, "sistema")), props.Text{
					Style: fontstyle.Bold, Size: 9, Top: 20, Left: 3, Color: colorPrimary,
				}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

// statusLabel muestra EXPIRED cuando el vencimiento ya pasó sobre un lote ACTIVE/ON_HOLD.
func statusLabel(b *entity.Batch) string {
	if (b.Status == entity.BatchStatusActive || b.Status == entity.BatchStatusOnHold) && b.IsExpired() {
		return string(entity.BatchStatusExpired)
	}
	return string(b.Status)
}
