package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
)

// TraceabilityHandler expone el linaje de un lote y sus informes (protegido).
type TraceabilityHandler struct {
	svc     *traceability.BatchTraceabilityService
	reports *traceability.ReportUseCase
	log     zerolog.Logger
	now     func() time.Time
}

// NewTraceabilityHandler construye el handler. reports puede ser nil: las rutas de informe responden 501.
func NewTraceabilityHandler(svc *traceability.BatchTraceabilityService, reports *traceability.ReportUseCase, log zerolog.Logger) *TraceabilityHandler {
	return &TraceabilityHandler{svc: svc, reports: reports, log: log, now: time.Now}
}

// Tree godoc
// @Summary      Árbol de trazabilidad descendente
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote raíz"
// @Success      200  {object}  dto.TraceabilityTreeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/traceability/tree [get]
func (h *TraceabilityHandler) Tree(c *fiber.Ctx) error {
	tree, err := h.svc.GetTraceabilityTree(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewTraceabilityTreeResponse(tree, h.now()))
}

// Chain godoc
// @Summary      Cadena de trazabilidad ascendente
// @Description  Lotes desde la raíz del linaje hasta el lote indicado (inclusive).
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/traceability/chain [get]
func (h *TraceabilityHandler) Chain(c *fiber.Ctx) error {
	chain, err := h.svc.GetTraceabilityChain(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchList(chain, h.now()))
}

// ReportPDF godoc
// @Summary      Informe de trazabilidad en PDF
// @Tags         traceability
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/traceability/report.pdf [get]
func (h *TraceabilityHandler) ReportPDF(c *fiber.Ctx) error {
	if h.reports == nil {
		return notImplemented(c)
	}
	data, filename, err := h.reports.GeneratePDF(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(data)
}

// Manifest godoc
// @Summary      Manifiesto XML de trazabilidad
// @Description  Incluye un digest SHA-256 del linaje canonicalizado (C14N).
// @Tags         traceability
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/traceability/manifest.xml [get]
func (h *TraceabilityHandler) Manifest(c *fiber.Ctx) error {
	if h.reports == nil {
		return notImplemented(c)
	}
	data, filename, err := h.reports.GenerateManifest(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(data)
}

// VerifyManifest godoc
// @Summary      Verificar manifiesto XML
// @Description  Recalcula el digest del linaje; 200 {valid:false} si no coincide, 400 si el XML es ilegible.
// @Tags         traceability
// @Security     Bearer
// @Accept       application/xml
// @Produce      json
// @Success      200  {object}  dto.ManifestVerifyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/batches/manifest/verify [post]
func (h *TraceabilityHandler) VerifyManifest(c *fiber.Ctx) error {
	if h.reports == nil {
		return notImplemented(c)
	}
	if len(c.Body()) == 0 {
		return badRequest(c, "INVALID_BODY", "manifiesto vacío")
	}
	err := h.reports.VerifyManifest(c.Body())
	switch {
	case err == nil:
		return c.JSON(dto.ManifestVerifyResponse{Valid: true})
	case errors.Is(err, domain.ErrDigestMismatch):
		return c.JSON(dto.ManifestVerifyResponse{Valid: false})
	case errors.Is(err, domain.ErrInvalidInput):
		return badRequest(c, "INVALID_MANIFEST", err.Error())
	default:
		return writeError(c, h.log, err)
	}
}

func notImplemented(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "informes no configurados"})
}
