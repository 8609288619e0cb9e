package http

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
)

// BatchHandler maneja las peticiones HTTP de lotes (protegido).
type BatchHandler struct {
	svc *traceability.BatchTraceabilityService
	log zerolog.Logger
	now func() time.Time
}

// NewBatchHandler construye el handler.
func NewBatchHandler(svc *traceability.BatchTraceabilityService, log zerolog.Logger) *BatchHandler {
	return &BatchHandler{svc: svc, log: log, now: time.Now}
}

// Create godoc
// @Summary      Crear lote
// @Description  Si trae parentBatchId, el lote padre debe existir y estar ACTIVE.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Datos del lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	b, err := h.svc.CreateBatch(c.UserContext(), traceability.CreateBatchInput{
		BatchNumber:          in.BatchNumber,
		BatchType:            entity.BatchType(strings.ToUpper(in.BatchType)),
		ProductID:            in.ProductID,
		OriginCountry:        in.OriginCountry,
		HarvestDate:          in.HarvestDate,
		ExpiryDate:           in.ExpiryDate,
		ParentBatchID:        in.ParentBatchID,
		QualityCertificateID: in.QualityCertificateID,
		InitialQuantity:      in.InitialQuantity,
		UnitOfMeasure:        in.UnitOfMeasure,
		Notes:                in.Notes,
		CustomFields:         in.CustomFields,
	}, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewBatchResponse(b, h.now()))
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	b, err := h.svc.GetBatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchResponse(b, h.now()))
}

// List godoc
// @Summary      Listar lotes
// @Description  Filtros combinables (AND), ordenamiento por un campo y paginación (page desde 1, pageSize máx. 100).
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        batchNumber           query  string  false  "Subcadena del número de lote"
// @Param        batchType             query  string  false  "SEED, CROP, FERTILIZER, FEED o PRODUCT"
// @Param        productId             query  string  false  "Producto"
// @Param        originCountry         query  string  false  "País de origen"
// @Param        status                query  string  false  "ACTIVE, ON_HOLD, BLOCKED, EXPIRED o CONSUMED"
// @Param        parentBatchId         query  string  false  "Lote padre"
// @Param        qualityCertificateId  query  string  false  "Certificado de calidad"
// @Param        harvestFrom           query  string  false  "Cosecha desde (RFC3339 o YYYY-MM-DD)"
// @Param        harvestTo             query  string  false  "Cosecha hasta"
// @Param        expiryFrom            query  string  false  "Vencimiento desde"
// @Param        expiryTo              query  string  false  "Vencimiento hasta"
// @Param        isExpired             query  bool    false  "Vencido"
// @Param        isExpiringSoon        query  bool    false  "Próximo a vencer"
// @Param        days                  query  int     false  "Ventana de próximo a vencer (por defecto 30)"
// @Param        search                query  string  false  "Texto libre sobre número de lote y notas"
// @Param        sortBy                query  string  false  "createdAt, updatedAt, batchNumber, expiryDate, harvestDate, remainingQuantity, initialQuantity"
// @Param        sortOrder             query  string  false  "asc o desc"
// @Param        page                  query  int     false  "Página (desde 1)"
// @Param        pageSize              query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.BatchPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	sort := repository.BatchSort{
		Field: repository.SortField(c.Query("sortBy")),
		Order: repository.SortOrder(strings.ToLower(c.Query("sortOrder"))),
	}
	page := repository.PageRequest{Page: c.QueryInt("page", 1), PageSize: c.QueryInt("pageSize", repository.DefaultPageSize)}
	out, err := h.svc.ListBatches(c.UserContext(), f, sort, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchPageResponse(out, h.now()))
}

// Update godoc
// @Summary      Actualizar información básica del lote
// @Description  Solo lotes ACTIVE. customFields se fusiona por clave.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.UpdateBatchRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [put]
func (h *BatchHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	b, err := h.svc.UpdateBatch(c.UserContext(), c.Params("id"), in.ToEntity(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchResponse(b, h.now()))
}

// Delete godoc
// @Summary      Eliminar lote
// @Description  Falla con 409 HAS_CHILDREN si el lote tiene derivados.
// @Tags         batches
// @Security     Bearer
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.DeleteBatch(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Allocate godoc
// @Summary      Reservar cantidad
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del lote"
// @Param        body  body  dto.QuantityRequest  true  "Cantidad"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/allocate [post]
func (h *BatchHandler) Allocate(c *fiber.Ctx) error {
	return h.quantityOp(c, h.svc.AllocateBatch)
}

// Deallocate godoc
// @Summary      Liberar reserva
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del lote"
// @Param        body  body  dto.QuantityRequest  true  "Cantidad"
// @Success      200   {object}  dto.BatchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/deallocate [post]
func (h *BatchHandler) Deallocate(c *fiber.Ctx) error {
	return h.quantityOp(c, h.svc.DeallocateBatch)
}

// Consume godoc
// @Summary      Consumir cantidad reservada
// @Description  Al llegar la cantidad restante a cero el lote pasa a CONSUMED.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del lote"
// @Param        body  body  dto.QuantityRequest  true  "Cantidad"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/consume [post]
func (h *BatchHandler) Consume(c *fiber.Ctx) error {
	return h.quantityOp(c, h.svc.ConsumeBatch)
}

// Hold godoc
// @Summary      Poner lote en retención
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote"
// @Param        body  body  dto.ReasonRequest  true  "Motivo"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/hold [post]
func (h *BatchHandler) Hold(c *fiber.Ctx) error {
	return h.reasonOp(c, h.svc.PutBatchOnHold)
}

// Release godoc
// @Summary      Liberar retención
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/release [post]
func (h *BatchHandler) Release(c *fiber.Ctx) error {
	b, err := h.svc.ReleaseBatchHold(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchResponse(b, h.now()))
}

// Block godoc
// @Summary      Bloquear lote
// @Description  BLOCKED es terminal: no existe operación inversa.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote"
// @Param        body  body  dto.ReasonRequest  true  "Motivo"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/block [post]
func (h *BatchHandler) Block(c *fiber.Ctx) error {
	return h.reasonOp(c, h.svc.BlockBatch)
}

// Statistics godoc
// @Summary      Estadísticas de lotes
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BatchStatisticsResponse
// @Router       /api/batches/statistics [get]
func (h *BatchHandler) Statistics(c *fiber.Ctx) error {
	s, err := h.svc.GetBatchStatistics(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchStatisticsResponse(s))
}

// Expired godoc
// @Summary      Lotes vencidos
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/batches/expired [get]
func (h *BatchHandler) Expired(c *fiber.Ctx) error {
	bs, err := h.svc.GetExpiredBatches(c.UserContext())
	return h.list(c, bs, err)
}

// ExpiringSoon godoc
// @Summary      Lotes próximos a vencer
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (por defecto 30)"
// @Success      200   {array}  dto.BatchResponse
// @Router       /api/batches/expiring-soon [get]
func (h *BatchHandler) ExpiringSoon(c *fiber.Ctx) error {
	bs, err := h.svc.GetExpiringSoonBatches(c.UserContext(), c.QueryInt("days", entity.DefaultExpiringSoonDays))
	return h.list(c, bs, err)
}

// ByProduct godoc
// @Summary      Lotes de un producto
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200        {array}  dto.BatchResponse
// @Router       /api/batches/by-product/{productId} [get]
func (h *BatchHandler) ByProduct(c *fiber.Ctx) error {
	bs, err := h.svc.GetBatchesByProduct(c.UserContext(), c.Params("productId"))
	return h.list(c, bs, err)
}

// ByStatus godoc
// @Summary      Lotes por estado
// @Description  EXPIRED se evalúa sobre lotes ACTIVE/ON_HOLD con vencimiento pasado.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        status  path  string  true  "Estado"
// @Success      200     {array}  dto.BatchResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/batches/by-status/{status} [get]
func (h *BatchHandler) ByStatus(c *fiber.Ctx) error {
	status := entity.BatchStatus(strings.ToUpper(c.Params("status")))
	bs, err := h.svc.GetBatchesByStatus(c.UserContext(), status)
	return h.list(c, bs, err)
}

// Children godoc
// @Summary      Lotes derivados directos
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/children [get]
func (h *BatchHandler) Children(c *fiber.Ctx) error {
	bs, err := h.svc.GetChildBatches(c.UserContext(), c.Params("id"))
	return h.list(c, bs, err)
}

func (h *BatchHandler) list(c *fiber.Ctx, bs []*entity.Batch, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchList(bs, h.now()))
}

type quantityFunc func(ctx context.Context, id string, qty decimal.Decimal, by string) (*entity.Batch, error)

func (h *BatchHandler) quantityOp(c *fiber.Ctx, fn quantityFunc) error {
	var in dto.QuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	b, err := fn(c.UserContext(), c.Params("id"), in.Quantity, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchResponse(b, h.now()))
}

type reasonFunc func(ctx context.Context, id, reason, by string) (*entity.Batch, error)

func (h *BatchHandler) reasonOp(c *fiber.Ctx, fn reasonFunc) error {
	var in dto.ReasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
	}
	b, err := fn(c.UserContext(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchResponse(b, h.now()))
}

// parseFilter lee los filtros del query string.
func parseFilter(c *fiber.Ctx) (repository.BatchFilter, error) {
	f := repository.BatchFilter{
		BatchNumber:          c.Query("batchNumber"),
		BatchType:            entity.BatchType(strings.ToUpper(c.Query("batchType"))),
		ProductID:            c.Query("productId"),
		OriginCountry:        c.Query("originCountry"),
		Status:               entity.BatchStatus(strings.ToUpper(c.Query("status"))),
		ParentBatchID:        c.Query("parentBatchId"),
		QualityCertificateID: c.Query("qualityCertificateId"),
		ExpiringWithinDays:   c.QueryInt("days", 0),
		Search:               c.Query("search"),
	}
	var err error
	dates := []struct {
		key string
		dst **time.Time
	}{
		{"harvestFrom", &f.HarvestFrom},
		{"harvestTo", &f.HarvestTo},
		{"expiryFrom", &f.ExpiryFrom},
		{"expiryTo", &f.ExpiryTo},
	}
	for _, d := range dates {
		if *d.dst, err = queryTime(c, d.key); err != nil {
			return f, err
		}
	}
	if f.IsExpired, err = queryBool(c, "isExpired"); err != nil {
		return f, err
	}
	if f.IsExpiringSoon, err = queryBool(c, "isExpiringSoon"); err != nil {
		return f, err
	}
	return f, nil
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, key+": fecha inválida (RFC3339 o YYYY-MM-DD)")
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+": se espera true o false")
	}
	return &b, nil
}
