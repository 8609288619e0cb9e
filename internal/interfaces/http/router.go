package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/auth"
	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	BatchService *traceability.BatchTraceabilityService
	Reports      *traceability.ReportUseCase // opcional
	AuthUC       *auth.AuthUseCase           // opcional: sin él no hay /api/auth/login
	JWTSecret    string
	Log          zerolog.Logger
}

// Router registra las rutas de la API. Salvo el login, todas requieren Bearer Token;
// lectura para cualquier rol, escritura para admin/operador, eliminar y bloquear solo admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	if deps.AuthUC != nil {
		authHandler := NewAuthHandler(deps.AuthUC)
		api.Post("/auth/login", authHandler.Login)
	}

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	read := RequireRole(jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleAuditor)
	write := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	admin := RequireRole(jwt.RoleAdmin)

	batchHandler := NewBatchHandler(deps.BatchService, deps.Log)
	traceHandler := NewTraceabilityHandler(deps.BatchService, deps.Reports, deps.Log)

	batches := protected.Group("/batches")

	// Rutas estáticas antes de /:id
	batches.Get("/statistics", read, batchHandler.Statistics)
	batches.Get("/expired", read, batchHandler.Expired)
	batches.Get("/expiring-soon", read, batchHandler.ExpiringSoon)
	batches.Get("/by-product/:productId", read, batchHandler.ByProduct)
	batches.Get("/by-status/:status", read, batchHandler.ByStatus)
	batches.Post("/manifest/verify", read, traceHandler.VerifyManifest)

	batches.Post("/", write, batchHandler.Create)
	batches.Get("/", read, batchHandler.List)
	batches.Get("/:id", read, batchHandler.GetByID)
	batches.Put("/:id", write, batchHandler.Update)
	batches.Delete("/:id", admin, batchHandler.Delete)

	// Libro de cantidades y estados
	batches.Post("/:id/allocate", write, batchHandler.Allocate)
	batches.Post("/:id/deallocate", write, batchHandler.Deallocate)
	batches.Post("/:id/consume", write, batchHandler.Consume)
	batches.Post("/:id/hold", write, batchHandler.Hold)
	batches.Post("/:id/release", write, batchHandler.Release)
	batches.Post("/:id/block", admin, batchHandler.Block)

	// Linaje
	batches.Get("/:id/children", read, batchHandler.Children)
	batches.Get("/:id/traceability/tree", read, traceHandler.Tree)
	batches.Get("/:id/traceability/chain", read, traceHandler.Chain)
	batches.Get("/:id/traceability/report.pdf", read, traceHandler.ReportPDF)
	batches.Get("/:id/traceability/manifest.xml", read, traceHandler.Manifest)
}
