package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/auth"
	"github.com/jhoicas/agro-trazabilidad-api/internal/application/monitor"
	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/manifest"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/pdf"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/store"
	httpRouter "github.com/jhoicas/agro-trazabilidad-api/internal/interfaces/http"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/config"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/logger"

	_ "github.com/jhoicas/agro-trazabilidad-api/docs"
)

// @title                       Agro Trazabilidad API
// @version                     1.0
// @description                 Ciclo de vida y trazabilidad de lotes agrícolas.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	users, err := auth.ParseUsers(cfg.Auth.Users)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de usuarios")
	}
	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if len(users) == 0 {
		log.Warn().Msg("AUTH_USERS vacío: /api/auth/login rechazará todo; emitir tokens con batchctl token")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento de lotes")
	}
	defer st.Close()

	// Métricas: registro propio para no mezclar con el global.
	var collector *metrics.Collector
	var opMetrics traceability.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector = metrics.NewCollector(reg)
		opMetrics = collector
	}

	batchSvc := traceability.NewBatchTraceabilityService(st.Repo, log.Zerolog(), opMetrics)
	reportUC := traceability.NewReportUseCase(batchSvc, infrapdf.NewMarotoReportGenerator(), manifest.NewXMLBuilder())

	var expiryMonitor *monitor.ExpiryMonitor
	if cfg.Monitor.Enabled {
		var gauges monitor.Gauges
		if collector != nil {
			gauges = collector
		}
		expiryMonitor, err = monitor.NewExpiryMonitor(batchSvc, gauges, log.Zerolog(), monitor.Config{
			Schedule:         cfg.Monitor.Schedule,
			ExpiryWindowDays: cfg.Monitor.ExpiryWindowDays,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("configurar monitor de vencimientos")
		}
		if _, err := expiryMonitor.RunOnce(ctx); err != nil {
			log.Warn().Err(err).Msg("primera revisión de vencimientos")
		}
		expiryMonitor.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Agro Trazabilidad API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": st.Driver})
	})
	if collector != nil {
		app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		BatchService: batchSvc,
		Reports:      reportUC,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if expiryMonitor != nil {
		expiryMonitor.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
