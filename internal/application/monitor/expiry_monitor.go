// Package monitor revisa periódicamente los vencimientos de lotes. Solo lee: nunca
// cambia el estado de un lote (EXPIRED se deriva de la fecha).
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
)

// DefaultSchedule frecuencia por defecto.
const DefaultSchedule = "@every 1h"

// BatchSource consultas que necesita el monitor (las cumple BatchTraceabilityService).
type BatchSource interface {
	GetBatchStatistics(ctx context.Context) (*repository.BatchStatistics, error)
	GetExpiringSoonBatches(ctx context.Context, days int) ([]*entity.Batch, error)
}

// Gauges destino de los indicadores; puede ser nil.
type Gauges interface {
	ObserveStatistics(s *repository.BatchStatistics)
	SetExpiringSoon(n int)
}

// Config parámetros del monitor.
type Config struct {
	Schedule         string        // expresión cron de 5 campos o descriptor (@every 30m, @daily)
	ExpiryWindowDays int           // ventana de "próximo a vencer"
	Timeout          time.Duration // tiempo máximo por corrida
}

// Report resultado de una corrida.
type Report struct {
	RanAt        time.Time
	Statistics   *repository.BatchStatistics
	ExpiringSoon []*entity.Batch
}

// ExpiryMonitor corre RunOnce según la programación cron.
type ExpiryMonitor struct {
	src    BatchSource
	gauges Gauges
	log    zerolog.Logger
	cfg    Config
	cron   *cron.Cron
}

// NewExpiryMonitor valida la programación y registra la tarea; no arranca hasta Start.
func NewExpiryMonitor(src BatchSource, gauges Gauges, log zerolog.Logger, cfg Config) (*ExpiryMonitor, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.ExpiryWindowDays <= 0 {
		cfg.ExpiryWindowDays = entity.DefaultExpiringSoonDays
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	m := &ExpiryMonitor{
		src:    src,
		gauges: gauges,
		log:    log.With().Str("component", "expiry_monitor").Logger(),
		cfg:    cfg,
		cron:   cron.New(),
	}
	if _, err := m.cron.AddFunc(cfg.Schedule, m.tick); err != nil {
		return nil, fmt.Errorf("programación cron inválida %q: %w", cfg.Schedule, err)
	}
	return m, nil
}

// Start arranca el planificador.
func (m *ExpiryMonitor) Start() {
	m.cron.Start()
	m.log.Info().Str("schedule", m.cfg.Schedule).Int("window_days", m.cfg.ExpiryWindowDays).Msg("monitor de vencimientos iniciado")
}

// Stop detiene el planificador esperando la corrida en curso o hasta que ctx venza.
func (m *ExpiryMonitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	m.log.Info().Msg("monitor de vencimientos detenido")
}

func (m *ExpiryMonitor) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
	defer cancel()
	if _, err := m.RunOnce(ctx); err != nil {
		m.log.Error().Err(err).Msg("revisión de vencimientos fallida")
	}
}

// RunOnce calcula estadísticas y lotes próximos a vencer, actualiza los gauges y registra
// un aviso por lote.
func (m *ExpiryMonitor) RunOnce(ctx context.Context) (*Report, error) {
	stats, err := m.src.GetBatchStatistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("estadísticas: %w", err)
	}
	soon, err := m.src.GetExpiringSoonBatches(ctx, m.cfg.ExpiryWindowDays)
	if err != nil {
		return nil, fmt.Errorf("próximos a vencer: %w", err)
	}

	now := time.Now()
	for _, b := range soon {
		days, _ := b.DaysUntilExpiryAt(now)
		m.log.Warn().
			Str("batch_id", b.ID).
			Str("batch_number", b.BatchNumber).
			Int("days_until_expiry", days).
			Str("available", b.AvailableQuantity().String()).
			Msg("lote próximo a vencer")
	}
	if m.gauges != nil {
		m.gauges.ObserveStatistics(stats)
		m.gauges.SetExpiringSoon(len(soon))
	}
	m.log.Info().
		Int("total", stats.Total).
		Int("expired", stats.Expired).
		Int("expiring_soon", len(soon)).
		Msg("revisión de vencimientos completada")

	return &Report{RanAt: now, Statistics: stats, ExpiringSoon: soon}, nil
}
