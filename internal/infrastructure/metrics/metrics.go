// Package metrics expone indicadores Prometheus de los lotes: conteo de operaciones
// por resultado y gauges de inventario que actualiza el monitor de vencimientos.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
)

// Collector agrupa los indicadores registrados.
type Collector struct {
	operations   *prometheus.CounterVec
	byStatus     *prometheus.GaugeVec
	quantity     *prometheus.GaugeVec
	expiringSoon prometheus.Gauge
	gatherer     prometheus.Gatherer
}

// NewCollector crea los indicadores y los registra en reg.
// Con un *prometheus.Registry también sirve como Gatherer del handler.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_operations_total",
			Help: "Operaciones sobre lotes por tipo y resultado",
		}, []string{"operation", "outcome"}),
		byStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "batches_by_status",
			Help: "Lotes por estado (EXPIRED es derivado)",
		}, []string{"status"}),
		quantity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "batch_quantity",
			Help: "Cantidades agregadas de todos los lotes (total, allocated, available)",
		}, []string{"kind"}),
		expiringSoon: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "batches_expiring_soon",
			Help: "Lotes que vencen dentro de la ventana del monitor",
		}),
		gatherer: prometheus.DefaultGatherer,
	}
	reg.MustRegister(c.operations, c.byStatus, c.quantity, c.expiringSoon)
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

// RecordOperation incrementa el contador de la operación.
func (c *Collector) RecordOperation(operation, outcome string) {
	c.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveStatistics actualiza los gauges de estado y cantidades.
func (c *Collector) ObserveStatistics(s *repository.BatchStatistics) {
	for _, st := range entity.BatchStatuses {
		c.byStatus.WithLabelValues(string(st)).Set(float64(s.ByStatus[st]))
	}
	// EXPIRED nunca se persiste: se publica el conteo derivado.
	c.byStatus.WithLabelValues(string(entity.BatchStatusExpired)).Set(float64(s.Expired))
	c.quantity.WithLabelValues("total").Set(s.TotalQuantity.InexactFloat64())
	c.quantity.WithLabelValues("allocated").Set(s.AllocatedQuantity.InexactFloat64())
	c.quantity.WithLabelValues("available").Set(s.AvailableQuantity.InexactFloat64())
}

// SetExpiringSoon fija el gauge de lotes próximos a vencer.
func (c *Collector) SetExpiringSoon(n int) {
	c.expiringSoon.Set(float64(n))
}

// Handler devuelve el handler HTTP de exposición.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
