package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/metrics"
)

func TestRecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordOperation("allocate", "ok")
	c.RecordOperation("allocate", "ok")
	c.RecordOperation("allocate", "conflict")

	n, err := testutil.GatherAndCount(reg, "batch_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por par operación/resultado")
}

func TestObserveStatistics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	stats := repository.NewBatchStatistics()
	stats.Total = 3
	stats.ByStatus[entity.BatchStatusActive] = 2
	stats.ByStatus[entity.BatchStatusBlocked] = 1
	stats.Expired = 1
	stats.TotalQuantity = decimal.NewFromInt(150)
	stats.AllocatedQuantity = decimal.NewFromInt(40)
	stats.AvailableQuantity = decimal.NewFromInt(110)

	c.ObserveStatistics(stats)
	c.SetExpiringSoon(4)

	n, err := testutil.GatherAndCount(reg, "batches_by_status", "batch_quantity", "batches_expiring_soon")
	require.NoError(t, err)
	assert.Equal(t, len(entity.BatchStatuses)+3+1, n)

	body := scrape(t, c)
	assert.Contains(t, body, `batches_by_status{status="ACTIVE"} 2`)
	assert.Contains(t, body, `batches_by_status{status="EXPIRED"} 1`)
	assert.Contains(t, body, `batch_quantity{kind="available"} 110`)
	assert.Contains(t, body, "batches_expiring_soon 4")
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	c.RecordOperation("create", "ok")
	c.SetExpiringSoon(2)

	body := scrape(t, c)
	assert.Contains(t, body, `batch_operations_total{operation="create",outcome="ok"} 1`)
	assert.Contains(t, body, "batches_expiring_soon 2")
}

func scrape(t *testing.T, c *metrics.Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}
