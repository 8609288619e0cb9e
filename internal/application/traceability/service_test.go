package traceability_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/memory"
)

const actor = "user-1"

type recordedOp struct{ op, outcome string }

type fakeMetrics struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (m *fakeMetrics) RecordOperation(op, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, recordedOp{op, outcome})
}

func (m *fakeMetrics) last() recordedOp {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops[len(m.ops)-1]
}

func newService(t *testing.T) (*traceability.BatchTraceabilityService, *memory.BatchRepo, *fakeMetrics) {
	t.Helper()
	repo := memory.NewBatchRepository()
	m := &fakeMetrics{}
	return traceability.NewBatchTraceabilityService(repo, zerolog.Nop(), m), repo, m
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func create(t *testing.T, svc *traceability.BatchTraceabilityService, number, parentID string) *entity.Batch {
	t.Helper()
	b, err := svc.CreateBatch(context.Background(), traceability.CreateBatchInput{
		BatchNumber:     number,
		BatchType:       entity.BatchTypeSeed,
		InitialQuantity: qty(100),
		ParentBatchID:   parentID,
	}, actor)
	require.NoError(t, err)
	return b
}

func assertLedger(t *testing.T, b *entity.Batch) {
	t.Helper()
	assert.False(t, b.AllocatedQuantity.IsNegative())
	assert.True(t, b.AllocatedQuantity.LessThanOrEqual(b.RemainingQuantity))
	assert.True(t, b.RemainingQuantity.LessThanOrEqual(b.InitialQuantity))
	assert.True(t, b.AvailableQuantity().Equal(b.RemainingQuantity.Sub(b.AllocatedQuantity)))
	assert.False(t, b.AvailableQuantity().IsNegative())
}

// ── Creación ─────────────────────────────────────────────────────────────────

func TestCreateBatch_ParentMustExistAndBeActive(t *testing.T) {
	ctx := context.Background()
	svc, repo, m := newService(t)

	_, err := svc.CreateBatch(ctx, traceability.CreateBatchInput{
		BatchNumber: "CROP-1", BatchType: entity.BatchTypeCrop, InitialQuantity: qty(10), ParentBatchID: "missing",
	}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, traceability.OutcomeInvalid, m.last().outcome)

	parent := create(t, svc, "SEED-1", "")
	_, err = svc.PutBatchOnHold(ctx, parent.ID, "control", actor)
	require.NoError(t, err)

	_, err = svc.CreateBatch(ctx, traceability.CreateBatchInput{
		BatchNumber: "CROP-1", BatchType: entity.BatchTypeCrop, InitialQuantity: qty(10), ParentBatchID: parent.ID,
	}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, repo.Len())
}

func TestCreateBatch_DuplicateNumberIsConflict(t *testing.T) {
	ctx := context.Background()
	svc, _, m := newService(t)
	original := create(t, svc, "SEED-1", "")

	_, err := svc.CreateBatch(ctx, traceability.CreateBatchInput{
		BatchNumber: "SEED-1", BatchType: entity.BatchTypeSeed, InitialQuantity: qty(5),
	}, actor)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, traceability.OutcomeConflict, m.last().outcome)

	got, err := svc.GetBatch(ctx, original.ID)
	require.NoError(t, err)
	assert.True(t, got.InitialQuantity.Equal(qty(100)))
	assert.Equal(t, int64(1), got.Version)
}

func TestCreateBatch_InvalidInput(t *testing.T) {
	svc, repo, _ := newService(t)
	_, err := svc.CreateBatch(context.Background(), traceability.CreateBatchInput{
		BatchNumber: "SEED-1", BatchType: entity.BatchTypeSeed, InitialQuantity: qty(0),
	}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, repo.Len())
}

// ── Libro de cantidades ──────────────────────────────────────────────────────

func TestLedger_AllocateConsumeUntilConsumed(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	b := create(t, svc, "SEED-1", "")

	b, err := svc.AllocateBatch(ctx, b.ID, qty(40), actor)
	require.NoError(t, err)
	assert.True(t, b.AvailableQuantity().Equal(qty(60)))
	assertLedger(t, b)

	b, err = svc.ConsumeBatch(ctx, b.ID, qty(40), actor)
	require.NoError(t, err)
	assert.True(t, b.RemainingQuantity.Equal(qty(60)))
	assert.True(t, b.AllocatedQuantity.IsZero())
	assert.Equal(t, entity.BatchStatusActive, b.Status)
	assertLedger(t, b)

	_, err = svc.AllocateBatch(ctx, b.ID, qty(60), actor)
	require.NoError(t, err)
	b, err = svc.ConsumeBatch(ctx, b.ID, qty(60), actor)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusConsumed, b.Status)
	assert.True(t, b.RemainingQuantity.IsZero())
	assertLedger(t, b)

	_, err = svc.AllocateBatch(ctx, b.ID, qty(1), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllocate_FailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	b := create(t, svc, "SEED-1", "")

	_, err := svc.AllocateBatch(ctx, b.ID, qty(101), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := svc.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.AllocatedQuantity.IsZero())
	assert.Equal(t, int64(1), got.Version)
}

func TestAllocate_ExpiredBatchFails(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	harvest := time.Now().Add(-60 * 24 * time.Hour)
	expiry := time.Now().Add(-24 * time.Hour)
	b, err := svc.CreateBatch(ctx, traceability.CreateBatchInput{
		BatchNumber: "CROP-OLD", BatchType: entity.BatchTypeCrop, InitialQuantity: qty(10),
		HarvestDate: &harvest, ExpiryDate: &expiry,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusActive, b.Status)

	_, err = svc.AllocateBatch(ctx, b.ID, qty(1), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	expired, err := svc.GetBatchesByStatus(ctx, entity.BatchStatusExpired)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, b.ID, expired[0].ID)
}

func TestDeallocate_NoChangeSkipsWrite(t *testing.T) {
	ctx := context.Background()
	svc, _, m := newService(t)
	b := create(t, svc, "SEED-1", "")

	got, err := svc.DeallocateBatch(ctx, b.ID, qty(5), actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, recordedOp{traceability.OpDeallocate, traceability.OutcomeNoop}, m.last())

	_, err = svc.AllocateBatch(ctx, b.ID, qty(10), actor)
	require.NoError(t, err)
	got, err = svc.DeallocateBatch(ctx, b.ID, qty(50), actor)
	require.NoError(t, err)
	assert.True(t, got.AllocatedQuantity.IsZero())
	assert.Equal(t, int64(3), got.Version)
}

// ── Estados ──────────────────────────────────────────────────────────────────

func TestHoldReleaseBlock(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	b := create(t, svc, "SEED-1", "")

	b, err := svc.PutBatchOnHold(ctx, b.ID, "pending QA", actor)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusOnHold, b.Status)
	assert.Contains(t, b.Notes, "[HOLD] pending QA")

	_, err = svc.AllocateBatch(ctx, b.ID, qty(1), actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	b, err = svc.ReleaseBatchHold(ctx, b.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusActive, b.Status)
	assert.Equal(t, "user-2", b.UpdatedBy)

	version := b.Version
	b, err = svc.ReleaseBatchHold(ctx, b.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, version, b.Version)

	b, err = svc.BlockBatch(ctx, b.ID, "contaminación", actor)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusBlocked, b.Status)
	assert.Contains(t, b.Notes, "[BLOCKED] contaminación")

	_, err = svc.UpdateBatch(ctx, b.ID, entity.BatchUpdate{Notes: ptr("x")}, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateBatch_RenumberChecksUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	a := create(t, svc, "SEED-A", "")
	create(t, svc, "SEED-B", "")

	_, err := svc.UpdateBatch(ctx, a.ID, entity.BatchUpdate{BatchNumber: ptr("SEED-B")}, actor)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := svc.UpdateBatch(ctx, a.ID, entity.BatchUpdate{BatchNumber: ptr("SEED-A2"), OriginCountry: ptr("CO")}, actor)
	require.NoError(t, err)
	assert.Equal(t, "SEED-A2", got.BatchNumber)
	assert.Equal(t, "CO", got.OriginCountry)
	assert.Equal(t, int64(2), got.Version)
}

func TestMutations_UnknownBatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, m := newService(t)

	_, err := svc.AllocateBatch(ctx, "missing", qty(1), actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, traceability.OutcomeNotFound, m.last().outcome)

	assert.ErrorIs(t, svc.DeleteBatch(ctx, "missing"), domain.ErrNotFound)
	_, err = svc.GetChildBatches(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetTraceabilityTree(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetTraceabilityChain(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// staleRepo simula una escritura concurrente entre la lectura y la escritura del servicio.
type staleRepo struct {
	*memory.BatchRepo
	once sync.Once
}

func (r *staleRepo) Update(ctx context.Context, b *entity.Batch, expected int64) error {
	r.once.Do(func() {
		other, _ := r.BatchRepo.FindByID(ctx, b.ID)
		_ = other.Allocate(decimal.NewFromInt(1), "otro")
		_ = r.BatchRepo.Update(ctx, other, expected)
	})
	return r.BatchRepo.Update(ctx, b, expected)
}

func TestMutations_StaleWriteIsRejected(t *testing.T) {
	ctx := context.Background()
	repo := &staleRepo{BatchRepo: memory.NewBatchRepository()}
	svc := traceability.NewBatchTraceabilityService(repo, zerolog.Nop(), nil)
	b := create(t, svc, "SEED-1", "")

	_, err := svc.AllocateBatch(ctx, b.ID, qty(10), actor)
	assert.ErrorIs(t, err, domain.ErrStaleVersion)

	got, err := svc.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.AllocatedQuantity.Equal(qty(1)), "solo la escritura concurrente debe aplicarse")

	// Reintento sobre la versión actual.
	got, err = svc.AllocateBatch(ctx, b.ID, qty(10), actor)
	require.NoError(t, err)
	assert.True(t, got.AllocatedQuantity.Equal(qty(11)))
}

// ── Eliminación ──────────────────────────────────────────────────────────────

func TestDeleteBatch(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)
	parent := create(t, svc, "SEED-1", "")
	child := create(t, svc, "SEED-1-A", parent.ID)

	err := svc.DeleteBatch(ctx, parent.ID)
	assert.ErrorIs(t, err, domain.ErrHasChildren)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, svc.DeleteBatch(ctx, child.ID))
	children, err := svc.GetChildBatches(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	byNumber, err := repo.FindByBatchNumber(ctx, "SEED-1-A")
	require.NoError(t, err)
	assert.Nil(t, byNumber)
	byStatus, err := svc.GetBatchesByStatus(ctx, entity.BatchStatusActive)
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	require.NoError(t, svc.DeleteBatch(ctx, parent.ID))
	assert.Equal(t, 0, repo.Len())
}

// ── Trazabilidad ─────────────────────────────────────────────────────────────

func TestTraceability_LinearChain(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	a := create(t, svc, "A", "")
	b := create(t, svc, "B", a.ID)
	c := create(t, svc, "C", b.ID)

	tree, err := svc.GetTraceabilityTree(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Depth)
	assert.Equal(t, 3, tree.TotalBatches)
	assert.Equal(t, []string{"A", "B", "C"}, numbers(tree.Chain))
	require.Len(t, tree.Root.Children, 1)
	require.Len(t, tree.Root.Children[0].Children, 1)
	assert.Nil(t, tree.Root.Children[0].Children[0].Children)

	chain, err := svc.GetTraceabilityChain(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, numbers(chain))
}

func TestTraceability_BranchingTreeIsPreOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	root := create(t, svc, "R", "")
	x := create(t, svc, "X", root.ID)
	create(t, svc, "Y", root.ID)
	create(t, svc, "X1", x.ID)

	tree, err := svc.GetTraceabilityTree(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"R", "X", "X1", "Y"}, numbers(tree.Chain))
	assert.Equal(t, 2, tree.Depth)
	assert.Equal(t, 4, tree.TotalBatches)

	leaf, err := svc.GetTraceabilityTree(ctx, tree.Chain[3].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, leaf.Depth)
	assert.Equal(t, 1, leaf.TotalBatches)
}

func TestTraceability_CycleIsReportedAsCorruption(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewBatchRepository()
	svc := traceability.NewBatchTraceabilityService(repo, zerolog.Nop(), nil)

	a, err := entity.NewBatch("A", entity.BatchTypeSeed, qty(1), "", actor, entity.BatchOptions{})
	require.NoError(t, err)
	b, err := entity.NewBatch("B", entity.BatchTypeSeed, qty(1), "", actor, entity.BatchOptions{ParentBatchID: a.ID})
	require.NoError(t, err)
	a.ParentBatchID = b.ID
	require.NoError(t, repo.Restore([]*entity.Batch{a, b}))

	_, err = svc.GetTraceabilityChain(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrLineageCorrupted)
	_, err = svc.GetTraceabilityTree(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrLineageCorrupted)
}

func TestTraceability_DanglingParentEndsChain(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewBatchRepository()
	svc := traceability.NewBatchTraceabilityService(repo, zerolog.Nop(), nil)

	orphan, err := entity.NewBatch("ORPHAN", entity.BatchTypeProduct, qty(1), "", actor, entity.BatchOptions{ParentBatchID: "gone"})
	require.NoError(t, err)
	require.NoError(t, repo.Restore([]*entity.Batch{orphan}))

	chain, err := svc.GetTraceabilityChain(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ORPHAN"}, numbers(chain))
}

// ── Consultas ────────────────────────────────────────────────────────────────

func TestQueries(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	soon := time.Now().Add(5 * 24 * time.Hour)
	_, err := svc.CreateBatch(ctx, traceability.CreateBatchInput{
		BatchNumber: "FEED-1", BatchType: entity.BatchTypeFeed, InitialQuantity: qty(10),
		ProductID: "prod-1", ExpiryDate: &soon, Notes: "Maíz amarillo",
	}, actor)
	require.NoError(t, err)
	create(t, svc, "SEED-1", "")

	byProduct, err := svc.GetBatchesByProduct(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"FEED-1"}, numbers(byProduct))

	expiring, err := svc.GetExpiringSoonBatches(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"FEED-1"}, numbers(expiring))

	expired, err := svc.GetExpiredBatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	page, err := svc.ListBatches(ctx, repository.BatchFilter{Search: "maiz"}, repository.BatchSort{}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = svc.ListBatches(ctx, repository.BatchFilter{Status: "NOPE"}, repository.BatchSort{}, repository.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.GetBatchesByStatus(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stats, err := svc.GetBatchStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ExpiringSoon)
	assert.True(t, stats.TotalQuantity.Equal(qty(110)))
}

func ptr[T any](v T) *T { return &v }

func numbers(bs []*entity.Batch) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.BatchNumber
	}
	return out
}
