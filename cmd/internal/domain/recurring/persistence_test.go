package recurring

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"drgroup/cmd/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore assigns sequential ids. failAt and blankAt select the write index
// that errors or returns an empty id; -1 disables them.
type memStore struct {
	records []*entity.Commitment
	failAt  int
	blankAt int
	calls   int
}

func newMemStore() *memStore {
	return &memStore{failAt: -1, blankAt: -1}
}

var errStoreDown = errors.New("store unavailable")

func (m *memStore) Create(ctx context.Context, c *entity.Commitment) (string, error) {
	idx := m.calls
	m.calls++

	if idx == m.failAt {
		return "", errStoreDown
	}
	if idx == m.blankAt {
		return "", nil
	}

	rec := c.Clone()
	rec.ID = fmt.Sprintf("doc-%d", idx+1)
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func fixedSeries(id string) Option {
	return WithSeriesIDs(func() entity.SeriesID { return entity.SeriesID(id) })
}

func generated(t *testing.T, engine *Engine, count int) []*entity.Commitment {
	t.Helper()
	seq, err := engine.Generate(arriendo("2025-01-01", entity.PeriodicityMonthly), count, false, date("2026-12-31"))
	require.NoError(t, err)
	require.Len(t, seq, count)
	return seq
}

func TestPersist_LinksSeriesToFirstRecord(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, fixedClock("2025-01-01"), fixedSeries("recurring_1_abc"))

	res, err := engine.Persist(context.Background(), generated(t, engine, 4))
	require.NoError(t, err)

	assert.Equal(t, OutcomePersisted, res.Outcome)
	assert.Equal(t, []string{"doc-1", "doc-2", "doc-3", "doc-4"}, res.IDs)
	assert.Equal(t, 4, res.Count())
	assert.Equal(t, 4, res.Intended)

	require.Len(t, store.records, 4)
	assert.Nil(t, store.records[0].ParentCommitmentID)
	assert.True(t, store.records[0].IsSeriesOrigin())
	for _, rec := range store.records {
		assert.Equal(t, entity.SeriesID("recurring_1_abc"), rec.RecurringGroup)
	}
	for _, rec := range store.records[1:] {
		require.NotNil(t, rec.ParentCommitmentID)
		assert.Equal(t, "doc-1", *rec.ParentCommitmentID)
	}

	assert.Equal(t, "doc-2", res.Records[1].ID)
}

func TestPersist_RejectsOrphansWithoutWriting(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, fixedClock("2025-01-01"))

	seq := generated(t, engine, 3)
	seq[2].CompanyName = "   "

	res, err := engine.Persist(context.Background(), seq)
	assert.ErrorIs(t, err, ErrOrphanRisk)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Zero(t, store.calls)
	assert.Empty(t, res.IDs)
}

func TestPersist_RejectsEmptyBatch(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)

	res, err := engine.Persist(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Zero(t, store.calls)
}

func TestPersist_StoreFailureIsPartial(t *testing.T) {
	store := newMemStore()
	store.failAt = 2
	engine := NewEngine(store, fixedClock("2025-01-01"), fixedSeries("recurring_2_def"))

	res, err := engine.Persist(context.Background(), generated(t, engine, 5))
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrPersistenceIntegrity)
	assert.ErrorIs(t, err, errStoreDown)

	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Written)
	assert.Equal(t, 5, perr.Intended)
	assert.Equal(t, entity.SeriesID("recurring_2_def"), perr.GroupID)

	assert.Equal(t, OutcomePartial, res.Outcome)
	assert.Equal(t, []string{"doc-1", "doc-2"}, res.IDs)
	assert.Len(t, store.records, 2)
}

func TestPersist_MissingIDIsIntegrityError(t *testing.T) {
	store := newMemStore()
	store.blankAt = 1
	engine := NewEngine(store, fixedClock("2025-01-01"))

	res, err := engine.Persist(context.Background(), generated(t, engine, 3))
	assert.ErrorIs(t, err, ErrPersistenceIntegrity)
	assert.Equal(t, OutcomePartial, res.Outcome)
	assert.Equal(t, []string{"doc-1"}, res.IDs)
}

func TestPersist_IgnoresCancellationOnceStarted(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, fixedClock("2025-01-01"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := engine.Persist(ctx, generated(t, engine, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomePersisted, res.Outcome)
	assert.Len(t, store.records, 3)
}

func TestPersist_DoesNotMutateInput(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, fixedClock("2025-01-01"))

	seq := generated(t, engine, 2)
	_, err := engine.Persist(context.Background(), seq)
	require.NoError(t, err)

	for _, c := range seq {
		assert.Empty(t, c.ID)
		assert.True(t, c.RecurringGroup.IsZero())
		assert.Nil(t, c.ParentCommitmentID)
	}
}

func TestPersist_UniqueCommitmentIsNotAnOrphan(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, fixedClock("2025-01-01"))

	seq, err := engine.Generate(arriendo("2025-06-01", entity.PeriodicityUnique), 1, false, time.Time{})
	require.NoError(t, err)

	res, err := engine.Persist(context.Background(), seq)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, res.IDs)
}

func TestPersistFollowing_ChainsToOrigin(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, fixedClock("2025-01-01"))

	origin := arriendo("2025-01-01", entity.PeriodicityMonthly)
	origin.ID = "origin-7"
	origin.IsRecurring = true
	origin.RecurringGroup = "recurring_7_aaa"

	seq, err := engine.Generate(origin, 3, true, date("2025-12-31"))
	require.NoError(t, err)

	res, err := engine.PersistFollowing(context.Background(), origin, seq)
	require.NoError(t, err)
	assert.Equal(t, entity.SeriesID("recurring_7_aaa"), res.GroupID)

	require.Len(t, store.records, 3)
	for _, rec := range store.records {
		assert.Equal(t, entity.SeriesID("recurring_7_aaa"), rec.RecurringGroup)
		require.NotNil(t, rec.ParentCommitmentID)
		assert.Equal(t, "origin-7", *rec.ParentCommitmentID)
	}
}

func TestPersistFollowing_RequiresStoredOrigin(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, fixedClock("2025-01-01"))

	seq := generated(t, engine, 2)
	res, err := engine.PersistFollowing(context.Background(), arriendo("2025-01-01", entity.PeriodicityMonthly), seq)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Zero(t, store.calls)
}
