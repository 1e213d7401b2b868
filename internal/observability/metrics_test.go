package observability

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywasm/fluentsql/internal/log"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	m.Run()
}

func TestStatementCounters(t *testing.T) {
	mc := NewMetricsCollector()
	mc.RecordQuery(nil)
	mc.RecordQuery(errors.New("boom"))
	mc.RecordExec(nil)

	s := mc.Stats()
	assert.Equal(t, int64(2), s.Queries)
	assert.Equal(t, int64(1), s.Execs)
	assert.Equal(t, int64(1), s.FailedStatements)
}

func TestTransactionLifecycle(t *testing.T) {
	mc := NewMetricsCollector()

	committed := mc.StartTransaction()
	_, err := uuid.FromString(committed)
	require.NoError(t, err)

	mc.IncrementOperations(committed)
	mc.IncrementOperations(committed)
	mc.CommitTransaction(committed)

	rolled := mc.StartTransaction()
	mc.RollbackTransaction(rolled, errors.New("cancelled"))

	failed := mc.StartTransaction()
	mc.FailTransaction(failed, errors.New("commit failed"))

	m := mc.GetTransactionMetrics(committed)
	require.NotNil(t, m)
	assert.Equal(t, StatusCommitted, m.Status)
	assert.Equal(t, int64(2), m.OperationsCount)

	m = mc.GetTransactionMetrics(rolled)
	require.NotNil(t, m)
	assert.Equal(t, StatusRolledBack, m.Status)
	assert.Equal(t, "cancelled", m.ErrorMessage)

	s := mc.Stats()
	assert.Equal(t, int64(0), s.ActiveTransactions)
	assert.Equal(t, int64(3), s.TotalTransactions)
	assert.Equal(t, int64(1), s.CommittedTransactions)
	assert.Equal(t, int64(1), s.RolledBackTransactions)
	assert.Equal(t, int64(1), s.FailedTransactions)

	assert.Nil(t, mc.GetTransactionMetrics("unknown"))
}

func TestCleanupCompletedTransactions(t *testing.T) {
	mc := NewMetricsCollector()
	done := mc.StartTransaction()
	mc.CommitTransaction(done)
	active := mc.StartTransaction()

	mc.CleanupCompletedTransactions(-time.Second)

	assert.Nil(t, mc.GetTransactionMetrics(done))
	assert.NotNil(t, mc.GetTransactionMetrics(active))
}

func TestConcurrentRecording(t *testing.T) {
	mc := NewMetricsCollector()
	txID := mc.StartTransaction()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mc.RecordExec(nil)
			mc.IncrementOperations(txID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), mc.Stats().Execs)
	assert.Equal(t, int64(50), mc.GetTransactionMetrics(txID).OperationsCount)
}
