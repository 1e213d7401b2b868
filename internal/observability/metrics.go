// Package observability counts statements and tracks transaction lifecycles.
package observability

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/tinywasm/fluentsql/internal/log"
)

// Transaction status values.
const (
	StatusActive     = "active"
	StatusCommitted  = "committed"
	StatusRolledBack = "rolled_back"
	StatusFailed     = "failed"
)

// TransactionMetrics describes one transaction.
type TransactionMetrics struct {
	TransactionID   string
	StartTime       time.Time
	Duration        time.Duration
	OperationsCount int64
	Status          string
	ErrorMessage    string
}

// Stats is a snapshot of the collector counters.
type Stats struct {
	Queries                int64
	Execs                  int64
	FailedStatements       int64
	ActiveTransactions     int64
	TotalTransactions      int64
	CommittedTransactions  int64
	RolledBackTransactions int64
	FailedTransactions     int64
	AverageDuration        time.Duration
}

// MetricsCollector handles statement and transaction metrics.
type MetricsCollector struct {
	queries                int64
	execs                  int64
	failedStatements       int64
	activeTransactions     int64
	totalTransactions      int64
	committedTransactions  int64
	rolledBackTransactions int64
	failedTransactions     int64
	totalDuration          int64 // nanoseconds
	mu                     sync.RWMutex
	transactionMetrics     map[string]*TransactionMetrics
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		transactionMetrics: make(map[string]*TransactionMetrics),
	}
}

// NewTransactionID returns a random transaction identifier.
func NewTransactionID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// RecordQuery counts a row-returning statement.
func (mc *MetricsCollector) RecordQuery(err error) {
	atomic.AddInt64(&mc.queries, 1)
	if err != nil {
		atomic.AddInt64(&mc.failedStatements, 1)
	}
}

// RecordExec counts a statement without rows.
func (mc *MetricsCollector) RecordExec(err error) {
	atomic.AddInt64(&mc.execs, 1)
	if err != nil {
		atomic.AddInt64(&mc.failedStatements, 1)
	}
}

// StartTransaction records the start of a new transaction and returns its id.
func (mc *MetricsCollector) StartTransaction() string {
	txID := NewTransactionID()
	atomic.AddInt64(&mc.activeTransactions, 1)
	atomic.AddInt64(&mc.totalTransactions, 1)

	mc.mu.Lock()
	mc.transactionMetrics[txID] = &TransactionMetrics{
		TransactionID: txID,
		StartTime:     time.Now(),
		Status:        StatusActive,
	}
	mc.mu.Unlock()

	log.Info("Transaction started: %s", txID)
	return txID
}

// IncrementOperations increments the operation count for a transaction
func (mc *MetricsCollector) IncrementOperations(txID string) {
	mc.mu.RLock()
	if metrics, exists := mc.transactionMetrics[txID]; exists {
		atomic.AddInt64(&metrics.OperationsCount, 1)
	}
	mc.mu.RUnlock()
}

// CommitTransaction records a successful transaction commit
func (mc *MetricsCollector) CommitTransaction(txID string) {
	atomic.AddInt64(&mc.committedTransactions, 1)
	if m := mc.finish(txID, StatusCommitted, nil); m != nil {
		log.Info("Transaction committed: %s (duration: %v, operations: %d)",
			txID, m.Duration, atomic.LoadInt64(&m.OperationsCount))
	}
}

// RollbackTransaction records a transaction rollback
func (mc *MetricsCollector) RollbackTransaction(txID string, err error) {
	atomic.AddInt64(&mc.rolledBackTransactions, 1)
	if m := mc.finish(txID, StatusRolledBack, err); m != nil {
		log.Warn("Transaction rolled back: %s (duration: %v, error: %v)", txID, m.Duration, err)
	}
}

// FailTransaction records a transaction whose commit failed
func (mc *MetricsCollector) FailTransaction(txID string, err error) {
	atomic.AddInt64(&mc.failedTransactions, 1)
	if m := mc.finish(txID, StatusFailed, err); m != nil {
		log.Error("Transaction failed: %s (duration: %v, error: %v)", txID, m.Duration, err)
	}
}

func (mc *MetricsCollector) finish(txID, status string, err error) *TransactionMetrics {
	atomic.AddInt64(&mc.activeTransactions, -1)

	mc.mu.Lock()
	defer mc.mu.Unlock()
	metrics, exists := mc.transactionMetrics[txID]
	if !exists {
		return nil
	}
	metrics.Status = status
	metrics.Duration = time.Since(metrics.StartTime)
	if err != nil {
		metrics.ErrorMessage = err.Error()
	}
	atomic.AddInt64(&mc.totalDuration, int64(metrics.Duration))
	return metrics
}

// GetTransactionMetrics returns a copy of the metrics of txID, or nil.
func (mc *MetricsCollector) GetTransactionMetrics(txID string) *TransactionMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if metrics, exists := mc.transactionMetrics[txID]; exists {
		c := *metrics
		c.OperationsCount = atomic.LoadInt64(&metrics.OperationsCount)
		return &c
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (mc *MetricsCollector) Stats() Stats {
	s := Stats{
		Queries:                atomic.LoadInt64(&mc.queries),
		Execs:                  atomic.LoadInt64(&mc.execs),
		FailedStatements:       atomic.LoadInt64(&mc.failedStatements),
		ActiveTransactions:     atomic.LoadInt64(&mc.activeTransactions),
		TotalTransactions:      atomic.LoadInt64(&mc.totalTransactions),
		CommittedTransactions:  atomic.LoadInt64(&mc.committedTransactions),
		RolledBackTransactions: atomic.LoadInt64(&mc.rolledBackTransactions),
		FailedTransactions:     atomic.LoadInt64(&mc.failedTransactions),
	}
	if completed := s.CommittedTransactions + s.RolledBackTransactions + s.FailedTransactions; completed > 0 {
		s.AverageDuration = time.Duration(atomic.LoadInt64(&mc.totalDuration) / completed)
	}
	return s
}

// CleanupCompletedTransactions removes metrics for completed transactions older than the specified duration
func (mc *MetricsCollector) CleanupCompletedTransactions(olderThan time.Duration) {
	cutoff := time.Now().Add(-olderThan)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	for txID, metrics := range mc.transactionMetrics {
		if metrics.Status != StatusActive && metrics.StartTime.Before(cutoff) {
			delete(mc.transactionMetrics, txID)
		}
	}
}
