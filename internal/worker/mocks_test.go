package worker

import (
	"context"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockCHConn records prepared batches for assertions
type MockCHConn struct {
	driver.Conn
	mu      sync.Mutex
	Batches []*MockBatch
}

func (m *MockCHConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &MockBatch{}
	m.Batches = append(m.Batches, b)
	return b, nil
}

func (m *MockCHConn) SentRows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, b := range m.Batches {
		if b.Sent {
			total += len(b.rows)
		}
	}
	return total
}

// MockBatch collects appended rows
type MockBatch struct {
	driver.Batch
	mu   sync.Mutex
	rows [][]interface{}
	Sent bool
}

func (b *MockBatch) Append(v ...interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	row := make([]interface{}, len(v))
	copy(row, v)
	b.rows = append(b.rows, row)
	return nil
}

func (b *MockBatch) Send() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = true
	return nil
}

// MockInvalidator records which teams had forecasts evicted
type MockInvalidator struct {
	mu    sync.Mutex
	Teams []string
}

func (m *MockInvalidator) InvalidateTeamForecasts(ctx context.Context, teamIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Teams = append(m.Teams, teamIDs...)
}

func (m *MockInvalidator) Invalidated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Teams))
	copy(out, m.Teams)
	return out
}
