package logic

import (
	"context"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockConn fakes the ClickHouse connection for aggregation tests. Row
// values are driven per test through ScanFunc.
type MockConn struct {
	driver.Conn
	QueryRowCalls int
	ScanFunc      func(call int, dest ...interface{}) error
}

func (m *MockConn) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	m.QueryRowCalls++
	return &MockRow{call: m.QueryRowCalls, scan: m.ScanFunc}
}

type MockRow struct {
	driver.Row
	call int
	scan func(call int, dest ...interface{}) error
}

func (m *MockRow) Scan(dest ...interface{}) error {
	if m.scan != nil {
		return m.scan(m.call, dest...)
	}
	return nil
}

func (m *MockRow) Err() error {
	return nil
}

func assign(dest interface{}, val interface{}) {
	// Simple reflection to assign value to pointer
	v := reflect.ValueOf(dest).Elem()
	v.Set(reflect.ValueOf(val))
}
