// Package testdb provides in-memory stores for tests.
package testdb

import (
	"fmt"
	"sync/atomic"

	"github.com/notefold/notefold/internal/store"
)

var dbCounter atomic.Int64

// NewStoreInMemory creates an isolated in-memory SQLite store. Each call gets
// its own database, so tests never contend on files or shared state.
func NewStoreInMemory() (*store.SQLite, error) {
	name := fmt.Sprintf("testdb-%d", dbCounter.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	s, err := store.OpenDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return s, nil
}
