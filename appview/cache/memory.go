package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Memory is a process-local Store.
type Memory struct {
	c *ristretto.Cache
}

func NewMemory(maxCost int64) (*Memory, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:            1e6,
		MaxCost:                maxCost,
		BufferItems:            64,
		TtlTickerDurationInSec: 30,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{c: c}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

// Set is asynchronous; use Wait when a following Get must observe it.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.c.SetWithTTL(key, val, int64(len(val)), ttl)
	return nil
}

func (m *Memory) Wait() {
	m.c.Wait()
}

func (m *Memory) Close() error {
	m.c.Close()
	return nil
}

var _ Store = (*Memory)(nil)
