package utilities

import (
	"sync"

	"github.com/antonio-alexander/go-employee-facade/internal/data"
)

type counter struct {
	sync.RWMutex
	counts map[string]int
}

type Counter interface {
	Read(key string) (count int)
	ReadAll() *data.Counters
	Increment(key string) (count int)
	Reset()
}

func NewCounter(parameters ...any) Counter {
	return &counter{
		counts: make(map[string]int),
	}
}

func (c *counter) Read(key string) int {
	c.RLock()
	defer c.RUnlock()

	return c.counts[key]
}

func (c *counter) ReadAll() *data.Counters {
	c.RLock()
	defer c.RUnlock()

	counts := make(map[string]int, len(c.counts))
	for key, value := range c.counts {
		counts[key] = value
	}
	return &data.Counters{Counts: counts}
}

func (c *counter) Reset() {
	c.Lock()
	defer c.Unlock()

	c.counts = make(map[string]int)
}

func (c *counter) Increment(key string) int {
	c.Lock()
	defer c.Unlock()

	c.counts[key]++
	return c.counts[key]
}
