package sessions

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator issues exercise IDs derived from a high resolution timestamp.
// IDs are strictly increasing within a single generator.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	// ability to inject the clock (for unit testing)
	NowFunc func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		NowFunc: time.Now,
	}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.NowFunc().UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n

	return strconv.FormatInt(n, 10)
}
