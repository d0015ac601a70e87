package cache

import (
	"sync"
	"time"
)

// sweeper periodically removes expired entries so they do not occupy
// capacity between accesses.
type sweeper[K comparable, V any] struct {
	cache    *cache[K, V]
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

func newSweeper[K comparable, V any](
	c *cache[K, V],
	interval time.Duration,
) *sweeper[K, V] {
	return &sweeper[K, V]{
		cache:    c,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (s *sweeper[K, V]) start() {
	go func() {
		ticker := s.cache.clock.Ticker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.cache.Cleanup()
			case <-s.done:
				// final pass, entries expired before stop still get reported
				s.cache.Cleanup()
				return
			}
		}
	}()
}

func (s *sweeper[K, V]) stop() {
	s.once.Do(func() {
		close(s.done)
	})
}
