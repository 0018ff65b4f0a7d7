package service

import (
	"log"
	"sync"
	"time"
)

// EditSweeper periodically drops abandoned edit buffers so a browser tab
// left open does not pin pending snapshots forever.
type EditSweeper struct {
	buffer   *EditBuffer
	interval time.Duration

	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewEditSweeper creates a sweeper for the given buffer.
func NewEditSweeper(buffer *EditBuffer, interval time.Duration) *EditSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &EditSweeper{
		buffer:   buffer,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop. Calling Start twice is a no-op.
func (s *EditSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				if removed := s.buffer.SweepExpired(); removed > 0 {
					log.Printf("[EditSweeper] Dropped %d expired edit buffer(s)", removed)
				}
			case <-s.stopCh:
				return
			}
		}
	}()

	log.Printf("[EditSweeper] Started (interval: %v)", s.interval)
}

// Stop halts the sweep loop. Safe to call multiple times.
func (s *EditSweeper) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
		log.Println("[EditSweeper] Stopped")
	})
}
