package ratelimit

import (
	"context"
	"sync"
	"time"
)

type hitLog struct {
	times  []time.Time
	window time.Duration
}

// MemoryStore keeps a log of hit times per key. It only limits a single
// process. Keys idle for longer than their window are swept on later calls.
type MemoryStore struct {
	mu        sync.Mutex
	hits      map[string]*hitLog
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string]*hitLog)}
}

func (s *MemoryStore) Take(_ context.Context, key string, now time.Time, window time.Duration, limit int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(now, window)

	cutoff := now.Add(-window)
	entry := s.hits[key]
	if entry == nil {
		entry = &hitLog{}
	}
	entry.window = window

	log := entry.times
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	log = log[i:]

	allowed := len(log) < limit
	if allowed {
		log = append(log, now)
	}

	if len(log) == 0 {
		delete(s.hits, key)
		return Result{Allowed: allowed, ResetAt: now.Add(window)}, nil
	}
	entry.times = log
	s.hits[key] = entry

	return Result{Allowed: allowed, Count: len(log), ResetAt: log[0].Add(window)}, nil
}

// sweep drops every key whose newest hit has left its window. It runs at
// most once per window.
func (s *MemoryStore) sweep(now time.Time, every time.Duration) {
	if now.Sub(s.lastSweep) < every {
		return
	}
	s.lastSweep = now

	for key, entry := range s.hits {
		if n := len(entry.times); n == 0 || !entry.times[n-1].Add(entry.window).After(now) {
			delete(s.hits, key)
		}
	}
}

// Len is the number of keys currently tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}
