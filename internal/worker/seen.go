package worker

import (
	"container/list"
	"sync"
	"time"
)

// seenSet remembers recently mirrored event keys so a redelivered message
// does not produce a second audit row. Bounded by size and TTL.
type seenSet struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[string]*list.Element
	lru     *list.List
}

type seenItem struct {
	key       string
	expiresAt time.Time
}

func newSeenSet(maxSize int, ttl time.Duration, now func() time.Time) *seenSet {
	if now == nil {
		now = time.Now
	}
	return &seenSet{
		maxSize: maxSize,
		ttl:     ttl,
		now:     now,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Contains reports whether key was added and has not expired.
func (s *seenSet) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return false
	}
	if s.now().After(elem.Value.(*seenItem).expiresAt) {
		s.remove(elem)
		return false
	}
	s.lru.MoveToFront(elem)
	return true
}

// Add records key, evicting the least recently used key when full.
func (s *seenSet) Add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &seenItem{key: key, expiresAt: s.now().Add(s.ttl)}
	if elem, ok := s.items[key]; ok {
		elem.Value = item
		s.lru.MoveToFront(elem)
		return
	}

	s.items[key] = s.lru.PushFront(item)
	if s.lru.Len() > s.maxSize {
		s.remove(s.lru.Back())
	}
}

// CleanExpired drops expired keys and returns how many were removed.
func (s *seenSet) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for elem := s.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*seenItem).expiresAt) {
			s.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (s *seenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *seenSet) remove(elem *list.Element) {
	delete(s.items, elem.Value.(*seenItem).key)
	s.lru.Remove(elem)
}
