package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. A zero ttl keeps entries until invalidated.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memEntry
	gens    map[Tag]uint64
	subs    map[int]*memSub
	nextSub int
}

type memEntry struct {
	value   []byte
	tags    []Tag
	expires time.Time
}

type memSub struct {
	tags []Tag
	ch   chan Event
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]memEntry{},
		gens:    map[Tag]uint64{},
		subs:    map[int]*memSub{},
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) version(tags []Tag) Version {
	var v Version
	for _, t := range tags {
		v += Version(m.gens[t])
	}
	return v
}

func (m *Memory) Version(_ context.Context, tags ...Tag) (Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version(tags), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, v Version, tags ...Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.version(tags) != v {
		return nil
	}
	e := memEntry{value: value, tags: tags}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Invalidate(_ context.Context, tags ...Tag) error {
	if len(tags) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range tags {
		m.gens[t]++
	}
	for key, e := range m.entries {
		if intersects(e.tags, tags) {
			delete(m.entries, key)
		}
	}
	ev := Event{Tags: tags}
	for _, s := range m.subs {
		if intersects(s.tags, tags) {
			notify(s.ch, ev)
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, tags ...Tag) (<-chan Event, error) {
	s := &memSub{tags: tags, ch: make(chan Event, 1)}

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = s
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(s.ch)
		m.mu.Unlock()
	}()
	return s.ch, nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
