// Package memkv is an in-process key/value substrate with per-key expiry and
// sorted sets. It mirrors the subset of Redis semantics the poll stores rely
// on so the whole engine can run, and be tested, without a Redis server.
//
// Every operation runs inside Update, which holds a single mutex: a callback
// observes and mutates the store as one indivisible step.
package memkv

import (
	"sort"
	"sync"
	"time"
)

// Store is a mutex-guarded map of expiring values plus sorted sets.
type Store struct {
	mu     sync.Mutex
	values map[string]*entry
	zsets  map[string]map[string]float64
	now    func() time.Time
}

type entry struct {
	data      []byte
	counter   int64
	isCounter bool
	expiresAt time.Time // zero means no expiry
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		values: make(map[string]*entry),
		zsets:  make(map[string]map[string]float64),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update runs fn with exclusive access to the store.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s, now: s.now()})
}

// Tx is the view handed to Update callbacks. It must not escape the callback.
type Tx struct {
	s   *Store
	now time.Time
}

// Now is the instant the transaction started; all expiry checks use it.
func (tx *Tx) Now() time.Time {
	return tx.now
}

func (tx *Tx) live(key string) (*entry, bool) {
	e, ok := tx.s.values[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !tx.now.Before(e.expiresAt) {
		delete(tx.s.values, key)
		return nil, false
	}
	return e, true
}

func (tx *Tx) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return tx.now.Add(ttl)
}

// Get returns a copy of the value stored at key.
func (tx *Tx) Get(key string) ([]byte, bool) {
	e, ok := tx.live(key)
	if !ok || e.isCounter {
		return nil, false
	}
	return append([]byte(nil), e.data...), true
}

// Set stores value with the given ttl (zero or negative means no expiry).
func (tx *Tx) Set(key string, value []byte, ttl time.Duration) {
	tx.s.values[key] = &entry{data: append([]byte(nil), value...), expiresAt: tx.expiry(ttl)}
}

// SetKeepTTL replaces the value at key while preserving its expiry.
// Reports false when key does not exist.
func (tx *Tx) SetKeepTTL(key string, value []byte) bool {
	e, ok := tx.live(key)
	if !ok {
		return false
	}
	e.data = append([]byte(nil), value...)
	e.isCounter = false
	return true
}

// SetNX stores value only when key is absent. Reports whether it wrote.
func (tx *Tx) SetNX(key string, value []byte, ttl time.Duration) bool {
	if _, ok := tx.live(key); ok {
		return false
	}
	tx.Set(key, value, ttl)
	return true
}

// Exists reports whether key holds a live value.
func (tx *Tx) Exists(key string) bool {
	_, ok := tx.live(key)
	return ok
}

// TTL returns the remaining lifetime of key. ok is false when the key is
// missing; a live key without expiry returns (0, true).
func (tx *Tx) TTL(key string) (time.Duration, bool) {
	e, ok := tx.live(key)
	if !ok {
		return 0, false
	}
	if e.expiresAt.IsZero() {
		return 0, true
	}
	return e.expiresAt.Sub(tx.now), true
}

// Incr increments the counter at key, creating it at zero first.
func (tx *Tx) Incr(key string) int64 {
	e, ok := tx.live(key)
	if !ok || !e.isCounter {
		e = &entry{isCounter: true}
		tx.s.values[key] = e
	}
	e.counter++
	return e.counter
}

// Expire arms an expiry on an existing key.
func (tx *Tx) Expire(key string, ttl time.Duration) bool {
	e, ok := tx.live(key)
	if !ok {
		return false
	}
	e.expiresAt = tx.expiry(ttl)
	return true
}

// Del removes keys; missing keys are ignored.
func (tx *Tx) Del(keys ...string) {
	for _, k := range keys {
		delete(tx.s.values, k)
	}
}

// ZAdd sets member's score in the sorted set at key.
func (tx *Tx) ZAdd(key, member string, score float64) {
	z := tx.s.zsets[key]
	if z == nil {
		z = make(map[string]float64)
		tx.s.zsets[key] = z
	}
	z[member] = score
}

// ZRevRange returns members ranked by descending score, ties broken by
// descending member, between the inclusive ranks start and stop.
func (tx *Tx) ZRevRange(key string, start, stop int) []string {
	z := tx.s.zsets[key]
	if len(z) == 0 || start < 0 || stop < start {
		return nil
	}
	members := make([]string, 0, len(z))
	for m := range z {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		si, sj := z[members[i]], z[members[j]]
		if si != sj {
			return si > sj
		}
		return members[i] > members[j]
	})
	if start >= len(members) {
		return nil
	}
	if stop >= len(members) {
		stop = len(members) - 1
	}
	return append([]string(nil), members[start:stop+1]...)
}

// ZRem removes members from the sorted set at key.
func (tx *Tx) ZRem(key string, members ...string) int {
	z := tx.s.zsets[key]
	removed := 0
	for _, m := range members {
		if _, ok := z[m]; ok {
			delete(z, m)
			removed++
		}
	}
	if len(z) == 0 {
		delete(tx.s.zsets, key)
	}
	return removed
}

// ZRemRangeByScore removes members whose score is <= max.
func (tx *Tx) ZRemRangeByScore(key string, max float64) int {
	z := tx.s.zsets[key]
	removed := 0
	for m, score := range z {
		if score <= max {
			delete(z, m)
			removed++
		}
	}
	if len(z) == 0 {
		delete(tx.s.zsets, key)
	}
	return removed
}

// ZCard returns the size of the sorted set at key.
func (tx *Tx) ZCard(key string) int {
	return len(tx.s.zsets[key])
}
