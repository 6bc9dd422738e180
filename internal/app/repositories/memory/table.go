// Package memory implements the repositories on in-process maps. It backs the
// "memory" database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/greenleaf/internal/app/repositories"
)

// NewRepositories returns an empty in-memory store.
func NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		UserRepository:      NewUserRepository(),
		CommunityRepository: NewCommunityRepository(),
		PostRepository:      NewPostRepository(),
		ReplyRepository:     NewReplyRepository(),
		Close:               func(context.Context) error { return nil },
	}
}

var (
	_ repositories.UserRepository      = (*UserRepository)(nil)
	_ repositories.CommunityRepository = (*CommunityRepository)(nil)
	_ repositories.PostRepository      = (*PostRepository)(nil)
	_ repositories.ReplyRepository     = (*ReplyRepository)(nil)
)

type row[T any] struct {
	seq uint64
	val T
}

// table is a map of cloned values keyed by id. Values are cloned on the way in
// and on the way out so callers never share memory with the store.
type table[T any] struct {
	mu    sync.RWMutex
	seq   uint64
	rows  map[string]*row[T]
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	return &table[T]{rows: make(map[string]*row[T]), clone: clone}
}

func newID() string {
	return uuid.New().String()
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// insertLocked stores v under id. Caller holds mu.
func (t *table[T]) insertLocked(id string, v T) {
	t.seq++
	t.rows[id] = &row[T]{seq: t.seq, val: t.clone(v)}
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(r.val), true
}

// update applies fn to the stored value in place. It reports false if id is unknown.
func (t *table[T]) update(id string, fn func(T)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.rows[id]
	if !ok {
		return false
	}
	fn(r.val)
	return true
}

func (t *table[T]) delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// filter returns clones of the values accepted by keep, ordered by insertion.
func (t *table[T]) filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	matched := make([]*row[T], 0)
	for _, r := range t.rows {
		if keep(r.val) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	out := make([]T, 0, len(matched))
	for _, r := range matched {
		out = append(out, t.clone(r.val))
	}
	return out
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
