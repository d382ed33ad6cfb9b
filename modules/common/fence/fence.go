package fence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "fence:view:"
	maxViewIDSize = 128
)

var ErrInvalidView = errors.New("invalid view id")

// Sequencer hands out a strictly increasing number per view.
// The newest number issued for a view is the only one allowed to deliver.
type Sequencer interface {
	Next(ctx context.Context, view string) (int64, error)
	Current(ctx context.Context, view string) (int64, error)
}

// Ticket - 한 요청이 받은 순번
type Ticket struct {
	View     string
	Sequence int64
	seq      Sequencer
}

// Begin - 새 순번 발급. 이후 같은 view에서 발급된 순번이 있으면 이 요청은 superseded.
func Begin(ctx context.Context, seq Sequencer, view string) (*Ticket, error) {
	if err := ValidateView(view); err != nil {
		return nil, err
	}
	n, err := seq.Next(ctx, view)
	if err != nil {
		return nil, fmt.Errorf("fence next: %w", err)
	}
	return &Ticket{View: view, Sequence: n, seq: seq}, nil
}

// Superseded - 더 최신 요청이 있으면 true
func (t *Ticket) Superseded(ctx context.Context) (bool, error) {
	cur, err := t.seq.Current(ctx, t.View)
	if err != nil {
		return false, fmt.Errorf("fence current: %w", err)
	}
	return cur > t.Sequence, nil
}

func ValidateView(view string) error {
	if view == "" {
		return fmt.Errorf("%w: empty", ErrInvalidView)
	}
	if len(view) > maxViewIDSize {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidView, maxViewIDSize)
	}
	return nil
}

// ==================== Redis ====================

// RedisSequencer - INCR 기반 순번 (여러 인스턴스 공유)
type RedisSequencer struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSequencer(rdb *redis.Client, ttl time.Duration) *RedisSequencer {
	return &RedisSequencer{rdb: rdb, ttl: ttl}
}

func (s *RedisSequencer) Next(ctx context.Context, view string) (int64, error) {
	key := keyPrefix + view
	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisSequencer) Current(ctx context.Context, view string) (int64, error) {
	n, err := s.rdb.Get(ctx, keyPrefix+view).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// ==================== Memory ====================

type memoryEntry struct {
	seq       int64
	touchedAt time.Time
}

// MemorySequencer - Redis 없을 때 단일 인스턴스용
type MemorySequencer struct {
	mu      sync.Mutex
	views   map[string]*memoryEntry
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewMemorySequencer(ttl time.Duration) *MemorySequencer {
	return &MemorySequencer{
		views:   make(map[string]*memoryEntry),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (s *MemorySequencer) Next(_ context.Context, view string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	s.pruneLocked(now)

	e := s.views[view]
	if e == nil {
		e = &memoryEntry{}
		s.views[view] = e
	}
	e.seq++
	e.touchedAt = now
	return e.seq, nil
}

func (s *MemorySequencer) Current(_ context.Context, view string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.views[view]; e != nil {
		return e.seq, nil
	}
	return 0, nil
}

// Len - 추적 중인 view 수
func (s *MemorySequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

func (s *MemorySequencer) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for view, e := range s.views {
		if now.Sub(e.touchedAt) > s.ttl {
			delete(s.views, view)
		}
	}
}
