package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

// HistoryLimit caps the recent-profile list per user.
const HistoryLimit = 100

type HistoryItem struct {
	ID        int64         `json:"id"`
	Kind      profiles.Kind `json:"kind"`
	Name      string        `json:"name"`
	SubName   string        `json:"sub_name"`
	VisitedAt time.Time     `json:"visited_at"`
}

func (h HistoryItem) member() string { return profiles.MutexKey(h.ID, h.Kind) }

// HistoryStore keeps the most recent visit per profile, newest first.
type HistoryStore interface {
	Add(ctx context.Context, userID string, item HistoryItem) error
	List(ctx context.Context, userID string, limit int) ([]HistoryItem, error)
	Clear(ctx context.Context, userID string) error
}

type redisHistory struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
	limit  int
}

func NewRedisHistory(log *logger.Logger, rdb goredis.UniversalClient, keyPrefix string) HistoryStore {
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = "execudex"
	}
	return &redisHistory{
		log:    log.With("service", "RedisHistory"),
		rdb:    rdb,
		prefix: keyPrefix,
		limit:  HistoryLimit,
	}
}

func (h *redisHistory) keys(userID string) (string, string) {
	base := fmt.Sprintf("%s:history:%s", h.prefix, userID)
	return base, base + ":items"
}

func (h *redisHistory) Add(ctx context.Context, userID string, item HistoryItem) error {
	if userID == "" {
		return fmt.Errorf("user id required")
	}
	if item.VisitedAt.IsZero() {
		item.VisitedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	order, items := h.keys(userID)
	member := item.member()

	_, err = h.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.ZAdd(ctx, order, goredis.Z{Score: float64(item.VisitedAt.UnixMilli()), Member: member})
		p.HSet(ctx, items, member, raw)
		return nil
	})
	if err != nil {
		return fmt.Errorf("history add: %w", err)
	}

	stale, err := h.rdb.ZRange(ctx, order, 0, int64(-(h.limit + 1))).Result()
	if err != nil {
		return fmt.Errorf("history trim: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	fields := make([]interface{}, 0, len(stale))
	for _, m := range stale {
		fields = append(fields, m)
	}
	_, err = h.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.ZRem(ctx, order, fields...)
		p.HDel(ctx, items, stale...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("history trim: %w", err)
	}
	return nil
}

func (h *redisHistory) List(ctx context.Context, userID string, limit int) ([]HistoryItem, error) {
	if limit <= 0 || limit > h.limit {
		limit = h.limit
	}
	order, items := h.keys(userID)
	members, err := h.rdb.ZRevRange(ctx, order, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}
	if len(members) == 0 {
		return []HistoryItem{}, nil
	}
	vals, err := h.rdb.HMGet(ctx, items, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}
	out := make([]HistoryItem, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var item HistoryItem
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			h.log.Warn("Dropping unreadable history entry", "member", members[i], "error", err)
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (h *redisHistory) Clear(ctx context.Context, userID string) error {
	order, items := h.keys(userID)
	return h.rdb.Del(ctx, order, items).Err()
}

// memoryHistory is used when no Redis address is configured.
type memoryHistory struct {
	mu    sync.Mutex
	users map[string]map[string]HistoryItem
	limit int
}

func NewMemoryHistory() HistoryStore {
	return &memoryHistory{users: map[string]map[string]HistoryItem{}, limit: HistoryLimit}
}

func (h *memoryHistory) Add(_ context.Context, userID string, item HistoryItem) error {
	if userID == "" {
		return fmt.Errorf("user id required")
	}
	if item.VisitedAt.IsZero() {
		item.VisitedAt = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	byKey := h.users[userID]
	if byKey == nil {
		byKey = map[string]HistoryItem{}
		h.users[userID] = byKey
	}
	byKey[item.member()] = item
	if len(byKey) > h.limit {
		sorted := sortedHistory(byKey)
		for _, old := range sorted[h.limit:] {
			delete(byKey, old.member())
		}
	}
	return nil
}

func (h *memoryHistory) List(_ context.Context, userID string, limit int) ([]HistoryItem, error) {
	if limit <= 0 || limit > h.limit {
		limit = h.limit
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	sorted := sortedHistory(h.users[userID])
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (h *memoryHistory) Clear(_ context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.users, userID)
	return nil
}

func sortedHistory(byKey map[string]HistoryItem) []HistoryItem {
	out := make([]HistoryItem, 0, len(byKey))
	for _, it := range byKey {
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VisitedAt.Equal(out[j].VisitedAt) {
			return out[i].member() < out[j].member()
		}
		return out[i].VisitedAt.After(out[j].VisitedAt)
	})
	return out
}
