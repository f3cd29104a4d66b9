package bus

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dep2p/go-fabric/pkg/types"
)

// subscriptions 本地订阅表，按 Feed 索引
type subscriptions struct {
	mu     sync.RWMutex
	byFeed map[types.FeedDescriptor]map[string]types.Subscription
	byID   map[string]types.FeedDescriptor
}

func newSubscriptions() *subscriptions {
	return &subscriptions{
		byFeed: make(map[types.FeedDescriptor]map[string]types.Subscription),
		byID:   make(map[string]types.FeedDescriptor),
	}
}

func (s *subscriptions) add(actor, task string, feed types.FeedDescriptor) types.Subscription {
	sub := types.Subscription{
		ID:    uuid.NewString(),
		Actor: actor,
		Task:  task,
		Feed:  feed,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	subs, ok := s.byFeed[feed]
	if !ok {
		subs = make(map[string]types.Subscription)
		s.byFeed[feed] = subs
	}
	subs[sub.ID] = sub
	s.byID[sub.ID] = feed
	return sub
}

func (s *subscriptions) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	delete(s.byFeed[feed], id)
	if len(s.byFeed[feed]) == 0 {
		delete(s.byFeed, feed)
	}
	return true
}

// match 返回 feed 的订阅，按 ID 排序
func (s *subscriptions) match(feed types.FeedDescriptor) []types.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := slices.Collect(maps.Values(s.byFeed[feed]))
	slices.SortFunc(subs, func(a, b types.Subscription) int { return strings.Compare(a.ID, b.ID) })
	return subs
}

func (s *subscriptions) all() []types.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Subscription
	for _, subs := range s.byFeed {
		for _, sub := range subs {
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b types.Subscription) int { return strings.Compare(a.ID, b.ID) })
	return out
}
