// Package stories keeps per-actor collections of ephemeral images.
package stories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"solofeed/internal/identity"
	"solofeed/internal/logging"
	"solofeed/internal/metrics"
	"solofeed/internal/model"
	"solofeed/internal/random"
	"solofeed/internal/store"
)

// Options tunes synthetic story regeneration.
type Options struct {
	ImagePool []string
	MinItems  int
	MaxItems  int
}

type snapshot struct {
	Stories []model.UserStories `json:"stories"`
}

type Store struct {
	mu       sync.Mutex
	snaps    store.Snapshots
	clock    clock.Clock
	registry *identity.Registry
	rnd      random.Source
	opts     Options
	stories  []model.UserStories
}

// Open restores the latest story snapshot, or starts empty.
func Open(ctx context.Context, snaps store.Snapshots, clk clock.Clock, registry *identity.Registry, rnd random.Source, opts Options) (*Store, error) {
	if len(opts.ImagePool) == 0 {
		opts.ImagePool = DefaultImagePool()
	}
	if opts.MinItems < 1 {
		opts.MinItems = 1
	}
	if opts.MaxItems < opts.MinItems {
		opts.MaxItems = opts.MinItems
	}
	s := &Store{snaps: snaps, clock: clk, registry: registry, rnd: rnd, opts: opts}
	b, err := snaps.LoadSnapshot(ctx, store.StoriesKey)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("stories: load snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("stories: decode snapshot: %w", err)
	}
	s.stories = snap.Stories
	return s, nil
}

func (s *Store) persist(op string) {
	metrics.IncMutation(op)
	b, err := json.Marshal(snapshot{Stories: s.stories})
	if err == nil {
		err = s.snaps.SaveSnapshot(context.Background(), store.StoriesKey, b)
	}
	if err != nil {
		logging.Error("stories_snapshot", map[string]any{"op": op, "error": err.Error()})
	}
}

func (s *Store) index(actorID string) int {
	for i := range s.stories {
		if s.stories[i].ActorID == actorID {
			return i
		}
	}
	return -1
}

// AddStory prepends an unseen item to the actor's collection, creating it when absent.
func (s *Store) AddStory(actorID, imageRef string) model.StoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	item := model.StoryItem{ID: model.NewID(), ImageRef: imageRef, CreatedAt: now}
	if i := s.index(actorID); i >= 0 {
		us := &s.stories[i]
		us.Items = append([]model.StoryItem{item}, us.Items...)
		us.LastUpdated = now
	} else {
		s.stories = append(s.stories, model.UserStories{ActorID: actorID, Items: []model.StoryItem{item}, LastUpdated: now})
	}
	s.persist("add_story")
	return item
}

// MarkSeen flags one item as viewed. Unknown actors or items are ignored.
func (s *Store) MarkSeen(actorID, storyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(actorID)
	if i < 0 {
		return
	}
	for j := range s.stories[i].Items {
		it := &s.stories[i].Items[j]
		if it.ID == storyID {
			if !it.Seen {
				it.Seen = true
				s.persist("story_seen")
			}
			return
		}
	}
}

// HasUnseen is false for actors without a collection.
func (s *Store) HasUnseen(actorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(actorID)
	return i >= 0 && s.stories[i].HasUnseen()
}

// RegenerateForSyntheticActors replaces every synthetic actor's collection with
// fresh unseen items. The current user's collection is left alone.
func (s *Store) RegenerateForSyntheticActors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	for _, a := range s.registry.List() {
		n := random.Between(s.rnd, s.opts.MinItems, s.opts.MaxItems)
		items := make([]model.StoryItem, n)
		for k := range items {
			items[k] = model.StoryItem{ID: model.NewID(), ImageRef: random.Pick(s.rnd, s.opts.ImagePool), CreatedAt: now}
		}
		us := model.UserStories{ActorID: a.ID, Items: items, LastUpdated: now}
		if i := s.index(a.ID); i >= 0 {
			s.stories[i] = us
		} else {
			s.stories = append(s.stories, us)
		}
	}
	s.persist("regenerate_stories")
}

// All returns every collection.
func (s *Store) All() []model.UserStories {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.UserStories, len(s.stories))
	for i, us := range s.stories {
		out[i] = us.Clone()
	}
	return out
}

// ForActor returns one actor's collection.
func (s *Store) ForActor(actorID string) (model.UserStories, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(actorID)
	if i < 0 {
		return model.UserStories{}, false
	}
	return s.stories[i].Clone(), true
}
