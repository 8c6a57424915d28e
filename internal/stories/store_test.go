package stories

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solofeed/internal/identity"
	"solofeed/internal/random"
	"solofeed/internal/store"
)

func newStore(t *testing.T, mem *store.Memory) (*Store, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	s, err := Open(context.Background(), mem, mock, identity.Default(), random.New(11), Options{MinItems: 1, MaxItems: 3})
	require.NoError(t, err)
	return s, mock
}

func TestAddStoryCreatesThenPrepends(t *testing.T) {
	s, mock := newStore(t, store.NewMemory())
	first := s.AddStory(identity.CurrentUserID, "a.jpg")
	mock.Add(time.Minute)
	second := s.AddStory(identity.CurrentUserID, "b.jpg")

	us, ok := s.ForActor(identity.CurrentUserID)
	require.True(t, ok)
	require.Len(t, us.Items, 2)
	assert.Equal(t, second.ID, us.Items[0].ID)
	assert.Equal(t, first.ID, us.Items[1].ID)
	assert.Equal(t, mock.Now(), us.LastUpdated)
	assert.False(t, us.Items[0].Seen)
}

func TestMarkSeenAndHasUnseen(t *testing.T) {
	s, _ := newStore(t, store.NewMemory())
	assert.False(t, s.HasUnseen("ai-1"))

	a := s.AddStory("ai-1", "a.jpg")
	b := s.AddStory("ai-1", "b.jpg")
	assert.True(t, s.HasUnseen("ai-1"))

	s.MarkSeen("ai-1", a.ID)
	assert.True(t, s.HasUnseen("ai-1"))
	s.MarkSeen("ai-1", b.ID)
	assert.False(t, s.HasUnseen("ai-1"))

	s.MarkSeen("ai-1", "unknown")
	s.MarkSeen("nobody", a.ID)
}

func TestRegenerateReplacesSyntheticCollectionsOnly(t *testing.T) {
	s, _ := newStore(t, store.NewMemory())
	mine := s.AddStory(identity.CurrentUserID, "me.jpg")
	for i := 0; i < 5; i++ {
		s.AddStory("ai-1", "old.jpg")
	}

	s.RegenerateForSyntheticActors()

	pool := DefaultImagePool()
	reg := identity.Default()
	for _, a := range reg.List() {
		us, ok := s.ForActor(a.ID)
		require.True(t, ok, a.ID)
		assert.GreaterOrEqual(t, len(us.Items), 1)
		assert.LessOrEqual(t, len(us.Items), 3)
		for _, it := range us.Items {
			assert.Contains(t, pool, it.ImageRef)
			assert.False(t, it.Seen)
		}
	}
	us, _ := s.ForActor(identity.CurrentUserID)
	require.Len(t, us.Items, 1)
	assert.Equal(t, mine.ID, us.Items[0].ID)
	assert.Len(t, s.All(), reg.Len()+1)
}

func TestStoriesSurviveReopen(t *testing.T) {
	mem := store.NewMemory()
	s, _ := newStore(t, mem)
	item := s.AddStory("ai-3", "x.jpg")
	s.MarkSeen("ai-3", item.ID)

	reopened, _ := newStore(t, mem)
	us, ok := reopened.ForActor("ai-3")
	require.True(t, ok)
	require.Len(t, us.Items, 1)
	assert.True(t, us.Items[0].Seen)

	_, err := mem.LoadSnapshot(context.Background(), store.StoriesKey)
	assert.NoError(t, err)
}
