package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solofeed/internal/identity"
	"solofeed/internal/model"
	"solofeed/internal/store"
)

type recordingHooks struct {
	created   []model.Post
	commented []model.Comment
}

func (h *recordingHooks) PostCreated(p model.Post) { h.created = append(h.created, p) }
func (h *recordingHooks) UserCommented(_ string, c model.Comment) {
	h.commented = append(h.commented, c)
}

func newStore(t *testing.T) (*Store, *store.Memory, *clock.Mock) {
	t.Helper()
	mem := store.NewMemory()
	mock := clock.NewMock()
	mock.Set(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	s, err := Open(context.Background(), mem, mock, identity.Default(), identity.DefaultCurrentUser())
	require.NoError(t, err)
	return s, mem, mock
}

func TestCreatePostPrependsAndCallsHooks(t *testing.T) {
	s, _, mock := newStore(t)
	h := &recordingHooks{}
	s.SetHooks(h)

	first := s.CreatePost([]string{"img1"}, "Hello #world", "")
	second := s.CreatePost([]string{"img2"}, "Second", "Lisbon")

	assert.Equal(t, 0, first.LikeCount)
	assert.Empty(t, first.Comments)
	assert.False(t, first.Liked)
	assert.Equal(t, identity.CurrentUserID, first.Author.ID)
	assert.Equal(t, mock.Now(), first.CreatedAt)

	posts := s.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, "Lisbon", posts[0].Location)
	assert.Len(t, h.created, 2)
}

func TestLikeIsAtMostOncePerActor(t *testing.T) {
	s, _, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")

	changed, err := s.Like(p.ID, "ai-1")
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = s.Like(p.ID, "ai-1")
	require.NoError(t, err)
	assert.False(t, changed)

	got, _ := s.Post(p.ID)
	assert.Equal(t, 1, got.LikeCount)
	assert.Len(t, got.LikedBy, 1)
	assert.False(t, got.Liked)
}

func TestLikeThenUnlike(t *testing.T) {
	s, _, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")

	_, err := s.Like(p.ID, "")
	require.NoError(t, err)
	got, _ := s.Post(p.ID)
	assert.Equal(t, 1, got.LikeCount)
	assert.True(t, got.Liked)

	changed, err := s.Unlike(p.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	got, _ = s.Post(p.ID)
	assert.Equal(t, 0, got.LikeCount)
	assert.False(t, got.Liked)
}

func TestUnlikeOnlyRemovesCurrentUser(t *testing.T) {
	s, _, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")
	_, _ = s.Like(p.ID, "ai-2")
	_, _ = s.Like(p.ID, "")
	_, _ = s.Like(p.ID, "ai-3")

	_, err := s.Unlike(p.ID)
	require.NoError(t, err)
	changed, err := s.Unlike(p.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, _ := s.Post(p.ID)
	ids := []string{got.LikedBy[0].ID, got.LikedBy[1].ID}
	assert.Equal(t, []string{"ai-2", "ai-3"}, ids)
	assert.Equal(t, 2, got.LikeCount)
}

func TestCountMatchesLikersAfterEveryOp(t *testing.T) {
	s, _, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")
	ops := []func(){
		func() { _, _ = s.Like(p.ID, "") },
		func() { _, _ = s.Like(p.ID, "ai-1") },
		func() { _, _ = s.Unlike(p.ID) },
		func() { _, _ = s.Unlike(p.ID) },
		func() { _, _ = s.Like(p.ID, "ai-1") },
		func() { _, _ = s.Like(p.ID, "") },
		func() { _, _ = s.Like(p.ID, "ai-4") },
	}
	for _, op := range ops {
		op()
		got, _ := s.Post(p.ID)
		assert.Equal(t, len(got.LikedBy), got.LikeCount)
		assert.Equal(t, model.HasActor(got.LikedBy, identity.CurrentUserID), got.Liked)
	}
}

func TestSaveIsIndependentOfLike(t *testing.T) {
	s, _, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")
	require.NoError(t, s.Save(p.ID))
	_, _ = s.Like(p.ID, "")
	_, _ = s.Unlike(p.ID)
	got, _ := s.Post(p.ID)
	assert.True(t, got.Saved)
	require.NoError(t, s.Unsave(p.ID))
	got, _ = s.Post(p.ID)
	assert.False(t, got.Saved)
}

func TestUnknownIDsLeaveStateUntouched(t *testing.T) {
	s, mem, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")
	before, err := mem.LoadSnapshot(context.Background(), store.PostsKey)
	require.NoError(t, err)

	_, err = s.Like("nope", "")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Like(p.ID, "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Unlike("nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.Save("nope"), model.ErrNotFound)
	_, err = s.AddComment("nope", "hi", "")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.LikeComment(p.ID, "nope", "ai-1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.ClearNotification("nope"), model.ErrNotFound)

	after, err := mem.LoadSnapshot(context.Background(), store.PostsKey)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestCommentsKeepInsertionOrder(t *testing.T) {
	s, _, _ := newStore(t)
	h := &recordingHooks{}
	s.SetHooks(h)
	p := s.CreatePost([]string{"i"}, "c", "")

	texts := []string{"one", "two", "three", "four"}
	authors := []string{"ai-1", "", "ai-5", "ai-1"}
	for i, txt := range texts {
		_, err := s.AddComment(p.ID, txt, authors[i])
		require.NoError(t, err)
	}
	_, _ = s.Like(p.ID, "ai-2")
	got, _ := s.Post(p.ID)
	require.Len(t, got.Comments, 4)
	for i, c := range got.Comments {
		assert.Equal(t, texts[i], c.Text)
	}
	require.Len(t, h.commented, 1)
	assert.Equal(t, "two", h.commented[0].Text)
}

func TestAddCommentRejectsEmptyText(t *testing.T) {
	s, _, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")
	_, err := s.AddComment(p.ID, "   ", "")
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "text", ve.Field)
	got, _ := s.Post(p.ID)
	assert.Empty(t, got.Comments)
}

func TestCommentLikesAreSymmetric(t *testing.T) {
	s, _, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")
	c, err := s.AddComment(p.ID, "nice", "ai-1")
	require.NoError(t, err)

	for _, actor := range []string{"ai-2", "ai-2", "", "ai-3"} {
		_, err := s.LikeComment(p.ID, c.ID, actor)
		require.NoError(t, err)
	}
	got, _ := s.Post(p.ID)
	assert.Equal(t, 3, got.Comments[0].LikeCount)

	changed, err := s.UnlikeComment(p.ID, c.ID, "ai-2")
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = s.UnlikeComment(p.ID, c.ID, "ai-2")
	require.NoError(t, err)
	assert.False(t, changed)
	got, _ = s.Post(p.ID)
	assert.Equal(t, 2, got.Comments[0].LikeCount)
	assert.Len(t, got.Comments[0].LikedBy, 2)
}

func TestUpdateProfileRewritesEveryCopy(t *testing.T) {
	s, _, _ := newStore(t)
	mine := s.CreatePost([]string{"i"}, "c", "")
	_, _ = s.Like(mine.ID, "")
	c, _ := s.AddComment(mine.ID, "me again", "")
	_, _ = s.LikeComment(mine.ID, c.ID, "")

	_, err := s.UpdateProfile(model.ProfileUpdate{Username: "", AvatarRef: "x"})
	assert.ErrorIs(t, err, model.ErrValidation)

	prof, err := s.UpdateProfile(model.ProfileUpdate{Username: "newname", Bio: "hi", AvatarRef: "new.png"})
	require.NoError(t, err)
	assert.Equal(t, "newname", prof.Actor.Username)
	assert.Equal(t, "hi", s.Profile().Bio)

	got, _ := s.Post(mine.ID)
	assert.Equal(t, "newname", got.Author.Username)
	assert.Equal(t, "new.png", got.Author.AvatarRef)
	assert.Equal(t, "newname", got.LikedBy[0].Username)
	assert.Equal(t, "newname", got.Comments[0].Author.Username)
	assert.Equal(t, "newname", got.Comments[0].LikedBy[0].Username)
	assert.Equal(t, "newname", s.CurrentUser().Username)
}

func TestReturnedPostsAreCopies(t *testing.T) {
	s, _, _ := newStore(t)
	p := s.CreatePost([]string{"i"}, "c", "")
	got, _ := s.Post(p.ID)
	got.Images[0] = "mutated"
	got.LikedBy = append(got.LikedBy, model.Actor{ID: "x"})
	again, _ := s.Post(p.ID)
	assert.Equal(t, "i", again.Images[0])
	assert.Empty(t, again.LikedBy)
}

func TestNotificationsLog(t *testing.T) {
	s, _, _ := newStore(t)
	a := s.AddNotification(model.Notification{Kind: model.NotifyLike, ActorID: "ai-1", Message: "a"})
	b := s.AddNotification(model.Notification{Kind: model.NotifyComment, ActorID: "ai-2", Message: "b"})
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	list := s.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, 2, s.UnseenCount())

	s.MarkNotificationsSeen()
	assert.Equal(t, 0, s.UnseenCount())

	require.NoError(t, s.ClearNotification(a.ID))
	list = s.Notifications()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestSnapshotRoundTripAndListeners(t *testing.T) {
	s, mem, mock := newStore(t)
	var ops []string
	cancel := s.Subscribe(func(ch Change) { ops = append(ops, ch.Op) })
	p := s.CreatePost([]string{"i"}, "persist me", "")
	_, _ = s.Like(p.ID, "ai-1")
	cancel()
	_ = s.Save(p.ID)
	assert.Equal(t, []string{"create_post", "like"}, ops)

	raw, err := mem.LoadSnapshot(context.Background(), store.PostsKey)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "posts")

	reopened, err := Open(context.Background(), mem, mock, identity.Default(), identity.DefaultCurrentUser())
	require.NoError(t, err)
	got, err := reopened.Post(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist me", got.Caption)
	assert.Equal(t, 1, got.LikeCount)
	assert.True(t, got.Saved)
}

func TestOpenWithoutSnapshotUsesDefaults(t *testing.T) {
	s, _, _ := newStore(t)
	assert.Empty(t, s.Posts())
	assert.Empty(t, s.Notifications())
	assert.Equal(t, identity.CurrentUserID, s.CurrentUser().ID)
}
