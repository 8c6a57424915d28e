// Package feed owns the posts, the current user and the notification log.
// Every state change goes through a Store method; each one is followed by a
// full snapshot write.
package feed

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
	"solofeed/internal/store"
)

// Hooks receives the side effects of store mutations that start engagement.
type Hooks interface {
	PostCreated(post model.Post)
	UserCommented(postID string, comment model.Comment)
}

// Change describes a committed mutation.
type Change struct {
	Op        string `json:"op"`
	PostID    string `json:"postId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
}

type state struct {
	CurrentUser   model.Actor          `json:"currentUser"`
	Bio           string               `json:"bio,omitempty"`
	Posts         []model.Post         `json:"posts"`
	Notifications []model.Notification `json:"notifications"`
}

type Store struct {
	mu        sync.Mutex
	snaps     store.Snapshots
	clock     clock.Clock
	registry  *identity.Registry
	st        state
	hooks     Hooks
	listeners map[int]func(Change)
	nextSub   int
}

// Open restores the latest snapshot or starts from an empty feed owned by me.
func Open(ctx context.Context, snaps store.Snapshots, clk clock.Clock, registry *identity.Registry, me model.Actor) (*Store, error) {
	s := &Store{
		snaps:     snaps,
		clock:     clk,
		registry:  registry,
		st:        state{CurrentUser: me},
		listeners: make(map[int]func(Change)),
	}
	b, err := snaps.LoadSnapshot(ctx, store.PostsKey)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("feed: load snapshot: %w", err)
	}
	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("feed: decode snapshot: %w", err)
	}
	if st.CurrentUser.ID == "" {
		st.CurrentUser = me
	}
	s.st = st
	return s, nil
}

// SetHooks installs the engagement callbacks. Call before serving traffic.
func (s *Store) SetHooks(h Hooks) {
	s.mu.Lock()
	s.hooks = h
	s.mu.Unlock()
}

// Subscribe registers fn for every committed change and returns its cancel func.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// commit persists the state and returns the listeners to notify. Caller holds mu.
func (s *Store) commit(ch Change) []func(Change) {
	metrics.IncMutation(ch.Op)
	b, err := json.Marshal(s.st)
	if err == nil {
		err = s.snaps.SaveSnapshot(context.Background(), store.PostsKey, b)
	}
	if err != nil {
		logging.Error("feed_snapshot", map[string]any{"op": ch.Op, "error": err.Error()})
	}
	out := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(ls []func(Change), ch Change) {
	for _, fn := range ls {
		fn(ch)
	}
}

func (s *Store) postIndex(id string) (int, error) {
	for i := range s.st.Posts {
		if s.st.Posts[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("post %s: %w", id, model.ErrNotFound)
}

func commentIndex(p *model.Post, id string) (int, error) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("comment %s: %w", id, model.ErrNotFound)
}

// resolveActor maps an id to its current snapshot. Empty means the current user.
func (s *Store) resolveActor(id string) (model.Actor, error) {
	if id == "" || id == s.st.CurrentUser.ID {
		return s.st.CurrentUser, nil
	}
	if s.registry != nil {
		if a, ok := s.registry.Lookup(id); ok {
			return a, nil
		}
	}
	return model.Actor{}, fmt.Errorf("actor %s: %w", id, model.ErrNotFound)
}

// CreatePost prepends a post authored by the current user and hands it to the
// engagement hooks. Images and caption are validated by the caller.
func (s *Store) CreatePost(images []string, caption, location string) model.Post {
	s.mu.Lock()
	p := model.Post{
		ID:        model.NewID(),
		Author:    s.st.CurrentUser,
		Images:    append([]string(nil), images...),
		Caption:   caption,
		LikedBy:   []model.Actor{},
		Comments:  []model.Comment{},
		CreatedAt: s.clock.Now(),
		Location:  location,
	}
	s.st.Posts = append([]model.Post{p}, s.st.Posts...)
	ch := Change{Op: "create_post", PostID: p.ID}
	ls := s.commit(ch)
	hooks := s.hooks
	s.mu.Unlock()

	notify(ls, ch)
	if hooks != nil {
		hooks.PostCreated(p.Clone())
	}
	return p.Clone()
}

// Like adds actorID (the current user when empty) to the post's likers.
// It reports false when the actor had already liked the post.
func (s *Store) Like(postID, actorID string) (bool, error) {
	s.mu.Lock()
	i, err := s.postIndex(postID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	actor, err := s.resolveActor(actorID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	p := &s.st.Posts[i]
	if model.HasActor(p.LikedBy, actor.ID) {
		s.mu.Unlock()
		return false, nil
	}
	p.LikedBy = append(p.LikedBy, actor)
	p.LikeCount = len(p.LikedBy)
	if actor.ID == s.st.CurrentUser.ID {
		p.Liked = true
	}
	ch := Change{Op: "like", PostID: postID}
	ls := s.commit(ch)
	s.mu.Unlock()
	notify(ls, ch)
	return true, nil
}

// Unlike removes the current user from the post's likers. Synthetic likes stay.
func (s *Store) Unlike(postID string) (bool, error) {
	s.mu.Lock()
	i, err := s.postIndex(postID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	p := &s.st.Posts[i]
	kept, removed := withoutActor(p.LikedBy, s.st.CurrentUser.ID)
	if !removed {
		s.mu.Unlock()
		return false, nil
	}
	p.LikedBy = kept
	p.Liked = false
	p.LikeCount = len(p.LikedBy)
	ch := Change{Op: "unlike", PostID: postID}
	ls := s.commit(ch)
	s.mu.Unlock()
	notify(ls, ch)
	return true, nil
}

func withoutActor(actors []model.Actor, id string) ([]model.Actor, bool) {
	out := make([]model.Actor, 0, len(actors))
	removed := false
	for _, a := range actors {
		if a.ID == id {
			removed = true
			continue
		}
		out = append(out, a)
	}
	return out, removed
}

func (s *Store) Save(postID string) error   { return s.setSaved(postID, true) }
func (s *Store) Unsave(postID string) error { return s.setSaved(postID, false) }

func (s *Store) setSaved(postID string, saved bool) error {
	s.mu.Lock()
	i, err := s.postIndex(postID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.st.Posts[i].Saved = saved
	op := "save"
	if !saved {
		op = "unsave"
	}
	ch := Change{Op: op, PostID: postID}
	ls := s.commit(ch)
	s.mu.Unlock()
	notify(ls, ch)
	return nil
}

// AddComment appends a comment by authorID (the current user when empty).
// A comment by the current user is handed to the engagement hooks.
func (s *Store) AddComment(postID, text, authorID string) (model.Comment, error) {
	if err := model.ValidateComment(text); err != nil {
		return model.Comment{}, err
	}
	s.mu.Lock()
	i, err := s.postIndex(postID)
	if err != nil {
		s.mu.Unlock()
		return model.Comment{}, err
	}
	author, err := s.resolveActor(authorID)
	if err != nil {
		s.mu.Unlock()
		return model.Comment{}, err
	}
	c := model.Comment{
		ID:        model.NewID(),
		Author:    author,
		Text:      text,
		CreatedAt: s.clock.Now(),
		LikedBy:   []model.Actor{},
	}
	p := &s.st.Posts[i]
	p.Comments = append(p.Comments, c)
	ch := Change{Op: "comment", PostID: postID, CommentID: c.ID}
	ls := s.commit(ch)
	hooks := s.hooks
	mine := author.ID == s.st.CurrentUser.ID
	s.mu.Unlock()

	notify(ls, ch)
	if mine && hooks != nil {
		hooks.UserCommented(postID, c.Clone())
	}
	return c.Clone(), nil
}

// LikeComment adds actorID to a comment's likers at most once.
func (s *Store) LikeComment(postID, commentID, actorID string) (bool, error) {
	return s.toggleCommentLike(postID, commentID, actorID, true)
}

// UnlikeComment removes actorID from a comment's likers.
func (s *Store) UnlikeComment(postID, commentID, actorID string) (bool, error) {
	return s.toggleCommentLike(postID, commentID, actorID, false)
}

func (s *Store) toggleCommentLike(postID, commentID, actorID string, like bool) (bool, error) {
	s.mu.Lock()
	i, err := s.postIndex(postID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	p := &s.st.Posts[i]
	j, err := commentIndex(p, commentID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	actor, err := s.resolveActor(actorID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	c := &p.Comments[j]
	op := "like_comment"
	if like {
		if model.HasActor(c.LikedBy, actor.ID) {
			s.mu.Unlock()
			return false, nil
		}
		c.LikedBy = append(c.LikedBy, actor)
	} else {
		kept, removed := withoutActor(c.LikedBy, actor.ID)
		if !removed {
			s.mu.Unlock()
			return false, nil
		}
		c.LikedBy = kept
		op = "unlike_comment"
	}
	c.LikeCount = len(c.LikedBy)
	ch := Change{Op: op, PostID: postID, CommentID: commentID}
	ls := s.commit(ch)
	s.mu.Unlock()
	notify(ls, ch)
	return true, nil
}

// UpdateProfile edits the current user and rewrites every embedded copy of it:
// post authors, comment authors and likedBy entries.
func (s *Store) UpdateProfile(u model.ProfileUpdate) (model.Profile, error) {
	if err := model.ValidateProfile(u); err != nil {
		return model.Profile{}, err
	}
	s.mu.Lock()
	me := s.st.CurrentUser
	me.Username = u.Username
	me.AvatarRef = u.AvatarRef
	s.st.CurrentUser = me
	s.st.Bio = u.Bio
	rewrite := func(a *model.Actor) {
		if a.ID == me.ID {
			*a = me
		}
	}
	for i := range s.st.Posts {
		p := &s.st.Posts[i]
		rewrite(&p.Author)
		for k := range p.LikedBy {
			rewrite(&p.LikedBy[k])
		}
		for j := range p.Comments {
			c := &p.Comments[j]
			rewrite(&c.Author)
			for k := range c.LikedBy {
				rewrite(&c.LikedBy[k])
			}
		}
	}
	ch := Change{Op: "update_profile"}
	ls := s.commit(ch)
	out := model.Profile{Actor: me, Bio: s.st.Bio}
	s.mu.Unlock()
	notify(ls, ch)
	return out, nil
}
