package feed

import (
	"fmt"

	"solofeed/internal/metrics"
	"solofeed/internal/model"
)

// Post returns a copy of one post.
func (s *Store) Post(id string) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.postIndex(id)
	if err != nil {
		return model.Post{}, err
	}
	return s.st.Posts[i].Clone(), nil
}

// Posts returns the feed, most recent first.
func (s *Store) Posts() []model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Post, len(s.st.Posts))
	for i, p := range s.st.Posts {
		out[i] = p.Clone()
	}
	return out
}

// LikedBy returns the actors who liked a post, in like order.
func (s *Store) LikedBy(postID string) ([]model.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.postIndex(postID)
	if err != nil {
		return nil, err
	}
	return append([]model.Actor(nil), s.st.Posts[i].LikedBy...), nil
}

func (s *Store) CurrentUser() model.Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CurrentUser
}

func (s *Store) Profile() model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Profile{Actor: s.st.CurrentUser, Bio: s.st.Bio}
}

// AddNotification prepends n to the log, filling in id and timestamp when missing.
func (s *Store) AddNotification(n model.Notification) model.Notification {
	s.mu.Lock()
	if n.ID == "" {
		n.ID = model.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock.Now()
	}
	s.st.Notifications = append([]model.Notification{n}, s.st.Notifications...)
	ch := Change{Op: "notification", PostID: n.PostID, CommentID: n.CommentID}
	ls := s.commit(ch)
	s.mu.Unlock()
	metrics.IncNotification(string(n.Kind))
	notify(ls, ch)
	return n
}

// Notifications returns the log, most recent first.
func (s *Store) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.st.Notifications...)
}

func (s *Store) UnseenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, x := range s.st.Notifications {
		if !x.Seen {
			n++
		}
	}
	return n
}

// MarkNotificationsSeen flags every notification as seen.
func (s *Store) MarkNotificationsSeen() {
	s.mu.Lock()
	for i := range s.st.Notifications {
		s.st.Notifications[i].Seen = true
	}
	ch := Change{Op: "notifications_seen"}
	ls := s.commit(ch)
	s.mu.Unlock()
	notify(ls, ch)
}

// ClearNotification removes one notification.
func (s *Store) ClearNotification(id string) error {
	s.mu.Lock()
	idx := -1
	for i, n := range s.st.Notifications {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
	}
	s.st.Notifications = append(s.st.Notifications[:idx:idx], s.st.Notifications[idx+1:]...)
	ch := Change{Op: "clear_notification"}
	ls := s.commit(ch)
	s.mu.Unlock()
	notify(ls, ch)
	return nil
}
