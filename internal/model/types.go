package model

import "time"

// Actor is any identity able to author posts and comments or like content.
// Synthetic actors carry a Personality used to bias generated text.
type Actor struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	AvatarRef   string `json:"avatar"`
	Verified    bool   `json:"isVerified"`
	Personality string `json:"personality,omitempty"`
}

// Synthetic reports whether the actor is one of the simulated personas.
func (a Actor) Synthetic() bool { return a.Personality != "" }

// Post is a feed entry. LikeCount always equals len(LikedBy).
type Post struct {
	ID        string    `json:"id"`
	Author    Actor     `json:"user"`
	Images    []string  `json:"images"`
	Caption   string    `json:"caption"`
	LikeCount int       `json:"likes"`
	LikedBy   []Actor   `json:"likedBy"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
	Location  string    `json:"location,omitempty"`
	Liked     bool      `json:"isLiked"`
	Saved     bool      `json:"isSaved"`
}

// Comment belongs to exactly one post. Comments are append-only.
type Comment struct {
	ID        string    `json:"id"`
	Author    Actor     `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	LikeCount int       `json:"likes"`
	LikedBy   []Actor   `json:"likedBy"`
}

type NotificationKind string

const (
	NotifyLike    NotificationKind = "like"
	NotifyComment NotificationKind = "comment"
	NotifyFollow  NotificationKind = "follow"
	NotifyMention NotificationKind = "mention"
)

// Notification is an engagement event directed at the current user.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"type"`
	ActorID   string           `json:"userId"`
	PostID    string           `json:"postId,omitempty"`
	CommentID string           `json:"commentId,omitempty"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"timestamp"`
	Seen      bool             `json:"seen"`
}

// Profile is the editable state of the current user.
type Profile struct {
	Actor Actor  `json:"user"`
	Bio   string `json:"bio,omitempty"`
}

// ProfileUpdate carries the fields accepted by a profile edit.
type ProfileUpdate struct {
	Username  string `json:"username"`
	Bio       string `json:"bio,omitempty"`
	AvatarRef string `json:"avatar"`
}

// StoryItem is one ephemeral image in an actor's story.
type StoryItem struct {
	ID        string    `json:"id"`
	ImageRef  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Seen      bool      `json:"seen"`
}

// UserStories holds an actor's items, most recent first.
type UserStories struct {
	ActorID     string      `json:"userId"`
	Items       []StoryItem `json:"items"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// HasUnseen reports whether any item has not been viewed yet.
func (s UserStories) HasUnseen() bool {
	for _, it := range s.Items {
		if !it.Seen {
			return true
		}
	}
	return false
}

// EngagementEvent captures a synthetic engagement applied to the feed.
type EngagementEvent struct {
	Timestamp time.Time
	Type      string // like, comment, reply, comment_like
	ActorID   string
	PostID    string
	CommentID string
}
