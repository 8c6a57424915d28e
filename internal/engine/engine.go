// Package engine simulates the community reacting to the current user's
// activity. Every engagement is a task on a schedule.Loop: tasks run one at a
// time and suspend only at delays and at text generation.
package engine

import (
	"context"
	"time"

	"solofeed/internal/config"
	"solofeed/internal/engage"
	"solofeed/internal/identity"
	"solofeed/internal/logging"
	"solofeed/internal/model"
	"solofeed/internal/random"
	"solofeed/internal/schedule"
)

// Feed is the part of the feed store the engine mutates.
type Feed interface {
	Post(id string) (model.Post, error)
	Posts() []model.Post
	CurrentUser() model.Actor
	AddComment(postID, text, authorID string) (model.Comment, error)
	Like(postID, actorID string) (bool, error)
	LikeComment(postID, commentID, actorID string) (bool, error)
	AddNotification(n model.Notification) model.Notification
	MarkNotificationsSeen()
}

// Writer words comments and replies. Implementations must not fail.
type Writer interface {
	Comment(ctx context.Context, caption, personality string) string
	Reply(ctx context.Context, prior, personality string) string
}

// Stories is the part of the story store refreshed by views.
type Stories interface {
	All() []model.UserStories
	RegenerateForSyntheticActors()
}

// Journal records applied engagements.
type Journal interface {
	PutEvent(ctx context.Context, ev model.EngagementEvent) error
}

// Event types written to the journal.
const (
	EventComment     = "comment"
	EventLike        = "like"
	EventCommentLike = "comment_like"
	EventReply       = "reply"
)

// Options wires the engine to its loop, stores and text writer.
type Options struct {
	Loop     *schedule.Loop
	Feed     Feed
	Stories  Stories
	Registry *identity.Registry
	Writer   Writer
	Random   random.Source
	Config   config.EngagementConfig
	// Journal and Budget are optional.
	Journal Journal
	Budget  *engage.Budget
}

// Engine schedules the synthetic community's reactions on a single loop.
type Engine struct {
	ctx      context.Context
	loop     *schedule.Loop
	feed     Feed
	stories  Stories
	registry *identity.Registry
	writer   Writer
	rnd      random.Source
	cfg      config.EngagementConfig
	journal  Journal
	budget   *engage.Budget
}

// New builds an engine; a nil Random falls back to a clock-seeded source.
func New(opts Options) *Engine {
	rnd := opts.Random
	if rnd == nil {
		rnd = random.New(0)
	}
	return &Engine{
		ctx:      context.Background(),
		loop:     opts.Loop,
		feed:     opts.Feed,
		stories:  opts.Stories,
		registry: opts.Registry,
		writer:   opts.Writer,
		rnd:      rnd,
		cfg:      opts.Config,
		journal:  opts.Journal,
		budget:   opts.Budget,
	}
}

// Loop exposes the timeline the engine schedules on.
func (e *Engine) Loop() *schedule.Loop { return e.loop }

func (e *Engine) record(typ, actorID, postID, commentID string) {
	if e.journal == nil {
		return
	}
	ev := model.EngagementEvent{Timestamp: e.loop.Now(), Type: typ, ActorID: actorID, PostID: postID, CommentID: commentID}
	if err := e.journal.PutEvent(e.ctx, ev); err != nil {
		logging.Warn("journal_write", map[string]any{"type": typ, "error": err.Error()})
	}
}

func (e *Engine) stagger(i int, d time.Duration) time.Duration { return time.Duration(i) * d }
