package engine

import (
	"fmt"

	"solofeed/internal/logging"
	"solofeed/internal/metrics"
	"solofeed/internal/model"
	"solofeed/internal/random"
	"solofeed/internal/schedule"
	"solofeed/internal/util"
)

// PostCreated schedules the comment batch and the like batch for a new post.
func (e *Engine) PostCreated(p model.Post) {
	e.loop.After(e.cfg.CommentBatchDelay, func() {
		n := random.Between(e.rnd, e.cfg.CommentsMin, e.cfg.CommentsMax)
		for i := 0; i < n; i++ {
			e.loop.After(e.stagger(i, e.cfg.CommentStagger), func() { e.commentTask(p.ID) })
		}
	})
	e.loop.After(e.cfg.LikeBatchDelay, func() {
		k := random.Between(e.rnd, e.cfg.LikesMin, e.cfg.LikesMax)
		liked := make(map[string]bool, k)
		for i := 0; i < k; i++ {
			notifyLike := i < e.cfg.LikeNotifyCap
			e.loop.After(e.stagger(i, e.cfg.LikeStagger), func() {
				actor, err := e.registry.PickOne(e.rnd, liked)
				if err != nil {
					return
				}
				liked[actor.ID] = true
				e.likeTask(p.ID, actor, notifyLike)
			})
		}
	})
}

// UserCommented may have one persona like the current user's comment.
func (e *Engine) UserCommented(postID string, c model.Comment) {
	e.loop.After(e.cfg.CommentLikeDelay, func() {
		if !random.Chance(e.rnd, e.cfg.CommentLikeChance) {
			return
		}
		actor, err := e.registry.PickOne(e.rnd, nil)
		if err != nil {
			return
		}
		changed, err := e.feed.LikeComment(postID, c.ID, actor.ID)
		if err != nil || !changed {
			return
		}
		metrics.IncTask(EventCommentLike)
		e.record(EventCommentLike, actor.ID, postID, c.ID)
		e.feed.AddNotification(model.Notification{
			Kind:      model.NotifyLike,
			ActorID:   actor.ID,
			PostID:    postID,
			CommentID: c.ID,
			Message:   fmt.Sprintf("%s liked your comment: \"%s\"", actor.Username, util.Preview(c.Text, e.cfg.CommentLikePreview)),
		})
	})
}

// SimulateActivity picks one post and adds either a comment or a like to it.
// It reports whether an engagement was applied or scheduled; an empty feed
// or an actor who already liked the post yields false.
func (e *Engine) SimulateActivity() bool {
	posts := e.feed.Posts()
	if len(posts) == 0 {
		return false
	}
	post := random.Pick(e.rnd, posts)
	actor, err := e.registry.PickOne(e.rnd, nil)
	if err != nil {
		return false
	}
	if random.Chance(e.rnd, e.cfg.ActivityCommentChance) {
		e.loop.After(e.cfg.ActivityCommentDelay, func() { e.commentAs(post.ID, actor) })
		return true
	}
	if model.HasActor(post.LikedBy, actor.ID) {
		return false
	}
	return e.likeTask(post.ID, actor, true)
}

func (e *Engine) commentTask(postID string) {
	actor, err := e.registry.PickOne(e.rnd, nil)
	if err != nil {
		return
	}
	e.commentAs(postID, actor)
}

// commentAs generates a comment from actor on the post caption and appends it.
// The current user is notified when the post is theirs.
func (e *Engine) commentAs(postID string, actor model.Actor) {
	post, err := e.feed.Post(postID)
	if err != nil {
		return
	}
	schedule.Await(e.loop, func() string {
		return e.writer.Comment(e.ctx, post.Caption, actor.Personality)
	}, func(text string) {
		c, err := e.feed.AddComment(postID, text, actor.ID)
		if err != nil {
			logging.Debug("comment_task_skipped", map[string]any{"post": postID, "error": err.Error()})
			return
		}
		metrics.IncTask(EventComment)
		e.record(EventComment, actor.ID, postID, c.ID)
		if post.Author.ID != e.feed.CurrentUser().ID {
			return
		}
		e.feed.AddNotification(model.Notification{
			Kind:      model.NotifyComment,
			ActorID:   actor.ID,
			PostID:    postID,
			CommentID: c.ID,
			Message:   fmt.Sprintf("%s commented on your post: \"%s\"", actor.Username, util.Preview(text, e.cfg.CommentPreview)),
		})
	})
}

// likeTask applies one like; the notification goes out only when the like
// was applied, the post is the current user's and notify is set.
func (e *Engine) likeTask(postID string, actor model.Actor, notify bool) bool {
	changed, err := e.feed.Like(postID, actor.ID)
	if err != nil || !changed {
		return false
	}
	metrics.IncTask(EventLike)
	e.record(EventLike, actor.ID, postID, "")
	if !notify {
		return true
	}
	post, err := e.feed.Post(postID)
	if err != nil || post.Author.ID != e.feed.CurrentUser().ID {
		return true
	}
	e.feed.AddNotification(model.Notification{
		Kind:    model.NotifyLike,
		ActorID: actor.ID,
		PostID:  postID,
		Message: fmt.Sprintf("%s liked your post", actor.Username),
	})
	return true
}
