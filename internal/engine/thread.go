package engine

import (
	"solofeed/internal/metrics"
	"solofeed/internal/model"
	"solofeed/internal/random"
	"solofeed/internal/schedule"
)

// SimulateThread answers comment inside its open thread: a reply from a
// persona other than the comment's author, and sometimes a second reply to
// that one from a third persona. Replies go through the feed store.
func (e *Engine) SimulateThread(postID string, comment model.Comment) {
	e.loop.After(e.cfg.ReplyDelay, func() {
		exclude := map[string]bool{comment.Author.ID: true}
		first, err := e.registry.PickOne(e.rnd, exclude)
		if err != nil {
			return
		}
		e.reply(postID, comment.Text, first, func(text string) {
			if !random.Chance(e.rnd, e.cfg.SecondReplyChance) {
				return
			}
			e.loop.After(e.cfg.SecondReplyDelay, func() {
				exclude[first.ID] = true
				second, err := e.registry.PickOne(e.rnd, exclude)
				if err != nil {
					return
				}
				e.reply(postID, text, second, nil)
			})
		})
	})
}

func (e *Engine) reply(postID, prior string, actor model.Actor, next func(text string)) {
	schedule.Await(e.loop, func() string {
		return e.writer.Reply(e.ctx, prior, actor.Personality)
	}, func(text string) {
		c, err := e.feed.AddComment(postID, text, actor.ID)
		if err != nil {
			return
		}
		metrics.IncTask(EventReply)
		e.record(EventReply, actor.ID, postID, c.ID)
		if next != nil {
			next(text)
		}
	})
}
