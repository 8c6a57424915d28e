package oracle

import (
	"context"
	"fmt"
	"time"

	"solofeed/internal/logging"
	"solofeed/internal/metrics"
	"solofeed/internal/random"
)

var fallbackComments = []string{
	"This is amazing! 😍",
	"Love this content!",
	"Great post, keep it up!",
	"This made my day!",
	"So inspiring!",
	"Can't stop looking at this!",
	"Absolutely beautiful!",
	"This is everything! 🙌",
	"Wow, incredible shot!",
	"Need more of this content!",
}

var fallbackReplies = []string{
	"Thank you so much! 💕",
	"Appreciate that!",
	"Thanks for the love!",
	"That means a lot!",
	"You're too kind!",
	"Glad you like it!",
	"Thanks for the support!",
	"Made my day! 🙏",
	"You're awesome!",
	"Thanks for noticing!",
}

// FallbackComments returns a copy of the local comment phrases.
func FallbackComments() []string { return append([]string(nil), fallbackComments...) }

// FallbackReplies returns a copy of the local reply phrases.
func FallbackReplies() []string { return append([]string(nil), fallbackReplies...) }

// Adapter turns a caption or a prior message into persona-flavoured text.
// It never fails: any client error is replaced by a local phrase.
type Adapter struct {
	client  Client
	rnd     random.Source
	timeout time.Duration
}

// NewAdapter wraps client. A nil client always answers from the fallback sets.
func NewAdapter(client Client, rnd random.Source, timeout time.Duration) *Adapter {
	return &Adapter{client: client, rnd: rnd, timeout: timeout}
}

// Comment writes a short comment on a post caption.
func (a *Adapter) Comment(ctx context.Context, caption, personality string) string {
	msgs := []Message{
		{Role: "system", Content: fmt.Sprintf("You are an Instagram user with the following personality: %s. "+
			"Generate a short, realistic Instagram comment (1-2 sentences max) in response to a post. "+
			"Your comment should feel authentic and conversational, not generic. "+
			"Occasionally include emojis if appropriate. Never use hashtags in your comments. "+
			"Keep your response under 100 characters.", personality)},
		{Role: "user", Content: fmt.Sprintf("Here's the caption of an Instagram post. Write a single comment in response:\n%q", caption)},
	}
	return a.generate(ctx, "comment", msgs, fallbackComments)
}

// Reply writes a one-sentence answer to a prior message.
func (a *Adapter) Reply(ctx context.Context, prior, personality string) string {
	msgs := []Message{
		{Role: "system", Content: fmt.Sprintf("You are an Instagram user with the following personality: %s. "+
			"Generate a short, realistic Instagram reply (1 sentence max) to another user's comment. "+
			"Your reply should feel authentic and conversational. "+
			"Occasionally include emojis if appropriate. Keep your response under 80 characters.", personality)},
		{Role: "user", Content: fmt.Sprintf("Someone commented this on your Instagram post. Write a brief reply:\n%q", prior)},
	}
	return a.generate(ctx, "reply", msgs, fallbackReplies)
}

func (a *Adapter) generate(ctx context.Context, kind string, msgs []Message, fallback []string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("oracle_panic", map[string]any{"kind": kind, "panic": fmt.Sprint(r)})
			text = a.fallback(fallback)
		}
	}()
	if a.client == nil {
		return a.fallback(fallback)
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	out, err := a.client.Complete(ctx, msgs)
	if err != nil || out == "" {
		logging.Warn("oracle_fallback", map[string]any{"kind": kind, "error": fmt.Sprint(err)})
		return a.fallback(fallback)
	}
	return out
}

func (a *Adapter) fallback(set []string) string {
	metrics.OracleRequests.WithLabelValues("fallback").Inc()
	return random.Pick(a.rnd, set)
}
