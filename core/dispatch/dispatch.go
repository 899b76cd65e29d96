// Package dispatch matches newly captured posts against subscriber phrases
// and sends the matches out.
package dispatch

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/rs/xid"
	"github.com/samber/lo"

	"github.com/postcatcher/postcatcher-bot/common/utils/tgutil"
	"github.com/postcatcher/postcatcher-bot/database"
	"github.com/postcatcher/postcatcher-bot/pkg/textmatch"
)

const linkText = "link to post"

// Store reads dispatch input and applies its result.
type Store interface {
	GetPostsAfter(ctx context.Context, afterID uint) ([]database.Post, error)
	GetNotifiableUsers(ctx context.Context) ([]database.User, error)
	// Commit turns notifications off for lapsed users and deletes unmatched posts in one go.
	Commit(ctx context.Context, lapsedUserIDs, uselessPostIDs []uint) error
}

// Watermark remembers the last post id taken by a run.
type Watermark interface {
	Get(ctx context.Context) (id uint, ok bool, err error)
	Set(ctx context.Context, id uint) error
}

// Sender delivers a styled message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text []styling.StyledTextOption) error
}

type Dispatcher struct {
	store  Store
	mark   Watermark
	sender Sender
	now    func() time.Time
}

func New(store Store, mark Watermark, sender Sender) *Dispatcher {
	return &Dispatcher{
		store:  store,
		mark:   mark,
		sender: sender,
		now:    time.Now,
	}
}

// Stats summarizes one run.
type Stats struct {
	Posts   int
	Sent    int
	Failed  int
	Lapsed  int
	Deleted int
}

// Run processes the posts captured since the previous run.
//
// The watermark moves past the fetched posts before anything is sent, so a
// run that fails half way does not notify anyone twice.
func (d *Dispatcher) Run(ctx context.Context) (Stats, error) {
	logger := log.FromContext(ctx).With("run", xid.New().String())
	var stats Stats

	last, _, err := d.mark.Get(ctx)
	if err != nil {
		return stats, err
	}
	posts, err := d.store.GetPostsAfter(ctx, last)
	if err != nil {
		return stats, fmt.Errorf("failed to load posts: %w", err)
	}
	if len(posts) == 0 {
		logger.Debug("No new posts")
		return stats, nil
	}
	stats.Posts = len(posts)
	if err := d.mark.Set(ctx, posts[len(posts)-1].ID); err != nil {
		return stats, err
	}

	users, err := d.store.GetNotifiableUsers(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load users: %w", err)
	}
	if len(users) == 0 {
		logger.Debug("No users to notify", "posts", len(posts))
		return stats, nil
	}

	now := d.now()
	lapsed := make(map[uint]struct{})
	var useless []uint
	for _, post := range posts {
		content := strings.ToLower(post.Content)
		matched := false
		for i := range users {
			u := &users[i]
			if _, ok := lapsed[u.ID]; ok {
				continue
			}
			if !u.SubscriptionActive(now) {
				lapsed[u.ID] = struct{}{}
				logger.Info("Subscription ended, notifications off", "chat_id", u.ChatID)
				continue
			}
			if textmatch.Contains(phrases(u.Ignores, ignoreContent), content) {
				continue
			}
			triggers := phrases(u.Triggers, triggerContent)
			if !textmatch.Contains(triggers, content) {
				continue
			}
			matched = true
			if err := d.sender.Send(ctx, u.ChatID, d.Render(post, triggers)); err != nil {
				stats.Failed++
				logger.Error("Failed to send notification", "chat_id", u.ChatID, "post_id", post.ID, "error", err)
				continue
			}
			stats.Sent++
		}
		if !matched {
			useless = append(useless, post.ID)
		}
	}

	lapsedIDs := lo.Keys(lapsed)
	slices.Sort(lapsedIDs)
	if err := d.store.Commit(ctx, lapsedIDs, useless); err != nil {
		return stats, fmt.Errorf("failed to commit dispatch: %w", err)
	}
	stats.Lapsed = len(lapsedIDs)
	stats.Deleted = len(useless)
	logger.Info("Dispatch finished", "posts", stats.Posts, "sent", stats.Sent, "failed", stats.Failed,
		"lapsed", stats.Lapsed, "deleted", stats.Deleted)
	return stats, nil
}

// Render builds the notification for post: the lowercased content with every
// trigger in bold upper case, followed by a link to the original message.
func (d *Dispatcher) Render(post database.Post, triggers []string) []styling.StyledTextOption {
	body := strings.ToLower(post.Content)
	pieces := textmatch.Split(body, textmatch.FindMatches(triggers, body))
	text := make([]styling.StyledTextOption, 0, len(pieces)+2)
	for _, p := range pieces {
		if p.Match {
			text = append(text, styling.Bold(strings.ToUpper(p.Text)))
			continue
		}
		text = append(text, styling.Plain(p.Text))
	}
	return append(text,
		styling.Plain(" \n\n"),
		styling.TextURL(linkText, tgutil.MessageLink(post.ChannelUsername, post.MessageID)),
	)
}

func triggerContent(t database.Trigger, _ int) string { return t.Content }
func ignoreContent(i database.Ignore, _ int) string   { return i.Content }

func phrases[T any](items []T, content func(T, int) string) []string {
	return lo.Map(items, content)
}
