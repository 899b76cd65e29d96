package database

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func newTestContext() context.Context {
	logger := log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: false})
	return log.WithContext(context.Background(), logger)
}

func setupDB(t *testing.T) context.Context {
	t.Helper()
	ctx := newTestContext()
	if err := Open(ctx, GetDialect(filepath.Join(t.TempDir(), "test.db"))); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { Close() })
	return ctx
}

func TestSyncAdmins(t *testing.T) {
	ctx := setupDB(t)
	if _, err := CreateUser(ctx, 1, "old", "", 3); err != nil {
		t.Fatal(err)
	}
	if err := syncAdmins(ctx, []int64{1}); err != nil {
		t.Fatalf("syncAdmins: %v", err)
	}
	u, err := GetUserByChatID(ctx, 1)
	if err != nil || !u.IsAdmin {
		t.Fatalf("expected user 1 to be admin, got %+v err=%v", u, err)
	}

	if err := syncAdmins(ctx, []int64{2}); err != nil {
		t.Fatalf("syncAdmins: %v", err)
	}
	u, _ = GetUserByChatID(ctx, 1)
	if u.IsAdmin {
		t.Fatal("expected admin flag revoked for user 1")
	}
	u, err = GetUserByChatID(ctx, 2)
	if err != nil || !u.IsAdmin {
		t.Fatalf("expected user 2 created as admin, got %+v err=%v", u, err)
	}
}

func TestUserPhrases(t *testing.T) {
	ctx := setupDB(t)
	u, err := CreateUser(ctx, 10, "Ann", "ann", 3)
	if err != nil {
		t.Fatal(err)
	}

	n, err := AddTriggers(ctx, u.ID, []string{" Sale ", "sale", "", "flat"})
	if err != nil || n != 2 {
		t.Fatalf("expected 2 triggers added, got %d err=%v", n, err)
	}
	n, err = AddTriggers(ctx, u.ID, []string{"SALE", "car"})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 new trigger, got %d err=%v", n, err)
	}
	if _, err := AddIgnores(ctx, u.ID, []string{"rent"}); err != nil {
		t.Fatal(err)
	}

	got, err := GetUserByChatID(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Triggers) != 3 || len(got.Ignores) != 1 {
		t.Fatalf("expected 3 triggers and 1 ignore, got %d and %d", len(got.Triggers), len(got.Ignores))
	}

	if err := DeleteTrigger(ctx, u.ID, got.Triggers[0].ID); err != nil {
		t.Fatalf("DeleteTrigger: %v", err)
	}
	if err := DeleteTrigger(ctx, u.ID, got.Triggers[0].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := DeleteIgnore(ctx, u.ID+1, got.Ignores[0].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for another user's ignore, got %v", err)
	}
}

func TestNotifiableUsersAndCommit(t *testing.T) {
	ctx := setupDB(t)
	a, _ := CreateUser(ctx, 1, "a", "", 3)
	b, _ := CreateUser(ctx, 2, "b", "", 3)
	if err := SetNotifications(ctx, a.ID, true); err != nil {
		t.Fatal(err)
	}
	if err := SetNotifications(ctx, b.ID, true); err != nil {
		t.Fatal(err)
	}

	p1 := &Post{MessageID: 1, ChannelUsername: "@ch", Content: "one"}
	p2 := &Post{MessageID: 2, ChannelUsername: "@ch", Content: "two"}
	for _, p := range []*Post{p1, p2} {
		if err := CreatePost(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	posts, err := GetPostsAfter(ctx, p1.ID)
	if err != nil || len(posts) != 1 || posts[0].ID != p2.ID {
		t.Fatalf("expected only the second post, got %v err=%v", posts, err)
	}

	if err := CommitDispatch(ctx, []uint{b.ID}, []uint{p1.ID}); err != nil {
		t.Fatalf("CommitDispatch: %v", err)
	}
	users, err := GetNotifiableUsers(ctx)
	if err != nil || len(users) != 1 || users[0].ID != a.ID {
		t.Fatalf("expected only user a notifiable, got %v err=%v", users, err)
	}
	if n, _ := CountPosts(ctx); n != 1 {
		t.Fatalf("expected 1 post left, got %d", n)
	}
}

func TestCatchers(t *testing.T) {
	ctx := setupDB(t)
	c := &Catcher{Phone: "79990001122", AppID: 1, AppHash: "0123456789abcdef0123456789abcdef", IsConnected: true}
	if err := CreateCatcher(ctx, c); err != nil {
		t.Fatal(err)
	}
	exists, err := CatcherExists(ctx, c.AppHash, "other")
	if err != nil || !exists {
		t.Fatalf("expected catcher to exist by app hash, got %v err=%v", exists, err)
	}

	all, _ := GetAllCatchers(ctx)
	all[0].IsConnected = false
	if err := SaveCatchers(ctx, all); err != nil {
		t.Fatal(err)
	}
	got, err := GetCatcher(ctx, c.ID)
	if err != nil || got.IsConnected {
		t.Fatalf("expected catcher disconnected, got %+v err=%v", got, err)
	}

	if err := DeleteCatcher(ctx, got); err != nil {
		t.Fatal(err)
	}
	if _, err := GetCatcher(ctx, c.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	// the phone can be registered again
	if err := CreateCatcher(ctx, &Catcher{Phone: c.Phone, AppID: 1, AppHash: c.AppHash}); err != nil {
		t.Fatalf("re-register: %v", err)
	}
}

func TestChannels(t *testing.T) {
	ctx := setupDB(t)
	n, err := AddChannels(ctx, []MonitoringChannel{{Username: "@a"}, {Username: "@b", ChannelID: 42}})
	if err != nil || n != 2 {
		t.Fatalf("expected 2 channels added, got %d err=%v", n, err)
	}
	n, err = AddChannels(ctx, []MonitoringChannel{{Username: "@a"}, {Username: "@c"}})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 channel added, got %d err=%v", n, err)
	}
	ok, err := DeleteChannel(ctx, "@b")
	if err != nil || !ok {
		t.Fatalf("expected @b deleted, got %v err=%v", ok, err)
	}
	chs, _ := GetAllChannels(ctx)
	if len(chs) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(chs))
	}
}

func TestExtendSubscription(t *testing.T) {
	ctx := setupDB(t)
	u, _ := CreateUser(ctx, 5, "", "", 0)
	got, err := ExtendSubscription(ctx, u.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	if !got.SubscriptionActive(time.Now()) || got.SubDays != 30 {
		t.Fatalf("expected active 30 day subscription, got %+v", got)
	}
}

func TestRedisWatermark(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := newTestContext()
	w := NewRedisWatermark(rdb)

	if _, ok, err := w.Get(ctx); ok || err != nil {
		t.Fatalf("expected unset watermark, got ok=%v err=%v", ok, err)
	}
	if err := w.Set(ctx, 42); err != nil {
		t.Fatal(err)
	}
	id, ok, err := w.Get(ctx)
	if err != nil || !ok || id != 42 {
		t.Fatalf("expected 42, got %d ok=%v err=%v", id, ok, err)
	}
	if v, _ := mr.Get(LastPostIDKey); v != "42" {
		t.Fatalf("unexpected raw value %q", v)
	}

	mr.Set(LastPostIDKey, "garbage")
	if _, _, err := w.Get(ctx); err == nil {
		t.Fatal("expected error for a corrupt watermark")
	}
}
