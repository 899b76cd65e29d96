package dispatch

import (
	"context"

	"github.com/postcatcher/postcatcher-bot/database"
)

// DBStore is the Store backed by the database package.
type DBStore struct{}

func (DBStore) GetPostsAfter(ctx context.Context, afterID uint) ([]database.Post, error) {
	return database.GetPostsAfter(ctx, afterID)
}

func (DBStore) GetNotifiableUsers(ctx context.Context) ([]database.User, error) {
	return database.GetNotifiableUsers(ctx)
}

func (DBStore) Commit(ctx context.Context, lapsedUserIDs, uselessPostIDs []uint) error {
	return database.CommitDispatch(ctx, lapsedUserIDs, uselessPostIDs)
}
