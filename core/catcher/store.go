package catcher

import (
	"context"

	"github.com/postcatcher/postcatcher-bot/database"
)

// DBStore is the Store backed by the database package.
type DBStore struct{}

func (DBStore) GetCatcher(ctx context.Context, id uint) (*database.Catcher, error) {
	return database.GetCatcher(ctx, id)
}

func (DBStore) GetAllCatchers(ctx context.Context) ([]database.Catcher, error) {
	return database.GetAllCatchers(ctx)
}

func (DBStore) CatcherExists(ctx context.Context, appHash, phone string) (bool, error) {
	return database.CatcherExists(ctx, appHash, phone)
}

func (DBStore) CreateCatcher(ctx context.Context, c *database.Catcher) error {
	return database.CreateCatcher(ctx, c)
}

func (DBStore) SaveCatcher(ctx context.Context, c *database.Catcher) error {
	return database.SaveCatcher(ctx, c)
}

func (DBStore) SaveCatchers(ctx context.Context, cs []database.Catcher) error {
	return database.SaveCatchers(ctx, cs)
}

func (DBStore) DeleteCatcher(ctx context.Context, c *database.Catcher) error {
	return database.DeleteCatcher(ctx, c)
}
