package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// Init opens the sqlite database at path, migrates it and syncs the admin flags.
func Init(ctx context.Context, path string, admins []int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := Open(ctx, GetDialect(path)); err != nil {
		return err
	}
	if err := syncAdmins(ctx, admins); err != nil {
		return fmt.Errorf("failed to sync admins: %w", err)
	}
	log.FromContext(ctx).Info("Database initialized", "path", path)
	return nil
}

// Open connects through dialector and migrates the schema.
func Open(ctx context.Context, dialector gorm.Dialector) error {
	logger := log.FromContext(ctx)
	var err error
	db, err = gorm.Open(dialector, &gorm.Config{
		Logger: glogger.New(logger, glogger.Config{
			Colorful:                  true,
			SlowThreshold:             time.Second * 5,
			LogLevel:                  glogger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		PrepareStmt: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("Database connected")
	if err := db.AutoMigrate(&User{}, &Trigger{}, &Ignore{}, &Catcher{}, &MonitoringChannel{}, &Post{}); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	logger.Debug("Database migrated")
	return nil
}

func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func syncAdmins(ctx context.Context, admins []int64) error {
	logger := log.FromContext(ctx)
	cfgAdmins := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		cfgAdmins[id] = struct{}{}
	}

	var flagged []User
	if err := db.WithContext(ctx).Where("is_admin = ?", true).Find(&flagged).Error; err != nil {
		return err
	}
	for _, u := range flagged {
		if _, ok := cfgAdmins[u.ChatID]; ok {
			delete(cfgAdmins, u.ChatID)
			continue
		}
		if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", u.ID).Update("is_admin", false).Error; err != nil {
			return fmt.Errorf("failed to revoke admin %d: %w", u.ChatID, err)
		}
		logger.Infof("Revoked admin not present in config: %d", u.ChatID)
	}

	for chatID := range cfgAdmins {
		user, err := GetUserByChatID(ctx, chatID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = &User{ChatID: chatID, SubStart: time.Now()}
		} else if err != nil {
			return err
		}
		user.IsAdmin = true
		if err := db.WithContext(ctx).Save(user).Error; err != nil {
			return fmt.Errorf("failed to save admin %d: %w", chatID, err)
		}
		logger.Infof("Granted admin from config: %d", chatID)
	}
	return nil
}
