package database

import (
	"context"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/slice"
	"gorm.io/gorm"
)

// CreateUser registers chatID with a trial subscription and notifications off.
func CreateUser(ctx context.Context, chatID int64, name, username string, trialDays int) (*User, error) {
	user := &User{
		ChatID:   chatID,
		Name:     name,
		Username: username,
		SubStart: time.Now(),
		SubDays:  trialDays,
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByChatID(ctx context.Context, chatID int64) (*User, error) {
	var user User
	err := db.WithContext(ctx).
		Preload("Triggers").
		Preload("Ignores").
		Where("chat_id = ?", chatID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUser(ctx context.Context, user *User) error {
	return db.WithContext(ctx).Omit("Triggers", "Ignores").Save(user).Error
}

func SetNotifications(ctx context.Context, userID uint, on bool) error {
	return db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("receive_notifications", on).Error
}

// ExtendSubscription adds days to the subscription, restarting it if it already ran out.
func ExtendSubscription(ctx context.Context, userID uint, days int) (*User, error) {
	var user User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		now := time.Now()
		if !user.SubscriptionActive(now) {
			user.SubStart = now
			user.SubDays = 0
		}
		user.SubDays += days
		return tx.Model(&user).Updates(map[string]any{"sub_start": user.SubStart, "sub_days": user.SubDays}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetNotifiableUsers returns users with notifications on, phrases preloaded.
func GetNotifiableUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := db.WithContext(ctx).
		Preload("Triggers").
		Preload("Ignores").
		Where("receive_notifications = ?", true).
		Order("id").
		Find(&users).Error
	return users, err
}

func DeleteUser(ctx context.Context, user *User) error {
	return db.WithContext(ctx).Select("Triggers", "Ignores").Unscoped().Delete(user).Error
}

// NormalizePhrases lowercases, trims and dedupes phrases, dropping empty ones.
func NormalizePhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return slice.Unique(out)
}

// AddTriggers stores the phrases the user does not have yet and returns how many were added.
func AddTriggers(ctx context.Context, userID uint, phrases []string) (int, error) {
	var existing []Trigger
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return 0, err
	}
	have := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		have[t.Content] = struct{}{}
	}
	var rows []Trigger
	for _, p := range NormalizePhrases(phrases) {
		if _, ok := have[p]; !ok {
			rows = append(rows, Trigger{UserID: userID, Content: p})
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows), db.WithContext(ctx).Create(&rows).Error
}

func DeleteTrigger(ctx context.Context, userID, id uint) error {
	res := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Trigger{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func AddIgnores(ctx context.Context, userID uint, phrases []string) (int, error) {
	var existing []Ignore
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return 0, err
	}
	have := make(map[string]struct{}, len(existing))
	for _, i := range existing {
		have[i.Content] = struct{}{}
	}
	var rows []Ignore
	for _, p := range NormalizePhrases(phrases) {
		if _, ok := have[p]; !ok {
			rows = append(rows, Ignore{UserID: userID, Content: p})
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows), db.WithContext(ctx).Create(&rows).Error
}

func DeleteIgnore(ctx context.Context, userID, id uint) error {
	res := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Ignore{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
