package database

import "context"

func GetCatcher(ctx context.Context, id uint) (*Catcher, error) {
	var c Catcher
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func GetCatcherByPhone(ctx context.Context, phone string) (*Catcher, error) {
	var c Catcher
	if err := db.WithContext(ctx).Where("phone = ?", phone).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func GetAllCatchers(ctx context.Context) ([]Catcher, error) {
	var catchers []Catcher
	err := db.WithContext(ctx).Order("id").Find(&catchers).Error
	return catchers, err
}

// CatcherExists reports whether a catcher with the same app hash or phone is registered.
func CatcherExists(ctx context.Context, appHash, phone string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&Catcher{}).
		Where("app_hash = ? OR phone = ?", appHash, phone).
		Count(&count).Error
	return count > 0, err
}

func CreateCatcher(ctx context.Context, c *Catcher) error {
	return db.WithContext(ctx).Create(c).Error
}

func SaveCatcher(ctx context.Context, c *Catcher) error {
	return db.WithContext(ctx).Save(c).Error
}

// SaveCatchers persists the connection state of every catcher in one transaction.
func SaveCatchers(ctx context.Context, catchers []Catcher) error {
	if len(catchers) == 0 {
		return nil
	}
	return db.WithContext(ctx).Save(&catchers).Error
}

func DeleteCatcher(ctx context.Context, c *Catcher) error {
	return db.WithContext(ctx).Unscoped().Delete(c).Error
}
