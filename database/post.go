package database

import (
	"context"

	"gorm.io/gorm"
)

func CreatePost(ctx context.Context, post *Post) error {
	return db.WithContext(ctx).Create(post).Error
}

// GetPostsAfter returns posts with an id above afterID in id order.
func GetPostsAfter(ctx context.Context, afterID uint) ([]Post, error) {
	var posts []Post
	err := db.WithContext(ctx).Where("id > ?", afterID).Order("id").Find(&posts).Error
	return posts, err
}

func CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&Post{}).Count(&n).Error
	return n, err
}

// CommitDispatch applies the result of one notification run atomically:
// lapsed users stop receiving notifications and unmatched posts are dropped.
func CommitDispatch(ctx context.Context, lapsedUserIDs, uselessPostIDs []uint) error {
	if len(lapsedUserIDs) == 0 && len(uselessPostIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(lapsedUserIDs) > 0 {
			err := tx.Model(&User{}).Where("id IN ?", lapsedUserIDs).Update("receive_notifications", false).Error
			if err != nil {
				return err
			}
		}
		if len(uselessPostIDs) > 0 {
			if err := tx.Where("id IN ?", uselessPostIDs).Delete(&Post{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
