package database

import (
	"context"

	"gorm.io/gorm/clause"
)

func GetAllChannels(ctx context.Context) ([]MonitoringChannel, error) {
	var channels []MonitoringChannel
	err := db.WithContext(ctx).Order("id").Find(&channels).Error
	return channels, err
}

// AddChannels inserts the channels whose username is not monitored yet and
// returns how many were added.
func AddChannels(ctx context.Context, channels []MonitoringChannel) (int, error) {
	if len(channels) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&channels)
	return int(res.RowsAffected), res.Error
}

func DeleteChannel(ctx context.Context, username string) (bool, error) {
	res := db.WithContext(ctx).Unscoped().Where("username = ?", username).Delete(&MonitoringChannel{})
	return res.RowsAffected > 0, res.Error
}
