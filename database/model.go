package database

import (
	"time"

	"gorm.io/gorm"
)

// Catcher is a Telegram user account whose process scrapes monitored channels.
type Catcher struct {
	gorm.Model
	Name        string
	Phone       string `gorm:"uniqueIndex;not null"`
	AppID       int
	AppHash     string `gorm:"size:32;index"`
	SessionPath string
	IsConnected bool
}

// MonitoringChannel is a channel the catchers read.
type MonitoringChannel struct {
	gorm.Model
	Username  string `gorm:"uniqueIndex;not null"`
	ChannelID int64
	Title     string
}

// Post is a channel message captured by a catcher. ID orders posts for dispatch.
type Post struct {
	ID              uint `gorm:"primarykey"`
	CreatedAt       time.Time
	MessageID       int64
	ChannelUsername string
	Content         string
}

type User struct {
	gorm.Model
	ChatID               int64 `gorm:"uniqueIndex;not null"`
	Name                 string
	Username             string
	IsAdmin              bool
	ReceiveNotifications bool
	SubStart             time.Time
	SubDays              int
	Triggers             []Trigger `gorm:"constraint:OnDelete:CASCADE"`
	Ignores              []Ignore  `gorm:"constraint:OnDelete:CASCADE"`
}

// SubscriptionEnd is when the paid or trial period runs out.
func (u *User) SubscriptionEnd() time.Time {
	return u.SubStart.AddDate(0, 0, u.SubDays)
}

func (u *User) SubscriptionActive(now time.Time) bool {
	return u.SubscriptionEnd().After(now)
}

// Trigger is a phrase that makes a post interesting to its user.
type Trigger struct {
	ID      uint `gorm:"primarykey"`
	UserID  uint `gorm:"index"`
	Content string
}

// Ignore is a phrase that suppresses a post for its user.
type Ignore struct {
	ID      uint `gorm:"primarykey"`
	UserID  uint `gorm:"index"`
	Content string
}
