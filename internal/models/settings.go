package models

import "time"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type AppSettings struct {
	UserID       uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	ShowStats    bool      `gorm:"not null" json:"show_stats"`
	ShowCalendar bool      `gorm:"not null" json:"show_calendar"`
	ShowSports   bool      `gorm:"not null" json:"show_sports"`
	Theme        string    `gorm:"not null" json:"theme"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func DefaultAppSettings(userID uint) AppSettings {
	return AppSettings{
		UserID:       userID,
		ShowStats:    true,
		ShowCalendar: true,
		ShowSports:   true,
		Theme:        ThemeLight,
	}
}

func (AppSettings) TableName() string {
	return "app_settings"
}
