package models

const DefaultCalendarColor = "#9381ff"

// PrimaryCalendarID is fetched when the user saved no calendar preferences.
const PrimaryCalendarID = "primary"

type CalendarSetting struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	UserID    uint   `gorm:"not null;uniqueIndex:uidx_calendar_setting_user_google" json:"-"`
	GoogleID  string `gorm:"not null;uniqueIndex:uidx_calendar_setting_user_google" json:"google_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsVisible bool   `gorm:"not null" json:"is_visible"`
}

// CalendarEvent is fetched live from Google and never persisted.
type CalendarEvent struct {
	ID         string `json:"id"`
	CalendarID string `json:"calendar_id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Time       string `json:"time,omitempty"`
	Color      string `json:"color"`
	AllDay     bool   `json:"is_all_day"`
}
