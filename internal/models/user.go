package models

import "time"

type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string     `gorm:"not null" json:"-"`
	MustChangePassword bool       `gorm:"not null;default:false" json:"must_change_password"`
	GoogleAccessToken  string     `json:"-"`
	GoogleRefreshToken string     `json:"-"`
	GoogleTokenExpiry  *time.Time `json:"-"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
}

// HasCalendarToken reports whether the user linked a Google account.
func (user User) HasCalendarToken() bool {
	return user.GoogleAccessToken != "" || user.GoogleRefreshToken != ""
}
