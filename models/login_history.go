package models

import "time"

const LoginHistoryTable = "sl_login_history"

// UnknownIP is stored when the client address cannot be determined.
const UnknownIP = "unknown"

type LoginHistory struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     string     `gorm:"type:uuid;index;not null" json:"userId"`
	LoginTime  time.Time  `gorm:"index;not null" json:"loginTime"`
	LogoutTime *time.Time `json:"logoutTime,omitempty"`
	IPAddress  string     `gorm:"size:45" json:"ipAddress"`

	CreatedAt time.Time `json:"createdAt"`
}

func (LoginHistory) TableName() string { return LoginHistoryTable }
