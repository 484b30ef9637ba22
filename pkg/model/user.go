package model

import "time"

// User is a login identity. RoleCredentials holds the role string exactly as
// the backend assigns it; it is matched case-insensitively at decision time.
type User struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string    `gorm:"column:name"`
	Phone           string    `gorm:"column:phone;uniqueIndex"`
	Email           string    `gorm:"column:email"`
	PasswordHash    []byte    `gorm:"column:password_hash;type:bytea"`
	RoleCredentials string    `gorm:"column:role_credentials"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
