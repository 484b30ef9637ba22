package model

import "time"

// PolicyVersion represents a version of a loaded policy
type PolicyVersion struct {
	Version      int       `gorm:"column:version;primaryKey;autoIncrement"`
	PolicyText   string    `gorm:"column:policy_text"`
	PolicySHA256 string    `gorm:"column:policy_sha256"`
	Source       string    `gorm:"column:source"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PolicyVersion) TableName() string {
	return "policy_versions"
}
