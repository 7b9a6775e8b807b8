package models

import (
	"time"
)

// SettingModel is the GORM model for the settings table
type SettingModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	SID        string    `gorm:"column:sid;type:varchar(50);not null;uniqueIndex"`
	Category   string    `gorm:"column:category;type:varchar(100);not null;uniqueIndex:idx_category_key"`
	SettingKey string    `gorm:"column:setting_key;type:varchar(100);not null;uniqueIndex:idx_category_key"`
	Value      string    `gorm:"column:value;type:text"`
	ValueType  string    `gorm:"column:value_type;type:varchar(20);not null;default:'string'"`
	Version    int       `gorm:"column:version;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}
