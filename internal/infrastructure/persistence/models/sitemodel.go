package models

import (
	"time"

	"gorm.io/datatypes"
)

type SiteModel struct {
	ID            uint   `gorm:"primaryKey"`
	BlogID        *uint  `gorm:"uniqueIndex"`
	CustomerID    uint   `gorm:"index;not null"`
	MembershipID  uint   `gorm:"index;not null"`
	Domain        string `gorm:"size:255;not null;uniqueIndex:idx_site_domain_path"`
	Path          string `gorm:"size:255;not null;uniqueIndex:idx_site_domain_path"`
	Title         string `gorm:"size:255;not null"`
	TemplateID    uint   `gorm:"not null;default:0"`
	Type          string `gorm:"size:30;not null"`
	Status        string `gorm:"size:20;not null;index"`
	SignupMeta    datatypes.JSONMap
	SignupOptions datatypes.JSONMap
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

func (SiteModel) TableName() string {
	return "sites"
}
