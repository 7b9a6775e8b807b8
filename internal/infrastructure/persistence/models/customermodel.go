package models

import (
	"time"

	"gorm.io/datatypes"
)

type CustomerModel struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"index;not null;default:0"`
	Username       string `gorm:"uniqueIndex;size:60;not null"`
	Email          string `gorm:"index;size:255"`
	PasswordHash   string `gorm:"size:255"`
	BillingAddress datatypes.JSONType[BillingAddress]
	VIP            bool `gorm:"column:vip;not null;default:false"`
	LastLogin      *time.Time
	IPs            datatypes.JSONSlice[string] `gorm:"column:ips"`
	Version        int                         `gorm:"not null;default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (CustomerModel) TableName() string {
	return "customers"
}

type BillingAddress struct {
	CompanyName string `json:"company_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
	Country     string `json:"country,omitempty"`
}
