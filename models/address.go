package models

import "gorm.io/gorm"

type Address struct {
	gorm.Model
	UserID     uint   `gorm:"not null;index"`
	Label      string `gorm:"type:varchar(100);not null"`
	Street     string `gorm:"type:varchar(255)"`
	City       string `gorm:"type:varchar(100)"`
	State      string `gorm:"type:varchar(100)"`
	Country    string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`

	User   User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Images []AddressImage `gorm:"constraint:OnDelete:CASCADE"`
}

func (Address) TableName() string {
	return "user_addresses"
}

// AddressImage stores the S3 object key, not a URL; presigned URLs are minted
// on read.
type AddressImage struct {
	gorm.Model
	AddressID   uint   `gorm:"not null;index"`
	ImageKey    string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:varchar(255)"`
}

func (AddressImage) TableName() string {
	return "address_images"
}
