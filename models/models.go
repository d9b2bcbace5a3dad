package models

import (
	"encoding/json"
	"time"
)

// User represents an application user. Password is a bcrypt hash and is
// never serialized in responses.
type User struct {
	ID              int       `gorm:"primaryKey" json:"id" example:"1"`
	Name            string    `gorm:"not null" json:"name" example:"Administrador"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email" example:"admin@local"`
	Password        string    `gorm:"not null" json:"-"`
	Role            string    `gorm:"not null;default:'vendedor'" json:"role" example:"vendedor"`
	CanModifyPrices bool      `gorm:"default:false" json:"canModifyPrices" example:"false"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Company is a seller company that appears as letterhead on quotes.
type Company struct {
	ID        int       `gorm:"primaryKey" json:"id" example:"1"`
	Name      string    `gorm:"not null" json:"name" example:"Empresa Demo"`
	Address   string    `json:"address" example:"Calle 1"`
	Phone     string    `json:"phone" example:"555-0000"`
	RFC       string    `gorm:"column:rfc" json:"rfc" example:"XAXX010101000"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Client is a customer that quotes are addressed to.
type Client struct {
	ID        int       `gorm:"primaryKey" json:"id" example:"1"`
	Name      string    `gorm:"not null" json:"name" example:"Cliente Demo"`
	Email     string    `json:"email" example:"client@local"`
	Phone     string    `json:"phone" example:"555-1111"`
	Address   string    `json:"address" example:"Calle cliente"`
	CompanyID *int      `json:"companyId,omitempty" example:"1"`
	Company   *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is a catalog entry that quote line items may reference.
type Product struct {
	ID          int             `gorm:"primaryKey" json:"id" example:"1"`
	SKU         string          `gorm:"column:sku;uniqueIndex;not null" json:"sku" example:"P-001"`
	Name        string          `gorm:"not null" json:"name" example:"Producto A"`
	Description string          `json:"description" example:"Ejemplo A"`
	BasePrice   float64         `gorm:"not null;default:0" json:"basePrice" example:"100"`
	Unit        string          `gorm:"not null;default:'pcs'" json:"unit" example:"pcs"`
	ImageURL    *string         `gorm:"column:image_url" json:"imageUrl,omitempty"`
	Metadata    json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty" swaggertype:"object"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Session binds a refresh token to a device login. Expired rows are
// removed by the daily maintenance job.
type Session struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;index" json:"userId"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
