package models

import "time"

// Quote is the priced aggregate: header plus ordered line items.
// Subtotal, taxes and total are derived server-side and are never taken
// from the client as final truth.
type Quote struct {
	ID              int         `gorm:"primaryKey" json:"id" example:"1"`
	Folio           string      `gorm:"uniqueIndex;not null" json:"folio" example:"FM2K3J8A1"`
	Status          string      `gorm:"not null;default:'draft'" json:"status" example:"draft"`
	SellerCompanyID *int        `json:"sellerCompanyId,omitempty" example:"1"`
	SellerCompany   *Company    `gorm:"foreignKey:SellerCompanyID" json:"sellerCompany,omitempty"`
	ClientID        *int        `json:"clientId,omitempty" example:"1"`
	Client          *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	SellerID        *int        `json:"sellerId,omitempty" example:"1"`
	Seller          *User       `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Subtotal        float64     `gorm:"not null;default:0" json:"subtotal" example:"200"`
	Taxes           float64     `gorm:"not null;default:0" json:"taxes" example:"0"`
	Total           float64     `gorm:"not null;default:0" json:"total" example:"200"`
	Terms           string      `json:"terms" example:"Precios en MXN"`
	Items           []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// QuoteItem is one priced row of a quote. Total is always recomputed
// from quantity, unit price and discount, never stored independently.
type QuoteItem struct {
	ID          int      `gorm:"primaryKey" json:"id" example:"1"`
	QuoteID     int      `gorm:"not null;index" json:"quoteId" example:"1"`
	ProductID   *int     `json:"productId,omitempty" example:"1"`
	Product     *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Description string   `gorm:"not null" json:"description" example:"Producto A"`
	Qty         float64  `gorm:"not null" json:"qty" example:"2"`
	UnitPrice   float64  `gorm:"not null" json:"unitPrice" example:"100"`
	Discount    float64  `gorm:"not null;default:0" json:"discount" example:"0"`
	Total       float64  `gorm:"not null" json:"total" example:"200"`
}

// EmailLog is an append-only record of an outbound quote email. Rows are
// never updated or deleted.
type EmailLog struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	To          string    `gorm:"column:to_address;not null" json:"to"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Attachments string    `json:"attachments"`
	CreatedAt   time.Time `json:"createdAt"`
}

// QuoteItemInput is one line of a create/update payload. Line totals are
// computed server-side from these fields.
type QuoteItemInput struct {
	ProductID   *int    `json:"productId,omitempty" example:"1"`
	Name        string  `json:"name,omitempty" example:"Producto A"`
	Description string  `json:"description,omitempty" example:"Producto A"`
	Qty         float64 `json:"qty" example:"2"`
	UnitPrice   float64 `json:"unitPrice" example:"100"`
	Discount    float64 `json:"discount" example:"0"`
}

// CreateQuoteRequest is the POST /api/quotes payload.
type CreateQuoteRequest struct {
	SellerCompanyID *int             `json:"sellerCompanyId,omitempty" example:"1"`
	ClientID        *int             `json:"clientId,omitempty" example:"1"`
	SellerID        *int             `json:"sellerId,omitempty" example:"1"`
	Status          string           `json:"status,omitempty" example:"draft"`
	Taxes           float64          `json:"taxes" example:"0"`
	Terms           string           `json:"terms,omitempty"`
	Products        []QuoteItemInput `json:"products"`
}

// UpdateQuoteRequest replaces supplied fields wholesale. Subtotal and
// total are not accepted: they are recomputed from the resulting items.
type UpdateQuoteRequest struct {
	SellerCompanyID *int              `json:"sellerCompanyId,omitempty"`
	ClientID        *int              `json:"clientId,omitempty"`
	SellerID        *int              `json:"sellerId,omitempty"`
	Status          *string           `json:"status,omitempty"`
	Taxes           *float64          `json:"taxes,omitempty"`
	Terms           *string           `json:"terms,omitempty"`
	Products        *[]QuoteItemInput `json:"products,omitempty"`
}

// SendQuoteEmailRequest is the POST /api/quotes/:id/send-email payload.
type SendQuoteEmailRequest struct {
	To      string `json:"to" binding:"required" example:"client@local"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}
