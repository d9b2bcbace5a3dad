package services

import (
	"context"
	"errors"
	"strings"

	"cotizador/models"
	"cotizador/repository"

	"gorm.io/gorm"
)

// QuoteService orchestrates the quote aggregate: reference validation,
// pricing and persistence in a single transaction.
type QuoteService struct {
	db *gorm.DB
}

func NewQuoteService(db *gorm.DB) *QuoteService {
	return &QuoteService{db: db}
}

// maxFolioAttempts bounds the retry loop when a generated folio races
// another process into the unique index.
const maxFolioAttempts = 3

// Create validates foreign references, prices the supplied lines and
// writes header, items and aggregate totals in one transaction. Nothing
// is persisted when validation fails.
func (s *QuoteService) Create(ctx context.Context, req models.CreateQuoteRequest) (*models.Quote, error) {
	db := s.db.WithContext(ctx)

	if err := s.validateRefs(db, req.SellerCompanyID, req.ClientID, req.SellerID); err != nil {
		return nil, err
	}

	subtotal, lineTotals, err := PriceLines(req.Products)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = "draft"
	}

	quote := models.Quote{
		Status:          status,
		SellerCompanyID: req.SellerCompanyID,
		ClientID:        req.ClientID,
		SellerID:        req.SellerID,
		Subtotal:        subtotal,
		Taxes:           req.Taxes,
		Total:           GrandTotal(subtotal, req.Taxes),
		Terms:           req.Terms,
		Items:           buildItems(req.Products, lineTotals),
	}

	for attempt := 0; attempt < maxFolioAttempts; attempt++ {
		quote.Folio = repository.GenerateFolio()
		err = db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&quote).Error
		})
		if err == nil {
			return s.Get(ctx, quote.ID)
		}
		if isUniqueViolation(err) {
			quote.ID = 0
			for i := range quote.Items {
				quote.Items[i].ID = 0
				quote.Items[i].QuoteID = 0
			}
			continue
		}
		return nil, translateStoreError(err)
	}
	return nil, translateStoreError(err)
}

// Get returns a quote with items, products and the resolved client,
// seller and seller company.
func (s *QuoteService) Get(ctx context.Context, id int) (*models.Quote, error) {
	var quote models.Quote
	err := s.preloaded(s.db.WithContext(ctx)).First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// List returns all quotes with relations, newest first.
func (s *QuoteService) List(ctx context.Context) ([]models.Quote, error) {
	var quotes []models.Quote
	err := s.preloaded(s.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// Update replaces supplied fields wholesale. When items are part of the
// payload the whole set is replaced. Subtotal and total are always
// recomputed from the resulting items and taxes inside the transaction;
// they are never accepted as input. The folio is immutable.
func (s *QuoteService) Update(ctx context.Context, id int, req models.UpdateQuoteRequest) (*models.Quote, error) {
	db := s.db.WithContext(ctx)

	if err := s.validateRefs(db, req.SellerCompanyID, req.ClientID, req.SellerID); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var quote models.Quote
		if err := tx.First(&quote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if req.SellerCompanyID != nil {
			quote.SellerCompanyID = req.SellerCompanyID
		}
		if req.ClientID != nil {
			quote.ClientID = req.ClientID
		}
		if req.SellerID != nil {
			quote.SellerID = req.SellerID
		}
		if req.Status != nil {
			quote.Status = *req.Status
		}
		if req.Taxes != nil {
			quote.Taxes = *req.Taxes
		}
		if req.Terms != nil {
			quote.Terms = *req.Terms
		}

		var subtotal float64
		if req.Products != nil {
			sub, lineTotals, err := PriceLines(*req.Products)
			if err != nil {
				return err
			}
			if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
				return err
			}
			items := buildItems(*req.Products, lineTotals)
			for i := range items {
				items[i].QuoteID = quote.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			subtotal = sub
		} else {
			var items []models.QuoteItem
			if err := tx.Where("quote_id = ?", quote.ID).Find(&items).Error; err != nil {
				return err
			}
			for _, it := range items {
				subtotal += it.Total
			}
		}

		quote.Subtotal = subtotal
		quote.Total = GrandTotal(subtotal, quote.Taxes)

		return tx.Omit("Items").Save(&quote).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return nil, err
		}
		return nil, translateStoreError(err)
	}

	return s.Get(ctx, id)
}

// Delete hard-deletes a quote and its line items.
func (s *QuoteService) Delete(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&models.QuoteItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Quote{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *QuoteService) preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_items.id ASC")
		}).
		Preload("Items.Product").
		Preload("Client").
		Preload("Seller").
		Preload("SellerCompany")
}

// validateRefs resolves each supplied foreign id before anything is
// written, so the caller gets the offending field by name instead of a
// raw constraint error.
func (s *QuoteService) validateRefs(db *gorm.DB, sellerCompanyID, clientID, sellerID *int) error {
	check := func(field string, model interface{}, id *int) error {
		if id == nil {
			return nil
		}
		var count int64
		if err := db.Model(model).Where("id = ?", *id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &ReferenceNotFoundError{Field: field}
		}
		return nil
	}
	if err := check("sellerCompanyId", &models.Company{}, sellerCompanyID); err != nil {
		return err
	}
	if err := check("clientId", &models.Client{}, clientID); err != nil {
		return err
	}
	return check("sellerId", &models.User{}, sellerID)
}

func buildItems(inputs []models.QuoteItemInput, lineTotals []float64) []models.QuoteItem {
	items := make([]models.QuoteItem, 0, len(inputs))
	for i, in := range inputs {
		description := in.Description
		if description == "" {
			description = in.Name
		}
		if strings.TrimSpace(description) == "" {
			description = "-"
		}
		items = append(items, models.QuoteItem{
			ProductID:   in.ProductID,
			Description: description,
			Qty:         in.Qty,
			UnitPrice:   in.UnitPrice,
			Discount:    in.Discount,
			Total:       lineTotals[i],
		})
	}
	return items
}
