package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"cotizador/models"
	"cotizador/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedRefs(t *testing.T, db *gorm.DB) (models.Company, models.Client, models.User) {
	t.Helper()
	company := models.Company{Name: "CONDUIT LIFE", RFC: "XAXX010101000"}
	require.NoError(t, db.Create(&company).Error)
	client := models.Client{Name: "Hospital General", Email: "compras@hospital.mx"}
	require.NoError(t, db.Create(&client).Error)
	seller := models.User{Name: "Vendedor Uno", Email: "vendedor@local", Password: "x", Role: "vendedor"}
	require.NoError(t, db.Create(&seller).Error)
	return company, client, seller
}

func TestCreateQuoteComputesTotals(t *testing.T) {
	db := newTestDB(t)
	company, client, seller := seedRefs(t, db)
	svc := NewQuoteService(db)

	quote, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		SellerCompanyID: &company.ID,
		ClientID:        &client.ID,
		SellerID:        &seller.ID,
		Products: []models.QuoteItemInput{
			{Name: "Monitor de signos vitales", Qty: 2, UnitPrice: 100, Discount: 0},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, quote.Subtotal)
	assert.Equal(t, 0.0, quote.Taxes)
	assert.Equal(t, 200.0, quote.Total)
	assert.Equal(t, "draft", quote.Status)
	assert.Regexp(t, `^F[0-9A-Z]+$`, quote.Folio)
	require.Len(t, quote.Items, 1)
	assert.Equal(t, 200.0, quote.Items[0].Total)
	assert.Equal(t, "Monitor de signos vitales", quote.Items[0].Description)
	require.NotNil(t, quote.Client)
	assert.Equal(t, client.Name, quote.Client.Name)
}

func TestCreateQuoteAddsTaxesToTotal(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	quote, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		Taxes: 32,
		Products: []models.QuoteItemInput{
			{Description: "Servicio de instalación", Qty: 1, UnitPrice: 200},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, quote.Subtotal)
	assert.Equal(t, 32.0, quote.Taxes)
	assert.Equal(t, 232.0, quote.Total)
}

func TestCreateQuoteUnknownClientPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	missing := 999
	_, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		ClientID: &missing,
		Products: []models.QuoteItemInput{{Name: "X", Qty: 1, UnitPrice: 10}},
	})

	var refErr *ReferenceNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "clientId", refErr.Field)

	var count int64
	require.NoError(t, db.Model(&models.Quote{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateQuoteInvalidLinePersistsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	_, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		Products: []models.QuoteItemInput{{Name: "X", Qty: -2, UnitPrice: 10}},
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	var count int64
	require.NoError(t, db.Model(&models.Quote{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateQuoteReplacesItemsAndRecomputes(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	quote, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		Products: []models.QuoteItemInput{{Name: "A", Qty: 2, UnitPrice: 100}},
	})
	require.NoError(t, err)

	taxes := 48.0
	updated, err := svc.Update(context.Background(), quote.ID, models.UpdateQuoteRequest{
		Taxes: &taxes,
		Products: &[]models.QuoteItemInput{
			{Name: "B", Qty: 3, UnitPrice: 100},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 300.0, updated.Subtotal)
	assert.Equal(t, 348.0, updated.Total)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "B", updated.Items[0].Description)
	assert.Equal(t, quote.Folio, updated.Folio, "folio never changes after creation")

	var orphans int64
	require.NoError(t, db.Model(&models.QuoteItem{}).Count(&orphans).Error)
	assert.EqualValues(t, 1, orphans, "replaced items must be removed")
}

func TestUpdateQuoteWithoutItemsKeepsSubtotalConsistent(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	quote, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		Taxes:    10,
		Products: []models.QuoteItemInput{{Name: "A", Qty: 2, UnitPrice: 100}},
	})
	require.NoError(t, err)

	status := "sent"
	updated, err := svc.Update(context.Background(), quote.ID, models.UpdateQuoteRequest{
		Status: &status,
	})
	require.NoError(t, err)

	assert.Equal(t, "sent", updated.Status)
	assert.Equal(t, 200.0, updated.Subtotal)
	assert.Equal(t, 210.0, updated.Total)
}

func TestUpdateQuoteNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	status := "sent"
	_, err := svc.Update(context.Background(), 4242, models.UpdateQuoteRequest{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListQuotesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	first, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		Products: []models.QuoteItemInput{{Name: "A", Qty: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		Products: []models.QuoteItemInput{{Name: "B", Qty: 1, UnitPrice: 20}},
	})
	require.NoError(t, err)

	quotes, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, second.ID, quotes[0].ID)
	assert.Equal(t, first.ID, quotes[1].ID)
}

func TestDeleteQuoteRemovesItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	quote, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		Products: []models.QuoteItemInput{{Name: "A", Qty: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), quote.ID))

	var items int64
	require.NoError(t, db.Model(&models.QuoteItem{}).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, svc.Delete(context.Background(), quote.ID), ErrNotFound)
	_, err = svc.Get(context.Background(), quote.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteItemDescriptionFallsBackToDash(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuoteService(db)

	quote, err := svc.Create(context.Background(), models.CreateQuoteRequest{
		Products: []models.QuoteItemInput{{Qty: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)
	require.Len(t, quote.Items, 1)
	assert.Equal(t, "-", quote.Items[0].Description)
}
