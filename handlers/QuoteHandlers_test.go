package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"cotizador/models"
	"cotizador/services"
	"cotizador/storage"
	"cotizador/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeTransport struct {
	sent int
	to   []string
	msg  []byte
	err  error
}

func (f *fakeTransport) SendMail(_ string, _ smtp.Auth, _ string, to []string, msg []byte) error {
	f.sent++
	f.to = to
	f.msg = msg
	return f.err
}

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	transport *fakeTransport
	token     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	transport := &fakeTransport{}
	quoteService := services.NewQuoteService(db)
	renderer := services.NewRenderer(services.LoadBrandingTable(), 0.16)
	converter := services.NewFpdfConverter()
	mailer := services.NewEmailServiceWithTransport(db, "ventas@example.com", transport)

	router := gin.New()
	api := router.Group("/api")
	auth := api.Group("")
	auth.Use(AuthRequired())
	{
		auth.GET("/quotes", GetQuotes(quoteService))
		auth.GET("/quotes/:id", GetQuoteByID(quoteService))
		auth.POST("/quotes", CreateQuote(quoteService))
		auth.PUT("/quotes/:id", UpdateQuote(quoteService))
		auth.DELETE("/quotes/:id", DeleteQuote(quoteService))
		auth.GET("/quotes/:id/pdf", DownloadQuotePDF(quoteService, renderer, converter))
		auth.POST("/quotes/:id/send-email", SendQuoteEmail(quoteService, renderer, converter, mailer))
		auth.POST("/quotes/:id/send-email-with-pdf", SendQuoteEmailWithPDF(quoteService, mailer))

		auth.GET("/products", GetProducts(db))
		auth.POST("/products", RequireRole("admin", "jefe"), CreateProduct(db))
		auth.POST("/products/batch", RequireRole("admin", "jefe"), BatchUpsertProducts(db))
	}

	token, err := utils.GenerateJWT(1, "admin")
	require.NoError(t, err)

	return &testEnv{router: router, db: db, transport: transport, token: token}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.Response {
	t.Helper()
	var resp models.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func dataMap(t *testing.T, resp models.Response) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", resp.Data)
	return m
}

func TestCreateQuoteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	client := models.Client{Name: "Hospital General"}
	require.NoError(t, env.db.Create(&client).Error)

	w := env.request(t, http.MethodPost, "/api/quotes", gin.H{
		"clientId": client.ID,
		"products": []gin.H{
			{"name": "Monitor", "qty": 2, "unitPrice": 100, "discount": 0},
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := dataMap(t, resp)
	assert.Equal(t, 200.0, data["subtotal"])
	assert.Equal(t, 200.0, data["total"])
	assert.Equal(t, "draft", data["status"])
	folio, _ := data["folio"].(string)
	assert.Regexp(t, `^F[0-9A-Z]+$`, folio)
}

func TestCreateQuoteEndpointUnknownReference(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/quotes", gin.H{
		"clientId": 999,
		"products": []gin.H{{"name": "X", "qty": 1, "unitPrice": 10}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "clientId")
}

func TestGetQuoteEndpointNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/quotes/999", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Not found", resp.Error)
}

func TestUpdateQuoteEndpointRecomputesTotals(t *testing.T) {
	env := newTestEnv(t)

	created := decodeResponse(t, env.request(t, http.MethodPost, "/api/quotes", gin.H{
		"products": []gin.H{{"name": "A", "qty": 2, "unitPrice": 100}},
	}))
	id := int(dataMap(t, created)["id"].(float64))

	w := env.request(t, http.MethodPut, fmt.Sprintf("/api/quotes/%d", id), gin.H{
		"taxes":    48,
		"products": []gin.H{{"name": "B", "qty": 3, "unitPrice": 100}},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, decodeResponse(t, w))
	assert.Equal(t, 300.0, data["subtotal"])
	assert.Equal(t, 348.0, data["total"])
}

func TestDeleteQuoteEndpointTwice(t *testing.T) {
	env := newTestEnv(t)

	created := decodeResponse(t, env.request(t, http.MethodPost, "/api/quotes", gin.H{
		"products": []gin.H{{"name": "A", "qty": 1, "unitPrice": 10}},
	}))
	id := int(dataMap(t, created)["id"].(float64))

	first := env.request(t, http.MethodDelete, fmt.Sprintf("/api/quotes/%d", id), nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := env.request(t, http.MethodDelete, fmt.Sprintf("/api/quotes/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, second.Code)
}

func TestDownloadQuotePDFEndpoint(t *testing.T) {
	env := newTestEnv(t)

	created := decodeResponse(t, env.request(t, http.MethodPost, "/api/quotes", gin.H{
		"products": []gin.H{{"name": "Monitor", "qty": 2, "unitPrice": 100}},
	}))
	data := dataMap(t, created)
	id := int(data["id"].(float64))
	folio := data["folio"].(string)

	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/quotes/%d/pdf", id), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "quote-"+folio+".pdf")
	assert.Equal(t, "%PDF", w.Body.String()[:4])
}

func TestSendQuoteEmailEndpoint(t *testing.T) {
	env := newTestEnv(t)
	company := models.Company{Name: "CONDUIT LIFE"}
	require.NoError(t, env.db.Create(&company).Error)

	created := decodeResponse(t, env.request(t, http.MethodPost, "/api/quotes", gin.H{
		"sellerCompanyId": company.ID,
		"products":        []gin.H{{"name": "Monitor", "qty": 2, "unitPrice": 100}},
	}))
	data := dataMap(t, created)
	id := int(data["id"].(float64))
	folio := data["folio"].(string)

	w := env.request(t, http.MethodPost, fmt.Sprintf("/api/quotes/%d/send-email", id), gin.H{
		"to":      "cliente@hospital.mx",
		"message": "Saludos cordiales",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Email enviado", resp.Message)
	assert.NotEmpty(t, dataMap(t, resp)["messageId"])

	assert.Equal(t, 1, env.transport.sent)
	assert.Equal(t, []string{"cliente@hospital.mx"}, env.transport.to)
	msg := string(env.transport.msg)
	assert.Contains(t, msg, "cotizacion-"+folio+".pdf")

	var logs []models.EmailLog
	require.NoError(t, env.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "cliente@hospital.mx", logs[0].To)
	assert.Equal(t, "Cotización "+folio+" - CONDUIT LIFE", logs[0].Subject)
	assert.Equal(t, "cotizacion-"+folio+".pdf", logs[0].Attachments)
}

func TestSendQuoteEmailEndpointTransportFailure(t *testing.T) {
	env := newTestEnv(t)
	env.transport.err = fmt.Errorf("connection refused")

	created := decodeResponse(t, env.request(t, http.MethodPost, "/api/quotes", gin.H{
		"products": []gin.H{{"name": "A", "qty": 1, "unitPrice": 10}},
	}))
	id := int(dataMap(t, created)["id"].(float64))

	w := env.request(t, http.MethodPost, fmt.Sprintf("/api/quotes/%d/send-email", id), gin.H{
		"to": "cliente@hospital.mx",
	})

	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "connection refused")
}

func TestSendQuoteEmailWithPDFEndpoint(t *testing.T) {
	env := newTestEnv(t)

	created := decodeResponse(t, env.request(t, http.MethodPost, "/api/quotes", gin.H{
		"products": []gin.H{{"name": "A", "qty": 1, "unitPrice": 10}},
	}))
	id := int(dataMap(t, created)["id"].(float64))

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("pdf", "pre-rendered.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 uploaded"))
	require.NoError(t, err)
	require.NoError(t, form.WriteField("to", "cliente@hospital.mx"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/quotes/%d/send-email-with-pdf", id), &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.Equal(t, "Email enviado con PDF adjunto", resp.Message)
	assert.Equal(t, 1, env.transport.sent)
	assert.Contains(t, string(env.transport.msg), "pre-rendered.pdf")
}
