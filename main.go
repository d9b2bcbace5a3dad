// @title           Cotizador API
// @version         1.0
// @description     Quoting/invoicing backend - users, companies, clients, products and sales quotes with PDF email delivery.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	_ "cotizador/docs"
	"cotizador/handlers"
	"cotizador/services"
	"cotizador/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		origins = append([]string{frontend}, origins...)
	}
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization",
		"Cache-Control", "Referer",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

func taxRateFromEnv() float64 {
	if raw := os.Getenv("QUOTE_TAX_RATE"); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil && rate >= 0 {
			return rate
		}
		log.Printf("Invalid QUOTE_TAX_RATE %q, falling back to default", raw)
	}
	return 0.16
}

func main() {
	db := storage.InitDB()
	gormDB := storage.InitGormDB(db)

	quoteSvc := services.NewQuoteService(gormDB)
	renderer := services.NewRenderer(services.LoadBrandingTable(), taxRateFromEnv())
	converter := services.NewFpdfConverter()
	mailer := services.NewEmailService(gormDB)

	// Daily maintenance: drop expired refresh sessions.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err := c.AddFunc("30 3 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		if err := storage.CleanupExpiredSessions(db); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.Use(cors.New(CORSConfig()))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	api.POST("/auth/login", handlers.LoginHandler(db))
	api.POST("/auth/refresh", handlers.RefreshHandler(db))
	api.POST("/auth/logout", handlers.LogoutHandler(db))

	auth := api.Group("", handlers.AuthRequired())

	auth.GET("/config/roles", handlers.GetRoles())

	auth.GET("/users", handlers.GetUsers(gormDB))
	auth.GET("/users/:id", handlers.GetUserByID(gormDB))
	auth.POST("/users", handlers.RequireRole("admin", "jefe"), handlers.CreateUser(gormDB))
	auth.PUT("/users/:id", handlers.RequireRole("admin", "jefe"), handlers.UpdateUser(gormDB))
	auth.DELETE("/users/:id", handlers.RequireRole("admin"), handlers.DeleteUser(gormDB))

	auth.GET("/clients", handlers.GetClients(gormDB))
	auth.GET("/clients/:id", handlers.GetClientByID(gormDB))
	auth.POST("/clients", handlers.CreateClient(gormDB))
	auth.PUT("/clients/:id", handlers.UpdateClient(gormDB))
	auth.DELETE("/clients/:id", handlers.DeleteClient(gormDB))

	auth.GET("/companies", handlers.GetCompanies(gormDB))
	auth.GET("/companies/:id", handlers.GetCompanyByID(gormDB))
	auth.POST("/companies", handlers.RequireRole("admin", "jefe"), handlers.CreateCompany(gormDB))
	auth.PUT("/companies/:id", handlers.RequireRole("admin", "jefe"), handlers.UpdateCompany(gormDB))
	auth.DELETE("/companies/:id", handlers.RequireRole("admin"), handlers.DeleteCompany(gormDB))

	auth.GET("/products", handlers.GetProducts(gormDB))
	auth.GET("/products/:id", handlers.GetProductByID(gormDB))
	auth.POST("/products", handlers.RequireRole("admin", "jefe"), handlers.CreateProduct(gormDB))
	auth.POST("/products/batch", handlers.RequireRole("admin", "jefe"), handlers.BatchUpsertProducts(gormDB))
	auth.PUT("/products/:id", handlers.RequireRole("admin", "jefe"), handlers.UpdateProduct(gormDB))
	auth.DELETE("/products/:id", handlers.RequireRole("admin", "jefe"), handlers.DeleteProduct(gormDB))

	auth.POST("/quotes", handlers.CreateQuote(quoteSvc))
	auth.GET("/quotes", handlers.GetQuotes(quoteSvc))
	auth.GET("/quotes/export", handlers.ExportQuotesXLSX(quoteSvc))
	auth.GET("/quotes/:id", handlers.GetQuoteByID(quoteSvc))
	auth.PUT("/quotes/:id", handlers.UpdateQuote(quoteSvc))
	auth.DELETE("/quotes/:id", handlers.DeleteQuote(quoteSvc))
	auth.GET("/quotes/:id/pdf", handlers.DownloadQuotePDF(quoteSvc, renderer, converter))
	auth.POST("/quotes/:id/send-email", handlers.SendQuoteEmail(quoteSvc, renderer, converter, mailer))
	auth.POST("/quotes/:id/send-email-with-pdf", handlers.SendQuoteEmailWithPDF(quoteSvc, mailer))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server exited")
}
