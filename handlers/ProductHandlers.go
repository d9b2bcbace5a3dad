package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cotizador/models"
	"cotizador/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type productPayload struct {
	SKU         string          `json:"sku" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	BasePrice   float64         `json:"basePrice"`
	Unit        string          `json:"unit"`
	ImageURL    *string         `json:"imageUrl"`
	Metadata    json.RawMessage `json:"metadata"`
}

func (p productPayload) toProduct() models.Product {
	unit := p.Unit
	if unit == "" {
		unit = "pcs"
	}
	return models.Product{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   p.BasePrice,
		Unit:        unit,
		ImageURL:    p.ImageURL,
		Metadata:    p.Metadata,
	}
}

func (p productPayload) validate() error {
	if p.BasePrice < 0 {
		return errors.New("basePrice must be greater than or equal to 0")
	}
	return nil
}

// CreateProduct godoc
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Response{data=models.Product}
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/products [post]
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload productPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if err := payload.validate(); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		var count int64
		if err := db.Model(&models.Product{}).Where("sku = ?", payload.SKU).Count(&count).Error; err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if count > 0 {
			utils.Fail(c, http.StatusBadRequest, "Ya existe un producto con ese SKU")
			return
		}

		product := payload.toProduct()
		if err := db.Create(&product).Error; err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.OK(c, http.StatusCreated, product)
	}
}

// GetProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {object}  models.Response{data=[]models.Product}
// @Router       /api/products [get]
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Order("created_at DESC").Find(&products).Error; err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, products)
	}
}

// GetProductByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Param        id   path  int  true  "Product ID"
// @Success      200  {object}  models.Response{data=models.Product}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/products/{id} [get]
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "ID inválido")
			return
		}
		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, "Producto no encontrado")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, product)
	}
}

// BatchUpsertProducts creates or updates products by SKU in bulk.
// @Summary      Batch upsert products
// @Tags         products
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.Response{data=models.BatchProductResult}
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/products/batch [post]
func BatchUpsertProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Products []productPayload `json:"products"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Products == nil {
			utils.Fail(c, http.StatusBadRequest, "Se espera un array de productos")
			return
		}

		result := models.BatchProductResult{Errors: []models.BatchProductError{}}
		for _, payload := range body.Products {
			if payload.SKU == "" || payload.Name == "" {
				result.Failed++
				result.Errors = append(result.Errors, models.BatchProductError{SKU: payload.SKU, Error: "sku and name are required"})
				continue
			}
			if err := payload.validate(); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, models.BatchProductError{SKU: payload.SKU, Error: err.Error()})
				continue
			}

			var existing models.Product
			err := db.Where("sku = ?", payload.SKU).First(&existing).Error
			switch {
			case err == nil:
				update := payload.toProduct()
				update.ID = existing.ID
				update.CreatedAt = existing.CreatedAt
				err = db.Save(&update).Error
			case errors.Is(err, gorm.ErrRecordNotFound):
				product := payload.toProduct()
				err = db.Create(&product).Error
			}
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, models.BatchProductError{SKU: payload.SKU, Error: err.Error()})
				continue
			}
			result.Success++
		}

		utils.OK(c, http.StatusOK, result)
	}
}

// UpdateProduct godoc
// @Summary      Update product
// @Tags         products
// @Param        id  path  int  true  "Product ID"
// @Success      200  {object}  models.Response{data=models.Product}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/products/{id} [put]
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "ID inválido")
			return
		}
		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, "Producto no encontrado")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		var payload struct {
			SKU         *string         `json:"sku"`
			Name        *string         `json:"name"`
			Description *string         `json:"description"`
			BasePrice   *float64        `json:"basePrice"`
			Unit        *string         `json:"unit"`
			ImageURL    *string         `json:"imageUrl"`
			Metadata    json.RawMessage `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if payload.BasePrice != nil && *payload.BasePrice < 0 {
			utils.Fail(c, http.StatusBadRequest, "basePrice must be greater than or equal to 0")
			return
		}
		if payload.SKU != nil && *payload.SKU != product.SKU {
			var count int64
			if err := db.Model(&models.Product{}).Where("sku = ? AND id <> ?", *payload.SKU, id).Count(&count).Error; err != nil {
				utils.Fail(c, http.StatusInternalServerError, err.Error())
				return
			}
			if count > 0 {
				utils.Fail(c, http.StatusBadRequest, "Ya existe un producto con ese SKU")
				return
			}
			product.SKU = *payload.SKU
		}
		if payload.Name != nil {
			product.Name = *payload.Name
		}
		if payload.Description != nil {
			product.Description = *payload.Description
		}
		if payload.BasePrice != nil {
			product.BasePrice = *payload.BasePrice
		}
		if payload.Unit != nil {
			product.Unit = *payload.Unit
		}
		if payload.ImageURL != nil {
			product.ImageURL = payload.ImageURL
		}
		if payload.Metadata != nil {
			product.Metadata = payload.Metadata
		}

		if err := db.Save(&product).Error; err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, product)
	}
}

// DeleteProduct godoc
// @Summary      Delete product
// @Tags         products
// @Param        id  path  int  true  "Product ID"
// @Success      200  {object}  models.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/products/{id} [delete]
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "ID inválido")
			return
		}
		res := db.Delete(&models.Product{}, id)
		if res.Error != nil {
			utils.Fail(c, http.StatusInternalServerError, res.Error.Error())
			return
		}
		if res.RowsAffected == 0 {
			utils.Fail(c, http.StatusNotFound, "Producto no encontrado")
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id})
	}
}
