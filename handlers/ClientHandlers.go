package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cotizador/models"
	"cotizador/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateClient godoc
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      models.Client  true  "Client"
// @Success      201   {object}  models.Response{data=models.Client}
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/clients [post]
func CreateClient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var client models.Client
		if err := c.ShouldBindJSON(&client); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if client.Name == "" {
			utils.Fail(c, http.StatusBadRequest, "name is required")
			return
		}
		client.ID = 0
		if err := db.Create(&client).Error; err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.OK(c, http.StatusCreated, client)
	}
}

// GetClients godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Success      200  {object}  models.Response{data=[]models.Client}
// @Router       /api/clients [get]
func GetClients(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var clients []models.Client
		if err := db.Preload("Company").Order("created_at DESC").Find(&clients).Error; err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, clients)
	}
}

// GetClientByID godoc
// @Summary      Get client by ID
// @Tags         clients
// @Param        id   path  int  true  "Client ID"
// @Success      200  {object}  models.Response{data=models.Client}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/clients/{id} [get]
func GetClientByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		var client models.Client
		if err := db.Preload("Company").First(&client, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, "Client not found")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, client)
	}
}

// UpdateClient godoc
// @Summary      Update client
// @Tags         clients
// @Param        id    path  int            true  "Client ID"
// @Param        body  body  models.Client  true  "Client"
// @Success      200   {object}  models.Response{data=models.Client}
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/clients/{id} [put]
func UpdateClient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		var client models.Client
		if err := db.First(&client, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, "Client not found")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		var payload struct {
			Name      *string `json:"name"`
			Email     *string `json:"email"`
			Phone     *string `json:"phone"`
			Address   *string `json:"address"`
			CompanyID *int    `json:"companyId"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if payload.Name != nil {
			client.Name = *payload.Name
		}
		if payload.Email != nil {
			client.Email = *payload.Email
		}
		if payload.Phone != nil {
			client.Phone = *payload.Phone
		}
		if payload.Address != nil {
			client.Address = *payload.Address
		}
		if payload.CompanyID != nil {
			client.CompanyID = payload.CompanyID
		}

		if err := db.Save(&client).Error; err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, client)
	}
}

// DeleteClient godoc
// @Summary      Delete client
// @Tags         clients
// @Param        id   path  int  true  "Client ID"
// @Success      200  {object}  models.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/clients/{id} [delete]
func DeleteClient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		res := db.Delete(&models.Client{}, id)
		if res.Error != nil {
			utils.Fail(c, http.StatusInternalServerError, res.Error.Error())
			return
		}
		if res.RowsAffected == 0 {
			utils.Fail(c, http.StatusNotFound, "Client not found")
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id})
	}
}
