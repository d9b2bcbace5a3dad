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

// CreateCompany godoc
// @Summary      Create company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body      models.Company  true  "Company"
// @Success      201   {object}  models.Response{data=models.Company}
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/companies [post]
func CreateCompany(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var company models.Company
		if err := c.ShouldBindJSON(&company); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if company.Name == "" {
			utils.Fail(c, http.StatusBadRequest, "name is required")
			return
		}
		company.ID = 0
		if err := db.Create(&company).Error; err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.OK(c, http.StatusCreated, company)
	}
}

// GetCompanies godoc
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Success      200  {object}  models.Response{data=[]models.Company}
// @Router       /api/companies [get]
func GetCompanies(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var companies []models.Company
		if err := db.Order("created_at DESC").Find(&companies).Error; err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, companies)
	}
}

// GetCompanyByID godoc
// @Summary      Get company by ID
// @Tags         companies
// @Param        id   path  int  true  "Company ID"
// @Success      200  {object}  models.Response{data=models.Company}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/companies/{id} [get]
func GetCompanyByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		var company models.Company
		if err := db.First(&company, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, "Company not found")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, company)
	}
}

// UpdateCompany godoc
// @Summary      Update company
// @Tags         companies
// @Param        id    path  int             true  "Company ID"
// @Param        body  body  models.Company  true  "Company"
// @Success      200   {object}  models.Response{data=models.Company}
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/companies/{id} [put]
func UpdateCompany(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		var company models.Company
		if err := db.First(&company, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, "Company not found")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		var payload struct {
			Name    *string `json:"name"`
			Address *string `json:"address"`
			Phone   *string `json:"phone"`
			RFC     *string `json:"rfc"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if payload.Name != nil {
			company.Name = *payload.Name
		}
		if payload.Address != nil {
			company.Address = *payload.Address
		}
		if payload.Phone != nil {
			company.Phone = *payload.Phone
		}
		if payload.RFC != nil {
			company.RFC = *payload.RFC
		}

		if err := db.Save(&company).Error; err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, company)
	}
}

// DeleteCompany godoc
// @Summary      Delete company
// @Tags         companies
// @Param        id   path  int  true  "Company ID"
// @Success      200  {object}  models.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/companies/{id} [delete]
func DeleteCompany(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		res := db.Delete(&models.Company{}, id)
		if res.Error != nil {
			utils.Fail(c, http.StatusInternalServerError, res.Error.Error())
			return
		}
		if res.RowsAffected == 0 {
			utils.Fail(c, http.StatusNotFound, "Company not found")
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id})
	}
}
