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

type userPayload struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password"`
	Role            string `json:"role"`
	CanModifyPrices bool   `json:"canModifyPrices"`
}

// CreateUser godoc
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Response{data=models.User}
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/users [post]
func CreateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload userPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if payload.Password == "" {
			utils.Fail(c, http.StatusBadRequest, "password is required")
			return
		}

		hashed, err := utils.HashPassword(payload.Password)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		role := payload.Role
		if role == "" {
			role = "vendedor"
		}

		user := models.User{
			Name:            payload.Name,
			Email:           payload.Email,
			Password:        hashed,
			Role:            role,
			CanModifyPrices: payload.CanModifyPrices,
		}
		if err := db.Create(&user).Error; err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.OK(c, http.StatusCreated, user)
	}
}

// GetUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  models.Response{data=[]models.User}
// @Router       /api/users [get]
func GetUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, users)
	}
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Tags         users
// @Param        id   path  int  true  "User ID"
// @Success      200  {object}  models.Response{data=models.User}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/users/{id} [get]
func GetUserByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, "User not found")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, user)
	}
}

// UpdateUser godoc
// @Summary      Update user
// @Tags         users
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  models.Response{data=models.User}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/users/{id} [put]
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Fail(c, http.StatusNotFound, "User not found")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		var payload struct {
			Name            *string `json:"name"`
			Email           *string `json:"email"`
			Password        *string `json:"password"`
			Role            *string `json:"role"`
			CanModifyPrices *bool   `json:"canModifyPrices"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if payload.Name != nil {
			user.Name = *payload.Name
		}
		if payload.Email != nil {
			user.Email = *payload.Email
		}
		if payload.Role != nil {
			user.Role = *payload.Role
		}
		if payload.CanModifyPrices != nil {
			user.CanModifyPrices = *payload.CanModifyPrices
		}
		if payload.Password != nil && *payload.Password != "" {
			hashed, err := utils.HashPassword(*payload.Password)
			if err != nil {
				utils.Fail(c, http.StatusInternalServerError, err.Error())
				return
			}
			user.Password = hashed
		}

		if err := db.Save(&user).Error; err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.OK(c, http.StatusOK, user)
	}
}

// DeleteUser godoc
// @Summary      Delete user
// @Tags         users
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  models.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/users/{id} [delete]
func DeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		res := db.Delete(&models.User{}, id)
		if res.Error != nil {
			utils.Fail(c, http.StatusInternalServerError, res.Error.Error())
			return
		}
		if res.RowsAffected == 0 {
			utils.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id})
	}
}
