package handlers

import (
	"net/http"

	"cotizador/utils"

	"github.com/gin-gonic/gin"
)

// GetRoles returns the role names accepted by the user endpoints.
// @Summary List roles
// @Tags config
// @Produce json
// @Success 200 {object} models.Response{data=[]string}
// @Router /api/config/roles [get]
func GetRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.OK(c, http.StatusOK, []string{"admin", "jefe", "vendedor"})
	}
}
