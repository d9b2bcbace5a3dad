package handlers

import (
	"net/http"
	"strings"

	"cotizador/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthRequired validates the bearer token and stores the {userId, role}
// principal on the context for downstream handlers.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			utils.FailAbort(c, http.StatusUnauthorized, "No token")
			return
		}

		token := authHeader
		const bearerPrefix = "Bearer "
		if strings.HasPrefix(token, bearerPrefix) {
			token = strings.TrimSpace(strings.TrimPrefix(token, bearerPrefix))
		}
		if token == "" {
			utils.FailAbort(c, http.StatusUnauthorized, "Bad token")
			return
		}

		parsedToken, err := utils.ValidateJWT(token)
		if err != nil || !parsedToken.Valid {
			utils.FailAbort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			utils.FailAbort(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		userID, role, err := utils.PrincipalFromClaims(claims)
		if err != nil {
			utils.FailAbort(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set("userId", userID)
		c.Set("role", role)
		c.Next()
	}
}

// RequireRole gates a route to the named roles. Must run after
// AuthRequired.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			utils.FailAbort(c, http.StatusUnauthorized, "No user")
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.FailAbort(c, http.StatusForbidden, "Forbidden")
	}
}
