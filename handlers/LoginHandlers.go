package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"cotizador/models"
	"cotizador/storage"
	"cotizador/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LoginHandler authenticates a user and returns an access/refresh token
// pair. The refresh token is bound to a session row.
// @Summary Login user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.Response{data=models.LoginResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/login [post]
func LoginHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginData models.LoginRequest
		if err := c.ShouldBindJSON(&loginData); err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid input")
			return
		}

		user, err := storage.GetUserByEmail(db, loginData.Email)
		if err != nil || !utils.ValidatePassword(user.Password, loginData.Password) {
			utils.Fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		session := models.Session{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(utils.RefreshTokenTTL),
		}
		if err := storage.SaveSession(db, &session); err != nil {
			utils.Fail(c, http.StatusInternalServerError, "Failed to create session")
			return
		}

		accessToken, err := utils.GenerateJWT(user.ID, user.Role)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "Failed to generate token")
			return
		}
		refreshToken, err := utils.GenerateRefreshToken(user.ID, user.Role, session.ID)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "Failed to generate refresh token")
			return
		}

		utils.OK(c, http.StatusOK, models.LoginResponse{
			Token:        accessToken,
			RefreshToken: refreshToken,
			User:         user,
		})
	}
}

// RefreshHandler reissues an access token from a valid session-bound
// refresh token.
// @Summary Refresh access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/refresh [post]
func RefreshHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, http.StatusBadRequest, "token required")
			return
		}

		parsedToken, err := utils.ValidateJWT(req.Token)
		if err != nil || !parsedToken.Valid {
			utils.Fail(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
			utils.Fail(c, http.StatusUnauthorized, "Not a refresh token")
			return
		}
		sessionID, _ := claims["sessionId"].(string)
		if _, err := storage.GetSession(db, sessionID); err != nil {
			utils.Fail(c, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		userID, role, err := utils.PrincipalFromClaims(claims)
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, err.Error())
			return
		}

		accessToken, err := utils.GenerateJWT(userID, role)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "Failed to generate token")
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"token": accessToken})
	}
}

// LogoutHandler deletes the refresh session named by the supplied token.
// @Summary Logout
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/auth/logout [post]
func LogoutHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil && req.Token != "" {
			if parsedToken, err := utils.ValidateJWT(req.Token); err == nil {
				if claims, ok := parsedToken.Claims.(jwt.MapClaims); ok {
					if sessionID, _ := claims["sessionId"].(string); sessionID != "" {
						_ = storage.DeleteSession(db, sessionID)
					}
				}
			}
		}
		utils.OKMessage(c, http.StatusOK, "Logged out", gin.H{"message": "Logged out (client should remove token)"})
	}
}
