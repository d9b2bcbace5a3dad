package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"cotizador/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// OK writes a success envelope.
func OK(c *gin.Context, code int, data interface{}) {
	c.JSON(code, models.Response{Success: true, Data: data})
}

// OKMessage writes a success envelope with a human message alongside the
// data (used by the email endpoints).
func OKMessage(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, models.Response{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope.
func Fail(c *gin.Context, code int, err string) {
	c.JSON(code, models.Response{Success: false, Error: err})
}

// FailAbort writes a failure envelope and stops the handler chain.
func FailAbort(c *gin.Context, code int, err string) {
	c.AbortWithStatusJSON(code, models.Response{Success: false, Error: err})
}

func secretKey() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("cotizador-dev-secret")
}

// AccessTokenTTL is deliberately short; clients refresh through the
// session-bound refresh token.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 15 * 24 * time.Hour
)

// GenerateJWT creates a short-lived access token carrying the principal
// (userId, role) consumed by the auth middleware.
func GenerateJWT(userID int, role string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"type":   "access",
		"jti":    uuid.NewString(),
		"exp":    time.Now().Add(AccessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// GenerateRefreshToken creates a long-lived refresh token bound to a
// single session/device.
func GenerateRefreshToken(userID int, role, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"userId":    userID,
		"role":      role,
		"type":      "refresh",
		"sessionId": sessionID,
		"exp":       time.Now().Add(RefreshTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateJWT parses and validates a JWT string.
func ValidateJWT(tokenStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing error: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}

// PrincipalFromClaims extracts the {userId, role} pair stored on the
// request context by the auth middleware.
func PrincipalFromClaims(claims jwt.MapClaims) (int, string, error) {
	id, ok := claims["userId"].(float64)
	if !ok {
		return 0, "", errors.New("userId claim missing or invalid")
	}
	role, ok := claims["role"].(string)
	if !ok {
		return 0, "", errors.New("role claim missing or invalid")
	}
	return int(id), role, nil
}

func ValidatePassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}
