package models

// Response is the uniform envelope used by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse documents the failure shape for swagger.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Not found"`
}

// LoginRequest is the POST /api/auth/login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"admin@local"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// LoginResponse carries the token pair and the authenticated user.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// RefreshRequest is the POST /api/auth/refresh payload.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// BatchProductResult summarizes a batch product upsert.
type BatchProductResult struct {
	Success int                 `json:"success"`
	Failed  int                 `json:"failed"`
	Errors  []BatchProductError `json:"errors"`
}

// BatchProductError names the SKU that failed and why.
type BatchProductError struct {
	SKU   string `json:"sku"`
	Error string `json:"error"`
}
