package models

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

type LoginResponse struct {
	Token string          `json:"token,omitempty"`
	User  UserWithProfile `json:"user"`
	// TwoFactorRequired signals the client to complete the login with a code.
	TwoFactorRequired bool `json:"two_factor_required,omitempty"`
}

type MetaData struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewMetaData computes the page count for a paginated envelope.
func NewMetaData(page, limit, total int) MetaData {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return MetaData{Page: page, Limit: limit, TotalItems: total, TotalPages: totalPages}
}

type PaginationResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    MetaData    `json:"meta"`
}
