package models

import "time"

type User struct {
	ID               int       `json:"id"`
	Email            string    `json:"email"`
	Password         string    `json:"-"`
	Role             string    `json:"role"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type UserProfile struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserWithProfile struct {
	ID               int       `json:"id"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	FullName         string    `json:"full_name"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	PhotoURL         string    `json:"photo_url"`
	CreatedAt        time.Time `json:"created_at"`
}
