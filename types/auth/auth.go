package auth

import (
	bookingTypes "lifeline-backend/types/booking"
)

// RegisterRequest is the signup payload shared by all party types. Address is
// required for hospitals and drivers, ignored for users and admins.
type RegisterRequest struct {
	Name     string                     `json:"name"`
	Email    string                     `json:"email"`
	Phone    string                     `json:"phone"`
	Password string                     `json:"password"`
	Address  *bookingTypes.AddressInput `json:"address,omitempty"`
}

// LoginRequest is the login payload; parties log in by name.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// TokenPair is the issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
