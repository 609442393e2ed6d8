package model

import "time"

// Staff is a back-office account.
type Staff struct {
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the authenticated identity returned by login. Callers pass it
// explicitly; nothing reads it from ambient storage.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Inquiry is a free-text contact message from the storefront.
type Inquiry struct {
	ID        string    `json:"id" db:"id"`
	Message   string    `json:"message" db:"message"`
	Name      *string   `json:"name,omitempty" db:"name"`
	Contact   *string   `json:"contact,omitempty" db:"contact"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// InquiryRequest is the storefront contact form payload.
type InquiryRequest struct {
	Message string  `json:"message"`
	Name    *string `json:"name,omitempty"`
	Contact *string `json:"contact,omitempty"`
}
