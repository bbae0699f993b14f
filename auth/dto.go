package auth

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// RegisterRequest is the token-gated registration payload. The token is the
// registration token handed out when an application is accepted.
type RegisterRequest struct {
	Token     string   `json:"token" validate:"required" example:"KALI-1735689600000-A1B2C3"`
	Email     string   `json:"email" validate:"required,email" example:"user@example.com"`
	Password  string   `json:"password" validate:"required,min=6" example:"strongpassword123"`
	FirstName string   `json:"firstName" validate:"required,max=50" example:"Ada"`
	LastName  string   `json:"lastName" validate:"required,max=50" example:"Lovelace"`
	Bio       string   `json:"bio,omitempty" validate:"max=500"`
	Skills    []string `json:"skills,omitempty"`
	GitHub    string   `json:"github,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty"`
	Website   string   `json:"website,omitempty" validate:"omitempty,url"`
}

// UpdateProfileRequest carries a partial profile update; nil fields are
// left untouched.
type UpdateProfileRequest struct {
	FirstName *string   `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName  *string   `json:"lastName,omitempty" validate:"omitempty,max=50"`
	Bio       *string   `json:"bio,omitempty" validate:"omitempty,max=500"`
	Skills    *[]string `json:"skills,omitempty"`
	GitHub    *string   `json:"github,omitempty"`
	LinkedIn  *string   `json:"linkedin,omitempty"`
	Website   *string   `json:"website,omitempty" validate:"omitempty,url"`
	Avatar    *string   `json:"avatar,omitempty"`
}

// TokenResponse is returned on successful login or registration.
type TokenResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string `json:"tokenType" example:"Bearer"`
	ExpiresIn int64  `json:"expiresIn" example:"604800"` // seconds until expiry
	User      *User  `json:"user"`
}
