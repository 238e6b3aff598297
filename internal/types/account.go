package types

// Credentials are the account form inputs. They live in memory only and are
// never persisted or journaled.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
}

// MessageResponse is returned by /register and /protected.
type MessageResponse struct {
	Message string `json:"message" validate:"required"`
}

// ForgotResponse is returned by /forgot. The body is not guaranteed to carry a message.
type ForgotResponse struct {
	Message string `json:"message,omitempty"`
}

// LoginResponse is returned by /login.
type LoginResponse struct {
	AccessToken string `json:"access_token" validate:"required"`
}
