package dto

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string `json:"token"`
}

// MessageResponse carries a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
