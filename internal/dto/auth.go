package dto

// AuthResponse carries a freshly issued token with public profile fields.
// The password digest is never part of any response.
type AuthResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
}
