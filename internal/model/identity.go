package model

// Identity is what the role provider knows about a user.
type Identity struct {
	UserID string `json:"user_id" mapstructure:"id"`
	Name   string `json:"name" mapstructure:"name"`
	Email  string `json:"email" mapstructure:"email"`
	Role   string `json:"role" mapstructure:"role"`
	Active bool   `json:"active" mapstructure:"active"`
}
