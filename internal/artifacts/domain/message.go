package domain

import "time"

// Message roles
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one chat transcript entry.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	IsLoading bool      `json:"isLoading,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
