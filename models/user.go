package models

// User represents a user in our system
type User struct {
	ID    *int   `json:"id" db:"id"` // assigned by the database on insert
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// UserPayload is the inbound body of create and update requests.
// Pointers distinguish an absent field from an empty one; any id sent by the
// client is accepted and ignored.
type UserPayload struct {
	ID    *int    `json:"id"`
	Name  *string `json:"name" validate:"required"`
	Email *string `json:"email" validate:"required"`
}
