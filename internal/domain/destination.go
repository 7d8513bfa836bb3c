package domain

import "time"

// Destination is a user's registered push address. At most one per user:
// registration upserts in place, keyed by user id.
type Destination struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Token     string    `json:"token" dynamodbav:"token"`       // opaque push address
	Timezone  string    `json:"timezone" dynamodbav:"timezone"` // IANA zone name; "" means UTC
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// RegisterDestinationRequest upserts a user's push destination.
type RegisterDestinationRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Timezone string `json:"timezone"`
}
