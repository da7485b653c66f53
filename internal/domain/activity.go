package domain

import "time"

// Activity is a parent-curated family activity suggestion.
type Activity struct {
	ActivityID  string    `json:"id" dynamodbav:"activity_id"`
	OwnerID     string    `json:"owner_id" dynamodbav:"owner_id"` // parent identity
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Category    string    `json:"category" dynamodbav:"category"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type ActivityInput struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=60"`
}
