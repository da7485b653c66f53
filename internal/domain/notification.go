package domain

import "time"

type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	IdentityID     string    `json:"identity_id" dynamodbav:"identity_id"`
	Kind           string    `json:"kind" dynamodbav:"kind"` // "code_issued" | "child_joined" | "credential_reset"
	Message        string    `json:"message" dynamodbav:"message"`
	Read           bool      `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
