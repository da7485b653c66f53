package domain

import "time"

type Device struct {
	DeviceID   string    `json:"id" dynamodbav:"device_id"`
	UUID       string    `json:"uuid" dynamodbav:"device_uuid"`
	IdentityID string    `json:"identity_id" dynamodbav:"identity_id"`
	PushToken  *string   `json:"push_token" dynamodbav:"push_token"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type UpdateDeviceRequest struct {
	PushToken *string `json:"push_token"`
}
