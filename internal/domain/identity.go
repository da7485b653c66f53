package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// Identity is a person record independent of role-specific profile data.
// Emails are stored case-folded and are immutable after creation.
//
// PasswordSet is the authoritative login gate: an identity with
// PasswordSet=false must never authenticate by password, even if a stale
// hash is still present (credential resets clear the flag, not the hash).
type Identity struct {
	IdentityID   string     `json:"id" dynamodbav:"identity_id"`
	Role         string     `json:"role" dynamodbav:"role"`
	Email        string     `json:"email" dynamodbav:"email"`
	Phone        *string    `json:"phone" dynamodbav:"phone"`
	DisplayName  string     `json:"display_name" dynamodbav:"display_name"`
	Dob          string     `json:"dob,omitempty" dynamodbav:"dob"` // YYYY-MM-DD
	Gender       string     `json:"gender,omitempty" dynamodbav:"gender"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	PasswordSet  bool       `json:"password_set" dynamodbav:"password_set"`
	AvatarKey    string     `json:"-" dynamodbav:"avatar_key"`
	Enable       bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// VerifyPassword fails closed: a cleared password_set flag rejects the
// attempt before the hash is even consulted.
func (i *Identity) VerifyPassword(plaintext string) bool {
	if !i.PasswordSet || i.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(i.PasswordHash), []byte(plaintext)) == nil
}

type RegisterParentRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	DisplayName string  `json:"display_name" validate:"required"`
	Phone       *string `json:"phone"`
	Dob         string  `json:"dob"` // expected format: YYYY-MM-DD
	DeviceUUID  *string `json:"device_uuid"`
}

type UpdateIdentityRequest struct {
	DisplayName *string `json:"display_name"`
	Phone       *string `json:"phone"`
	Dob         *string `json:"dob"` // expected format: YYYY-MM-DD
	Gender      *string `json:"gender"`
}
