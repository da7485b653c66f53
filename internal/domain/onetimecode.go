package domain

import "time"

// OneTimeCode is a single pending provisioning or credential-reset grant.
// PK: code. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
//
// Lifecycle: pending (used=false, unexpired) → redeemed (used=true, set
// exactly once by a conditional update) or expired. Issuance supersedes any
// prior pending grant for the same target email, so at most one live code
// exists per target at a time.
type OneTimeCode struct {
	Code         string    `json:"code" dynamodbav:"code"`
	IssuerID     string    `json:"issuer_id" dynamodbav:"issuer_id"`
	TargetEmail  string    `json:"target_email" dynamodbav:"target_email"`
	TargetName   string    `json:"target_name" dynamodbav:"target_name"`
	TargetDob    string    `json:"target_dob" dynamodbav:"target_dob"` // YYYY-MM-DD
	TargetGender string    `json:"target_gender" dynamodbav:"target_gender"`
	Used         bool      `json:"used" dynamodbav:"used"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt    int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Pending reports whether the grant is still redeemable at the given instant.
func (c *OneTimeCode) Pending(now time.Time) bool {
	return !c.Used && now.Unix() < c.ExpiresAt
}
