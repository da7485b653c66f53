package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable           = "enable"
	fieldUsed             = "used"
	fieldRead             = "read"
	fieldPasswordHash     = "password_hash"
	fieldPasswordSet      = "password_set"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldAvatarKey        = "avatar_key"
	fieldPushToken        = "push_token"
)
