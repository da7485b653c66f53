package domain

import "time"

// MoodEntry is a single mood check-in by a family member.
// PK: mood_id; queried by identity via the identity_id-created_at GSI.
type MoodEntry struct {
	MoodID     string    `json:"id" dynamodbav:"mood_id"`
	IdentityID string    `json:"identity_id" dynamodbav:"identity_id"`
	Score      int       `json:"score" dynamodbav:"score"` // 1 (low) .. 5 (high)
	Emoji      string    `json:"emoji,omitempty" dynamodbav:"emoji"`
	Note       string    `json:"note,omitempty" dynamodbav:"note"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

type MoodCheckInRequest struct {
	Score int    `json:"score" validate:"required,min=1,max=5"`
	Emoji string `json:"emoji" validate:"max=16"`
	Note  string `json:"note" validate:"max=500"`
}

// MoodSummary is the wellness-insight payload derived from recent check-ins.
type MoodSummary struct {
	IdentityID string  `json:"identity_id"`
	Entries    int     `json:"entries"`
	Average    float64 `json:"average"`
	Trend      string  `json:"trend"` // "improving" | "steady" | "declining"
	Insight    string  `json:"insight"`
}
