package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOneTimeCodePending(t *testing.T) {
	now := time.Now()

	fresh := &OneTimeCode{Code: "AB12CD34", ExpiresAt: now.Add(time.Hour).Unix()}
	assert.True(t, fresh.Pending(now))

	// used=false is not enough once the expiry has passed
	expired := &OneTimeCode{Code: "AB12CD34", ExpiresAt: now.Add(-time.Minute).Unix()}
	assert.False(t, expired.Pending(now))

	used := &OneTimeCode{Code: "AB12CD34", Used: true, ExpiresAt: now.Add(time.Hour).Unix()}
	assert.False(t, used.Pending(now))
}

func TestOneTimeCodePending_BoundaryIsExclusive(t *testing.T) {
	now := time.Now()
	atBoundary := &OneTimeCode{Code: "AB12CD34", ExpiresAt: now.Unix()}
	assert.False(t, atBoundary.Pending(now))
}
