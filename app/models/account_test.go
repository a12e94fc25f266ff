package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountIsExpiringSoon(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{name: "no expiry never expires", expiresAt: nil, want: false},
		{name: "long before margin", expiresAt: ptrTime(now.Add(2 * time.Hour)), want: false},
		{name: "exactly at margin boundary", expiresAt: ptrTime(now.Add(ExpiryMargin)), want: false},
		{name: "inside margin", expiresAt: ptrTime(now.Add(ExpiryMargin - time.Second)), want: true},
		{name: "already expired", expiresAt: ptrTime(now.Add(-time.Hour)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, a.IsExpiringSoon(now))
		})
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
