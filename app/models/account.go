package models

import "time"

// ExpiryMargin is how long before the actual token expiry an account is
// already treated as expiring, so a refresh happens before the provider
// starts rejecting the token (clock skew, in-flight request latency).
const ExpiryMargin = 10 * time.Minute

// Account stores an external OAuth provider identity linked to a user,
// together with the credentials needed to call the provider on their behalf.
type Account struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserID              uint       `gorm:"index:user_provider_uid,unique" json:"user_id"`
	Provider            string     `gorm:"index:user_provider_uid,unique;type:varchar(50)" json:"provider"`
	ProviderAccountID   string     `gorm:"index:user_provider_uid,unique;type:varchar(191)" json:"provider_account_id"`
	ProviderDisplayName string     `gorm:"type:varchar(191)" json:"provider_display_name"`
	AccessToken         string     `gorm:"type:text" json:"-"`
	AccessTokenSecret   string     `gorm:"type:text" json:"-"` // OAuth1 providers only
	RefreshToken        string     `gorm:"type:text" json:"-"` // providers with offline access only
	ExpiresAt           *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpiringSoon reports whether the access token is inside the refresh
// margin. Accounts without an expiry never expire.
func (a *Account) IsExpiringSoon(now time.Time) bool {
	if a.ExpiresAt == nil {
		return false
	}
	return now.After(a.ExpiresAt.Add(-ExpiryMargin))
}
