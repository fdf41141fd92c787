// api/model/token.go
package model

import "time"

// WildcardDataset marks a token scope that covers every dataset.
const WildcardDataset = "*"

// AccessToken is the registry record backing an issued credential. The
// registry entry, not the signed credential, is authoritative: a credential
// whose token id is absent here is dead regardless of its signature.
type AccessToken struct {
	TokenID     string     `json:"token_id"`
	UserEmail   string     `json:"user_email"`
	Permissions []string   `json:"permissions"`
	Datasets    []string   `json:"datasets"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsageCount  int        `json:"usage_count"`
	LastUsed    *time.Time `json:"last_used"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// AllowsDataset reports whether the dataset is inside the token's scope.
func (t *AccessToken) AllowsDataset(name string) bool {
	for _, d := range t.Datasets {
		if d == name || d == WildcardDataset {
			return true
		}
	}
	return false
}
