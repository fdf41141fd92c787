// api/model/policy.go
package model

import "time"

// AccessPolicy is the per-dataset allow-list. There is exactly one policy
// per dataset name; an absent policy means default allow.
type AccessPolicy struct {
	DatasetName         string    `json:"dataset_name"`
	OwnerEmail          string    `json:"owner_email"`
	AllowedUsers        []string  `json:"allowed_users"`
	RequiredPermissions []string  `json:"required_permissions"`
	CreatedAt           time.Time `json:"created_at"`
}

// AllowsUser reports whether the user passes the policy's allow-list.
// An empty allow-list leaves the dataset unrestricted.
func (p *AccessPolicy) AllowsUser(email string) bool {
	if len(p.AllowedUsers) == 0 {
		return true
	}
	for _, u := range p.AllowedUsers {
		if u == email {
			return true
		}
	}
	return false
}
