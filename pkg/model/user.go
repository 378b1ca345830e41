// Package model defines the persistent entities shared across FileVault's
// storage, quota, upload, download, and lifecycle components.
package model

import "time"

// Role is the effective access tier of a User.
type Role string

const (
	RoleFree    Role = "free"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// Status is the account standing of a User.
type Status string

const (
	StatusActive     Status = "active"
	StatusRestricted Status = "restricted"
	StatusBlocked    Status = "blocked"
)

// User is an account in the system.
//
// EffectiveRole reverts PremiumExpiresAt-lapsed premium accounts to free;
// callers that need the role for admission decisions should use
// EffectiveRole rather than reading Role directly, since Role is only
// corrected to "free" when a lifecycle worker next runs (see the
// premium-expiry worker).
type User struct {
	ID               string     `gorm:"primaryKey;type:uuid" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Username         string     `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Role             Role       `gorm:"not null;index" json:"role"`
	Status           Status     `gorm:"not null;default:active" json:"status"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
	FailedLogins     int        `gorm:"not null;default:0" json:"failedLogins"`
	LockoutUntil     *time.Time `json:"lockoutUntil,omitempty"`
	QuotaOverride    *int64     `json:"quotaOverride,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// EffectiveRole returns Free when a premium subscription has lapsed,
// without mutating the stored Role (that correction is the premium-expiry
// worker's job).
func (u *User) EffectiveRole(now time.Time) Role {
	if u.Role == RolePremium && u.PremiumExpiresAt != nil && !u.PremiumExpiresAt.After(now) {
		return RoleFree
	}
	return u.Role
}

// Principal is the authenticated caller identity carried through request
// handling and service calls, decoded from a validated bearer JWT. It is
// deliberately smaller than User: it carries only what admission and
// ownership checks need.
type Principal struct {
	UserID string
	Role   Role
	Status Status
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
