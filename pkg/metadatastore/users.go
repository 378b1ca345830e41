package metadatastore

import (
	"context"
	"time"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	u.CreatedAt = time.Now()
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, convertNotFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, convertNotFound(err)
	}
	return &u, nil
}

// UpdateUserRole sets Role and PremiumExpiresAt, used by admin
// promote/demote and the premium-expiry worker.
func (s *Store) UpdateUserRole(ctx context.Context, userID string, role model.Role, premiumExpiresAt *time.Time) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"role":               role,
			"premium_expires_at": premiumExpiresAt,
		}).Error
}

// UpdateUserStatus sets Status, used by admin block/restrict/unblock.
func (s *Store) UpdateUserStatus(ctx context.Context, userID string, status model.Status) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("status", status).Error
}

// ListExpiredPremiumUsers returns premium users whose subscription has
// lapsed as of now, excluding lifetime premium (PremiumExpiresAt nil)
// and admins.
func (s *Store) ListExpiredPremiumUsers(ctx context.Context, now time.Time, limit int) ([]*model.User, error) {
	var users []*model.User
	err := s.db.WithContext(ctx).
		Where("role = ? AND premium_expires_at IS NOT NULL AND premium_expires_at <= ?", model.RolePremium, now).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// IncrementFailedLogins bumps the failed-login counter and returns the
// new count.
func (s *Store) IncrementFailedLogins(ctx context.Context, userID string) (int, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return 0, convertNotFound(err)
	}
	newCount := u.FailedLogins + 1
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("failed_logins", newCount).Error; err != nil {
		return 0, err
	}
	return newCount, nil
}

// ResetFailedLogins clears the failed-login counter and any lockout,
// called on successful authentication.
func (s *Store) ResetFailedLogins(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"failed_logins": 0,
			"lockout_until": nil,
		}).Error
}

// SetLockout sets LockoutUntil after repeated failed logins.
func (s *Store) SetLockout(ctx context.Context, userID string, until time.Time) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("lockout_until", until).Error
}
