// Package ratelimit implements the admission control layer: a token
// bucket per (subject, action), role-tiered limits, and the
// restricted/blocked account rules.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

// Action identifies what a caller is attempting, for per-action limits.
type Action string

const (
	ActionUpload   Action = "upload"
	ActionDownload Action = "download"
	ActionAuth     Action = "auth"
)

var ErrBlocked = errors.New("ratelimit: account is blocked")
var ErrRestricted = errors.New("ratelimit: account is restricted from this action")

// Decision is the outcome of a bucket check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Store is the backing bucket state for one (subject, action) pair. A
// Store implementation owns bucket persistence; Limiter owns policy.
type Store interface {
	// Allow consumes one token from the bucket for key, refilling at
	// limit tokens per window since the bucket's last touch. Returns
	// whether a token was available and, if not, how long until one
	// will be.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Limits holds per-role-per-action request ceilings.
type Limits struct {
	Free      int
	Premium   int
	Admin     int
	Anonymous int
	Window    time.Duration
}

// Config is the complete set of limits, one per action.
type Config struct {
	Upload   Limits
	Download Limits
	Auth     Limits
}

// Limiter applies role/status policy on top of a Store.
type Limiter struct {
	store Store
	cfg   Config
}

func New(store Store, cfg Config) *Limiter {
	return &Limiter{store: store, cfg: cfg}
}

func (l *Limiter) limitsFor(action Action) Limits {
	switch action {
	case ActionUpload:
		return l.cfg.Upload
	case ActionDownload:
		return l.cfg.Download
	default:
		return l.cfg.Auth
	}
}

// Check enforces status rules and the token bucket for a request.
// principal is nil for anonymous callers, in which case clientIP is
// used as the bucket subject.
func (l *Limiter) Check(ctx context.Context, principal *model.Principal, clientIP string, action Action) (Decision, error) {
	if principal != nil {
		if principal.Status == model.StatusBlocked {
			return Decision{}, ErrBlocked
		}
		if principal.Status == model.StatusRestricted && action == ActionUpload {
			return Decision{}, ErrRestricted
		}
	}

	limits := l.limitsFor(action)
	subject, limit := l.subjectAndLimit(principal, clientIP, limits)

	key := string(action) + ":" + subject
	return l.store.Allow(ctx, key, limit, limits.Window)
}

func (l *Limiter) subjectAndLimit(principal *model.Principal, clientIP string, limits Limits) (subject string, limit int) {
	if principal == nil {
		return "ip:" + clientIP, limits.Anonymous
	}

	switch principal.Role {
	case model.RoleAdmin:
		return "user:" + principal.UserID, limits.Admin
	case model.RolePremium:
		return "user:" + principal.UserID, limits.Premium
	default:
		return "user:" + principal.UserID, limits.Free
	}
}
