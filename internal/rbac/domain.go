package rbac

import (
	"errors"
	"time"
)

// Role represents a high-level permission grouping.
type Role struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known role names.
const (
	RoleFounder = "founder"
	RoleAdmin   = "admin"
)

// Permission names used across the application.
const (
	PermFundingView   = "funding.rounds.view"
	PermFundingEdit   = "funding.rounds.edit"
	PermFundingInvest = "funding.rounds.invest"
	PermFundingReview = "funding.rounds.review"
	PermProfileView   = "users.profile.view"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")
