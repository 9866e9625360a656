package user

import (
	"context"
	"time"
)

// User represents an account that may be partnered with exactly one other account.
type User struct {
	ID              uint
	PublicID        string
	Name            string
	Email           string
	PartnerPublicID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Identity is the authenticated caller as seen by the rest of the service.
type Identity struct {
	ID   string
	Name string
}

// Repository resolves users and their partner linkage.
type Repository interface {
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	// PartnerOf returns the partner's public ID, or nil when the user has no
	// linked partner.
	PartnerOf(ctx context.Context, publicID string) (*string, error)
}
