package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
)

var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrForbidden        = errors.New("insufficient role")
)

// Principal is the authenticated caller of a service operation
type Principal struct {
	UserID    uint            `json:"id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	TokenID   string          `json:"-"`
	ExpiresAt time.Time       `json:"-"`
}

// NewPrincipal builds a principal from verified claims
func NewPrincipal(claims *Claims) (*Principal, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	p := &Principal{
		UserID:  id,
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// HasRole reports whether the principal carries one of roles
func (p *Principal) HasRole(roles ...models.UserRole) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Require fails with ErrNotAuthenticated for a nil principal and with
// ErrForbidden when none of roles match. Admins pass every check.
func (p *Principal) Require(roles ...models.UserRole) error {
	if p == nil {
		return ErrNotAuthenticated
	}
	if p.Role != models.RoleAdmin && !p.HasRole(roles...) {
		return fmt.Errorf("%w: %s may not perform this operation", ErrForbidden, p.Role)
	}
	return nil
}

// IsSelf reports whether the principal is the given user
func (p *Principal) IsSelf(userID uint) bool {
	return p != nil && p.UserID == userID
}
