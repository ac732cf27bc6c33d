package identity

import (
	"context"
	"errors"
)

type Role string

const (
	RoleViewer      Role = "viewer"
	RoleContributor Role = "contributor"
	RoleAdmin       Role = "admin"
)

var roleRank = map[Role]int{
	RoleViewer:      0,
	RoleContributor: 1,
	RoleAdmin:       2,
}

// AtLeast reports whether r grants at least the capabilities of required.
func (r Role) AtLeast(required Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[required]
}

type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

var ErrUnknownAPIKey = errors.New("unknown api key")

type UserRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*User, error)
}
