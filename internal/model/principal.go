package model

import "github.com/google/uuid"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleGuide  Role = "guide"
	RoleClient Role = "client"
)

// Principal is the caller identity resolved from the access token.
type Principal struct {
	UserID      uuid.UUID
	OutfitterID uuid.UUID
	Role        Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleOwner || p.Role == RoleAdmin
}

func (p Principal) IsClient() bool {
	return p.Role == RoleClient
}
