package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles carried by actor tokens.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleStaff      UserRole = "STAFF"
	RoleParent     UserRole = "PARENT"
)

// JWTClaims represents the actor identity supplied by the session provider.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
