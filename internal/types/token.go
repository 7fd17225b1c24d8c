package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the API recognises.
const RoleAdmin = "admin"

// AdminClaims are the claims carried by an admin bearer token.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}
