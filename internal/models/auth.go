package models

import "github.com/golang-jwt/jwt/v5"

// UserRole distinguishes caller roles on protected routes. Credential
// management lives outside this service; only token verification happens here.
type UserRole string

// Recognised roles.
const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStaff   UserRole = "STAFF"
	RoleTeacher UserRole = "TEACHER"
)

// JWTClaims represents the JWT payload for access tokens issued by the
// platform's identity service.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	CollegeID string   `json:"college_id"`
	jwt.RegisteredClaims
}
