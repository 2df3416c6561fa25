package auth

import (
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OperatorID string
	Name       string
	Role       enums.OperatorRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT presented by a terminal operator.
type AccessTokenClaims struct {
	OperatorID string             `json:"operator_id"`
	Name       string             `json:"name,omitempty"`
	Role       enums.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
