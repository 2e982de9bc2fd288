package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/hunt-contracts/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by access tokens issued by the identity service.
type Claims struct {
	OutfitterID string `json:"outfitter_id"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(token string) (model.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: subject", ErrInvalidToken)
	}
	outfitterID, err := uuid.Parse(claims.OutfitterID)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: outfitter_id", ErrInvalidToken)
	}

	role := model.Role(claims.Role)
	switch role {
	case model.RoleOwner, model.RoleAdmin, model.RoleGuide, model.RoleClient:
	default:
		return model.Principal{}, fmt.Errorf("%w: role", ErrInvalidToken)
	}

	return model.Principal{
		UserID:      userID,
		OutfitterID: outfitterID,
		Role:        role,
	}, nil
}

// Issue signs a token for principal. Used by tests and local tooling.
func (p *Parser) Issue(principal model.Principal, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = principal.UserID.String()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OutfitterID:      principal.OutfitterID.String(),
		Role:             string(principal.Role),
		RegisteredClaims: claims,
	})
	return token.SignedString(p.secret)
}
