package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/hunt-contracts/internal/model"
)

func TestParser_RoundTrip(t *testing.T) {
	parser := NewParser("secret")
	principal := model.Principal{UserID: uuid.New(), OutfitterID: uuid.New(), Role: model.RoleAdmin}

	token, err := parser.Issue(principal, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	require.NoError(t, err)

	got, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, principal, got)
}

func TestParser_RejectsWrongSecretAndExpired(t *testing.T) {
	principal := model.Principal{UserID: uuid.New(), OutfitterID: uuid.New(), Role: model.RoleClient}

	token, err := NewParser("other").Issue(principal, jwt.RegisteredClaims{})
	require.NoError(t, err)
	_, err = NewParser("secret").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewParser("secret").Issue(principal, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))})
	require.NoError(t, err)
	_, err = NewParser("secret").Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParser_RejectsUnknownRole(t *testing.T) {
	parser := NewParser("secret")
	token, err := parser.Issue(model.Principal{UserID: uuid.New(), OutfitterID: uuid.New(), Role: "driver"}, jwt.RegisteredClaims{})
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
