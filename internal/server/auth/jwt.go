// Package auth implements credential hashing, the signed token codec and the
// authorization guard that every protected operation goes through.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
	"github.com/dmitrijs2005/atskeeper/internal/timex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tags a token as usable for API access or for obtaining new
// access tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the JWT payload. Subject carries the principal id; Email and
// Role are set on access tokens only. ID (jti) is unique per token so two
// tokens issued in the same second never collide.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email,omitempty"`
	Role  models.Role `json:"role,omitempty"`
	Type  TokenType   `json:"type"`
}

// UserID parses the subject as a principal id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

// Codec signs and verifies HS256 tokens. It holds no mutable state and is
// safe for concurrent use.
type Codec struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        timex.Clock
}

// NewCodec builds a Codec. A nil clock means time.Now.
func NewCodec(secretKey []byte, accessTTL, refreshTTL time.Duration, clock timex.Clock) *Codec {
	if clock == nil {
		clock = time.Now
	}
	return &Codec{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        clock,
	}
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Encode stamps iat, exp and jti onto claims and signs them.
// It returns the token and its expiry.
func (c *Codec) Encode(claims *Claims, ttl time.Duration) (string, time.Time, error) {
	if claims.Type != TokenTypeAccess && claims.Type != TokenTypeRefresh {
		return "", time.Time{}, fmt.Errorf("unknown token type %q", claims.Type)
	}

	now := c.now()
	expiresAt := now.Add(ttl)

	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// IssueAccess issues an access token carrying the principal's email and role.
func (c *Codec) IssueAccess(user *models.User) (string, time.Time, error) {
	return c.Encode(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(user.ID, 10)},
		Email:            user.Email,
		Role:             user.Role,
		Type:             TokenTypeAccess,
	}, c.accessTTL)
}

// IssueRefresh issues a refresh token for userID.
func (c *Codec) IssueRefresh(userID int64) (string, time.Time, error) {
	return c.Encode(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(userID, 10)},
		Type:             TokenTypeRefresh,
	}, c.refreshTTL)
}

// Decode verifies the signature, the type tag and the expiry of token.
// A token is expired from the instant now reaches exp. Expiry yields
// common.ErrTokenExpired; any other defect yields common.ErrInvalidToken.
// Decode never consults storage.
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Type != TokenTypeAccess && claims.Type != TokenTypeRefresh {
		return nil, common.ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	return claims, nil
}

// DecodeAccess decodes token and requires the access type tag.
func (c *Codec) DecodeAccess(token string) (*Claims, error) {
	return c.decodeTyped(token, TokenTypeAccess)
}

// DecodeRefresh decodes token and requires the refresh type tag.
func (c *Codec) DecodeRefresh(token string) (*Claims, error) {
	return c.decodeTyped(token, TokenTypeRefresh)
}

func (c *Codec) decodeTyped(token string, want TokenType) (*Claims, error) {
	claims, err := c.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
