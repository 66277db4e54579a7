package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
)

// UserFinder resolves an active, non-deleted principal by id.
// Implementations return common.ErrorNotFound when there is none.
type UserFinder interface {
	FindActiveByID(ctx context.Context, id int64) (*models.User, error)
}

// Guard authenticates bearer tokens and enforces role sets. It reads
// principals only and never consults the session store, so an access token
// stays usable until it expires even after logout.
type Guard struct {
	codec *Codec
	users UserFinder
}

func NewGuard(codec *Codec, users UserFinder) *Guard {
	return &Guard{codec: codec, users: users}
}

// BearerToken extracts the token from an Authorization header value.
// It returns "" when the header is missing or uses another scheme.
func BearerToken(header string) string {
	if len(header) < len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(common.BearerPrefix):])
}

// Authenticate resolves the principal behind an access token.
// Every failure, including an expired token or a deactivated principal,
// yields common.ErrUnauthenticated. Store faults are returned wrapped in
// common.ErrorInternal.
func (g *Guard) Authenticate(ctx context.Context, bearer string) (*models.User, error) {
	if bearer == "" {
		return nil, common.ErrUnauthenticated
	}

	claims, err := g.codec.DecodeAccess(bearer)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	user, err := g.users.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return user, nil
}

// Authorize returns user when its role is in allowed, common.ErrForbidden
// otherwise. An empty allowed set admits no one.
func (g *Guard) Authorize(user *models.User, allowed ...models.Role) (*models.User, error) {
	if user == nil || !slices.Contains(allowed, user.Role) {
		return nil, common.ErrForbidden
	}
	return user, nil
}

// Require authenticates bearer and then authorizes the principal against allowed.
func (g *Guard) Require(ctx context.Context, bearer string, allowed ...models.Role) (*models.User, error) {
	user, err := g.Authenticate(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return g.Authorize(user, allowed...)
}
