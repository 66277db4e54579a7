// Package seed creates initial principals, most importantly the first
// admin, directly in the store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/dmitrijs2005/atskeeper/internal/server/auth"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/users"
)

// MinPasswordLength is the shortest password accepted for a seeded principal.
const MinPasswordLength = 8

var (
	ErrInvalidEmail  = errors.New("invalid email")
	ErrInvalidRole   = errors.New("invalid role")
	ErrWeakPassword  = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrAlreadyExists = errors.New("principal already exists")
)

// Principal describes the account to create.
type Principal struct {
	Email    string
	UserName string
	Role     models.Role
}

// CreatePrincipal hashes password, wipes it and inserts the principal.
// An existing email yields ErrAlreadyExists.
func CreatePrincipal(ctx context.Context, repo users.Repository, hasher *auth.Hasher, p Principal, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	email := strings.TrimSpace(p.Email)
	if at := strings.IndexByte(email, '@'); at <= 0 || at == len(email)-1 {
		return nil, ErrInvalidEmail
	}
	if !p.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	userName := strings.TrimSpace(p.UserName)
	if userName == "" {
		userName = email[:strings.IndexByte(email, '@')]
	}

	hash, err := hasher.Hash(string(password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		Email:        email,
		UserName:     userName,
		Role:         p.Role,
		IsActive:     true,
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return user, nil
}
