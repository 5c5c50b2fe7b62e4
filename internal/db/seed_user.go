package db

import (
	"context"
	"errors"

	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/domain/validation"
	"github.com/geocoder89/courseapi/internal/security"
)

type UserCreator interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

type SeedUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// EnsureSeedUser creates the configured user unless the address is already
// registered. Nothing happens without an e-mail and password.
func EnsureSeedUser(ctx context.Context, users UserCreator, hasher security.Hasher, seed SeedUser) (bool, error) {
	if seed.Email == "" || seed.Password == "" {
		return false, nil
	}

	u, err := user.New(user.CreateUserRequest{
		FirstName:    &seed.FirstName,
		LastName:     &seed.LastName,
		EmailAddress: &seed.Email,
		Password:     &seed.Password,
	}, hasher)
	if err != nil {
		return false, err
	}

	_, err = users.Create(ctx, u)
	if err != nil {
		var uv *validation.UniqueViolation
		if errors.As(err, &uv) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
