package user

import (
	"time"

	"github.com/geocoder89/courseapi/internal/domain/validation"
	"github.com/geocoder89/courseapi/internal/security"
	"github.com/google/uuid"
)

// New is the only way to build a User from plaintext credentials. The request
// is validated first and the password goes through the hasher before the User
// value exists, so no User ever carries a plaintext secret.
func New(req CreateUserRequest, hasher security.Hasher) (User, error) {
	err := validation.Validate(req, messages)

	if req.Password != nil && len(*req.Password) > security.MaxPasswordBytes {
		err = validation.Join(err, validation.Violation{
			Field:   "password",
			Rule:    "maxbytes",
			Message: msgPasswordTooLong,
		})
	}

	if err != nil {
		return User{}, err
	}

	hash, err := hasher.Hash(*req.Password)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		FirstName:    *req.FirstName,
		LastName:     *req.LastName,
		EmailAddress: NormalizeEmail(*req.EmailAddress),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
