package user

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/courseapi/internal/domain/validation"
)

var ErrNotFound = errors.New("user not found")

const MsgEmailTaken = "That email address is already associated with another user"

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	EmailAddress string    `json:"emailAddress"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is the public view of a user, used for GET /users and course owners.
type Summary struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
}

func (u User) Summary() Summary {
	return Summary{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		EmailAddress: u.EmailAddress,
	}
}

// pointers so a missing field and an empty one get different messages
type CreateUserRequest struct {
	FirstName    *string `json:"firstName" validate:"required,notblank"`
	LastName     *string `json:"lastName" validate:"required,notblank"`
	EmailAddress *string `json:"emailAddress" validate:"required,notblank"`
	Password     *string `json:"password" validate:"required,notblank"`
}

var messages = validation.MessageTable{
	"FirstName.required":    "A first name is required",
	"FirstName.notblank":    "Please provide a first name",
	"LastName.required":     "A last name is required",
	"LastName.notblank":     "Please provide a last name",
	"EmailAddress.required": "An email address is required",
	"EmailAddress.notblank": "Please provide an email address",
	"Password.required":     "A password is required",
	"Password.notblank":     "Please provide a password",
}

const msgPasswordTooLong = "A password must be at most 72 bytes long"

// ErrEmailTaken is what stores return when the e-mail unique index rejects a write.
func ErrEmailTaken() *validation.UniqueViolation {
	return &validation.UniqueViolation{Field: "emailAddress", Message: MsgEmailTaken}
}

// NormalizeEmail is applied on every write and every lookup, which makes
// e-mail uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
