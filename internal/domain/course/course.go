package course

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/domain/validation"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("course not found")

type Course struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	EstimatedTime   *string       `json:"estimatedTime"`
	MaterialsNeeded *string       `json:"materialsNeeded"`
	UserID          string        `json:"-"`
	Owner           *user.Summary `json:"owner,omitempty"`
	CreatedAt       time.Time     `json:"-"`
	UpdatedAt       time.Time     `json:"-"`
}

// The owner always comes from the authenticated identity; a userId sent by
// the client is not part of either request.
type CreateCourseRequest struct {
	Title           *string `json:"title" validate:"required,notblank"`
	Description     *string `json:"description" validate:"required,notblank"`
	EstimatedTime   *string `json:"estimatedTime"`
	MaterialsNeeded *string `json:"materialsNeeded"`
}

// UpdateCourseRequest is a partial update: omitted fields keep their value,
// fields sent as null are cleared (and fail when the field is required).
type UpdateCourseRequest struct {
	Title           Optional `json:"title"`
	Description     Optional `json:"description"`
	EstimatedTime   Optional `json:"estimatedTime"`
	MaterialsNeeded Optional `json:"materialsNeeded"`
}

// Optional is a JSON string that remembers whether the key was sent at all.
type Optional struct {
	Set   bool
	Value *string
}

// Some returns a present, non-null value.
func Some(s string) Optional {
	return Optional{Set: true, Value: &s}
}

// Null returns a present null.
func Null() Optional {
	return Optional{Set: true}
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o Optional) or(current *string) *string {
	if o.Set {
		return o.Value
	}
	return current
}

var messages = validation.MessageTable{
	"Title.required":       "A course title is required",
	"Title.notblank":       "Please provide a course title",
	"Description.required": "A course description is required",
	"Description.notblank": "Please provide a course description",
}

// ValidID reports whether id can name a course at all. Anything else is
// treated as a course that does not exist.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}
