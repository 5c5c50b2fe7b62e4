package course

import (
	"time"

	"github.com/geocoder89/courseapi/internal/domain/validation"
	"github.com/google/uuid"
)

func New(req CreateCourseRequest, ownerID string) (Course, error) {
	if err := validation.Validate(req, messages); err != nil {
		return Course{}, err
	}

	now := time.Now().UTC()

	return Course{
		ID:              uuid.NewString(),
		Title:           *req.Title,
		Description:     *req.Description,
		EstimatedTime:   req.EstimatedTime,
		MaterialsNeeded: req.MaterialsNeeded,
		UserID:          ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Apply returns a copy of c with the fields present in req replaced. ID and
// owner never change. The merged result is held to the same rules as a new
// course, so a required field sent as null or blank is rejected.
func (c Course) Apply(req UpdateCourseRequest) (Course, error) {
	merged := CreateCourseRequest{
		Title:           req.Title.or(&c.Title),
		Description:     req.Description.or(&c.Description),
		EstimatedTime:   req.EstimatedTime.or(c.EstimatedTime),
		MaterialsNeeded: req.MaterialsNeeded.or(c.MaterialsNeeded),
	}
	if err := validation.Validate(merged, messages); err != nil {
		return Course{}, err
	}

	c.Title = *merged.Title
	c.Description = *merged.Description
	c.EstimatedTime = merged.EstimatedTime
	c.MaterialsNeeded = merged.MaterialsNeeded
	c.UpdatedAt = time.Now().UTC()

	return c, nil
}
