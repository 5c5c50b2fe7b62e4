package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/geocoder89/courseapi/internal/domain/course"
)

type CoursesRepo struct {
	mu    sync.RWMutex
	items map[string]course.Course
	order []string // insertion order, the List order
	users *UsersRepo
}

// NewCoursesRepo joins owners from users, the way the SQL store joins the
// users table.
func NewCoursesRepo(users *UsersRepo) *CoursesRepo {
	return &CoursesRepo{
		items: make(map[string]course.Course),
		users: users,
	}
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	if _, err := r.users.GetByID(ctx, c.UserID); err != nil {
		return course.Course{}, fmt.Errorf("course owner %s: %w", c.UserID, err)
	}

	c.Owner = nil

	r.mu.Lock()
	r.items[c.ID] = c
	r.order = append(r.order, c.ID)
	r.mu.Unlock()

	return c, nil
}

func (r *CoursesRepo) List(ctx context.Context) ([]course.Course, error) {
	r.mu.RLock()
	output := make([]course.Course, 0, len(r.order))
	for _, id := range r.order {
		output = append(output, r.items[id])
	}
	r.mu.RUnlock()

	for i := range output {
		r.withOwner(ctx, &output[i])
	}
	return output, nil
}

func (r *CoursesRepo) GetByID(ctx context.Context, id string) (course.Course, error) {
	r.mu.RLock()
	c, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return course.Course{}, course.ErrNotFound
	}

	r.withOwner(ctx, &c)
	return c, nil
}

func (r *CoursesRepo) Update(ctx context.Context, c course.Course) (course.Course, error) {
	r.mu.Lock()
	existing, ok := r.items[c.ID]
	if !ok || existing.UserID != c.UserID {
		r.mu.Unlock()
		return course.Course{}, course.ErrNotFound
	}

	c.CreatedAt = existing.CreatedAt
	c.Owner = nil
	r.items[c.ID] = c
	r.mu.Unlock()

	r.withOwner(ctx, &c)
	return c, nil
}

func (r *CoursesRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[id]
	if !ok || existing.UserID != ownerID {
		return course.ErrNotFound
	}

	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *CoursesRepo) withOwner(ctx context.Context, c *course.Course) {
	u, err := r.users.GetByID(ctx, c.UserID)
	if err != nil {
		return
	}
	s := u.Summary()
	c.Owner = &s
}
