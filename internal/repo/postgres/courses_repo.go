package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/courseapi/internal/domain/course"
	"github.com/geocoder89/courseapi/internal/domain/user"
	"github.com/geocoder89/courseapi/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCoursesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{pool: pool, prom: prom}
}

const selectCourseWithOwner = `
	SELECT c.id, c.title, c.description, c.estimated_time, c.materials_needed, c.user_id,
		c.created_at, c.updated_at,
		u.first_name, u.last_name, u.email_address
	FROM courses c
	JOIN users u ON u.id = c.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (course.Course, error) {
	var c course.Course
	var owner user.Summary

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.EstimatedTime,
		&c.MaterialsNeeded,
		&c.UserID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&owner.FirstName,
		&owner.LastName,
		&owner.EmailAddress,
	)
	if err != nil {
		return course.Course{}, err
	}
	c.Owner = &owner
	return c, nil
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	err := observe(r.prom, "courses.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO courses (id, title, description, estimated_time, materials_needed, user_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			c.ID, c.Title, c.Description, c.EstimatedTime, c.MaterialsNeeded, c.UserID, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return course.Course{}, err
	}

	return c, nil
}

func (r *CoursesRepo) List(ctx context.Context) ([]course.Course, error) {
	output := make([]course.Course, 0)

	err := observe(r.prom, "courses.list", func() error {
		rows, err := r.pool.Query(ctx, selectCourseWithOwner+` ORDER BY c.created_at ASC, c.id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCourse(rows)
			if err != nil {
				return err
			}
			output = append(output, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *CoursesRepo) GetByID(ctx context.Context, id string) (course.Course, error) {
	if !course.ValidID(id) {
		return course.Course{}, course.ErrNotFound
	}

	var c course.Course
	err := observe(r.prom, "courses.get_by_id", func() error {
		var err error
		c, err = scanCourse(r.pool.QueryRow(ctx, selectCourseWithOwner+` WHERE c.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}

	return c, nil
}

// Update writes every mutable column of c. The owner is part of the match so
// a stale ownership check cannot modify another user's course.
func (r *CoursesRepo) Update(ctx context.Context, c course.Course) (course.Course, error) {
	err := observe(r.prom, "courses.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE courses
				SET title = $3,
					description = $4,
					estimated_time = $5,
					materials_needed = $6,
					updated_at = $7
			WHERE id = $1 AND user_id = $2
			RETURNING created_at, updated_at`,
			c.ID,
			c.UserID,
			c.Title,
			c.Description,
			c.EstimatedTime,
			c.MaterialsNeeded,
			c.UpdatedAt,
		).Scan(&c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}

	return c, nil
}

func (r *CoursesRepo) Delete(ctx context.Context, id, ownerID string) error {
	var affected int64
	err := observe(r.prom, "courses.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1 AND user_id = $2`, id, ownerID)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return course.ErrNotFound
	}

	return nil
}
