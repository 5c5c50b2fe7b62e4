package postgres

import "github.com/geocoder89/courseapi/internal/observability"

// observe runs fn under the DB metrics when a Prom is configured.
func observe(p *observability.Prom, op string, fn func() error) error {
	if p == nil {
		return fn()
	}
	return p.ObserveDB(op, fn)
}
