// Package health reports whether the back office can reach its backing
// services.
package health

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

type Component struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	LatencyMS int64  `json:"latency_ms"`
}

type Report struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
	Timestamp  time.Time            `json:"timestamp"`
}

// Pinger is satisfied by the Redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker pings the database and the cache. The database is required; a
// missing cache only degrades the service.
type Checker struct {
	db    *gorm.DB
	cache Pinger
	now   func() time.Time
}

func NewChecker(db *gorm.DB, cache Pinger) *Checker {
	return &Checker{db: db, cache: cache, now: time.Now}
}

func (c *Checker) timed(ctx context.Context, ping func(context.Context) error) Component {
	start := c.now()
	err := ping(ctx)
	latency := c.now().Sub(start).Milliseconds()
	if err != nil {
		return Component{Status: StatusUnavailable, Message: err.Error(), LatencyMS: latency}
	}
	return Component{Status: StatusHealthy, Message: "Responding", LatencyMS: latency}
}

func (c *Checker) pingDB(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Checker) Check(ctx context.Context) Report {
	report := Report{
		Status:     StatusHealthy,
		Components: map[string]Component{},
		Timestamp:  c.now(),
	}

	report.Components["database"] = c.timed(ctx, c.pingDB)
	if c.cache != nil {
		report.Components["redis"] = c.timed(ctx, c.cache.Ping)
	} else {
		report.Components["redis"] = Component{Status: StatusUnavailable, Message: "Not configured"}
	}

	switch {
	case report.Components["database"].Status != StatusHealthy:
		report.Status = StatusUnavailable
	case report.Components["redis"].Status != StatusHealthy:
		report.Status = StatusDegraded
	}
	return report
}

// Serving is true unless the database is unreachable.
func (c *Checker) Serving(ctx context.Context) bool {
	return c.pingDB(ctx) == nil
}
