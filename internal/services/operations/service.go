// Package operations covers field work: SOS alerts raised by deployed
// workers, client orders and the document register.
package operations

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/cache"
)

// Publisher receives SOS events for live subscribers.
type Publisher interface {
	Publish(event string, payload interface{})
}

type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *zap.Logger
	events Publisher
	now    func() time.Time
}

func NewService(db *gorm.DB, c *cache.Cache, events Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cache: c, events: events, logger: logger, now: time.Now}
}

func (s *Service) publish(event string, payload interface{}) {
	if s.events != nil {
		s.events.Publish(event, payload)
	}
}
