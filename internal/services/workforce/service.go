// Package workforce manages workers, the agents who recruit them and the
// clients who employ them, plus the province and district reference data.
package workforce

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/cache"
)

type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cache: c, logger: logger, now: time.Now}
}

// NewCode returns a human readable record code such as "W-3F9A12BC".
func NewCode(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:8])
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func likePattern(search string) string {
	search = strings.TrimSpace(search)
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + replacer.Replace(search) + "%"
}
