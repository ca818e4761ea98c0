package admin

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/cache"
)

// ConfirmationPhrase must be sent verbatim to wipe business data.
const ConfirmationPhrase = "RESET ALL DATA"

// resetOrder lists business tables children first so foreign keys never
// block a delete. Users, geo reference data and CMS content are kept.
var resetOrder = []string{
	"payments",
	"loans",
	"commissions",
	"documents",
	"sos_alerts",
	"orders",
	"workers",
	"agents",
	"clients",
}

type TableCount struct {
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
}

type ResetResult struct {
	Tables    []TableCount `json:"tables"`
	Total     int64        `json:"total"`
	ResetAt   time.Time    `json:"reset_at"`
	ResetByID int64        `json:"reset_by_id"`
}

type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *zap.Logger
}

func NewService(db *gorm.DB, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cache: c, logger: logger}
}

// ResetAll deletes every business record in one transaction. Any failure
// rolls the whole reset back.
func (s *Service) ResetAll(ctx context.Context, confirmation string, userID int64) (*ResetResult, error) {
	if confirmation != ConfirmationPhrase {
		return nil, status.Errorf(codes.FailedPrecondition, "Confirmation phrase must be exactly %q", ConfirmationPhrase)
	}

	result := ResetResult{ResetByID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range resetOrder {
			res := tx.Exec("DELETE FROM " + table)
			if res.Error != nil {
				return status.Errorf(codes.Internal, "Failed to clear %s: %v", table, res.Error)
			}
			result.Tables = append(result.Tables, TableCount{Table: table, Deleted: res.RowsAffected})
			result.Total += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		s.logger.Error("data reset failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	result.ResetAt = time.Now()

	s.cache.InvalidateBusinessData(ctx)
	s.cache.InvalidatePrefix(ctx, cache.PublicCMSPrefix)
	s.logger.Warn("all business data reset",
		zap.Int64("user_id", userID),
		zap.Int64("rows_deleted", result.Total))

	return &result, nil
}
