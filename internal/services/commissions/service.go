package commissions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/lifecycle"
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

type CreateInput struct {
	AgentID     int64           `json:"agent_id"`
	WorkerID    *int64          `json:"worker_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Notes       *string         `json:"notes"`
}

type Filter struct {
	AgentID int64
	Status  models.CommissionStatus
}

// BulkResult reports each approval independently; one failure does not
// undo the others.
type BulkResult struct {
	Approved     []models.Commission `json:"approved"`
	Errors       []string            `json:"errors"`
	SuccessCount int                 `json:"success_count"`
	ErrorCount   int                 `json:"error_count"`
}

type AgentSummary struct {
	AgentID   int64           `json:"agent_id"`
	Pending   decimal.Decimal `json:"pending"`
	Approved  decimal.Decimal `json:"approved"`
	Paid      decimal.Decimal `json:"paid"`
	Cancelled decimal.Decimal `json:"cancelled"`
	Count     int64           `json:"count"`
}

// --- Commission Management ---
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Commission, error) {
	if in.AgentID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Agent ID is required")
	}
	if !in.Amount.IsPositive() {
		return nil, status.Errorf(codes.InvalidArgument, "Commission amount must be greater than zero")
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return nil, status.Errorf(codes.InvalidArgument, "Commission amount must have at most 2 decimal places")
	}

	db := s.db.WithContext(ctx)

	var agent models.Agent
	if err := db.Select("id").First(&agent, in.AgentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Agent with ID %d not found", in.AgentID)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve agent: %v", err)
	}

	if in.WorkerID != nil && *in.WorkerID > 0 {
		var worker models.Worker
		if err := db.Select("id").First(&worker, *in.WorkerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, status.Errorf(codes.NotFound, "Worker with ID %d not found", *in.WorkerID)
			}
			return nil, status.Errorf(codes.Internal, "Failed to retrieve worker: %v", err)
		}
	} else {
		in.WorkerID = nil
	}

	commission := models.Commission{
		AgentID:     in.AgentID,
		WorkerID:    in.WorkerID,
		Amount:      in.Amount,
		Description: in.Description,
		Status:      models.CommissionPending,
		Notes:       in.Notes,
	}
	if err := db.Create(&commission).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create commission: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	return &commission, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Commission, error) {
	var commission models.Commission
	if err := s.db.WithContext(ctx).Preload("Agent").Preload("Worker").First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Commission with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve commission: %v", err)
	}
	return &commission, nil
}

func (s *Service) List(ctx context.Context, filter Filter, page *database.Pagination) ([]models.Commission, error) {
	query := s.db.WithContext(ctx).Model(&models.Commission{})
	if filter.AgentID > 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count commissions: %v", err)
		}
	}

	var commissions []models.Commission
	if err := query.Preload("Agent").Order("created_at desc").Scopes(database.Paginate(page)).Find(&commissions).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve commissions: %v", err)
	}
	return commissions, nil
}

// transition locks the commission row and validates the move. apply stamps
// the audit fields before the row is saved. Repeating the current status is
// a no-op.
func (s *Service) transition(ctx context.Context, id int64, to models.CommissionStatus, apply func(*models.Commission)) (*models.Commission, error) {
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Commission ID is required")
	}

	var (
		commission models.Commission
		unchanged  bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&commission, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return status.Errorf(codes.NotFound, "Commission with ID %d not found", id)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve commission: %v", err)
		}

		if err := lifecycle.CheckCommission(commission.Status, to); err != nil {
			return err
		}
		if commission.Status == to {
			unchanged = true
			return nil
		}

		commission.Status = to
		if apply != nil {
			apply(&commission)
		}

		if err := tx.Save(&commission).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save commission: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if unchanged {
		return &commission, nil
	}

	s.cache.InvalidateBusinessData(ctx)
	s.logger.Info("commission status changed",
		zap.Int64("commission_id", commission.ID),
		zap.String("status", string(to)))
	return &commission, nil
}

func (s *Service) Approve(ctx context.Context, id, approvedBy int64, notes string) (*models.Commission, error) {
	if approvedBy <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Approved By (user ID) is required")
	}
	return s.transition(ctx, id, models.CommissionApproved, func(c *models.Commission) {
		now := s.now()
		c.ApprovedByID = &approvedBy
		c.ApprovedAt = &now
		if notes != "" {
			c.Notes = &notes
		}
	})
}

func (s *Service) MarkPaid(ctx context.Context, id, paidBy int64, reference string) (*models.Commission, error) {
	if paidBy <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Paid By (user ID) is required")
	}
	return s.transition(ctx, id, models.CommissionPaid, func(c *models.Commission) {
		now := s.now()
		c.PaidByID = &paidBy
		c.PaidAt = &now
		if reference != "" {
			c.PaymentReference = &reference
		}
	})
}

func (s *Service) Cancel(ctx context.Context, id, cancelledBy int64, reason string) (*models.Commission, error) {
	if cancelledBy <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Cancelled By (user ID) is required")
	}
	return s.transition(ctx, id, models.CommissionCancelled, func(c *models.Commission) {
		note := fmt.Sprintf("[CANCELLED by User ID %d on %s]", cancelledBy, s.now().Format("2006-01-02 15:04:05"))
		if reason != "" {
			note += ": " + reason
		}
		if c.Notes != nil && *c.Notes != "" {
			note = *c.Notes + "\n" + note
		}
		c.Notes = &note
	})
}

func (s *Service) BulkApprove(ctx context.Context, ids []int64, approvedBy int64) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Commission IDs are required")
	}
	if approvedBy <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Approved By (user ID) is required")
	}

	var (
		result BulkResult
		wg     sync.WaitGroup
		mu     sync.Mutex
	)

	seen := make(map[int64]bool, len(ids))
	for _, commissionID := range ids {
		if seen[commissionID] {
			continue
		}
		seen[commissionID] = true
		wg.Add(1)

		go func(id int64) {
			defer wg.Done()

			commission, err := s.Approve(ctx, id, approvedBy, "")

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Commission ID %d: %s", id, status.Convert(err).Message()))
				return
			}
			result.Approved = append(result.Approved, *commission)
		}(commissionID)
	}

	wg.Wait()

	result.SuccessCount = len(result.Approved)
	result.ErrorCount = len(result.Errors)
	return &result, nil
}

type summaryRow struct {
	Status string
	Count  int64
	Total  string
}

func (s *Service) SummaryByAgent(ctx context.Context, agentID int64) (*AgentSummary, error) {
	if agentID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Agent ID is required")
	}

	var rows []summaryRow
	if err := s.db.WithContext(ctx).Model(&models.Commission{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("agent_id = ?", agentID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to summarize commissions: %v", err)
	}

	summary := AgentSummary{
		AgentID:   agentID,
		Pending:   decimal.Zero,
		Approved:  decimal.Zero,
		Paid:      decimal.Zero,
		Cancelled: decimal.Zero,
	}
	for _, row := range rows {
		total, err := decimal.NewFromString(row.Total)
		if err != nil {
			total = decimal.Zero
		}
		switch models.CommissionStatus(row.Status) {
		case models.CommissionPending:
			summary.Pending = total
		case models.CommissionApproved:
			summary.Approved = total
		case models.CommissionPaid:
			summary.Paid = total
		case models.CommissionCancelled:
			summary.Cancelled = total
		}
		summary.Count += row.Count
	}
	return &summary, nil
}
