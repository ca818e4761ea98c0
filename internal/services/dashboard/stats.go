package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database/models"
)

// ExpiryWindow is how far ahead documents count as expiring.
const ExpiryWindow = 30 * 24 * time.Hour

type Stats struct {
	WorkersByStatus     map[models.WorkerStatus]int64 `json:"workers_by_status"`
	TotalWorkers        int64                         `json:"total_workers"`
	TotalAgents         int64                         `json:"total_agents"`
	TotalClients        int64                         `json:"total_clients"`
	ActiveLoans         int64                         `json:"active_loans"`
	OverdueLoans        int64                         `json:"overdue_loans"`
	OutstandingBalance  decimal.Decimal               `json:"outstanding_balance"`
	PendingCommissions  decimal.Decimal               `json:"pending_commissions"`
	ApprovedCommissions decimal.Decimal               `json:"approved_commissions"`
	OpenSosAlerts       int64                         `json:"open_sos_alerts"`
	ActiveOrders        int64                         `json:"active_orders"`
	ExpiringDocuments   int64                         `json:"expiring_documents"`
	GeneratedAt         time.Time                     `json:"generated_at"`
}

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

type statusCount struct {
	Status string
	Count  int64
}

type moneyTotal struct {
	Status string
	Count  int64
	Total  string
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if s.cache.GetJSON(ctx, cache.DashboardStatsKey, &stats) {
		return &stats, nil
	}

	db := s.db.WithContext(ctx)
	stats = Stats{
		WorkersByStatus:     make(map[models.WorkerStatus]int64, len(models.WorkerStatuses)),
		OutstandingBalance:  decimal.Zero,
		PendingCommissions:  decimal.Zero,
		ApprovedCommissions: decimal.Zero,
	}
	for _, st := range models.WorkerStatuses {
		stats.WorkersByStatus[st] = 0
	}

	var workerRows []statusCount
	if err := db.Model(&models.Worker{}).Select("status, COUNT(*) AS count").Group("status").Scan(&workerRows).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to count workers: %v", err)
	}
	for _, row := range workerRows {
		stats.WorkersByStatus[models.WorkerStatus(row.Status)] = row.Count
		stats.TotalWorkers += row.Count
	}

	if err := db.Model(&models.Agent{}).Count(&stats.TotalAgents).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to count agents: %v", err)
	}
	if err := db.Model(&models.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to count clients: %v", err)
	}

	var loanRows []moneyTotal
	if err := db.Model(&models.Loan{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(balance), 0) AS total").
		Where("status IN ?", []models.LoanStatus{models.LoanActive, models.LoanOverdue}).
		Group("status").Scan(&loanRows).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to aggregate loans: %v", err)
	}
	for _, row := range loanRows {
		switch models.LoanStatus(row.Status) {
		case models.LoanActive:
			stats.ActiveLoans = row.Count
		case models.LoanOverdue:
			stats.OverdueLoans = row.Count
		}
		stats.OutstandingBalance = stats.OutstandingBalance.Add(parseDecimal(row.Total))
	}

	var commissionRows []moneyTotal
	if err := db.Model(&models.Commission{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("status IN ?", []models.CommissionStatus{models.CommissionPending, models.CommissionApproved}).
		Group("status").Scan(&commissionRows).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to aggregate commissions: %v", err)
	}
	for _, row := range commissionRows {
		switch models.CommissionStatus(row.Status) {
		case models.CommissionPending:
			stats.PendingCommissions = parseDecimal(row.Total)
		case models.CommissionApproved:
			stats.ApprovedCommissions = parseDecimal(row.Total)
		}
	}

	if err := db.Model(&models.SosAlert{}).
		Where("status IN ?", []models.SosStatus{models.SosOpen, models.SosInProgress}).
		Count(&stats.OpenSosAlerts).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to count SOS alerts: %v", err)
	}

	if err := db.Model(&models.Order{}).
		Where("status NOT IN ?", []models.OrderStatus{models.OrderCompleted, models.OrderCancelled}).
		Count(&stats.ActiveOrders).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to count orders: %v", err)
	}

	now := s.now()
	if err := db.Model(&models.Document{}).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", now, now.Add(ExpiryWindow)).
		Where("status <> ?", models.DocumentRejected).
		Count(&stats.ExpiringDocuments).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to count expiring documents: %v", err)
	}

	stats.GeneratedAt = now
	s.cache.SetJSON(ctx, cache.DashboardStatsKey, stats, cache.TTLShort)

	return &stats, nil
}

func parseDecimal(raw string) decimal.Decimal {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return v
}
