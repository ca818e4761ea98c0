package export

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/database/models"
)

const (
	dateLayout = "2006-01-02"

	// MaxRows caps a single export.
	MaxRows = 50000
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger}
}

func formatDate(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

var workerColumns = []column[models.Worker]{
	{Header: "Code", Width: 14, Value: func(w models.Worker) interface{} { return w.Code }},
	{Header: "Name (EN)", Width: 24, Value: func(w models.Worker) interface{} { return joinName(w.FirstNameEn, w.LastNameEn) }},
	{Header: "Name (TH)", Width: 24, Value: func(w models.Worker) interface{} { return joinName(w.FirstNameTh, w.LastNameTh) }},
	{Header: "Name (LO)", Width: 24, Value: func(w models.Worker) interface{} { return joinName(w.FirstNameLo, w.LastNameLo) }},
	{Header: "Nationality", Width: 12, Value: func(w models.Worker) interface{} { return w.Nationality }},
	{Header: "Gender", Width: 10, Value: func(w models.Worker) interface{} { return string(w.Gender) }},
	{Header: "Phone", Width: 16, Value: func(w models.Worker) interface{} { return w.Phone }},
	{Header: "Passport", Width: 16, Value: func(w models.Worker) interface{} { return deref(w.PassportNo) }},
	{Header: "Position", Width: 20, Value: func(w models.Worker) interface{} { return w.Position }},
	{Header: "Status", Width: 14, Value: func(w models.Worker) interface{} { return string(w.Status) }},
	{Header: "Agent", Width: 22, Value: func(w models.Worker) interface{} {
		if w.Agent == nil {
			return nil
		}
		return w.Agent.Name
	}},
	{Header: "Client", Width: 28, Value: func(w models.Worker) interface{} {
		if w.Client == nil {
			return nil
		}
		return w.Client.CompanyName
	}},
	{Header: "Deployed", Width: 12, Value: func(w models.Worker) interface{} { return formatDate(w.DeployedAt) }},
	{Header: "Contract End", Width: 12, Value: func(w models.Worker) interface{} { return formatDate(w.ContractEndAt) }},
	{Header: "Created", Width: 12, Value: func(w models.Worker) interface{} { return formatDate(&w.CreatedAt) }},
}

var loanColumns = []column[models.Loan]{
	{Header: "Loan ID", Width: 10, Value: func(l models.Loan) interface{} { return l.ID }},
	{Header: "Worker Code", Width: 14, Value: func(l models.Loan) interface{} {
		if l.Worker == nil {
			return nil
		}
		return l.Worker.Code
	}},
	{Header: "Worker", Width: 24, Value: func(l models.Loan) interface{} {
		if l.Worker == nil {
			return nil
		}
		return l.Worker.DisplayName()
	}},
	{Header: "Currency", Width: 10, Value: func(l models.Loan) interface{} { return l.Currency }},
	{Header: "Principal", Width: 14, Value: func(l models.Loan) interface{} { return l.Principal.InexactFloat64() }},
	{Header: "Balance", Width: 14, Value: func(l models.Loan) interface{} { return l.Balance.InexactFloat64() }},
	{Header: "Paid", Width: 14, Value: func(l models.Loan) interface{} { return l.Principal.Sub(l.Balance).InexactFloat64() }},
	{Header: "Status", Width: 12, Value: func(l models.Loan) interface{} { return string(l.Status) }},
	{Header: "Purpose", Width: 24, Value: func(l models.Loan) interface{} { return l.Purpose }},
	{Header: "Issued", Width: 12, Value: func(l models.Loan) interface{} { return formatDate(&l.IssuedAt) }},
	{Header: "Due", Width: 12, Value: func(l models.Loan) interface{} { return formatDate(l.DueAt) }},
}

func joinName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}

func (s *Service) Workers(ctx context.Context, st models.WorkerStatus) ([]byte, error) {
	query := s.db.WithContext(ctx).Preload("Agent").Preload("Client").Order("code asc").Limit(MaxRows)
	if st != "" {
		query = query.Where("status = ?", st)
	}

	var workers []models.Worker
	if err := query.Find(&workers).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve workers: %v", err)
	}

	data, err := buildWorkbook("Workers", workerColumns, workers)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to build workers workbook: %v", err)
	}
	s.logger.Info("workers exported", zap.Int("rows", len(workers)))
	return data, nil
}

func (s *Service) Loans(ctx context.Context, st models.LoanStatus) ([]byte, error) {
	query := s.db.WithContext(ctx).Preload("Worker").Order("issued_at desc").Limit(MaxRows)
	if st != "" {
		query = query.Where("status = ?", st)
	}

	var loans []models.Loan
	if err := query.Find(&loans).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve loans: %v", err)
	}

	data, err := buildWorkbook("Loans", loanColumns, loans)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to build loans workbook: %v", err)
	}
	s.logger.Info("loans exported", zap.Int("rows", len(loans)))
	return data, nil
}
