package ledger

import (
	"context"
	"errors"
	"strings"
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

type CreateLoanInput struct {
	WorkerID    int64           `json:"worker_id"`
	Principal   decimal.Decimal `json:"principal"`
	Currency    string          `json:"currency"`
	Purpose     string          `json:"purpose"`
	IssuedAt    *time.Time      `json:"issued_at"`
	DueAt       *time.Time      `json:"due_at"`
	Notes       *string         `json:"notes"`
	CreatedByID int64           `json:"-"`
}

type RecordPaymentInput struct {
	LoanID       int64                `json:"loan_id"`
	Amount       decimal.Decimal      `json:"amount"`
	Method       models.PaymentMethod `json:"method"`
	PaidAt       *time.Time           `json:"paid_at"`
	Reference    *string              `json:"reference"`
	Notes        *string              `json:"notes"`
	RecordedByID int64                `json:"-"`
}

type LoanFilter struct {
	WorkerID int64
	Status   models.LoanStatus
}

// LoanDetail is a loan with its read-side aggregates.
type LoanDetail struct {
	models.Loan
	TotalPaid       decimal.Decimal `json:"total_paid"`
	Progress        decimal.Decimal `json:"progress"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	Consistent      bool            `json:"consistent"`
}

// Reconciliation compares the stored balance with principal minus payments.
type Reconciliation struct {
	LoanID          int64             `json:"loan_id"`
	StoredBalance   decimal.Decimal   `json:"stored_balance"`
	ExpectedBalance decimal.Decimal   `json:"expected_balance"`
	Drift           decimal.Decimal   `json:"drift"`
	Repaired        bool              `json:"repaired"`
	Status          models.LoanStatus `json:"status"`
}

func (s *Service) CreateLoan(ctx context.Context, in CreateLoanInput) (*models.Loan, error) {
	if in.WorkerID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Worker ID is required")
	}
	balance, err := OpeningBalance(in.Principal)
	if err != nil {
		return nil, err
	}

	var worker models.Worker
	if err := s.db.WithContext(ctx).Select("id").First(&worker, in.WorkerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Worker with ID %d not found", in.WorkerID)
		}
		return nil, status.Errorf(codes.Internal, "Failed to load worker: %v", err)
	}

	issuedAt := s.now()
	if in.IssuedAt != nil {
		issuedAt = *in.IssuedAt
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "THB"
	}

	loan := models.Loan{
		WorkerID:  in.WorkerID,
		Principal: in.Principal,
		Balance:   balance,
		Currency:  currency,
		Purpose:   in.Purpose,
		Status:    models.LoanActive,
		IssuedAt:  issuedAt,
		DueAt:     in.DueAt,
		Notes:     in.Notes,
	}
	if in.CreatedByID > 0 {
		loan.CreatedByID = &in.CreatedByID
	}

	if err := s.db.WithContext(ctx).Create(&loan).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create loan: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	s.logger.Info("loan created",
		zap.Int64("loan_id", loan.ID),
		zap.Int64("worker_id", loan.WorkerID),
		zap.String("principal", loan.Principal.StringFixed(2)))

	return &loan, nil
}

// RecordPayment inserts the payment and decrements the loan balance in one
// transaction while holding a row lock on the loan.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, *models.Loan, error) {
	if in.LoanID <= 0 {
		return nil, nil, status.Errorf(codes.InvalidArgument, "Loan ID is required")
	}
	if in.RecordedByID <= 0 {
		return nil, nil, status.Errorf(codes.InvalidArgument, "Recorded By (user ID) is required")
	}
	if in.Method == "" {
		in.Method = models.PaymentCash
	}
	if !in.Method.Valid() {
		return nil, nil, status.Errorf(codes.InvalidArgument, "Unknown payment method %q", in.Method)
	}

	paidAt := s.now()
	if in.PaidAt != nil {
		paidAt = *in.PaidAt
	}

	var (
		loan    models.Loan
		payment models.Payment
		outcome Outcome
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&loan, in.LoanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return status.Errorf(codes.NotFound, "Loan with ID %d not found", in.LoanID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve loan: %v", err)
		}

		var err error
		outcome, err = ApplyPayment(loan.Balance, loan.Status, in.Amount)
		if err != nil {
			return err
		}

		payment = models.Payment{
			LoanID:       loan.ID,
			Amount:       in.Amount,
			Method:       in.Method,
			PaidAt:       paidAt,
			RecordedByID: in.RecordedByID,
			Reference:    in.Reference,
			Notes:        in.Notes,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to create payment record: %v", err)
		}

		if err := tx.Model(&loan).Updates(map[string]interface{}{
			"balance": outcome.Balance,
			"status":  outcome.Status,
		}).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to update loan balance: %v", err)
		}

		loan.Balance = outcome.Balance
		loan.Status = outcome.Status
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.cache.InvalidateBusinessData(ctx)
	s.logger.Info("payment recorded",
		zap.Int64("loan_id", loan.ID),
		zap.Int64("payment_id", payment.ID),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("balance", loan.Balance.StringFixed(2)),
		zap.Bool("paid_off", outcome.PaidOff))

	return &payment, &loan, nil
}

func (s *Service) ListLoans(ctx context.Context, filter LoanFilter, page *database.Pagination) ([]models.Loan, error) {
	query := s.db.WithContext(ctx).Model(&models.Loan{})
	if filter.WorkerID > 0 {
		query = query.Where("worker_id = ?", filter.WorkerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count loans: %v", err)
		}
	}

	var loans []models.Loan
	if err := query.Preload("Worker").Order("created_at desc").Scopes(database.Paginate(page)).Find(&loans).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve loans: %v", err)
	}
	return loans, nil
}

func (s *Service) GetLoan(ctx context.Context, id int64) (*LoanDetail, error) {
	var loan models.Loan
	err := s.db.WithContext(ctx).
		Preload("Worker").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at asc") }).
		First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Loan with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to get loan: %v", err)
	}
	return detail(loan), nil
}

func detail(loan models.Loan) *LoanDetail {
	expected := ExpectedBalance(loan.Principal, loan.Payments)
	return &LoanDetail{
		Loan:            loan,
		TotalPaid:       TotalPaid(loan.Payments),
		Progress:        Progress(loan.Principal, loan.Payments),
		ExpectedBalance: expected,
		Consistent:      expected.Equal(loan.Balance),
	}
}

func (s *Service) ListPayments(ctx context.Context, loanID int64, page *database.Pagination) ([]models.Payment, error) {
	query := s.db.WithContext(ctx).Model(&models.Payment{})
	if loanID > 0 {
		query = query.Where("loan_id = ?", loanID)
	}
	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count payments: %v", err)
		}
	}

	var payments []models.Payment
	if err := query.Preload("RecordedBy").Order("paid_at desc").Scopes(database.Paginate(page)).Find(&payments).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve payments: %v", err)
	}
	return payments, nil
}

// UpdateLoanStatus applies a manual status change. PAID_OFF is reserved
// for the payment path.
func (s *Service) UpdateLoanStatus(ctx context.Context, id int64, to models.LoanStatus) (*models.Loan, error) {
	var loan models.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&loan, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return status.Errorf(codes.NotFound, "Loan with ID %d not found", id)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve loan: %v", err)
		}
		if to == models.LoanPaidOff && loan.Status != models.LoanPaidOff {
			return status.Errorf(codes.FailedPrecondition, "Loans become PAID_OFF only by recording payments")
		}
		if err := lifecycle.CheckLoan(loan.Status, to); err != nil {
			return err
		}
		if loan.Status == to {
			return nil
		}
		if err := tx.Model(&loan).Update("status", to).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to update loan status: %v", err)
		}
		loan.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBusinessData(ctx)
	return &loan, nil
}

// Reconcile recomputes principal minus payments. With repair set, a drifted
// balance is overwritten and a fully repaid loan is marked PAID_OFF. Repairing
// a PAID_OFF loan that still has money owing fails with FailedPrecondition.
func (s *Service) Reconcile(ctx context.Context, id int64, repair bool) (*Reconciliation, error) {
	var result Reconciliation

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&loan, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return status.Errorf(codes.NotFound, "Loan with ID %d not found", id)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve loan: %v", err)
		}

		var payments []models.Payment
		if err := tx.Where("loan_id = ?", id).Find(&payments).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to retrieve payments: %v", err)
		}

		expected := ExpectedBalance(loan.Principal, payments)
		result = Reconciliation{
			LoanID:          loan.ID,
			StoredBalance:   loan.Balance,
			ExpectedBalance: expected,
			Drift:           loan.Balance.Sub(expected),
			Status:          loan.Status,
		}

		if !repair || result.Drift.IsZero() {
			return nil
		}

		// A settled loan cannot take payments, so writing an open balance onto it
		// would strand the debt. Those loans are reported, never repaired.
		if loan.Status == models.LoanPaidOff && expected.IsPositive() {
			return status.Errorf(codes.FailedPrecondition,
				"Loan %d is PAID_OFF but payments leave %s outstanding", loan.ID, expected.StringFixed(2))
		}

		updates := map[string]interface{}{"balance": expected}
		if expected.IsZero() && AcceptsPayments(loan.Status) {
			updates["status"] = models.LoanPaidOff
			result.Status = models.LoanPaidOff
		}
		if err := tx.Model(&loan).Updates(updates).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to repair loan balance: %v", err)
		}
		result.Repaired = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Repaired {
		s.cache.InvalidateBusinessData(ctx)
		s.logger.Warn("loan balance repaired",
			zap.Int64("loan_id", result.LoanID),
			zap.String("drift", result.Drift.StringFixed(2)))
	}
	return &result, nil
}
