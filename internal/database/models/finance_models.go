package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanActive    LoanStatus = "ACTIVE"
	LoanOverdue   LoanStatus = "OVERDUE"
	LoanPaidOff   LoanStatus = "PAID_OFF"
	LoanCancelled LoanStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentCash             PaymentMethod = "CASH"
	PaymentBankTransfer     PaymentMethod = "BANK_TRANSFER"
	PaymentPayrollDeduction PaymentMethod = "PAYROLL_DEDUCTION"
	PaymentMobileBanking    PaymentMethod = "MOBILE_BANKING"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentPayrollDeduction, PaymentMobileBanking:
		return true
	}
	return false
}

type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "PENDING"
	CommissionApproved  CommissionStatus = "APPROVED"
	CommissionPaid      CommissionStatus = "PAID"
	CommissionCancelled CommissionStatus = "CANCELLED"
)

// Loan is an advance to a worker. Principal never changes after creation;
// Balance is decremented by payments inside the ledger transaction.
type Loan struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkerID    int64           `gorm:"index;not null" json:"worker_id"`
	Principal   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"principal"`
	Balance     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balance"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'THB'" json:"currency"`
	Purpose     string          `json:"purpose,omitempty"`
	Status      LoanStatus      `gorm:"type:varchar(16);index;not null;default:'ACTIVE'" json:"status"`
	IssuedAt    time.Time       `gorm:"not null" json:"issued_at"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
	CreatedByID *int64          `json:"created_by_id,omitempty"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Worker   *Worker   `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Payments []Payment `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
}

// Payment is immutable once recorded.
type Payment struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	LoanID       int64           `gorm:"index;not null" json:"loan_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method       PaymentMethod   `gorm:"type:varchar(24);not null" json:"method"`
	PaidAt       time.Time       `gorm:"not null" json:"paid_at"`
	RecordedByID int64           `gorm:"not null" json:"recorded_by_id"`
	Reference    *string         `gorm:"type:varchar(64)" json:"reference,omitempty"`
	Notes        *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	RecordedBy *User `gorm:"foreignKey:RecordedByID" json:"recorded_by,omitempty"`
}

// Commission is a fee owed to an agent, moved through approval and payout
// by staff.
type Commission struct {
	ID               int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentID          int64            `gorm:"index;not null" json:"agent_id"`
	WorkerID         *int64           `gorm:"index" json:"worker_id,omitempty"`
	Amount           decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"amount"`
	Description      string           `json:"description,omitempty"`
	Status           CommissionStatus `gorm:"type:varchar(16);index;not null;default:'PENDING'" json:"status"`
	ApprovedByID     *int64           `json:"approved_by_id,omitempty"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`
	PaidByID         *int64           `json:"paid_by_id,omitempty"`
	PaidAt           *time.Time       `json:"paid_at,omitempty"`
	PaymentReference *string          `gorm:"type:varchar(64)" json:"payment_reference,omitempty"`
	Notes            *string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	Agent  *Agent  `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Worker *Worker `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
}
