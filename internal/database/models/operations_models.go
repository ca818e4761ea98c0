package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SosStatus string

const (
	SosOpen       SosStatus = "OPEN"
	SosInProgress SosStatus = "IN_PROGRESS"
	SosResolved   SosStatus = "RESOLVED"
	SosClosed     SosStatus = "CLOSED"
)

type SosPriority string

const (
	SosLow      SosPriority = "LOW"
	SosMedium   SosPriority = "MEDIUM"
	SosHigh     SosPriority = "HIGH"
	SosCritical SosPriority = "CRITICAL"
)

func (p SosPriority) Valid() bool {
	switch p {
	case SosLow, SosMedium, SosHigh, SosCritical:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderQuoted    OrderStatus = "QUOTED"
	OrderApproved  OrderStatus = "APPROVED"
	OrderDeploying OrderStatus = "DEPLOYING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentVerified DocumentStatus = "VERIFIED"
	DocumentRejected DocumentStatus = "REJECTED"
	DocumentExpired  DocumentStatus = "EXPIRED"
)

type SosAlert struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkerID     *int64      `gorm:"index" json:"worker_id,omitempty"`
	Priority     SosPriority `gorm:"type:varchar(16);not null;default:'MEDIUM'" json:"priority"`
	Category     string      `gorm:"type:varchar(32)" json:"category,omitempty"`
	Message      string      `gorm:"type:text;not null" json:"message"`
	Location     *string     `json:"location,omitempty"`
	Latitude     *float64    `json:"latitude,omitempty"`
	Longitude    *float64    `json:"longitude,omitempty"`
	Status       SosStatus   `gorm:"type:varchar(16);index;not null;default:'OPEN'" json:"status"`
	HandledByID  *int64      `json:"handled_by_id,omitempty"`
	ResolvedByID *int64      `json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time  `json:"resolved_at,omitempty"`
	Resolution   *string     `gorm:"type:text" json:"resolution,omitempty"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Worker *Worker `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
}

type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	ClientID    int64           `gorm:"index;not null" json:"client_id"`
	Position    string          `gorm:"not null" json:"position"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Nationality string          `gorm:"type:varchar(2)" json:"nationality,omitempty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"unit_price"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`
	RequiredBy  *time.Time      `json:"required_by,omitempty"`
	Status      OrderStatus     `gorm:"type:varchar(16);index;not null;default:'DRAFT'" json:"status"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// Document belongs to exactly one of Worker, Agent or Client.
type Document struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkerID   *int64         `gorm:"index" json:"worker_id,omitempty"`
	AgentID    *int64         `gorm:"index" json:"agent_id,omitempty"`
	ClientID   *int64         `gorm:"index" json:"client_id,omitempty"`
	Type       string         `gorm:"type:varchar(32);not null" json:"type"`
	Number     *string        `gorm:"type:varchar(64)" json:"number,omitempty"`
	FileURL    *string        `json:"file_url,omitempty"`
	Status     DocumentStatus `gorm:"type:varchar(16);index;not null;default:'PENDING'" json:"status"`
	IssuedAt   *time.Time     `json:"issued_at,omitempty"`
	ExpiryDate *time.Time     `gorm:"index" json:"expiry_date,omitempty"`
	Notes      *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// OwnerCount reports how many owner references are set.
func (d Document) OwnerCount() int {
	n := 0
	for _, id := range []*int64{d.WorkerID, d.AgentID, d.ClientID} {
		if id != nil && *id > 0 {
			n++
		}
	}
	return n
}
