package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WorkerStatus string

const (
	WorkerNewLead     WorkerStatus = "NEW_LEAD"
	WorkerScreening   WorkerStatus = "SCREENING"
	WorkerProcessing  WorkerStatus = "PROCESSING"
	WorkerAcademy     WorkerStatus = "ACADEMY"
	WorkerReady       WorkerStatus = "READY"
	WorkerDeployed    WorkerStatus = "DEPLOYED"
	WorkerWorking     WorkerStatus = "WORKING"
	WorkerContractEnd WorkerStatus = "CONTRACT_END"
	WorkerTerminated  WorkerStatus = "TERMINATED"
)

// WorkerStatuses lists the lifecycle in pipeline order.
var WorkerStatuses = []WorkerStatus{
	WorkerNewLead, WorkerScreening, WorkerProcessing, WorkerAcademy, WorkerReady,
	WorkerDeployed, WorkerWorking, WorkerContractEnd, WorkerTerminated,
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type AgentTier string

const (
	TierGold   AgentTier = "GOLD"
	TierSilver AgentTier = "SILVER"
	TierBronze AgentTier = "BRONZE"
)

// Agent is a recruiting intermediary. CommissionRate and Tier are
// informational; commissions are entered explicitly by staff.
type Agent struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	Name           string          `gorm:"not null" json:"name"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	LineID         string          `json:"line_id,omitempty"`
	Country        string          `gorm:"type:varchar(2)" json:"country,omitempty"`
	ProvinceID     *int64          `json:"province_id,omitempty"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"`
	Tier           AgentTier       `gorm:"type:varchar(16);default:'BRONZE'" json:"tier"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	Notes          *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Province    *Province    `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`
	Workers     []Worker     `gorm:"foreignKey:AgentID" json:"workers,omitempty"`
	Commissions []Commission `gorm:"foreignKey:AgentID" json:"commissions,omitempty"`
}

// Client is an employer receiving deployed workers.
type Client struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyName string    `gorm:"not null;index" json:"company_name"`
	TaxID       string    `gorm:"type:varchar(32);index" json:"tax_id,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	ContactName string    `json:"contact_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Address     string    `gorm:"type:text" json:"address,omitempty"`
	ProvinceID  *int64    `json:"province_id,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Province  *Province  `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`
	Workers   []Worker   `gorm:"foreignKey:ClientID" json:"workers,omitempty"`
	Orders    []Order    `gorm:"foreignKey:ClientID" json:"orders,omitempty"`
	Documents []Document `gorm:"foreignKey:ClientID" json:"documents,omitempty"`
}

// Worker is tracked from lead to end of contract. Names are kept in Thai,
// Lao and English.
type Worker struct {
	ID            int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string       `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	FirstNameTh   string       `json:"first_name_th,omitempty"`
	LastNameTh    string       `json:"last_name_th,omitempty"`
	FirstNameLo   string       `json:"first_name_lo,omitempty"`
	LastNameLo    string       `json:"last_name_lo,omitempty"`
	FirstNameEn   string       `gorm:"not null" json:"first_name_en"`
	LastNameEn    string       `json:"last_name_en,omitempty"`
	Nickname      string       `json:"nickname,omitempty"`
	Gender        Gender       `gorm:"type:varchar(8)" json:"gender,omitempty"`
	DateOfBirth   *time.Time   `json:"date_of_birth,omitempty"`
	Nationality   string       `gorm:"type:varchar(2);index" json:"nationality"`
	PassportNo    *string      `gorm:"type:varchar(32)" json:"passport_no,omitempty"`
	IDCardNo      *string      `gorm:"type:varchar(32)" json:"id_card_no,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	ProvinceID    *int64       `json:"province_id,omitempty"`
	DistrictID    *int64       `json:"district_id,omitempty"`
	Position      string       `json:"position,omitempty"`
	Status        WorkerStatus `gorm:"type:varchar(16);index;not null;default:'NEW_LEAD'" json:"status"`
	AgentID       *int64       `gorm:"index" json:"agent_id,omitempty"`
	ClientID      *int64       `gorm:"index" json:"client_id,omitempty"`
	DeployedAt    *time.Time   `json:"deployed_at,omitempty"`
	ContractEndAt *time.Time   `json:"contract_end_at,omitempty"`
	Notes         *string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Agent     *Agent     `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Client    *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Province  *Province  `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`
	District  *District  `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
	Loans     []Loan     `gorm:"foreignKey:WorkerID" json:"loans,omitempty"`
	Documents []Document `gorm:"foreignKey:WorkerID" json:"documents,omitempty"`
}

// DisplayName prefers the Lao name, then Thai, then English.
func (w Worker) DisplayName() string {
	switch {
	case w.FirstNameLo != "":
		return joinName(w.FirstNameLo, w.LastNameLo)
	case w.FirstNameTh != "":
		return joinName(w.FirstNameTh, w.LastNameTh)
	default:
		return joinName(w.FirstNameEn, w.LastNameEn)
	}
}

func joinName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}
