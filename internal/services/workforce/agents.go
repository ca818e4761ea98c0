package workforce

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
)

var maxCommissionRate = decimal.NewFromInt(100)

type AgentFilter struct {
	Tier     models.AgentTier
	Country  string
	IsActive *bool
	Search   string
}

type AgentInput struct {
	Code           *string           `json:"code"`
	Name           *string           `json:"name"`
	Phone          *string           `json:"phone"`
	Email          *string           `json:"email"`
	LineID         *string           `json:"line_id"`
	Country        *string           `json:"country"`
	ProvinceID     *int64            `json:"province_id"`
	CommissionRate *decimal.Decimal  `json:"commission_rate"`
	Tier           *models.AgentTier `json:"tier"`
	IsActive       *bool             `json:"is_active"`
	Notes          *string           `json:"notes"`
}

// AgentDetail adds roster counts to an agent.
type AgentDetail struct {
	models.Agent
	WorkerCount int64 `json:"worker_count"`
}

func (s *Service) ListAgents(ctx context.Context, filter AgentFilter, page *database.Pagination) ([]AgentDetail, error) {
	query := s.db.WithContext(ctx).Model(&models.Agent{})
	if filter.Tier != "" {
		query = query.Where("tier = ?", filter.Tier)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", strings.ToUpper(filter.Country))
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("code ILIKE ? OR name ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count agents: %v", err)
		}
	}

	var agents []models.Agent
	if err := query.Order("name asc").Scopes(database.Paginate(page)).Find(&agents).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve agents: %v", err)
	}

	counts, err := s.workerCounts(ctx, "agent_id", agentIDs(agents))
	if err != nil {
		return nil, err
	}

	out := make([]AgentDetail, len(agents))
	for i, agent := range agents {
		out[i] = AgentDetail{Agent: agent, WorkerCount: counts[agent.ID]}
	}
	return out, nil
}

func agentIDs(agents []models.Agent) []int64 {
	ids := make([]int64, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	return ids
}

type ownerCount struct {
	OwnerID int64
	Count   int64
}

func (s *Service) workerCounts(ctx context.Context, column string, ids []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []ownerCount
	if err := s.db.WithContext(ctx).Model(&models.Worker{}).
		Select(column+" AS owner_id, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to count workers: %v", err)
	}
	for _, row := range rows {
		counts[row.OwnerID] = row.Count
	}
	return counts, nil
}

func (s *Service) GetAgent(ctx context.Context, id int64) (*AgentDetail, error) {
	var agent models.Agent
	err := s.db.WithContext(ctx).
		Preload("Province").
		Preload("Commissions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		First(&agent, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Agent with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve agent: %v", err)
	}

	counts, err := s.workerCounts(ctx, "agent_id", []int64{id})
	if err != nil {
		return nil, err
	}
	return &AgentDetail{Agent: agent, WorkerCount: counts[id]}, nil
}

func (s *Service) CreateAgent(ctx context.Context, in AgentInput) (*models.Agent, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Agent name is required")
	}

	agent := models.Agent{Tier: models.TierBronze, IsActive: true, CommissionRate: decimal.Zero}
	if err := applyAgentInput(&agent, in); err != nil {
		return nil, err
	}
	if agent.Code == "" {
		agent.Code = NewCode("A")
	}

	if err := s.db.WithContext(ctx).Create(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, status.Errorf(codes.AlreadyExists, "Agent code %s already exists", agent.Code)
		}
		return nil, status.Errorf(codes.Internal, "Failed to create agent: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	return &agent, nil
}

func (s *Service) UpdateAgent(ctx context.Context, id int64, in AgentInput) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.WithContext(ctx).First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Agent with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve agent: %v", err)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Agent name cannot be empty")
	}
	if err := applyAgentInput(&agent, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, status.Errorf(codes.AlreadyExists, "Agent code %s already exists", agent.Code)
		}
		return nil, status.Errorf(codes.Internal, "Failed to update agent: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	return &agent, nil
}

func applyAgentInput(a *models.Agent, in AgentInput) error {
	if in.CommissionRate != nil {
		rate := *in.CommissionRate
		if rate.IsNegative() || rate.GreaterThan(maxCommissionRate) {
			return status.Errorf(codes.InvalidArgument, "Commission rate must be between 0 and 100")
		}
		a.CommissionRate = rate.Round(2)
	}
	if in.Tier != nil {
		switch *in.Tier {
		case models.TierGold, models.TierSilver, models.TierBronze:
			a.Tier = *in.Tier
		default:
			return status.Errorf(codes.InvalidArgument, "Unknown agent tier %q", *in.Tier)
		}
	}

	setString(&a.Code, in.Code)
	setString(&a.Name, in.Name)
	setString(&a.Phone, in.Phone)
	setString(&a.Email, in.Email)
	setString(&a.LineID, in.LineID)
	if in.Country != nil {
		a.Country = strings.ToUpper(strings.TrimSpace(*in.Country))
	}
	if in.ProvinceID != nil {
		a.ProvinceID = in.ProvinceID
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}
	return nil
}
