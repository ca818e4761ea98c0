package workforce

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
)

type ClientFilter struct {
	Industry string
	IsActive *bool
	Search   string
}

type ClientInput struct {
	CompanyName *string `json:"company_name"`
	TaxID       *string `json:"tax_id"`
	Industry    *string `json:"industry"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	ProvinceID  *int64  `json:"province_id"`
	IsActive    *bool   `json:"is_active"`
}

type ClientDetail struct {
	models.Client
	WorkerCount int64 `json:"worker_count"`
}

func (s *Service) ListClients(ctx context.Context, filter ClientFilter, page *database.Pagination) ([]ClientDetail, error) {
	query := s.db.WithContext(ctx).Model(&models.Client{})
	if filter.Industry != "" {
		query = query.Where("industry = ?", filter.Industry)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("company_name ILIKE ? OR contact_name ILIKE ? OR tax_id ILIKE ?", pattern, pattern, pattern)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count clients: %v", err)
		}
	}

	var clients []models.Client
	if err := query.Order("company_name asc").Scopes(database.Paginate(page)).Find(&clients).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve clients: %v", err)
	}

	ids := make([]int64, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	counts, err := s.workerCounts(ctx, "client_id", ids)
	if err != nil {
		return nil, err
	}

	out := make([]ClientDetail, len(clients))
	for i, c := range clients {
		out[i] = ClientDetail{Client: c, WorkerCount: counts[c.ID]}
	}
	return out, nil
}

func (s *Service) GetClient(ctx context.Context, id int64) (*ClientDetail, error) {
	var client models.Client
	err := s.db.WithContext(ctx).
		Preload("Province").
		Preload("Workers").
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		Preload("Documents").
		First(&client, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Client with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve client: %v", err)
	}
	return &ClientDetail{Client: client, WorkerCount: int64(len(client.Workers))}, nil
}

func (s *Service) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	if in.CompanyName == nil || strings.TrimSpace(*in.CompanyName) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Company name is required")
	}

	client := models.Client{IsActive: true}
	applyClientInput(&client, in)

	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create client: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	return &client, nil
}

func (s *Service) UpdateClient(ctx context.Context, id int64, in ClientInput) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Client with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve client: %v", err)
	}
	if in.CompanyName != nil && strings.TrimSpace(*in.CompanyName) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Company name cannot be empty")
	}
	applyClientInput(&client, in)

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&client).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to update client: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	return &client, nil
}

func applyClientInput(c *models.Client, in ClientInput) {
	setString(&c.CompanyName, in.CompanyName)
	setString(&c.TaxID, in.TaxID)
	setString(&c.Industry, in.Industry)
	setString(&c.ContactName, in.ContactName)
	setString(&c.Phone, in.Phone)
	setString(&c.Email, in.Email)
	setString(&c.Address, in.Address)
	if in.ProvinceID != nil {
		c.ProvinceID = in.ProvinceID
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}
