package operations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/lifecycle"
)

type OrderFilter struct {
	ClientID int64
	Status   models.OrderStatus
}

type OrderInput struct {
	ClientID    *int64              `json:"client_id"`
	Position    *string             `json:"position"`
	Quantity    *int                `json:"quantity"`
	Nationality *string             `json:"nationality"`
	UnitPrice   *decimal.Decimal    `json:"unit_price"`
	RequiredBy  *time.Time          `json:"required_by"`
	Status      *models.OrderStatus `json:"status"`
	Notes       *string             `json:"notes"`
}

func newOrderCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD-" + now.Format("0601") + "-" + suffix
}

func (s *Service) ListOrders(ctx context.Context, filter OrderFilter, page *database.Pagination) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.ClientID > 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count orders: %v", err)
		}
	}

	var orders []models.Order
	if err := query.Preload("Client").Order("created_at desc").Scopes(database.Paginate(page)).Find(&orders).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve orders: %v", err)
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Client").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Order with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve order: %v", err)
	}
	return &order, nil
}

func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	if in.ClientID == nil || *in.ClientID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Client ID is required")
	}
	if in.Position == nil || strings.TrimSpace(*in.Position) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Position is required")
	}
	if in.Status != nil && *in.Status != models.OrderDraft {
		return nil, status.Errorf(codes.InvalidArgument, "New orders start as %s", models.OrderDraft)
	}

	order := models.Order{
		Code:      newOrderCode(s.now()),
		Status:    models.OrderDraft,
		Quantity:  1,
		UnitPrice: decimal.Zero,
	}
	if err := applyOrderInput(&order, in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", order.ClientID).Count(&count).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to check client: %v", err)
	}
	if count == 0 {
		return nil, status.Errorf(codes.NotFound, "Client with ID %d not found", order.ClientID)
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create order: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	return &order, nil
}

func (s *Service) UpdateOrder(ctx context.Context, id int64, in OrderInput) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return status.Errorf(codes.NotFound, "Order with ID %d not found", id)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve order: %v", err)
		}

		if in.Status != nil {
			if err := lifecycle.CheckOrder(order.Status, *in.Status); err != nil {
				return err
			}
		}
		if in.ClientID != nil && *in.ClientID != order.ClientID {
			return status.Errorf(codes.InvalidArgument, "An order cannot move to another client")
		}
		if err := applyOrderInput(&order, in); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&order).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to update order: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBusinessData(ctx)
	return &order, nil
}

// applyOrderInput keeps TotalAmount equal to Quantity times UnitPrice.
func applyOrderInput(o *models.Order, in OrderInput) error {
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return status.Errorf(codes.InvalidArgument, "Quantity must be greater than zero")
		}
		o.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return status.Errorf(codes.InvalidArgument, "Unit price cannot be negative")
		}
		o.UnitPrice = in.UnitPrice.Round(2)
	}
	if in.ClientID != nil {
		o.ClientID = *in.ClientID
	}
	if in.Position != nil {
		o.Position = strings.TrimSpace(*in.Position)
	}
	if in.Nationality != nil {
		o.Nationality = strings.ToUpper(strings.TrimSpace(*in.Nationality))
	}
	if in.RequiredBy != nil {
		o.RequiredBy = in.RequiredBy
	}
	if in.Status != nil {
		o.Status = *in.Status
	}
	if in.Notes != nil {
		o.Notes = in.Notes
	}

	o.TotalAmount = o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity))).Round(2)
	return nil
}
