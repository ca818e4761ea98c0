package operations

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/lifecycle"
)

const (
	EventSosCreated = "sos.created"
	EventSosUpdated = "sos.updated"
)

type SosFilter struct {
	Status   models.SosStatus
	Priority models.SosPriority
	WorkerID int64
}

type CreateSosInput struct {
	WorkerID  *int64             `json:"worker_id"`
	Priority  models.SosPriority `json:"priority"`
	Category  string             `json:"category"`
	Message   string             `json:"message"`
	Location  *string            `json:"location"`
	Latitude  *float64           `json:"latitude"`
	Longitude *float64           `json:"longitude"`
}

type UpdateSosInput struct {
	Status     models.SosStatus `json:"status"`
	Resolution *string          `json:"resolution"`
	UserID     int64            `json:"-"`
}

func (s *Service) ListSos(ctx context.Context, filter SosFilter, page *database.Pagination) ([]models.SosAlert, error) {
	query := s.db.WithContext(ctx).Model(&models.SosAlert{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.WorkerID > 0 {
		query = query.Where("worker_id = ?", filter.WorkerID)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count SOS alerts: %v", err)
		}
	}

	var alerts []models.SosAlert
	if err := query.Preload("Worker").Order("created_at desc").Scopes(database.Paginate(page)).Find(&alerts).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve SOS alerts: %v", err)
	}
	return alerts, nil
}

func (s *Service) GetSos(ctx context.Context, id int64) (*models.SosAlert, error) {
	var alert models.SosAlert
	if err := s.db.WithContext(ctx).Preload("Worker").First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "SOS alert with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve SOS alert: %v", err)
	}
	return &alert, nil
}

func (s *Service) CreateSos(ctx context.Context, in CreateSosInput) (*models.SosAlert, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "SOS message is required")
	}
	if in.Priority == "" {
		in.Priority = models.SosMedium
	}
	if !in.Priority.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "Unknown SOS priority %q", in.Priority)
	}
	if in.WorkerID != nil && *in.WorkerID <= 0 {
		in.WorkerID = nil
	}
	if in.WorkerID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Worker{}).Where("id = ?", *in.WorkerID).Count(&count).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to check worker: %v", err)
		}
		if count == 0 {
			return nil, status.Errorf(codes.NotFound, "Worker with ID %d not found", *in.WorkerID)
		}
	}

	alert := models.SosAlert{
		WorkerID:  in.WorkerID,
		Priority:  in.Priority,
		Category:  strings.TrimSpace(in.Category),
		Message:   strings.TrimSpace(in.Message),
		Location:  in.Location,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Status:    models.SosOpen,
	}
	if err := s.db.WithContext(ctx).Create(&alert).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create SOS alert: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	s.publish(EventSosCreated, alert)
	s.logger.Warn("sos alert raised",
		zap.Int64("sos_id", alert.ID),
		zap.String("priority", string(alert.Priority)))
	return &alert, nil
}

// UpdateSosStatus moves an alert along its workflow. Taking an alert in
// progress records the handler; resolving or closing it records who did so.
func (s *Service) UpdateSosStatus(ctx context.Context, id int64, in UpdateSosInput) (*models.SosAlert, error) {
	if in.UserID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "User ID is required")
	}

	var (
		alert     models.SosAlert
		unchanged bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&alert, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return status.Errorf(codes.NotFound, "SOS alert with ID %d not found", id)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve SOS alert: %v", err)
		}

		if err := lifecycle.CheckSos(alert.Status, in.Status); err != nil {
			return err
		}
		if alert.Status == in.Status && in.Resolution == nil {
			unchanged = true
			return nil
		}

		now := s.now()
		switch in.Status {
		case models.SosInProgress:
			if alert.HandledByID == nil {
				alert.HandledByID = &in.UserID
			}
		case models.SosResolved, models.SosClosed:
			if alert.ResolvedAt == nil {
				alert.ResolvedAt = &now
				alert.ResolvedByID = &in.UserID
			}
			if alert.HandledByID == nil {
				alert.HandledByID = &in.UserID
			}
		}
		if in.Resolution != nil {
			alert.Resolution = in.Resolution
		}
		alert.Status = in.Status

		if err := tx.Omit(clause.Associations).Save(&alert).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to update SOS alert: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if unchanged {
		return &alert, nil
	}

	s.cache.InvalidateBusinessData(ctx)
	s.publish(EventSosUpdated, alert)
	return &alert, nil
}
