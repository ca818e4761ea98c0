package operations

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/lifecycle"
)

const (
	DefaultExpiryDays = 30
	MaxExpiryDays     = 365
)

type DocumentFilter struct {
	WorkerID int64
	AgentID  int64
	ClientID int64
	Type     string
	Status   models.DocumentStatus
}

type DocumentInput struct {
	WorkerID   *int64                 `json:"worker_id"`
	AgentID    *int64                 `json:"agent_id"`
	ClientID   *int64                 `json:"client_id"`
	Type       *string                `json:"type"`
	Number     *string                `json:"number"`
	FileURL    *string                `json:"file_url"`
	Status     *models.DocumentStatus `json:"status"`
	IssuedAt   *time.Time             `json:"issued_at"`
	ExpiryDate *time.Time             `json:"expiry_date"`
	Notes      *string                `json:"notes"`
}

func (s *Service) ListDocuments(ctx context.Context, filter DocumentFilter, page *database.Pagination) ([]models.Document, error) {
	query := s.db.WithContext(ctx).Model(&models.Document{})
	if filter.WorkerID > 0 {
		query = query.Where("worker_id = ?", filter.WorkerID)
	}
	if filter.AgentID > 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.ClientID > 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", strings.ToUpper(filter.Type))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count documents: %v", err)
		}
	}

	var documents []models.Document
	if err := query.Order("created_at desc").Scopes(database.Paginate(page)).Find(&documents).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve documents: %v", err)
	}
	return documents, nil
}

// ListExpiringDocuments returns documents whose expiry date falls within the
// next days days, soonest first. Rejected documents are skipped.
func (s *Service) ListExpiringDocuments(ctx context.Context, days int) ([]models.Document, error) {
	if days <= 0 {
		days = DefaultExpiryDays
	}
	if days > MaxExpiryDays {
		return nil, status.Errorf(codes.InvalidArgument, "Expiry window cannot exceed %d days", MaxExpiryDays)
	}

	now := s.now()
	var documents []models.Document
	if err := s.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", now, now.AddDate(0, 0, days)).
		Where("status <> ?", models.DocumentRejected).
		Order("expiry_date asc").
		Find(&documents).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve expiring documents: %v", err)
	}
	return documents, nil
}

func (s *Service) CreateDocument(ctx context.Context, in DocumentInput) (*models.Document, error) {
	if in.Type == nil || strings.TrimSpace(*in.Type) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Document type is required")
	}
	if in.Status != nil && *in.Status != models.DocumentPending {
		return nil, status.Errorf(codes.InvalidArgument, "New documents start as %s", models.DocumentPending)
	}

	doc := models.Document{Status: models.DocumentPending}
	applyDocumentInput(&doc, in)

	if err := s.checkOwner(s.db.WithContext(ctx), doc); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create document: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	return &doc, nil
}

func (s *Service) UpdateDocument(ctx context.Context, id int64, in DocumentInput) (*models.Document, error) {
	var doc models.Document

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&doc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return status.Errorf(codes.NotFound, "Document with ID %d not found", id)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve document: %v", err)
		}

		if in.Status != nil {
			if err := lifecycle.CheckDocument(doc.Status, *in.Status); err != nil {
				return err
			}
		}
		if in.Type != nil && strings.TrimSpace(*in.Type) == "" {
			return status.Errorf(codes.InvalidArgument, "Document type cannot be empty")
		}

		ownerChanged := in.WorkerID != nil || in.AgentID != nil || in.ClientID != nil
		applyDocumentInput(&doc, in)
		if ownerChanged {
			if err := s.checkOwner(tx, doc); err != nil {
				return err
			}
		}

		if err := tx.Save(&doc).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to update document: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBusinessData(ctx)
	return &doc, nil
}

// checkOwner enforces exactly one owner and that the owner exists.
func (s *Service) checkOwner(db *gorm.DB, doc models.Document) error {
	if n := doc.OwnerCount(); n != 1 {
		return status.Errorf(codes.InvalidArgument, "A document must belong to exactly one worker, agent or client (got %d)", n)
	}

	var (
		model interface{}
		id    int64
		name  string
	)
	switch {
	case doc.WorkerID != nil:
		model, id, name = &models.Worker{}, *doc.WorkerID, "Worker"
	case doc.AgentID != nil:
		model, id, name = &models.Agent{}, *doc.AgentID, "Agent"
	default:
		model, id, name = &models.Client{}, *doc.ClientID, "Client"
	}

	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return status.Errorf(codes.Internal, "Failed to check document owner: %v", err)
	}
	if count == 0 {
		return status.Errorf(codes.NotFound, "%s with ID %d not found", name, id)
	}
	return nil
}

func ownerRef(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	return id
}

func applyDocumentInput(d *models.Document, in DocumentInput) {
	if in.WorkerID != nil {
		d.WorkerID = ownerRef(in.WorkerID)
	}
	if in.AgentID != nil {
		d.AgentID = ownerRef(in.AgentID)
	}
	if in.ClientID != nil {
		d.ClientID = ownerRef(in.ClientID)
	}
	if in.Type != nil {
		d.Type = strings.ToUpper(strings.TrimSpace(*in.Type))
	}
	if in.Number != nil {
		d.Number = in.Number
	}
	if in.FileURL != nil {
		d.FileURL = in.FileURL
	}
	if in.Status != nil {
		d.Status = *in.Status
	}
	if in.IssuedAt != nil {
		d.IssuedAt = in.IssuedAt
	}
	if in.ExpiryDate != nil {
		d.ExpiryDate = in.ExpiryDate
	}
	if in.Notes != nil {
		d.Notes = in.Notes
	}
}
