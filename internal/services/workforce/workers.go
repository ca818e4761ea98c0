package workforce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

type WorkerFilter struct {
	Status      models.WorkerStatus
	AgentID     int64
	ClientID    int64
	Nationality string
	Search      string
}

// WorkerInput carries create and update fields. Nil pointers are left
// untouched on update.
type WorkerInput struct {
	Code          *string              `json:"code"`
	FirstNameTh   *string              `json:"first_name_th"`
	LastNameTh    *string              `json:"last_name_th"`
	FirstNameLo   *string              `json:"first_name_lo"`
	LastNameLo    *string              `json:"last_name_lo"`
	FirstNameEn   *string              `json:"first_name_en"`
	LastNameEn    *string              `json:"last_name_en"`
	Nickname      *string              `json:"nickname"`
	Gender        *models.Gender       `json:"gender"`
	DateOfBirth   *time.Time           `json:"date_of_birth"`
	Nationality   *string              `json:"nationality"`
	PassportNo    *string              `json:"passport_no"`
	IDCardNo      *string              `json:"id_card_no"`
	Phone         *string              `json:"phone"`
	ProvinceID    *int64               `json:"province_id"`
	DistrictID    *int64               `json:"district_id"`
	Position      *string              `json:"position"`
	Status        *models.WorkerStatus `json:"status"`
	AgentID       *int64               `json:"agent_id"`
	ClientID      *int64               `json:"client_id"`
	DeployedAt    *time.Time           `json:"deployed_at"`
	ContractEndAt *time.Time           `json:"contract_end_at"`
	Notes         *string              `json:"notes"`
}

func workerCacheKey(id int64) string {
	return fmt.Sprintf("%s%d", cache.WorkerCachePrefix, id)
}

func (s *Service) ListWorkers(ctx context.Context, filter WorkerFilter, page *database.Pagination) ([]models.Worker, error) {
	query := s.db.WithContext(ctx).Model(&models.Worker{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AgentID > 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.ClientID > 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Nationality != "" {
		query = query.Where("nationality = ?", strings.ToUpper(filter.Nationality))
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"code ILIKE ? OR first_name_en ILIKE ? OR last_name_en ILIKE ? OR first_name_th ILIKE ? OR last_name_th ILIKE ? OR first_name_lo ILIKE ? OR last_name_lo ILIKE ? OR nickname ILIKE ? OR phone ILIKE ?",
			pattern, pattern, pattern, pattern, pattern, pattern, pattern, pattern, pattern,
		)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count workers: %v", err)
		}
	}

	var workers []models.Worker
	if err := query.Preload("Agent").Preload("Client").
		Order("created_at desc").
		Scopes(database.Paginate(page)).
		Find(&workers).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve workers: %v", err)
	}
	return workers, nil
}

func (s *Service) GetWorker(ctx context.Context, id int64) (*models.Worker, error) {
	var worker models.Worker
	if s.cache.GetJSON(ctx, workerCacheKey(id), &worker) {
		return &worker, nil
	}

	err := s.db.WithContext(ctx).
		Preload("Agent").
		Preload("Client").
		Preload("Province").
		Preload("District").
		Preload("Loans", func(db *gorm.DB) *gorm.DB { return db.Order("issued_at desc") }).
		Preload("Documents").
		First(&worker, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Worker with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve worker: %v", err)
	}

	s.cache.SetJSON(ctx, workerCacheKey(id), worker, cache.TTLMedium)
	return &worker, nil
}

func (s *Service) CreateWorker(ctx context.Context, in WorkerInput) (*models.Worker, error) {
	if in.FirstNameEn == nil || strings.TrimSpace(*in.FirstNameEn) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "English first name is required")
	}

	worker := models.Worker{Status: models.WorkerNewLead}
	applyWorkerInput(&worker, in)
	if worker.Code == "" {
		worker.Code = NewCode("W")
	}
	if worker.Nationality == "" {
		worker.Nationality = "LA"
	}
	if in.Status != nil && *in.Status != models.WorkerNewLead {
		return nil, status.Errorf(codes.InvalidArgument, "New workers start as %s", models.WorkerNewLead)
	}

	if err := s.checkWorkerRefs(s.db.WithContext(ctx), &worker); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&worker).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, status.Errorf(codes.AlreadyExists, "Worker code %s already exists", worker.Code)
		}
		return nil, status.Errorf(codes.Internal, "Failed to create worker: %v", err)
	}

	s.cache.InvalidateBusinessData(ctx)
	s.logger.Info("worker created", zap.Int64("worker_id", worker.ID), zap.String("code", worker.Code))
	return &worker, nil
}

// UpdateWorker applies the given fields. A status change is checked against
// the worker lifecycle and stamps DeployedAt and ContractEndAt when missing.
func (s *Service) UpdateWorker(ctx context.Context, id int64, in WorkerInput) (*models.Worker, error) {
	var worker models.Worker

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&worker, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return status.Errorf(codes.NotFound, "Worker with ID %d not found", id)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve worker: %v", err)
		}

		from := worker.Status
		if in.Status != nil {
			if err := lifecycle.CheckWorker(from, *in.Status); err != nil {
				return err
			}
		}
		if in.FirstNameEn != nil && strings.TrimSpace(*in.FirstNameEn) == "" {
			return status.Errorf(codes.InvalidArgument, "English first name cannot be empty")
		}

		applyWorkerInput(&worker, in)

		now := s.now()
		if worker.Status != from {
			switch worker.Status {
			case models.WorkerDeployed:
				if worker.DeployedAt == nil {
					worker.DeployedAt = &now
				}
			case models.WorkerContractEnd:
				if worker.ContractEndAt == nil {
					worker.ContractEndAt = &now
				}
			}
		}

		if err := s.checkWorkerRefs(tx, &worker); err != nil {
			return err
		}

		worker.Agent, worker.Client, worker.Province, worker.District = nil, nil, nil, nil
		if err := tx.Omit(clause.Associations).Save(&worker).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return status.Errorf(codes.AlreadyExists, "Worker code %s already exists", worker.Code)
			}
			return status.Errorf(codes.Internal, "Failed to update worker: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBusinessData(ctx)
	return &worker, nil
}

func (s *Service) checkWorkerRefs(db *gorm.DB, w *models.Worker) error {
	if w.Gender != "" && w.Gender != models.GenderMale && w.Gender != models.GenderFemale && w.Gender != models.GenderOther {
		return status.Errorf(codes.InvalidArgument, "Unknown gender %q", w.Gender)
	}
	if w.AgentID != nil {
		if *w.AgentID <= 0 {
			w.AgentID = nil
		} else if err := exists(db, &models.Agent{}, *w.AgentID, "Agent"); err != nil {
			return err
		}
	}
	if w.ClientID != nil {
		if *w.ClientID <= 0 {
			w.ClientID = nil
		} else if err := exists(db, &models.Client{}, *w.ClientID, "Client"); err != nil {
			return err
		}
	}
	return checkPlace(db, w)
}

// checkPlace verifies the home province and district. A district given without
// a province fills the province in.
func checkPlace(db *gorm.DB, w *models.Worker) error {
	if w.ProvinceID != nil && *w.ProvinceID <= 0 {
		w.ProvinceID = nil
	}
	if w.DistrictID != nil && *w.DistrictID <= 0 {
		w.DistrictID = nil
	}
	if w.ProvinceID != nil {
		if err := exists(db, &models.Province{}, *w.ProvinceID, "Province"); err != nil {
			return err
		}
	}
	if w.DistrictID == nil {
		return nil
	}

	var district models.District
	if err := db.Select("id", "province_id").First(&district, *w.DistrictID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status.Errorf(codes.NotFound, "District with ID %d not found", *w.DistrictID)
		}
		return status.Errorf(codes.Internal, "Failed to check district: %v", err)
	}
	if w.ProvinceID == nil {
		w.ProvinceID = &district.ProvinceID
		return nil
	}
	if *w.ProvinceID != district.ProvinceID {
		return status.Errorf(codes.InvalidArgument,
			"District %d does not belong to province %d", district.ID, *w.ProvinceID)
	}
	return nil
}

func exists(db *gorm.DB, model interface{}, id int64, name string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return status.Errorf(codes.Internal, "Failed to check %s: %v", strings.ToLower(name), err)
	}
	if count == 0 {
		return status.Errorf(codes.NotFound, "%s with ID %d not found", name, id)
	}
	return nil
}

func applyWorkerInput(w *models.Worker, in WorkerInput) {
	setString(&w.Code, in.Code)
	setString(&w.FirstNameTh, in.FirstNameTh)
	setString(&w.LastNameTh, in.LastNameTh)
	setString(&w.FirstNameLo, in.FirstNameLo)
	setString(&w.LastNameLo, in.LastNameLo)
	setString(&w.FirstNameEn, in.FirstNameEn)
	setString(&w.LastNameEn, in.LastNameEn)
	setString(&w.Nickname, in.Nickname)
	setString(&w.Phone, in.Phone)
	setString(&w.Position, in.Position)
	if in.Nationality != nil {
		w.Nationality = strings.ToUpper(strings.TrimSpace(*in.Nationality))
	}
	if in.Gender != nil {
		w.Gender = *in.Gender
	}
	if in.DateOfBirth != nil {
		w.DateOfBirth = in.DateOfBirth
	}
	if in.PassportNo != nil {
		w.PassportNo = strPtr(strings.TrimSpace(*in.PassportNo))
	}
	if in.IDCardNo != nil {
		w.IDCardNo = strPtr(strings.TrimSpace(*in.IDCardNo))
	}
	if in.ProvinceID != nil {
		w.ProvinceID = in.ProvinceID
	}
	if in.DistrictID != nil {
		w.DistrictID = in.DistrictID
	}
	if in.Status != nil {
		w.Status = *in.Status
	}
	if in.AgentID != nil {
		w.AgentID = in.AgentID
	}
	if in.ClientID != nil {
		w.ClientID = in.ClientID
	}
	if in.DeployedAt != nil {
		w.DeployedAt = in.DeployedAt
	}
	if in.ContractEndAt != nil {
		w.ContractEndAt = in.ContractEndAt
	}
	if in.Notes != nil {
		w.Notes = in.Notes
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
