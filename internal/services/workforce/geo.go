package workforce

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database/models"
)

const geoCachePrefix = "geo:"

// ListProvinces returns provinces for one country (TH or LA) or all of them
// when country is empty. Reference data changes only through seeding, so it
// is cached for the long TTL.
func (s *Service) ListProvinces(ctx context.Context, country string) ([]models.Province, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	key := geoCachePrefix + "provinces:" + country

	var provinces []models.Province
	if s.cache.GetJSON(ctx, key, &provinces) {
		return provinces, nil
	}

	query := s.db.WithContext(ctx).Model(&models.Province{})
	if country != "" {
		query = query.Where("country = ?", country)
	}
	if err := query.Order("name_en asc").Find(&provinces).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve provinces: %v", err)
	}

	s.cache.SetJSON(ctx, key, provinces, cache.TTLLong)
	return provinces, nil
}

func (s *Service) ListDistricts(ctx context.Context, provinceID int64) ([]models.District, error) {
	if provinceID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Province ID is required")
	}
	key := fmt.Sprintf("%sdistricts:%d", geoCachePrefix, provinceID)

	var districts []models.District
	if s.cache.GetJSON(ctx, key, &districts) {
		return districts, nil
	}

	if err := exists(s.db.WithContext(ctx), &models.Province{}, provinceID, "Province"); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Where("province_id = ?", provinceID).Order("name_en asc").Find(&districts).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve districts: %v", err)
	}

	s.cache.SetJSON(ctx, key, districts, cache.TTLLong)
	return districts, nil
}

// InvalidateGeo drops cached reference data after seeding.
func (s *Service) InvalidateGeo(ctx context.Context) {
	s.cache.InvalidatePrefix(ctx, geoCachePrefix)
}
