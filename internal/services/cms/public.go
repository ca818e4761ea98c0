package cms

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
)

// The public read API serves only published content and caches every
// response under cache.PublicCMSPrefix. Any admin write clears the prefix.

func publicKey(parts ...interface{}) string {
	key := cache.PublicCMSPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += fmt.Sprint(p)
	}
	return key
}

func (s *Service) PublicPage(ctx context.Context, slug, locale string) (*models.CmsPage, error) {
	slug, locale = normalizeSlug(slug), normalizeLocale(locale)
	key := publicKey("page", locale, slug)

	var page models.CmsPage
	if s.cache.GetJSON(ctx, key, &page) {
		return &page, nil
	}

	err := s.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_visible = ?", true).Order("sort_order asc, id asc")
		}).
		Where("slug = ? AND locale = ? AND is_published = ?", slug, locale, true).
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Page %s not found", slug)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve page: %v", err)
	}

	s.cache.SetJSON(ctx, key, page, cache.TTLMedium)
	return &page, nil
}

func (s *Service) PublicFaq(ctx context.Context, locale string) ([]models.CmsFaq, error) {
	locale = normalizeLocale(locale)
	key := publicKey("faq", locale)

	var faqs []models.CmsFaq
	if s.cache.GetJSON(ctx, key, &faqs) {
		return faqs, nil
	}

	if err := s.db.WithContext(ctx).
		Where("locale = ? AND is_published = ?", locale, true).
		Order("sort_order asc, id asc").
		Find(&faqs).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve FAQ: %v", err)
	}

	s.cache.SetJSON(ctx, key, faqs, cache.TTLMedium)
	return faqs, nil
}

func (s *Service) PublicPartners(ctx context.Context) ([]models.CmsPartner, error) {
	key := publicKey("partners")

	var partners []models.CmsPartner
	if s.cache.GetJSON(ctx, key, &partners) {
		return partners, nil
	}

	if err := s.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("sort_order asc, name asc").
		Find(&partners).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve partners: %v", err)
	}

	s.cache.SetJSON(ctx, key, partners, cache.TTLMedium)
	return partners, nil
}

type BlogPage struct {
	Posts      []models.CmsBlogPost `json:"posts"`
	Pagination database.Pagination  `json:"pagination"`
}

func (s *Service) PublicBlog(ctx context.Context, locale, tag string, page database.Pagination) (*BlogPage, error) {
	locale = normalizeLocale(locale)
	page.Offset() // clamps Page and PageSize
	key := publicKey("blog", locale, tag, page.Page, page.PageSize)

	var out BlogPage
	if s.cache.GetJSON(ctx, key, &out) {
		return &out, nil
	}

	query := s.db.WithContext(ctx).Model(&models.CmsBlogPost{}).
		Where("locale = ? AND is_published = ?", locale, true)
	if tag != "" {
		// tags are a JSON array in a text column
		query = query.Where("tags LIKE ?", fmt.Sprintf("%%%q%%", tag))
	}

	if err := query.Count(&page.Total).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to count blog posts: %v", err)
	}
	if err := query.Omit("content").
		Order("published_at desc").
		Scopes(database.Paginate(&page)).
		Find(&out.Posts).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve blog posts: %v", err)
	}
	out.Pagination = page

	s.cache.SetJSON(ctx, key, out, cache.TTLShort)
	return &out, nil
}

func (s *Service) PublicBlogPost(ctx context.Context, slug, locale string) (*models.CmsBlogPost, error) {
	slug, locale = normalizeSlug(slug), normalizeLocale(locale)
	key := publicKey("blog-post", locale, slug)

	var post models.CmsBlogPost
	if s.cache.GetJSON(ctx, key, &post) {
		return &post, nil
	}

	if err := s.db.WithContext(ctx).
		Where("slug = ? AND locale = ? AND is_published = ?", slug, locale, true).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "Blog post %s not found", slug)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve blog post: %v", err)
	}

	s.cache.SetJSON(ctx, key, post, cache.TTLMedium)
	return &post, nil
}

func (s *Service) PublicEstates(ctx context.Context) ([]models.CmsEstate, error) {
	key := publicKey("estates")

	var estates []models.CmsEstate
	if s.cache.GetJSON(ctx, key, &estates) {
		return estates, nil
	}

	if err := s.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("sort_order asc, name asc").
		Find(&estates).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve estates: %v", err)
	}

	s.cache.SetJSON(ctx, key, estates, cache.TTLLong)
	return estates, nil
}
