// Package cms manages the marketing site content: pages and their sections,
// FAQ, media, partners, blog posts and industrial estates.
package cms

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/storage"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	locales     = map[string]bool{"th": true, "lo": true, "en": true}
)

const DefaultLocale = "th"

type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	media  storage.MediaStore
	logger *zap.Logger
	now    func() time.Time

	Pages    *Collection[models.CmsPage, *models.CmsPage]
	Sections *Collection[models.CmsSection, *models.CmsSection]
	Faqs     *Collection[models.CmsFaq, *models.CmsFaq]
	Media    *Collection[models.CmsMedia, *models.CmsMedia]
	Partners *Collection[models.CmsPartner, *models.CmsPartner]
	Blog     *Collection[models.CmsBlogPost, *models.CmsBlogPost]
	Estates  *Collection[models.CmsEstate, *models.CmsEstate]
}

func NewService(db *gorm.DB, c *cache.Cache, media storage.MediaStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{db: db, cache: c, media: media, logger: logger, now: time.Now}

	s.Pages = newCollection[models.CmsPage](db, c, "page", "slug asc, locale asc")
	s.Pages.prepare = func(_, next *models.CmsPage) {
		next.Slug = normalizeSlug(next.Slug)
		next.Locale = normalizeLocale(next.Locale)
	}
	s.Pages.validate = func(p *models.CmsPage) error {
		if err := validateSlug(p.Slug); err != nil {
			return err
		}
		if err := validateLocale(p.Locale); err != nil {
			return err
		}
		return required("title", p.Title)
	}
	s.Pages.beforeDelete = func(tx *gorm.DB, p *models.CmsPage) error {
		if err := tx.Where("page_id = ?", p.ID).Delete(&models.CmsSection{}).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to delete page sections: %v", err)
		}
		return nil
	}

	s.Sections = newCollection[models.CmsSection](db, c, "section", "page_id asc, sort_order asc, id asc")
	s.Sections.prepare = func(_, next *models.CmsSection) {
		next.Type = strings.ToLower(strings.TrimSpace(next.Type))
	}
	s.Sections.validate = func(sec *models.CmsSection) error {
		if sec.PageID <= 0 {
			return status.Errorf(codes.InvalidArgument, "Page ID is required")
		}
		return required("type", sec.Type)
	}

	s.Faqs = newCollection[models.CmsFaq](db, c, "faq", "locale asc, sort_order asc, id asc")
	s.Faqs.prepare = func(_, next *models.CmsFaq) {
		next.Locale = normalizeLocale(next.Locale)
	}
	s.Faqs.validate = func(f *models.CmsFaq) error {
		if err := validateLocale(f.Locale); err != nil {
			return err
		}
		if err := required("question", f.Question); err != nil {
			return err
		}
		return required("answer", f.Answer)
	}

	s.Media = newCollection[models.CmsMedia](db, c, "media", "created_at desc")
	s.Media.prepare = func(existing, next *models.CmsMedia) {
		// stored object metadata cannot be edited, only alt text and name
		if existing != nil {
			next.ObjectKey = existing.ObjectKey
			next.URL = existing.URL
			next.MimeType = existing.MimeType
			next.Size = existing.Size
			next.UploadedByID = existing.UploadedByID
		}
	}
	s.Media.validate = func(m *models.CmsMedia) error {
		if err := required("object key", m.ObjectKey); err != nil {
			return err
		}
		return required("url", m.URL)
	}
	s.Media.afterDelete = func(ctx context.Context, m *models.CmsMedia) {
		if s.media == nil {
			return
		}
		if err := s.media.Delete(ctx, m.ObjectKey); err != nil {
			s.logger.Warn("failed to delete media object", zap.String("key", m.ObjectKey), zap.Error(err))
		}
	}

	s.Partners = newCollection[models.CmsPartner](db, c, "partner", "sort_order asc, name asc")
	s.Partners.validate = func(p *models.CmsPartner) error {
		return required("name", p.Name)
	}

	s.Blog = newCollection[models.CmsBlogPost](db, c, "blog post", "created_at desc")
	s.Blog.prepare = func(existing, next *models.CmsBlogPost) {
		next.Slug = normalizeSlug(next.Slug)
		next.Locale = normalizeLocale(next.Locale)
		if next.Tags == nil {
			next.Tags = models.StringArray{}
		}
		if existing != nil && existing.PublishedAt != nil {
			next.PublishedAt = existing.PublishedAt
		}
		if next.IsPublished && next.PublishedAt == nil {
			now := s.now()
			next.PublishedAt = &now
		}
	}
	s.Blog.validate = func(b *models.CmsBlogPost) error {
		if err := validateSlug(b.Slug); err != nil {
			return err
		}
		if err := validateLocale(b.Locale); err != nil {
			return err
		}
		return required("title", b.Title)
	}

	s.Estates = newCollection[models.CmsEstate](db, c, "estate", "sort_order asc, name asc")
	s.Estates.prepare = func(_, next *models.CmsEstate) {
		next.Slug = normalizeSlug(next.Slug)
		if next.ImageURLs == nil {
			next.ImageURLs = models.StringArray{}
		}
	}
	s.Estates.validate = func(e *models.CmsEstate) error {
		if err := validateSlug(e.Slug); err != nil {
			return err
		}
		if e.WorkerCount < 0 {
			return status.Errorf(codes.InvalidArgument, "Worker count cannot be negative")
		}
		return required("name", e.Name)
	}

	return s
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return DefaultLocale
	}
	return locale
}

func validateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return status.Errorf(codes.InvalidArgument, "Slug %q must be lowercase letters, digits and single hyphens", slug)
	}
	return nil
}

func validateLocale(locale string) error {
	if !locales[locale] {
		return status.Errorf(codes.InvalidArgument, "Unsupported locale %q", locale)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return status.Errorf(codes.InvalidArgument, "%s is required", strings.ToUpper(field[:1])+field[1:])
	}
	return nil
}
