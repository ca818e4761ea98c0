package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/middleware"
	"vgroup-backoffice/internal/services/cms"
)

// CMSCollection is the admin CRUD surface of one content table.
type CMSCollection[T any, P interface {
	*T
	cms.Record
}] interface {
	Name() string
	List(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page *database.Pagination) ([]T, error)
	Get(ctx context.Context, id int64) (P, error)
	Create(ctx context.Context, item P) (P, error)
	Update(ctx context.Context, id int64, item P) (P, error)
	Delete(ctx context.Context, id int64) error
}

// RegisterCMSCollection mounts list/get/create/update/delete under path.
// filters name the columns that may be matched exactly from the query string.
func RegisterCMSCollection[T any, P interface {
	*T
	cms.Record
}](group *gin.RouterGroup, path string, col CMSCollection[T, P], filters ...string) {
	label := col.Name()

	group.GET(path, func(c *gin.Context) {
		page, ok := pageFromQuery(c)
		if !ok {
			return
		}

		values := map[string]string{}
		for _, column := range filters {
			if v := c.Query(column); v != "" {
				values[column] = v
			}
		}
		scope := func(db *gorm.DB) *gorm.DB {
			for column, v := range values {
				db = db.Where(column+" = ?", v)
			}
			return db
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := col.List(ctx, scope, page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, successWithMetaResponse("Retrieved "+label+" list", items, page))
	})

	group.GET(path+"/:id", func(c *gin.Context) {
		id, ok := parseIDParam(c, "id", label)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		item, err := col.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse("Retrieved "+label, item))
	})

	group.POST(path, func(c *gin.Context) {
		item := P(new(T))
		if !bindJSON(c, item) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		created, err := col.Create(ctx, item)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, successResponse("Created "+label, created))
	})

	group.PUT(path+"/:id", func(c *gin.Context) {
		id, ok := parseIDParam(c, "id", label)
		if !ok {
			return
		}
		item := P(new(T))
		if !bindJSON(c, item) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		updated, err := col.Update(ctx, id, item)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse("Updated "+label, updated))
	})

	group.DELETE(path+"/:id", func(c *gin.Context) {
		id, ok := parseIDParam(c, "id", label)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := col.Delete(ctx, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse("Deleted "+label, nil))
	})
}

type CMSPublicService interface {
	Upload(ctx context.Context, in cms.UploadInput) (*models.CmsMedia, error)
	PublicPage(ctx context.Context, slug, locale string) (*models.CmsPage, error)
	PublicFaq(ctx context.Context, locale string) ([]models.CmsFaq, error)
	PublicPartners(ctx context.Context) ([]models.CmsPartner, error)
	PublicBlog(ctx context.Context, locale, tag string, page database.Pagination) (*cms.BlogPage, error)
	PublicBlogPost(ctx context.Context, slug, locale string) (*models.CmsBlogPost, error)
	PublicEstates(ctx context.Context) ([]models.CmsEstate, error)
}

type CMSHTTPHandler struct {
	cms CMSPublicService
}

func NewCMSHTTPHandler(svc CMSPublicService) *CMSHTTPHandler {
	return &CMSHTTPHandler{cms: svc}
}

func (h *CMSHTTPHandler) UploadMedia(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cms.MaxUploadSize+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "A file field is required")
		return
	}
	if fileHeader.Size > cms.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse("File is too large", "OUT_OF_RANGE"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(c, "Unable to read uploaded file")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	media, err := h.cms.Upload(ctx, cms.UploadInput{
		FileName:   fileHeader.Filename,
		Alt:        c.PostForm("alt"),
		Data:       data,
		UploadedBy: middleware.CurrentUserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Media uploaded successfully", media))
}

// --- Public site ---

func locale(c *gin.Context) string {
	if l := c.Query("locale"); l != "" {
		return l
	}
	return cms.DefaultLocale
}

func (h *CMSHTTPHandler) PublicPage(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.cms.PublicPage(ctx, c.Param("slug"), locale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Page retrieved successfully", page))
}

func (h *CMSHTTPHandler) PublicFaq(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	faqs, err := h.cms.PublicFaq(ctx, locale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("FAQ retrieved successfully", faqs))
}

func (h *CMSHTTPHandler) PublicPartners(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	partners, err := h.cms.PublicPartners(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Partners retrieved successfully", partners))
}

func (h *CMSHTTPHandler) PublicBlog(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.cms.PublicBlog(ctx, locale(c), c.Query("tag"), *page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Blog posts retrieved successfully", result.Posts, &result.Pagination))
}

func (h *CMSHTTPHandler) PublicBlogPost(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.cms.PublicBlogPost(ctx, c.Param("slug"), locale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Blog post retrieved successfully", post))
}

func (h *CMSHTTPHandler) PublicEstates(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	estates, err := h.cms.PublicEstates(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Estates retrieved successfully", estates))
}
