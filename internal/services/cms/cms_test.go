package cms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database/dbtest"
	"vgroup-backoffice/internal/database/models"
)

type fakeStore struct {
	put     map[string][]byte
	deleted []string
}

func (f *fakeStore) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if f.put == nil {
		f.put = map[string][]byte{}
	}
	f.put[key] = body
	return "https://cdn.test/" + key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

var fixedNow = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *miniredis.Miniredis, *fakeStore) {
	db, mock := dbtest.NewMock(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := &fakeStore{}
	svc := NewService(db, cache.New(client, zap.NewNop()), store, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, mr, store
}

func TestValidateSlug(t *testing.T) {
	for _, ok := range []string{"about", "work-in-thailand", "faq-2025"} {
		assert.NoError(t, validateSlug(ok), ok)
	}
	for _, bad := range []string{"", "About", "two--dashes", "-lead", "trail-", "ທ່ຽວ", "with space"} {
		assert.Equal(t, codes.InvalidArgument, status.Code(validateSlug(bad)), bad)
	}
}

func TestPagesCreate_RejectsBadSlugWithoutDB(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	_, err := svc.Pages.Create(context.Background(), &models.CmsPage{Slug: "bad slug", Title: "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Pages.Create(context.Background(), &models.CmsPage{Slug: "home", Locale: "fr", Title: "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPagesCreate_InvalidatesPublicCache(t *testing.T) {
	svc, mock, mr, _ := newTestService(t)
	require.NoError(t, mr.Set(cache.PublicCMSPrefix+"page:th:home", "{}"))
	require.NoError(t, mr.Set(cache.DashboardStatsKey, "{}"))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cms_pages"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	page, err := svc.Pages.Create(context.Background(), &models.CmsPage{ID: 99, Slug: " Home ", Title: "หน้าแรก"})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.ID)
	assert.Equal(t, "home", page.Slug)
	assert.Equal(t, DefaultLocale, page.Locale)
	assert.False(t, mr.Exists(cache.PublicCMSPrefix+"page:th:home"))
	assert.True(t, mr.Exists(cache.DashboardStatsKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogPrepare_PublishedAtSetOnce(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	draft := &models.CmsBlogPost{Slug: "news", Title: "News"}
	svc.Blog.prepare(nil, draft)
	assert.Nil(t, draft.PublishedAt)
	assert.NotNil(t, draft.Tags)

	published := &models.CmsBlogPost{Slug: "news", Title: "News", IsPublished: true}
	svc.Blog.prepare(draft, published)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, fixedNow, *published.PublishedAt)

	earlier := fixedNow.Add(-48 * time.Hour)
	existing := &models.CmsBlogPost{IsPublished: true, PublishedAt: &earlier}
	edited := &models.CmsBlogPost{Slug: "news", Title: "News (edited)", IsPublished: true}
	svc.Blog.prepare(existing, edited)
	assert.Equal(t, earlier, *edited.PublishedAt)
}

func TestMediaPrepare_KeepsStoredObject(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	existing := &models.CmsMedia{ObjectKey: "cms/a.png", URL: "https://cdn.test/cms/a.png", Size: 10}
	next := &models.CmsMedia{ObjectKey: "hacked", URL: "https://evil", Alt: "Logo"}
	svc.Media.prepare(existing, next)

	assert.Equal(t, "cms/a.png", next.ObjectKey)
	assert.Equal(t, int64(10), next.Size)
	assert.Equal(t, "Logo", next.Alt)
}

func TestWriteError_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Blog.writeError(gorm.ErrDuplicatedKey)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	err = svc.Blog.writeError(errors.New("boom"))
	assert.Equal(t, codes.Internal, status.Code(err))
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func TestUpload_StoresAndRecords(t *testing.T) {
	svc, mock, _, store := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cms_media`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	media, err := svc.Upload(context.Background(), UploadInput{FileName: "logo.png", Data: pngHeader, UploadedBy: 2})
	require.NoError(t, err)

	assert.Equal(t, "image/png", media.MimeType)
	assert.Contains(t, store.put, media.ObjectKey)
	assert.Equal(t, "https://cdn.test/"+media.ObjectKey, media.URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpload_RemovesObjectWhenInsertFails(t *testing.T) {
	svc, mock, _, store := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cms_media`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.Upload(context.Background(), UploadInput{FileName: "logo.png", Data: pngHeader})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Len(t, store.deleted, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpload_RejectsUnknownType(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), UploadInput{FileName: "run.exe", Data: []byte("MZ\x90\x00binary")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Upload(context.Background(), UploadInput{FileName: "empty.png"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPagesDelete_RemovesSections(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT \* FROM "cms_pages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "locale", "title"}).AddRow(3, "home", "th", "Home"))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "cms_sections" WHERE page_id = `).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "cms_pages" WHERE "cms_pages"."id" = `).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Pages.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicFaq_Cached(t *testing.T) {
	svc, mock, mr, _ := newTestService(t)

	mock.ExpectQuery(`SELECT \* FROM "cms_faqs" WHERE locale = .* AND is_published = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "locale", "question", "answer"}).
			AddRow(1, "lo", "ຄ່າທຳນຽມ?", "ບໍ່ມີ"))

	faqs, err := svc.PublicFaq(context.Background(), "LO")
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	assert.True(t, mr.Exists(cache.PublicCMSPrefix+"faq:lo"))

	again, err := svc.PublicFaq(context.Background(), "lo")
	require.NoError(t, err)
	assert.Equal(t, faqs[0].Question, again[0].Question)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicPage_NotFound(t *testing.T) {
	svc, mock, _, _ := newTestService(t)

	mock.ExpectQuery(`SELECT \* FROM "cms_pages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.PublicPage(context.Background(), "missing", "")
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
