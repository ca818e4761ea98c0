package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/middleware"
	"vgroup-backoffice/internal/services/admin"
	"vgroup-backoffice/internal/services/cms"
	"vgroup-backoffice/internal/services/dashboard"
	"vgroup-backoffice/internal/services/ledger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for JWTAuth.
func asUser(id int64, role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func perform(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHTTPStatus(t *testing.T) {
	cases := map[codes.Code]int{
		codes.InvalidArgument:    http.StatusBadRequest,
		codes.NotFound:           http.StatusNotFound,
		codes.AlreadyExists:      http.StatusConflict,
		codes.FailedPrecondition: http.StatusUnprocessableEntity,
		codes.PermissionDenied:   http.StatusForbidden,
		codes.Unauthenticated:    http.StatusUnauthorized,
		codes.Internal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(status.Error(code, "x")), code.String())
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(assert.AnError))
}

type fakeLedger struct {
	LedgerService
	payment  ledger.RecordPaymentInput
	loan     ledger.CreateLoanInput
	filter   ledger.LoanFilter
	reconcil bool
	err      error
}

func (f *fakeLedger) RecordPayment(_ context.Context, in ledger.RecordPaymentInput) (*models.Payment, *models.Loan, error) {
	f.payment = in
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.Payment{ID: 3, LoanID: in.LoanID, Amount: in.Amount},
		&models.Loan{ID: in.LoanID, Balance: decimal.Zero, Status: models.LoanPaidOff}, nil
}

func (f *fakeLedger) CreateLoan(_ context.Context, in ledger.CreateLoanInput) (*models.Loan, error) {
	f.loan = in
	return &models.Loan{ID: 1, WorkerID: in.WorkerID, Principal: in.Principal, Balance: in.Principal}, nil
}

func (f *fakeLedger) ListLoans(_ context.Context, filter ledger.LoanFilter, page *database.Pagination) ([]models.Loan, error) {
	f.filter = filter
	page.Total = 45
	return []models.Loan{{ID: 1}}, nil
}

func (f *fakeLedger) Reconcile(_ context.Context, id int64, repair bool) (*ledger.Reconciliation, error) {
	f.reconcil = repair
	return &ledger.Reconciliation{LoanID: id, Repaired: repair}, nil
}

func ledgerRouter(svc LedgerService) *gin.Engine {
	h := NewLedgerHTTPHandler(svc)
	r := gin.New()
	api := r.Group("/api", asUser(42, models.RoleStaff))
	api.GET("/loans", h.ListLoans)
	api.POST("/loans", h.CreateLoan)
	api.POST("/loans/:id/reconcile", h.Reconcile)
	api.POST("/payments", h.RecordPayment)
	return r
}

func TestRecordPayment_UsesAuthenticatedUser(t *testing.T) {
	svc := &fakeLedger{}
	w := perform(ledgerRouter(svc), http.MethodPost, "/api/payments", map[string]interface{}{
		"loan_id":        7,
		"amount":         "2500.50",
		"method":         "CASH",
		"recorded_by_id": 999,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(42), svc.payment.RecordedByID)
	assert.Equal(t, int64(7), svc.payment.LoanID)
	assert.True(t, svc.payment.Amount.Equal(decimal.RequireFromString("2500.50")))

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "PAID_OFF", data["loan"].(map[string]interface{})["status"])
}

func TestRecordPayment_ServiceErrorMapsToStatus(t *testing.T) {
	svc := &fakeLedger{err: status.Error(codes.FailedPrecondition, "Payment exceeds outstanding balance")}
	w := perform(ledgerRouter(svc), http.MethodPost, "/api/payments", map[string]interface{}{"loan_id": 7, "amount": 10})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Payment exceeds outstanding balance", body["message"])
	assert.Equal(t, "FailedPrecondition", body["error"])
}

func TestInternalErrorsAreNotEchoed(t *testing.T) {
	svc := &fakeLedger{err: status.Error(codes.Internal, "pq: connection refused")}
	w := perform(ledgerRouter(svc), http.MethodPost, "/api/payments", map[string]interface{}{"loan_id": 7, "amount": 10})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRecordPayment_MalformedBody(t *testing.T) {
	w := perform(ledgerRouter(&fakeLedger{}), http.MethodPost, "/api/payments", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLoans_FiltersAndMeta(t *testing.T) {
	svc := &fakeLedger{}
	w := perform(ledgerRouter(svc), http.MethodGet, "/api/loans?status=overdue&worker_id=5&page=2&page_size=20", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LoanOverdue, svc.filter.Status)
	assert.Equal(t, int64(5), svc.filter.WorkerID)

	meta := decode(t, w)["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["page"])
	assert.Equal(t, float64(45), meta["total"])
	assert.Equal(t, float64(3), meta["total_pages"])
}

func TestListLoans_BadWorkerID(t *testing.T) {
	w := perform(ledgerRouter(&fakeLedger{}), http.MethodGet, "/api/loans?worker_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateLoan_StampsCreator(t *testing.T) {
	svc := &fakeLedger{}
	w := perform(ledgerRouter(svc), http.MethodPost, "/api/loans", map[string]interface{}{
		"worker_id": 3, "principal": "15000", "purpose": "Visa fees",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(42), svc.loan.CreatedByID)
	assert.Equal(t, "Visa fees", svc.loan.Purpose)
}

func TestReconcile_OptionalBody(t *testing.T) {
	svc := &fakeLedger{}
	w := perform(ledgerRouter(svc), http.MethodPost, "/api/loans/9/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.reconcil)

	w = perform(ledgerRouter(svc), http.MethodPost, "/api/loans/9/reconcile", map[string]bool{"repair": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.reconcil)

	w = perform(ledgerRouter(svc), http.MethodPost, "/api/loans/zero/reconcile", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeReset struct {
	confirmation string
	userID       int64
}

func (f *fakeReset) ResetAll(_ context.Context, confirmation string, userID int64) (*admin.ResetResult, error) {
	f.confirmation, f.userID = confirmation, userID
	if confirmation != admin.ConfirmationPhrase {
		return nil, status.Error(codes.FailedPrecondition, "Confirmation phrase does not match")
	}
	return &admin.ResetResult{Total: 12, ResetByID: userID}, nil
}

type fakeDashboard struct{}

func (fakeDashboard) GetStats(context.Context) (*dashboard.Stats, error) {
	return &dashboard.Stats{TotalAgents: 4}, nil
}

type fakeExport struct{ status models.WorkerStatus }

func (f *fakeExport) Workers(_ context.Context, st models.WorkerStatus) ([]byte, error) {
	f.status = st
	return []byte("PK-xlsx"), nil
}

func (f *fakeExport) Loans(context.Context, models.LoanStatus) ([]byte, error) {
	return []byte("PK-xlsx"), nil
}

func TestResetData(t *testing.T) {
	reset := &fakeReset{}
	h := NewAdminHTTPHandler(fakeDashboard{}, &fakeExport{}, reset)
	r := gin.New()
	r.POST("/api/admin/reset", asUser(1, models.RoleAdmin), h.ResetData)

	w := perform(r, http.MethodPost, "/api/admin/reset", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/api/admin/reset", map[string]string{"confirmation": "reset all data"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(r, http.MethodPost, "/api/admin/reset", map[string]string{"confirmation": admin.ConfirmationPhrase})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), reset.userID)
}

func TestExportWorkers_SendsAttachment(t *testing.T) {
	export := &fakeExport{}
	h := NewAdminHTTPHandler(fakeDashboard{}, export, &fakeReset{})
	r := gin.New()
	r.GET("/api/export/workers.xlsx", h.ExportWorkers)

	w := perform(r, http.MethodGet, "/api/export/workers.xlsx?status=deployed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"workers-")
	assert.Equal(t, models.WorkerDeployed, export.status)
	assert.Equal(t, "PK-xlsx", w.Body.String())
}

func TestDashboardStats(t *testing.T) {
	h := NewAdminHTTPHandler(fakeDashboard{}, &fakeExport{}, &fakeReset{})
	r := gin.New()
	r.GET("/api/dashboard/stats", h.DashboardStats)

	w := perform(r, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decode(t, w)["data"].(map[string]interface{})["total_agents"])
}

type fakeFaqs struct {
	items   map[int64]*models.CmsFaq
	scoped  bool
	deleted int64
}

func (f *fakeFaqs) Name() string { return "FAQ" }

func (f *fakeFaqs) List(_ context.Context, scope func(*gorm.DB) *gorm.DB, page *database.Pagination) ([]models.CmsFaq, error) {
	f.scoped = scope != nil
	var out []models.CmsFaq
	for _, item := range f.items {
		out = append(out, *item)
	}
	page.Total = int64(len(out))
	return out, nil
}

func (f *fakeFaqs) Get(_ context.Context, id int64) (*models.CmsFaq, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "FAQ with ID %d not found", id)
	}
	return item, nil
}

func (f *fakeFaqs) Create(_ context.Context, item *models.CmsFaq) (*models.CmsFaq, error) {
	item.ID = int64(len(f.items) + 1)
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeFaqs) Update(_ context.Context, id int64, item *models.CmsFaq) (*models.CmsFaq, error) {
	if _, ok := f.items[id]; !ok {
		return nil, status.Errorf(codes.NotFound, "FAQ with ID %d not found", id)
	}
	item.ID = id
	f.items[id] = item
	return item, nil
}

func (f *fakeFaqs) Delete(_ context.Context, id int64) error {
	f.deleted = id
	delete(f.items, id)
	return nil
}

func TestRegisterCMSCollection(t *testing.T) {
	faqs := &fakeFaqs{items: map[int64]*models.CmsFaq{}}
	r := gin.New()
	RegisterCMSCollection[models.CmsFaq](r.Group("/api/admin/cms"), "/faq", faqs, "locale")

	w := perform(r, http.MethodPost, "/api/admin/cms/faq", map[string]interface{}{
		"locale": "lo", "question": "ສະໝັກແນວໃດ?", "answer": "ຕິດຕໍ່ຫ້ອງການ",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, faqs.items, 1)

	w = perform(r, http.MethodGet, "/api/admin/cms/faq?locale=lo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, faqs.scoped)

	w = perform(r, http.MethodPut, "/api/admin/cms/faq/1", map[string]interface{}{"locale": "lo", "question": "Q", "answer": "A"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Q", faqs.items[1].Question)

	w = perform(r, http.MethodGet, "/api/admin/cms/faq/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodDelete, "/api/admin/cms/faq/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), faqs.deleted)
}

type fakeCMS struct {
	CMSPublicService
	upload cms.UploadInput
}

func (f *fakeCMS) Upload(_ context.Context, in cms.UploadInput) (*models.CmsMedia, error) {
	f.upload = in
	return &models.CmsMedia{ID: 1, FileName: in.FileName, URL: "/uploads/cms/x.png"}, nil
}

func (f *fakeCMS) PublicPage(_ context.Context, slug, locale string) (*models.CmsPage, error) {
	if slug != "about" {
		return nil, status.Errorf(codes.NotFound, "Page %s not found", slug)
	}
	return &models.CmsPage{Slug: slug, Locale: locale}, nil
}

func TestUploadMedia(t *testing.T) {
	svc := &fakeCMS{}
	h := NewCMSHTTPHandler(svc)
	r := gin.New()
	r.POST("/upload", asUser(3, models.RoleStaff), h.UploadMedia)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	mw.WriteField("alt", "V-GROUP logo")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "logo.png", svc.upload.FileName)
	assert.Equal(t, "V-GROUP logo", svc.upload.Alt)
	assert.Equal(t, int64(3), svc.upload.UploadedBy)
}

func TestUploadMedia_MissingFile(t *testing.T) {
	h := NewCMSHTTPHandler(&fakeCMS{})
	r := gin.New()
	r.POST("/upload", h.UploadMedia)

	w := perform(r, http.MethodPost, "/upload", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicPage_DefaultLocale(t *testing.T) {
	h := NewCMSHTTPHandler(&fakeCMS{})
	r := gin.New()
	r.GET("/api/public/pages/:slug", h.PublicPage)

	w := perform(r, http.MethodGet, "/api/public/pages/about", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "th", decode(t, w)["data"].(map[string]interface{})["locale"])

	w = perform(r, http.MethodGet, "/api/public/pages/missing?locale=en", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
