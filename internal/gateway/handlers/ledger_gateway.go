package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/middleware"
	"vgroup-backoffice/internal/services/ledger"
)

type LedgerService interface {
	CreateLoan(ctx context.Context, in ledger.CreateLoanInput) (*models.Loan, error)
	ListLoans(ctx context.Context, filter ledger.LoanFilter, page *database.Pagination) ([]models.Loan, error)
	GetLoan(ctx context.Context, id int64) (*ledger.LoanDetail, error)
	UpdateLoanStatus(ctx context.Context, id int64, to models.LoanStatus) (*models.Loan, error)
	Reconcile(ctx context.Context, id int64, repair bool) (*ledger.Reconciliation, error)
	RecordPayment(ctx context.Context, in ledger.RecordPaymentInput) (*models.Payment, *models.Loan, error)
	ListPayments(ctx context.Context, loanID int64, page *database.Pagination) ([]models.Payment, error)
}

type LedgerHTTPHandler struct {
	ledger LedgerService
}

func NewLedgerHTTPHandler(svc LedgerService) *LedgerHTTPHandler {
	return &LedgerHTTPHandler{ledger: svc}
}

type UpdateLoanStatusRequest struct {
	Status models.LoanStatus `json:"status" binding:"required"`
}

type ReconcileRequest struct {
	Repair bool `json:"repair"`
}

// --- Loans ---

func (h *LedgerHTTPHandler) ListLoans(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	workerID, ok := queryInt64(c, "worker_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	loans, err := h.ledger.ListLoans(ctx, ledger.LoanFilter{
		WorkerID: workerID,
		Status:   models.LoanStatus(strings.ToUpper(c.Query("status"))),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Loans retrieved successfully", loans, page))
}

func (h *LedgerHTTPHandler) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "loan")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	loan, err := h.ledger.GetLoan(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Loan retrieved successfully", loan))
}

func (h *LedgerHTTPHandler) CreateLoan(c *gin.Context) {
	var req ledger.CreateLoanInput
	if !bindJSON(c, &req) {
		return
	}
	req.CreatedByID = middleware.CurrentUserID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	loan, err := h.ledger.CreateLoan(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Loan created successfully", loan))
}

func (h *LedgerHTTPHandler) UpdateLoanStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "loan")
	if !ok {
		return
	}

	var req UpdateLoanStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	loan, err := h.ledger.UpdateLoanStatus(ctx, id, models.LoanStatus(strings.ToUpper(string(req.Status))))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Loan status updated successfully", loan))
}

func (h *LedgerHTTPHandler) Reconcile(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "loan")
	if !ok {
		return
	}

	var req ReconcileRequest
	if !optionalJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.ledger.Reconcile(ctx, id, req.Repair)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Loan reconciled", result))
}

// --- Payments ---

func (h *LedgerHTTPHandler) ListPayments(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	loanID, ok := queryInt64(c, "loan_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	payments, err := h.ledger.ListPayments(ctx, loanID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Payments retrieved successfully", payments, page))
}

func (h *LedgerHTTPHandler) RecordPayment(c *gin.Context) {
	var req ledger.RecordPaymentInput
	if !bindJSON(c, &req) {
		return
	}
	req.RecordedByID = middleware.CurrentUserID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	payment, loan, err := h.ledger.RecordPayment(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Payment recorded successfully", gin.H{
		"payment": payment,
		"loan":    loan,
	}))
}
