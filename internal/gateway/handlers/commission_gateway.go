package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/middleware"
	"vgroup-backoffice/internal/services/commissions"
)

type CommissionService interface {
	Create(ctx context.Context, in commissions.CreateInput) (*models.Commission, error)
	Get(ctx context.Context, id int64) (*models.Commission, error)
	List(ctx context.Context, filter commissions.Filter, page *database.Pagination) ([]models.Commission, error)
	Approve(ctx context.Context, id, approvedBy int64, notes string) (*models.Commission, error)
	MarkPaid(ctx context.Context, id, paidBy int64, reference string) (*models.Commission, error)
	Cancel(ctx context.Context, id, cancelledBy int64, reason string) (*models.Commission, error)
	BulkApprove(ctx context.Context, ids []int64, approvedBy int64) (*commissions.BulkResult, error)
	SummaryByAgent(ctx context.Context, agentID int64) (*commissions.AgentSummary, error)
}

type CommissionsHTTPHandler struct {
	commissions CommissionService
}

func NewCommissionsHTTPHandler(svc CommissionService) *CommissionsHTTPHandler {
	return &CommissionsHTTPHandler{commissions: svc}
}

type ApproveCommissionRequest struct {
	Notes string `json:"notes"`
}

type PayCommissionRequest struct {
	PaymentReference string `json:"payment_reference"`
}

type CancelCommissionRequest struct {
	Reason string `json:"reason"`
}

type BulkApproveRequest struct {
	CommissionIDs []int64 `json:"commission_ids" binding:"required,min=1"`
}

// optionalJSON binds a body only when one was sent.
func optionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}

func (h *CommissionsHTTPHandler) ListCommissions(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	agentID, ok := queryInt64(c, "agent_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.commissions.List(ctx, commissions.Filter{
		AgentID: agentID,
		Status:  models.CommissionStatus(strings.ToUpper(c.Query("status"))),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Commissions retrieved successfully", list, page))
}

func (h *CommissionsHTTPHandler) GetCommission(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "commission")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	commission, err := h.commissions.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission retrieved successfully", commission))
}

func (h *CommissionsHTTPHandler) CreateCommission(c *gin.Context) {
	var req commissions.CreateInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	commission, err := h.commissions.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Commission created successfully", commission))
}

func (h *CommissionsHTTPHandler) ApproveCommission(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "commission")
	if !ok {
		return
	}

	var req ApproveCommissionRequest
	if !optionalJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	commission, err := h.commissions.Approve(ctx, id, middleware.CurrentUserID(c), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission approved successfully", commission))
}

func (h *CommissionsHTTPHandler) PayCommission(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "commission")
	if !ok {
		return
	}

	var req PayCommissionRequest
	if !optionalJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	commission, err := h.commissions.MarkPaid(ctx, id, middleware.CurrentUserID(c), req.PaymentReference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission marked as paid", commission))
}

func (h *CommissionsHTTPHandler) CancelCommission(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "commission")
	if !ok {
		return
	}

	var req CancelCommissionRequest
	if !optionalJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	commission, err := h.commissions.Cancel(ctx, id, middleware.CurrentUserID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission cancelled", commission))
}

func (h *CommissionsHTTPHandler) BulkApprove(c *gin.Context) {
	var req BulkApproveRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.commissions.BulkApprove(ctx, req.CommissionIDs, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Bulk approval finished", result))
}

func (h *CommissionsHTTPHandler) AgentSummary(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "agent")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := h.commissions.SummaryByAgent(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission summary retrieved successfully", summary))
}
