package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/middleware"
	"vgroup-backoffice/internal/services/admin"
	"vgroup-backoffice/internal/services/dashboard"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardService interface {
	GetStats(ctx context.Context) (*dashboard.Stats, error)
}

type ExportService interface {
	Workers(ctx context.Context, status models.WorkerStatus) ([]byte, error)
	Loans(ctx context.Context, status models.LoanStatus) ([]byte, error)
}

type ResetService interface {
	ResetAll(ctx context.Context, confirmation string, userID int64) (*admin.ResetResult, error)
}

type AdminHTTPHandler struct {
	dashboard DashboardService
	export    ExportService
	reset     ResetService
}

func NewAdminHTTPHandler(dash DashboardService, export ExportService, reset ResetService) *AdminHTTPHandler {
	return &AdminHTTPHandler{dashboard: dash, export: export, reset: reset}
}

type ResetRequest struct {
	Confirmation string `json:"confirmation" binding:"required"`
}

func (h *AdminHTTPHandler) DashboardStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.dashboard.GetStats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Dashboard statistics retrieved successfully", stats))
}

func attachment(c *gin.Context, prefix string, data []byte) {
	name := fmt.Sprintf("%s-%s.xlsx", prefix, time.Now().Format("20060102-1504"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *AdminHTTPHandler) ExportWorkers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := h.export.Workers(ctx, models.WorkerStatus(strings.ToUpper(c.Query("status"))))
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, "workers", data)
}

func (h *AdminHTTPHandler) ExportLoans(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := h.export.Loans(ctx, models.LoanStatus(strings.ToUpper(c.Query("status"))))
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, "loans", data)
}

// ResetData wipes business data. The confirmation phrase is checked by the
// service before anything is deleted.
func (h *AdminHTTPHandler) ResetData(c *gin.Context) {
	var req ResetRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.reset.ResetAll(ctx, req.Confirmation, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("All business data has been reset", result))
}
