package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/middleware"
	"vgroup-backoffice/internal/services/operations"
)

type OperationsService interface {
	ListSos(ctx context.Context, filter operations.SosFilter, page *database.Pagination) ([]models.SosAlert, error)
	GetSos(ctx context.Context, id int64) (*models.SosAlert, error)
	CreateSos(ctx context.Context, in operations.CreateSosInput) (*models.SosAlert, error)
	UpdateSosStatus(ctx context.Context, id int64, in operations.UpdateSosInput) (*models.SosAlert, error)

	ListOrders(ctx context.Context, filter operations.OrderFilter, page *database.Pagination) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	CreateOrder(ctx context.Context, in operations.OrderInput) (*models.Order, error)
	UpdateOrder(ctx context.Context, id int64, in operations.OrderInput) (*models.Order, error)

	ListDocuments(ctx context.Context, filter operations.DocumentFilter, page *database.Pagination) ([]models.Document, error)
	ListExpiringDocuments(ctx context.Context, days int) ([]models.Document, error)
	CreateDocument(ctx context.Context, in operations.DocumentInput) (*models.Document, error)
	UpdateDocument(ctx context.Context, id int64, in operations.DocumentInput) (*models.Document, error)
}

// SosFeed serves the live SOS websocket.
type SosFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID int64)
}

type OperationsHTTPHandler struct {
	svc  OperationsService
	feed SosFeed
}

func NewOperationsHTTPHandler(svc OperationsService, feed SosFeed) *OperationsHTTPHandler {
	return &OperationsHTTPHandler{svc: svc, feed: feed}
}

// --- SOS alerts ---

func (h *OperationsHTTPHandler) ListSos(c *gin.Context) {
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

	alerts, err := h.svc.ListSos(ctx, operations.SosFilter{
		Status:   models.SosStatus(strings.ToUpper(c.Query("status"))),
		Priority: models.SosPriority(strings.ToUpper(c.Query("priority"))),
		WorkerID: workerID,
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("SOS alerts retrieved successfully", alerts, page))
}

func (h *OperationsHTTPHandler) GetSos(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "SOS alert")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	alert, err := h.svc.GetSos(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("SOS alert retrieved successfully", alert))
}

func (h *OperationsHTTPHandler) CreateSos(c *gin.Context) {
	var req operations.CreateSosInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	alert, err := h.svc.CreateSos(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("SOS alert created successfully", alert))
}

func (h *OperationsHTTPHandler) UpdateSos(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "SOS alert")
	if !ok {
		return
	}

	var req operations.UpdateSosInput
	if !bindJSON(c, &req) {
		return
	}
	req.Status = models.SosStatus(strings.ToUpper(string(req.Status)))
	req.UserID = middleware.CurrentUserID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	alert, err := h.svc.UpdateSosStatus(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("SOS alert updated successfully", alert))
}

func (h *OperationsHTTPHandler) SosStream(c *gin.Context) {
	if !c.IsWebsocket() {
		badRequest(c, "Websocket upgrade required")
		return
	}
	h.feed.ServeWS(c.Writer, c.Request, middleware.CurrentUserID(c))
}

// --- Orders ---

func (h *OperationsHTTPHandler) ListOrders(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	clientID, ok := queryInt64(c, "client_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.svc.ListOrders(ctx, operations.OrderFilter{
		ClientID: clientID,
		Status:   models.OrderStatus(strings.ToUpper(c.Query("status"))),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved successfully", orders, page))
}

func (h *OperationsHTTPHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.svc.GetOrder(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order retrieved successfully", order))
}

func (h *OperationsHTTPHandler) CreateOrder(c *gin.Context) {
	var req operations.OrderInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.svc.CreateOrder(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Order created successfully", order))
}

func (h *OperationsHTTPHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	var req operations.OrderInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.svc.UpdateOrder(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order updated successfully", order))
}

// --- Documents ---

func (h *OperationsHTTPHandler) ListDocuments(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	var filter operations.DocumentFilter
	for name, dst := range map[string]*int64{
		"worker_id": &filter.WorkerID,
		"agent_id":  &filter.AgentID,
		"client_id": &filter.ClientID,
	} {
		v, ok := queryInt64(c, name)
		if !ok {
			return
		}
		*dst = v
	}
	filter.Type = c.Query("type")
	filter.Status = models.DocumentStatus(strings.ToUpper(c.Query("status")))

	ctx, cancel := requestContext(c)
	defer cancel()

	docs, err := h.svc.ListDocuments(ctx, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Documents retrieved successfully", docs, page))
}

func (h *OperationsHTTPHandler) ListExpiringDocuments(c *gin.Context) {
	days := operations.DefaultExpiryDays
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "Invalid days parameter")
			return
		}
		days = v
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	docs, err := h.svc.ListExpiringDocuments(ctx, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Expiring documents retrieved successfully", docs))
}

func (h *OperationsHTTPHandler) CreateDocument(c *gin.Context) {
	var req operations.DocumentInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := h.svc.CreateDocument(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Document created successfully", doc))
}

func (h *OperationsHTTPHandler) UpdateDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "document")
	if !ok {
		return
	}

	var req operations.DocumentInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := h.svc.UpdateDocument(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Document updated successfully", doc))
}
