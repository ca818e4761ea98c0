package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/services/workforce"
)

type WorkforceService interface {
	ListWorkers(ctx context.Context, filter workforce.WorkerFilter, page *database.Pagination) ([]models.Worker, error)
	GetWorker(ctx context.Context, id int64) (*models.Worker, error)
	CreateWorker(ctx context.Context, in workforce.WorkerInput) (*models.Worker, error)
	UpdateWorker(ctx context.Context, id int64, in workforce.WorkerInput) (*models.Worker, error)

	ListAgents(ctx context.Context, filter workforce.AgentFilter, page *database.Pagination) ([]workforce.AgentDetail, error)
	GetAgent(ctx context.Context, id int64) (*workforce.AgentDetail, error)
	CreateAgent(ctx context.Context, in workforce.AgentInput) (*models.Agent, error)
	UpdateAgent(ctx context.Context, id int64, in workforce.AgentInput) (*models.Agent, error)

	ListClients(ctx context.Context, filter workforce.ClientFilter, page *database.Pagination) ([]workforce.ClientDetail, error)
	GetClient(ctx context.Context, id int64) (*workforce.ClientDetail, error)
	CreateClient(ctx context.Context, in workforce.ClientInput) (*models.Client, error)
	UpdateClient(ctx context.Context, id int64, in workforce.ClientInput) (*models.Client, error)

	ListProvinces(ctx context.Context, country string) ([]models.Province, error)
	ListDistricts(ctx context.Context, provinceID int64) ([]models.District, error)
}

type WorkforceHTTPHandler struct {
	svc WorkforceService
}

func NewWorkforceHTTPHandler(svc WorkforceService) *WorkforceHTTPHandler {
	return &WorkforceHTTPHandler{svc: svc}
}

// --- Workers ---

func (h *WorkforceHTTPHandler) ListWorkers(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	agentID, ok := queryInt64(c, "agent_id")
	if !ok {
		return
	}
	clientID, ok := queryInt64(c, "client_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	workers, err := h.svc.ListWorkers(ctx, workforce.WorkerFilter{
		Status:      models.WorkerStatus(strings.ToUpper(c.Query("status"))),
		AgentID:     agentID,
		ClientID:    clientID,
		Nationality: strings.ToUpper(c.Query("nationality")),
		Search:      c.Query("search"),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Workers retrieved successfully", workers, page))
}

func (h *WorkforceHTTPHandler) GetWorker(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "worker")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	worker, err := h.svc.GetWorker(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Worker retrieved successfully", worker))
}

func (h *WorkforceHTTPHandler) CreateWorker(c *gin.Context) {
	var req workforce.WorkerInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	worker, err := h.svc.CreateWorker(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Worker created successfully", worker))
}

func (h *WorkforceHTTPHandler) UpdateWorker(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "worker")
	if !ok {
		return
	}

	var req workforce.WorkerInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	worker, err := h.svc.UpdateWorker(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Worker updated successfully", worker))
}

// --- Agents ---

func (h *WorkforceHTTPHandler) ListAgents(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	active, ok := queryBool(c, "is_active")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agents, err := h.svc.ListAgents(ctx, workforce.AgentFilter{
		Tier:     models.AgentTier(strings.ToUpper(c.Query("tier"))),
		Country:  strings.ToUpper(c.Query("country")),
		IsActive: active,
		Search:   c.Query("search"),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Agents retrieved successfully", agents, page))
}

func (h *WorkforceHTTPHandler) GetAgent(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "agent")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agent, err := h.svc.GetAgent(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Agent retrieved successfully", agent))
}

func (h *WorkforceHTTPHandler) CreateAgent(c *gin.Context) {
	var req workforce.AgentInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agent, err := h.svc.CreateAgent(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Agent created successfully", agent))
}

func (h *WorkforceHTTPHandler) UpdateAgent(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "agent")
	if !ok {
		return
	}

	var req workforce.AgentInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agent, err := h.svc.UpdateAgent(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Agent updated successfully", agent))
}

// --- Clients ---

func (h *WorkforceHTTPHandler) ListClients(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	active, ok := queryBool(c, "is_active")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	clients, err := h.svc.ListClients(ctx, workforce.ClientFilter{
		Industry: c.Query("industry"),
		IsActive: active,
		Search:   c.Query("search"),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Clients retrieved successfully", clients, page))
}

func (h *WorkforceHTTPHandler) GetClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := h.svc.GetClient(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Client retrieved successfully", client))
}

func (h *WorkforceHTTPHandler) CreateClient(c *gin.Context) {
	var req workforce.ClientInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := h.svc.CreateClient(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Client created successfully", client))
}

func (h *WorkforceHTTPHandler) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	var req workforce.ClientInput
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := h.svc.UpdateClient(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Client updated successfully", client))
}

// --- Geography ---

func (h *WorkforceHTTPHandler) ListProvinces(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	provinces, err := h.svc.ListProvinces(ctx, c.Query("country"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Provinces retrieved successfully", provinces))
}

func (h *WorkforceHTTPHandler) ListDistricts(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "province")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	districts, err := h.svc.ListDistricts(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Districts retrieved successfully", districts))
}
