package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vgroup-backoffice/internal/database"
)

const requestTimeout = 10 * time.Second

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message, code string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   code,
	}
}

func successWithMetaResponse(message string, data interface{}, page *database.Pagination) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta: PaginationMeta{
			Page:       page.Page,
			PageSize:   page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages(),
		},
	}
}

var httpStatusByCode = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.OutOfRange:         http.StatusBadRequest,
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.Aborted:            http.StatusConflict,
	codes.FailedPrecondition: http.StatusUnprocessableEntity,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
}

// HTTPStatus maps a service error to its HTTP status.
func HTTPStatus(err error) int {
	if st, ok := status.FromError(err); ok {
		if code, found := httpStatusByCode[st.Code()]; found {
			return code
		}
	}
	return http.StatusInternalServerError
}

// respondError renders service errors. Internal details are not echoed.
func respondError(c *gin.Context, err error) {
	httpStatus := HTTPStatus(err)
	st, _ := status.FromError(err)

	message := st.Message()
	if httpStatus == http.StatusInternalServerError {
		c.Error(err)
		message = "Internal server error"
	}
	c.JSON(httpStatus, errorResponse(message, st.Code().String()))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse(message, codes.InvalidArgument.String()))
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func parseIDParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// queryInt64 returns 0 when the parameter is absent and false when it is
// malformed.
func queryInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		badRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return v, true
}

func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "Invalid "+name+" parameter")
		return nil, false
	}
	return &v, true
}

type PageQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

func pageFromQuery(c *gin.Context) (*database.Pagination, bool) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid pagination parameters")
		return nil, false
	}
	page := &database.Pagination{Page: q.Page, PageSize: q.PageSize}
	page.Offset()
	return page, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid request format")
		return false
	}
	return true
}
