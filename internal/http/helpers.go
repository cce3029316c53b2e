package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/ledger/internal/database"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`    // machine-readable error code
	Details   any    `json:"details,omitempty"` // additional context (validation errors, etc.)
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

func newPaginatedResponse[T any](page database.Page[T], opts database.ListOptions) PaginatedResponse {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	opts = opts.Normalize("")
	return PaginatedResponse{
		Data:    items,
		Total:   page.Total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: int64(opts.Offset+len(page.Items)) < page.Total,
	}
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, RequestID: requestID(c)})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", RequestID: requestID(c)})
}

// respondConflict sends a 409 Conflict response.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: message, Code: "conflict", RequestID: requestID(c)})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("request_id", requestID(c)).Str("op", context).Msg("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", RequestID: requestID(c)})
}

// respondStoreError maps repository errors onto 404 or 500.
func respondStoreError(c *gin.Context, err error, resource, context string) {
	if database.IsNotFound(err) {
		respondNotFound(c, resource)
		return
	}
	respondInternalError(c, err, context)
}

// respondValidationError sends a 400 with the binding error as details.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     "invalid request body",
		Code:      "validation_failed",
		Details:   err.Error(),
		RequestID: requestID(c),
	})
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseOptionalQueryID parses an optional unsigned ID query parameter.
// A missing parameter yields 0.
func parseOptionalQueryID(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseListOptions reads limit, offset, order and dir from the query string.
// Responds with 400 on malformed numbers.
func parseListOptions(c *gin.Context) (database.ListOptions, bool) {
	var opts database.ListOptions
	var err error
	if s := c.Query("limit"); s != "" {
		if opts.Limit, err = strconv.Atoi(s); err != nil || opts.Limit < 0 {
			respondBadRequest(c, "invalid limit")
			return opts, false
		}
	}
	if s := c.Query("offset"); s != "" {
		if opts.Offset, err = strconv.Atoi(s); err != nil || opts.Offset < 0 {
			respondBadRequest(c, "invalid offset")
			return opts, false
		}
	}
	opts.OrderBy = c.Query("order")
	opts.Desc = strings.EqualFold(c.Query("dir"), "desc")
	return opts, true
}
