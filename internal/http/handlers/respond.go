package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the uniform error envelope returned by every endpoint.
type APIError struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"requestId,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
}

// FieldError points at a single invalid request field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func respondError(c *gin.Context, status int, apiErr APIError) {
	apiErr.RequestID = c.GetString("requestID")
	c.JSON(status, gin.H{"error": apiErr})
}

func RespondBadRequest(c *gin.Context, code, message string, fields ...FieldError) {
	respondError(c, http.StatusBadRequest, APIError{Code: code, Message: message, Fields: fields})
}

func RespondUnAuthorized(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, APIError{Code: "unauthorized", Message: message})
}

func RespondForbidden(c *gin.Context, message string) {
	respondError(c, http.StatusForbidden, APIError{Code: "forbidden", Message: message})
}

func RespondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, APIError{Code: "not_found", Message: message})
}

// RespondInternal hides the underlying error in production. Outside of
// production the detail is attached to ease debugging.
func RespondInternal(c *gin.Context, message string, err error, includeDetail bool) {
	apiErr := APIError{Code: "internal_error", Message: message}
	if includeDetail && err != nil {
		apiErr.Detail = err.Error()
	}
	respondError(c, http.StatusInternalServerError, apiErr)
}
