package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/shared/errors"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Type    string              `json:"type"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message"`
	Details string              `json:"details,omitempty"`
	Status  int                 `json:"status"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// CreatedResponse sends a created response
func CreatedResponse(c *gin.Context, data interface{}, message ...string) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Message: "Resource created successfully",
	}
	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusCreated, response)
}

// ErrorResponse sends an error response with custom status code and message
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Type:    "error",
			Message: message,
			Status:  statusCode,
		},
	})
}

// ErrorResponseWithError sends an error response based on error type.
// Errors that are not AppErrors are reported as a generic 500.
func ErrorResponseWithError(c *gin.Context, err error) {
	info := ErrorInfo{
		Type:    string(errors.ErrorTypeInternal),
		Message: "Internal server error occurred",
		Status:  http.StatusInternalServerError,
	}

	if appErr := errors.GetAppError(err); appErr != nil {
		info = ErrorInfo{
			Type:    string(appErr.Type),
			Code:    appErr.Reason,
			Message: appErr.Message,
			Details: appErr.Details,
			Status:  appErr.Code,
			Fields:  appErr.Fields,
		}
	}

	c.JSON(info.Status, APIResponse{
		Success: false,
		Error:   &info,
	})
}

// NoContentResponse sends a no content response
func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
