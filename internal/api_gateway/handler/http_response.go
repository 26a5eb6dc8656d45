package handler

import (
	"net/http"

	"github.com/account-ledger/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

// Error codes carried in the response envelope
const (
	CodeBadRequest           = "BAD_REQUEST"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNotFound             = "NOT_FOUND"
	CodeDuplicateAccountType = "DUPLICATE_ACCOUNT_TYPE"
	CodeDuplicateTransaction = "DUPLICATE_TRANSACTION"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeAccountInactive      = "ACCOUNT_INACTIVE"
	CodeBalanceLimit         = "BALANCE_LIMIT_EXCEEDED"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	CodeInternal             = "INTERNAL_SERVER_ERROR"
)

// Response is the envelope of every API reply: exactly one of Data or Error is set
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respond(c *gin.Context, statusCode int, response Response) {
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

func RespondOK(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, Response{Data: data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, Response{Data: data})
}

// RespondWithError sends an error envelope with the given status and code
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respond(c, statusCode, Response{Error: &ErrorInfo{Code: code, Message: message}})
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, CodeBadRequest, message)
}

func RespondUnauthorized(c *gin.Context) {
	RespondWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Missing or invalid bearer token")
}

func RespondNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, CodeNotFound, message)
}

func RespondConflict(c *gin.Context, code, message string) {
	RespondWithError(c, http.StatusConflict, code, message)
}

func RespondUnprocessable(c *gin.Context, code, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, code, message)
}

func RespondServiceUnavailable(c *gin.Context, message string) {
	RespondWithError(c, http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

// RespondInternalError hides the cause; it is logged by the caller
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, CodeInternal, "An internal server error occurred")
}
