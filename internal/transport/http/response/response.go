package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                = 0
	CodeMemoryNotRecorded = 20001
	CodeBadRequest        = 40000
	CodeUnauthorized      = 40100
	CodeNotFound          = 40400
	CodeInternalServer    = 50000
	CodeAgentFailed       = 50200
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// Partial reports a request that produced data but did not fully complete.
func Partial(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
